package model

type UserType string

const (
	UserTypeBuyer  UserType = "buyer"
	UserTypeSeller UserType = "seller"
)

type User struct {
	UserID         uint     `gorm:"primaryKey" json:"user_id"`
	UserName       string   `gorm:"not null;type:varchar(50)" json:"user_name"`
	UserEmail      string   `gorm:"unique;not null;type:varchar(50)" json:"user_email"`
	HashedPassword string   `gorm:"not null;type:varchar(100)" json:"-"`
	UserType       UserType `gorm:"not null;type:varchar(10);default:'buyer'" json:"user_type"`
	UserPhone      string   `gorm:"type:varchar(20)" json:"user_phone"`
	UserAddress    string   `gorm:"type:varchar(255)" json:"user_address"`
	Orders         []Order  `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"` // 一對多，級聯刪除
	BaseModel
}

// 賣家才能上架商品
func (u *User) IsSeller() bool {
	return u.UserType == UserTypeSeller
}

func (u *User) IsBuyer() bool {
	return u.UserType == UserTypeBuyer
}
