package dto

import (
	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
)

type RegisterRequest struct {
	UserName string `json:"user_name" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	UserType string `json:"user_type" binding:"omitempty,oneof=buyer seller"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	Address  string `json:"address" binding:"omitempty,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	UserID   uint   `json:"user_id"`
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

func ConvertUserToResponse(user *model.User) UserResponse {
	return UserResponse{
		UserID:   user.UserID,
		UserName: user.UserName,
		Email:    user.UserEmail,
		UserType: string(user.UserType),
		Phone:    user.UserPhone,
		Address:  user.UserAddress,
	}
}
