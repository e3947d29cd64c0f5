package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/marketplace/internal/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidUserType    = errors.New("invalid user type")
)

type RegisterParams struct {
	UserName string
	Email    string
	Password string
	UserType model.UserType
	Phone    string
	Address  string
}

type IUserService interface {
	Register(ctx context.Context, params RegisterParams) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, *model.User, error)
	GetUser(ctx context.Context, userID uint) (*model.User, error)
}

type UserService struct {
	userRepo   db.IUserRepository
	tokenMaker *token.JWTMaker
}

func NewUserService(userRepo db.IUserRepository, tokenMaker *token.JWTMaker) *UserService {
	return &UserService{userRepo: userRepo, tokenMaker: tokenMaker}
}

func (s *UserService) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	userType := params.UserType
	if userType == "" {
		userType = model.UserTypeBuyer
	}
	if userType != model.UserTypeBuyer && userType != model.UserTypeSeller {
		return nil, ErrInvalidUserType
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		UserName:       params.UserName,
		UserEmail:      params.Email,
		HashedPassword: string(hashed),
		UserType:       userType,
		UserPhone:      params.Phone,
		UserAddress:    params.Address,
	}
	return s.userRepo.CreateUser(ctx, user)
}

func (s *UserService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokenMaker.CreateToken(user.UserID, user.UserType)
	if err != nil {
		return "", nil, err
	}
	return accessToken, user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotExist
	}
	return user, nil
}

var _ IUserService = (*UserService)(nil)
