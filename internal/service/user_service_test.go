package service

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
	"github.com/RoyceAzure/lab/marketplace/internal/token"
	"github.com/stretchr/testify/require"
)

func newTestUserService(t *testing.T) (*UserService, *fakeUserRepo) {
	t.Helper()
	userRepo := newFakeUserRepo()
	tokenMaker := token.NewJWTMaker("test-secret-key-32-characters!!!", time.Hour)
	return NewUserService(userRepo, tokenMaker), userRepo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterParams{
		UserName: "seller01",
		Email:    "seller@example.com",
		Password: "s3cret",
		UserType: model.UserTypeSeller,
	})
	require.NoError(t, err)
	require.True(t, user.IsSeller())
	require.NotEqual(t, "s3cret", user.HashedPassword)

	accessToken, loggedIn, err := svc.Login(ctx, "seller@example.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)
	require.Equal(t, user.UserID, loggedIn.UserID)
}

func TestRegisterDefaultsToBuyer(t *testing.T) {
	svc, _ := newTestUserService(t)

	user, err := svc.Register(context.Background(), RegisterParams{
		UserName: "buyer01",
		Email:    "buyer@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)
	require.True(t, user.IsBuyer())
}

func TestRegisterInvalidUserType(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.Register(context.Background(), RegisterParams{
		UserName: "admin",
		Email:    "admin@example.com",
		Password: "s3cret",
		UserType: "admin",
	})
	require.ErrorIs(t, err, ErrInvalidUserType)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{
		UserName: "buyer01",
		Email:    "buyer@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "buyer@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
