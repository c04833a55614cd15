package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/gradient-edu/gradient-api/internal/dto"
	"github.com/gradient-edu/gradient-api/internal/models"
)

func newAuthFixture(users *memoryUserRepo) AuthService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAuthService(users, validate, TokenIssuerConfig{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     30 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, testLogger())
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	users := newMemoryUserRepo()
	svc := newAuthFixture(users)

	registered, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:     "ada@example.edu",
		Password:  "correct-horse",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      "student",
	})
	require.NoError(t, err)
	require.Equal(t, "ada@example.edu", registered.Email)
	require.Equal(t, "student", registered.Role)

	tokens, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "ada@example.edu",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	require.Equal(t, "bearer", tokens.TokenType)

	parsed, err := jwt.Parse(tokens.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("access-secret"), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	require.Equal(t, "1", claims["sub"])
	require.Equal(t, "student", claims["role"])

	stored, err := users.GetByID(context.Background(), registered.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
}

func TestAuthServiceRegisterRejectsDuplicateEmail(t *testing.T) {
	users := newMemoryUserRepo()
	svc := newAuthFixture(users)

	payload := dto.RegisterRequest{
		Email:     "grace@example.edu",
		Password:  "compilers1",
		FirstName: "Grace",
		LastName:  "Hopper",
		Role:      "professor",
	}

	_, err := svc.Register(context.Background(), payload)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), payload)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthServiceLoginRejectsBadPassword(t *testing.T) {
	users := newMemoryUserRepo()
	svc := newAuthFixture(users)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:     "alan@example.edu",
		Password:  "enigma-machine",
		FirstName: "Alan",
		LastName:  "Turing",
		Role:      "student",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email:    "alan@example.edu",
		Password: "wrong",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceLoginRejectsInactiveUser(t *testing.T) {
	users := newMemoryUserRepo()
	svc := newAuthFixture(users)

	registered, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:     "off@example.edu",
		Password:  "deactivated",
		FirstName: "Old",
		LastName:  "Account",
		Role:      "student",
	})
	require.NoError(t, err)

	user, err := users.GetByID(context.Background(), registered.ID)
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, users.Update(context.Background(), &user))

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email:    "off@example.edu",
		Password: "deactivated",
	})
	require.ErrorIs(t, err, ErrInactiveUser)
}

func TestAuthServiceRefreshIssuesNewTokens(t *testing.T) {
	users := newMemoryUserRepo()
	svc := newAuthFixture(users)

	registered, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:     "ref@example.edu",
		Password:  "refreshing",
		FirstName: "Re",
		LastName:  "Fresh",
		Role:      "admin",
	})
	require.NoError(t, err)

	tokens, err := svc.Refresh(context.Background(), Actor{ID: registered.ID, Role: models.RoleAdmin})
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
}
