package service

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	"github.com/iliyamo/invoice-dashboard/internal/repository"
	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

// Messages shown on the login form.
const (
	MsgInvalidCredentials = "Invalid credentials."
	MsgSomethingWrong     = "Something went wrong."
	MsgFormMissing        = "Form data is missing."
)

// UserLookup finds a stored user by email.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type credentials struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

// AuthService verifies email/password pairs against stored users.
type AuthService struct {
	users    UserLookup
	validate *validator.Validate
}

func NewAuthService(users UserLookup) *AuthService {
	return &AuthService{users: users, validate: newValidator()}
}

// Authorize returns the user when email and password match. Every
// credential failure (malformed input, unknown email, wrong password)
// yields nil, nil; only storage failures return an error.
func (s *AuthService) Authorize(ctx context.Context, email, password string) (*model.User, error) {
	creds := credentials{Email: strings.TrimSpace(email), Password: password}
	if err := s.validate.Struct(creds); err != nil {
		log.Printf("auth: rejected malformed credentials for %q", creds.Email)
		return nil, nil
	}

	u, err := s.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("auth: no user with email %q", creds.Email)
			return nil, nil
		}
		log.Printf("auth: user lookup failed: %v", err)
		return nil, err
	}

	ok, err := utils.VerifyPassword(u.Password, creds.Password)
	if err != nil {
		log.Printf("auth: stored hash for %q unusable: %v", creds.Email, err)
		return nil, err
	}
	if !ok {
		log.Printf("auth: password mismatch for %q", creds.Email)
		return nil, nil
	}
	return u, nil
}

// Authenticate runs Authorize on a submitted login form. It returns the user
// on success, otherwise the message to show next to the form.
func (s *AuthService) Authenticate(ctx context.Context, form url.Values) (*model.User, string) {
	if !form.Has("email") && !form.Has("password") {
		return nil, MsgFormMissing
	}
	u, err := s.Authorize(ctx, form.Get("email"), form.Get("password"))
	if err != nil {
		return nil, MsgSomethingWrong
	}
	if u == nil {
		return nil, MsgInvalidCredentials
	}
	return u, ""
}
