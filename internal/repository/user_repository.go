package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/invoice-dashboard/internal/database"
	"github.com/iliyamo/invoice-dashboard/internal/model"
)

type UserRepo struct{ db *database.DB }

func NewUserRepo(db *database.DB) *UserRepo { return &UserRepo{db: db} }

func scanUser(s database.Scanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Password)
	return u, err
}

// GetByEmail fetches exactly one user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := database.QueryOne(ctx, r.db, scanUser,
		"SELECT id, name, email, password FROM users WHERE email = ? LIMIT 1", email)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fetchErr("failed to fetch user", err)
	}
	return &u, nil
}
