package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mealbook/internal/core"
	"mealbook/internal/identity"
	"mealbook/internal/rowstore"
)

var (
	ErrEmailExists     = errors.New("email already registered")
	ErrAccountInactive = errors.New("account is inactive")
)

// UserOption is a directory entry for share pickers and the admin filter.
type UserOption struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SignupForm is a new account request.
type SignupForm struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Password    string `json:"password"`
	CompanyName string `json:"companyName"`
}

// UserService manages the user directory and credentials.
type UserService struct {
	store rowstore.Store
}

func NewUserService(store rowstore.Store) *UserService {
	return &UserService{store: store}
}

// Authenticate verifies credentials and returns the session identity.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (core.CurrentUser, error) {
	user, _, err := s.findByEmail(ctx, email)
	if err != nil {
		return core.CurrentUser{}, err
	}
	if user == nil {
		return core.CurrentUser{}, identity.ErrInvalidCredentials
	}
	if !user.IsActive {
		return core.CurrentUser{}, ErrAccountInactive
	}
	if err := identity.CheckPassword(user.PasswordHash, password); err != nil {
		return core.CurrentUser{}, err
	}
	return core.CurrentUser{
		Email:             user.Email,
		Name:              user.Name,
		Role:              user.Role,
		CompanyName:       user.CompanyName,
		PasswordChangedAt: user.PasswordChangedAt,
	}, nil
}

// Signup registers a new active USER account. Email is the identity key and
// must be unused.
func (s *UserService) Signup(ctx context.Context, form SignupForm) error {
	existing, _, err := s.findByEmail(ctx, form.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailExists
	}
	hash, err := identity.HashPassword(form.Password)
	if err != nil {
		return err
	}
	user := rowstore.User{
		Email:             form.Email,
		Name:              form.Name,
		PasswordHash:      hash,
		Role:              core.RoleUser,
		IsActive:          true,
		PasswordChangedAt: time.Now().Format("2006-01-02"),
		CompanyName:       form.CompanyName,
	}
	if err := s.store.Append(ctx, rowstore.TableUsers, [][]string{rowstore.EncodeUser(user)}); err != nil {
		return fmt.Errorf("%w: append user: %v", core.ErrStore, err)
	}
	return nil
}

// ChangePassword verifies the current password and replaces the hash,
// stamping passwordChangedAt with today.
func (s *UserService) ChangePassword(ctx context.Context, email, current, next string) error {
	user, rowIndex, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user %s", core.ErrNotFound, email)
	}
	if err := identity.CheckPassword(user.PasswordHash, current); err != nil {
		return err
	}
	hash, err := identity.HashPassword(next)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.PasswordChangedAt = time.Now().Format("2006-01-02")
	if err := s.store.Update(ctx, rowstore.TableUsers, rowIndex, rowstore.EncodeUser(*user)); err != nil {
		return fmt.Errorf("%w: update user: %v", core.ErrStore, err)
	}
	return nil
}

// ActiveUsers lists active accounts of one company for share pickers and the
// admin user filter.
func (s *UserService) ActiveUsers(ctx context.Context, companyName string) ([]UserOption, error) {
	rows, err := s.store.Get(ctx, rowstore.TableUsers)
	if err != nil {
		return nil, fmt.Errorf("%w: get users: %v", core.ErrStore, err)
	}
	var out []UserOption
	for _, row := range rows {
		u, ok := rowstore.DecodeUser(row)
		if !ok || !u.IsActive || u.CompanyName != companyName {
			continue
		}
		out = append(out, UserOption{Email: u.Email, Name: u.Name})
	}
	return out, nil
}

func (s *UserService) findByEmail(ctx context.Context, email string) (*rowstore.User, int, error) {
	rows, err := s.store.Get(ctx, rowstore.TableUsers)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: get users: %v", core.ErrStore, err)
	}
	for i, row := range rows {
		if u, ok := rowstore.DecodeUser(row); ok && u.Email == email {
			return &u, i, nil
		}
	}
	return nil, 0, nil
}
