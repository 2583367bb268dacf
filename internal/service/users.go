// Package service sits between the HTTP handlers and the ledger. It checks
// required fields, turns patches into explicit column sets and routes every
// balance-affecting change through the ledger engine.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"finance-ledger-go/internal/apperr"
	"finance-ledger-go/internal/ledger"
	"finance-ledger-go/internal/models"
	"finance-ledger-go/internal/store"
)

const (
	minPasswordLen   = 6
	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

type UserService struct {
	store  *store.Store
	ledger *ledger.Engine
	log    *slog.Logger
	cost   int
}

func NewUserService(st *store.Store, lg *ledger.Engine, log *slog.Logger) *UserService {
	return &UserService{store: st, ledger: lg, log: log, cost: bcrypt.DefaultCost}
}

type NewUser struct {
	Name     string
	Email    string
	Age      int
	Password string
}

func (in NewUser) Validate() error {
	if err := ledger.CheckRequired("name", in.Name); err != nil {
		return err
	}
	if err := checkEmail(in.Email); err != nil {
		return err
	}
	if in.Age <= 0 {
		return apperr.Validation("age", "age must be greater than zero")
	}
	return checkPassword(in.Password)
}

// UserPatch lists the mutable user fields; nil means unchanged.
type UserPatch struct {
	Name     *string
	Email    *string
	Age      *int
	Password *string
}

func (p UserPatch) Validate() error {
	if p.Name != nil {
		if err := ledger.CheckRequired("name", *p.Name); err != nil {
			return err
		}
	}
	if p.Email != nil {
		if err := checkEmail(*p.Email); err != nil {
			return err
		}
	}
	if p.Age != nil && *p.Age <= 0 {
		return apperr.Validation("age", "age must be greater than zero")
	}
	if p.Password != nil {
		return checkPassword(*p.Password)
	}
	return nil
}

func checkEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return apperr.Validation("email", "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.Validation("email", "email %q is not a valid address", email)
	}
	return nil
}

func checkPassword(pw string) error {
	if len(pw) < minPasswordLen {
		return apperr.Validation("password", "password must be at least %d characters", minPasswordLen)
	}
	if len(pw) > maxPasswordBytes {
		return apperr.Validation("password", "password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) hash(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), s.cost)
	if err != nil {
		return "", apperr.Storage(err, "hash password")
	}
	return string(h), nil
}

func (s *UserService) Create(ctx context.Context, in NewUser) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)
	taken, err := s.store.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("email %s is already registered", email)
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{Name: strings.TrimSpace(in.Name), Email: email, Age: in.Age, PasswordHash: hash}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user created", "user_id", u.ID)
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.store.GetUserByEmail(ctx, normalizeEmail(email))
}

func (s *UserService) Update(ctx context.Context, id uint, p UserPatch) (*models.User, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if p.Name != nil {
		fields["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		email := normalizeEmail(*p.Email)
		taken, err := s.store.EmailTaken(ctx, email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Conflict("email %s is already registered", email)
		}
		fields["email"] = email
	}
	if p.Age != nil {
		fields["age"] = *p.Age
	}
	if p.Password != nil {
		hash, err := s.hash(*p.Password)
		if err != nil {
			return nil, err
		}
		fields["password"] = hash
	}

	if len(fields) > 0 {
		if err := s.store.UpdateUser(ctx, id, fields); err != nil {
			return nil, err
		}
		s.log.Info("user updated", "user_id", id)
	}
	return s.store.GetUser(ctx, id)
}

// Delete removes the user together with its accounts and their transactions.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.ledger.DeleteUser(ctx, id)
}

// Authenticate checks email and password. Unknown email and wrong password
// both fail with the same Auth error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Auth("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Auth("invalid credentials")
	}
	return u, nil
}
