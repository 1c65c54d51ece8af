package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/rag/internal/errs"
	"github.com/w-h-a/rag/userstore"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	Id    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Service struct {
	users  userstore.UserStore
	secret []byte
	now    func() time.Time
}

func (s *Service) Signup(ctx context.Context, email string, password string, name string) (Session, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if len(email) == 0 || len(password) == 0 || len(name) == 0 {
		return Session{}, errs.Validation("email, password and name are required")
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, errs.Validation("invalid email %q", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt rejects passwords over 72 bytes
		return Session{}, errs.Validation("invalid password: %v", err)
	}

	user := userstore.User{
		Id:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, userstore.ErrExists) {
			return Session{}, fmt.Errorf("sign up: %w: email already registered", errs.ErrConflict)
		}
		return Session{}, errs.Wrap(errs.ErrStore, "sign up", err)
	}

	slog.InfoContext(ctx, "user signed up", "user_id", user.Id)

	return s.session(user)
}

func (s *Service) Login(ctx context.Context, email string, password string) (Session, error) {
	email = normalizeEmail(email)

	if len(email) == 0 || len(password) == 0 {
		return Session{}, errs.Validation("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		return Session{}, fmt.Errorf("sign in: %w: invalid credentials", errs.ErrAuth)
	}
	if err != nil {
		return Session{}, errs.Wrap(errs.ErrStore, "sign in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, fmt.Errorf("sign in: %w: invalid credentials", errs.ErrAuth)
	}

	return s.session(user)
}

// Verify checks a bearer token and returns its claims.
func (s *Service) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if len(token) == 0 {
		return nil, fmt.Errorf("%w: missing token", errs.ErrAuth)
	}

	claims, err := parseToken(s.secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrAuth, err)
	}

	return claims, nil
}

func (s *Service) session(user userstore.User) (Session, error) {
	token, err := signToken(s.secret, user.Id, user.Email, s.now())
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}

	return Session{
		User: User{
			Id:    user.Id,
			Email: user.Email,
			Name:  user.Name,
		},
		Token: token,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func New(
	users userstore.UserStore,
	secret string,
) *Service {
	if len(secret) == 0 {
		panic("missing jwt secret for auth service")
	}

	return &Service{
		users:  users,
		secret: []byte(secret),
		now:    time.Now,
	}
}
