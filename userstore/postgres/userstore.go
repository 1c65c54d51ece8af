package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/w-h-a/rag/userstore"
	"github.com/w-h-a/rag/util/pgdriver"
)

const uniqueViolation = "23505"

type postgresUserStore struct {
	options userstore.Options
	conn    *sql.DB
}

func (s *postgresUserStore) Create(ctx context.Context, user userstore.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.conn.ExecContext(ctx, query, user.Id, user.Email, user.Name, user.PasswordHash, user.CreatedAt)
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", user.Email, userstore.ErrExists)
	}

	return fmt.Errorf("create user: %w", err)
}

func (s *postgresUserStore) GetByEmail(ctx context.Context, email string) (userstore.User, error) {
	query := `
		SELECT id, email, name, password_hash, created_at
		FROM users
		WHERE email = $1
	`

	var u userstore.User

	err := s.conn.QueryRowContext(ctx, query, email).Scan(&u.Id, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return userstore.User{}, userstore.ErrNotFound
	}
	if err != nil {
		return userstore.User{}, fmt.Errorf("get user: %w", err)
	}

	return u, nil
}

func (s *postgresUserStore) Close() error {
	return s.conn.Close()
}

func NewUserStore(opts ...userstore.Option) userstore.UserStore {
	options := userstore.NewOptions(opts...)

	if len(options.Location) == 0 {
		panic("missing location for postgres userstore")
	}

	conn, err := pgdriver.Open(options.Context, options.Location)
	if err != nil {
		detail := "failed to connect with postgres userstore"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	if _, err := conn.ExecContext(options.Context, userstore.Schema); err != nil {
		conn.Close()
		detail := "failed to create users table"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	return &postgresUserStore{
		options: options,
		conn:    conn,
	}
}
