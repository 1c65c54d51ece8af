package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/w-h-a/rag/userstore"
	"github.com/w-h-a/rag/util/sqlitedriver"
)

type sqliteUserStore struct {
	options userstore.Options
	conn    *sql.DB
}

func (s *sqliteUserStore) Create(ctx context.Context, user userstore.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, user.Id, user.Email, user.Name, user.PasswordHash, user.CreatedAt.UTC())
	if err == nil {
		return nil
	}

	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%s: %w", user.Email, userstore.ErrExists)
	}

	return fmt.Errorf("create user: %w", err)
}

func (s *sqliteUserStore) GetByEmail(ctx context.Context, email string) (userstore.User, error) {
	var u userstore.User

	err := s.conn.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM users
		WHERE email = ?
	`, email).Scan(&u.Id, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return userstore.User{}, userstore.ErrNotFound
	}
	if err != nil {
		return userstore.User{}, fmt.Errorf("get user: %w", err)
	}

	return u, nil
}

func (s *sqliteUserStore) Close() error {
	return s.conn.Close()
}

func NewUserStore(opts ...userstore.Option) userstore.UserStore {
	options := userstore.NewOptions(opts...)

	if len(options.Location) == 0 {
		panic("missing location for sqlite userstore")
	}

	conn, err := sqlitedriver.Open(options.Context, options.Location)
	if err != nil {
		detail := "failed to open sqlite userstore"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	if _, err := conn.ExecContext(options.Context, userstore.Schema); err != nil {
		conn.Close()
		detail := "failed to create users table"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	return &sqliteUserStore{
		options: options,
		conn:    conn,
	}
}
