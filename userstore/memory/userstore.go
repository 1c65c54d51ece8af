package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/w-h-a/rag/userstore"
)

type memoryUserStore struct {
	options userstore.Options
	users   map[string]userstore.User
	mtx     sync.RWMutex
}

func (s *memoryUserStore) Create(ctx context.Context, user userstore.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	key := strings.ToLower(user.Email)

	if _, ok := s.users[key]; ok {
		return fmt.Errorf("%s: %w", user.Email, userstore.ErrExists)
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	s.users[key] = user

	return nil
}

func (s *memoryUserStore) GetByEmail(ctx context.Context, email string) (userstore.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return userstore.User{}, userstore.ErrNotFound
	}

	return u, nil
}

func (s *memoryUserStore) Close() error {
	return nil
}

func NewUserStore(opts ...userstore.Option) userstore.UserStore {
	options := userstore.NewOptions(opts...)

	return &memoryUserStore{
		options: options,
		users:   map[string]userstore.User{},
	}
}
