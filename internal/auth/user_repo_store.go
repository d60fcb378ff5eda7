package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/objectkit/internal/storage"
)

const userKeyPrefix = "user:"

// StoreUserRepo хранит пользователей в том же DocumentStore, что и проекты,
// под ключами "user:<username>".
type StoreUserRepo struct {
	store storage.DocumentStore
	// mu сериализует создание пользователей внутри узла
	mu sync.Mutex
}

// NewStoreUserRepo создаёт репозиторий поверх store
func NewStoreUserRepo(store storage.DocumentStore) *StoreUserRepo {
	return &StoreUserRepo{store: store}
}

// Helper to normalise usernames.
func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func userKey(username string) string { return userKeyPrefix + normalize(username) }

func (r *StoreUserRepo) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	if normalize(username) == "" {
		return nil, ErrUserNotFound
	}
	data, err := r.store.Get(ctx, userKey(username))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("повреждённая запись пользователя %s: %w", username, err)
	}
	return &user, nil
}

func (r *StoreUserRepo) CreateUser(ctx context.Context, username, password string, isAdmin bool) (*User, error) {
	if normalize(username) == "" {
		return nil, fmt.Errorf("%w: пустое имя", ErrInvalidCredentials)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
		IsAdmin:      isAdmin,
	}
	if err := r.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *StoreUserRepo) ValidateCredentials(ctx context.Context, username, password string) (*User, error) {
	user, err := r.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	user.LastLogin = time.Now().UTC()
	if err := r.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureUser создаёт пользователя, если его ещё нет
func (r *StoreUserRepo) EnsureUser(ctx context.Context, username, password string, isAdmin bool) error {
	_, err := r.CreateUser(ctx, username, password, isAdmin)
	if errors.Is(err, ErrUserExists) {
		return nil
	}
	return err
}

func (r *StoreUserRepo) save(ctx context.Context, user *User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, userKey(user.Username), data)
}
