package kv

import (
	"context"

	"github.com/iho/pocketledger/internal/domain"
)

// UserRepository implements usecase.UserRepository over the users document.
type UserRepository struct {
	store Store
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(store Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create appends user; usernames are unique.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return updateDocument(ctx, r.store, KeyUsers, func(users *[]userRecord) error {
		for _, u := range *users {
			if u.Username == user.Username {
				return domain.ErrDuplicateUser
			}
		}
		*users = append(*users, userToRecord(user))
		return nil
	})
}

// GetByID finds a user by its stable id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.find(ctx, func(u userRecord) bool { return u.ID == id })
}

// GetByUsername finds a user by login name.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(ctx, func(u userRecord) bool { return u.Username == username })
}

// Update replaces the stored record with the same id.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	return updateDocument(ctx, r.store, KeyUsers, func(users *[]userRecord) error {
		idx := -1
		for i, u := range *users {
			if u.ID == user.ID {
				idx = i
				continue
			}
			if u.Username == user.Username {
				return domain.ErrDuplicateUser
			}
		}
		if idx < 0 {
			return domain.ErrUserNotFound
		}
		(*users)[idx] = userToRecord(user)
		return nil
	})
}

func (r *UserRepository) find(ctx context.Context, match func(userRecord) bool) (*domain.User, error) {
	var users []userRecord
	if err := readDocument(ctx, r.store, KeyUsers, &users); err != nil {
		return nil, err
	}

	for _, u := range users {
		if match(u) {
			return recordToUser(u), nil
		}
	}

	return nil, domain.ErrUserNotFound
}
