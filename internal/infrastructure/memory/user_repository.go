package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
)

// UserRepository is an in-process credential store. Records are copied on
// the way in and out so callers never share state with the map.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

// NewUserRepository builds an empty in-memory user store.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User)}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	if u.OTP != nil {
		otp := *u.OTP
		c.OTP = &otp
	}
	if u.PasswordResetExpires != nil {
		t := *u.PasswordResetExpires
		c.PasswordResetExpires = &t
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Phone == u.Phone {
			return repository.ErrDuplicate
		}
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	now := time.Now()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) FindByEmailOrPhone(_ context.Context, email, phone string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var byPhone *entity.User
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
		if u.Phone == phone && byPhone == nil {
			byPhone = u
		}
	}
	if byPhone != nil {
		return cloneUser(byPhone), nil
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, other := range r.users {
		if id != u.ID && (other.Email == u.Email || other.Phone == u.Phone) {
			return repository.ErrDuplicate
		}
	}
	u.UpdatedAt = time.Now()
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// mutate runs fn on the stored record under the write lock.
func (r *UserRepository) mutate(id string, fn func(u *entity.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if err := fn(u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (r *UserRepository) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(u *entity.User) error {
		t := at
		u.LastLogin = &t
		return nil
	})
}

func (r *UserRepository) MarkVerified(_ context.Context, id, code string) error {
	return r.mutate(id, func(u *entity.User) error {
		if u.IsVerified || u.OTP == nil || u.OTP.Code != code {
			return repository.ErrConflict
		}
		u.IsVerified = true
		u.OTP = nil
		return nil
	})
}

func (r *UserRepository) SetOTP(_ context.Context, id string, otp entity.OTP) error {
	return r.mutate(id, func(u *entity.User) error {
		if u.IsVerified {
			return repository.ErrConflict
		}
		u.OTP = &otp
		return nil
	})
}

func (r *UserRepository) SetResetToken(_ context.Context, id, token string, expires, now time.Time) error {
	return r.mutate(id, func(u *entity.User) error {
		if u.HasOpenReset(now) {
			return repository.ErrConflict
		}
		u.PasswordResetToken = token
		u.PasswordResetExpires = &expires
		return nil
	})
}

func (r *UserRepository) SetPassword(_ context.Context, id, currentHash, newHash string) error {
	return r.mutate(id, func(u *entity.User) error {
		if u.Password != currentHash {
			return repository.ErrConflict
		}
		u.Password = newHash
		return nil
	})
}

func (r *UserRepository) ResetPassword(_ context.Context, email, token, passwordHash string, now time.Time) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email != email || u.PasswordResetToken != token || !u.HasOpenReset(now) {
			continue
		}
		u.Password = passwordHash
		u.ClearReset()
		u.UpdatedAt = now
		return cloneUser(u), nil
	}
	return nil, repository.ErrNotFound
}

var _ repository.UserRepository = (*UserRepository)(nil)
