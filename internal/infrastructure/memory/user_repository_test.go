package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
)

func newUser(email, phone string) *entity.User {
	return &entity.User{Name: "Ann", Email: email, Phone: phone, Password: "hash"}
}

func TestUserCreateAndLookup(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()

	u := newUser("a@b.com", "+19995551234")
	require.NoError(t, r.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, entity.RoleUser, u.Role)

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Email)

	got, err = r.FindByEmailOrPhone(ctx, "x@b.com", "+19995551234")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = r.GetByEmail(ctx, "x@b.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserCreateDuplicate(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, newUser("a@b.com", "+19995551234")))

	assert.ErrorIs(t, r.Create(ctx, newUser("a@b.com", "+19995550000")), repository.ErrDuplicate)
	assert.ErrorIs(t, r.Create(ctx, newUser("c@b.com", "+19995551234")), repository.ErrDuplicate)
}

func TestUserRecordsAreCopies(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()
	u := newUser("a@b.com", "+19995551234")
	u.OTP = &entity.OTP{Code: "123456", ExpiresAt: time.Now()}
	require.NoError(t, r.Create(ctx, u))

	u.OTP.Code = "000000"
	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "123456", got.OTP.Code)

	got.Name = "changed"
	again, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", again.Name)
}

func TestUserUpdateAndDelete(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()
	a := newUser("a@b.com", "+19995551234")
	b := newUser("b@b.com", "+19995550000")
	require.NoError(t, r.Create(ctx, a))
	require.NoError(t, r.Create(ctx, b))

	b.Email = "a@b.com"
	assert.ErrorIs(t, r.Update(ctx, b), repository.ErrDuplicate)

	a.IsVerified = true
	require.NoError(t, r.Update(ctx, a))
	got, err := r.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, got.IsVerified)

	require.NoError(t, r.Delete(ctx, a.ID))
	assert.ErrorIs(t, r.Delete(ctx, a.ID), repository.ErrNotFound)
	assert.ErrorIs(t, r.Update(ctx, a), repository.ErrNotFound)
}

func withReset(t *testing.T, r *UserRepository, token string, exp time.Time) *entity.User {
	t.Helper()
	u := newUser("a@b.com", "+19995551234")
	u.PasswordResetToken = token
	u.PasswordResetExpires = &exp
	require.NoError(t, r.Create(context.Background(), u))
	return u
}

func TestResetPasswordConsumesToken(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()
	now := time.Now()
	withReset(t, r, "123456", now.Add(time.Minute))

	_, err := r.ResetPassword(ctx, "a@b.com", "654321", "new", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	u, err := r.ResetPassword(ctx, "a@b.com", "123456", "new", now)
	require.NoError(t, err)
	assert.Equal(t, "new", u.Password)
	assert.Empty(t, u.PasswordResetToken)
	assert.Nil(t, u.PasswordResetExpires)

	_, err = r.ResetPassword(ctx, "a@b.com", "123456", "again", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestResetPasswordExpired(t *testing.T) {
	r := NewUserRepository()
	now := time.Now()
	withReset(t, r, "123456", now.Add(-time.Second))

	_, err := r.ResetPassword(context.Background(), "a@b.com", "123456", "new", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestResetPasswordConcurrent(t *testing.T) {
	r := NewUserRepository()
	now := time.Now()
	withReset(t, r, "123456", now.Add(time.Minute))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := r.ResetPassword(context.Background(), "a@b.com", "123456", fmt.Sprintf("hash-%d", i), now); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestScopedWritesTouchOnlyTheirColumns(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()
	now := time.Now()
	u := withReset(t, r, "123456", now.Add(time.Hour))

	require.NoError(t, r.TouchLastLogin(ctx, u.ID, now))
	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, got.LastLogin.Equal(now))
	assert.Equal(t, "123456", got.PasswordResetToken)
	assert.Equal(t, "hash", got.Password)

	assert.ErrorIs(t, r.TouchLastLogin(ctx, "missing", now), repository.ErrNotFound)
}

func TestMarkVerifiedGuards(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()
	u := newUser("a@b.com", "+19995551234")
	u.OTP = &entity.OTP{Code: "111111", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, r.Create(ctx, u))

	assert.ErrorIs(t, r.MarkVerified(ctx, u.ID, "222222"), repository.ErrConflict)
	require.NoError(t, r.MarkVerified(ctx, u.ID, "111111"))

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Nil(t, got.OTP)

	assert.ErrorIs(t, r.MarkVerified(ctx, u.ID, "111111"), repository.ErrConflict)
	assert.ErrorIs(t, r.SetOTP(ctx, u.ID, entity.OTP{Code: "333333"}), repository.ErrConflict)
}

func TestSetResetTokenRefusesOpenToken(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()
	now := time.Now()
	u := withReset(t, r, "123456", now.Add(time.Hour))

	assert.ErrorIs(t, r.SetResetToken(ctx, u.ID, "654321", now.Add(2*time.Hour), now), repository.ErrConflict)

	later := now.Add(time.Hour + time.Second)
	require.NoError(t, r.SetResetToken(ctx, u.ID, "654321", later.Add(time.Hour), later))
	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "654321", got.PasswordResetToken)
}

func TestSetPasswordComparesStoredHash(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()
	u := newUser("a@b.com", "+19995551234")
	require.NoError(t, r.Create(ctx, u))

	assert.ErrorIs(t, r.SetPassword(ctx, u.ID, "stale", "next"), repository.ErrConflict)
	require.NoError(t, r.SetPassword(ctx, u.ID, "hash", "next"))
	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "next", got.Password)
}
