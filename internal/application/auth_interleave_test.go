package application

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/internal/infrastructure/memory"
)

// interleavingRepo runs afterRead once, right after the next user read, so a
// competing write lands between a flow's read and its own write.
type interleavingRepo struct {
	*memory.UserRepository
	afterRead func()
}

func (r *interleavingRepo) fire() {
	if f := r.afterRead; f != nil {
		r.afterRead = nil
		f()
	}
}

func (r *interleavingRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := r.UserRepository.GetByEmail(ctx, email)
	r.fire()
	return u, err
}

func (r *interleavingRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := r.UserRepository.GetByID(ctx, id)
	r.fire()
	return u, err
}

func (f *authFixture) interleave(t *testing.T, between func()) {
	t.Helper()
	f.svc.Repo = &interleavingRepo{UserRepository: f.repo, afterRead: between}
}

func TestLoginDoesNotRevertConcurrentReset(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	token := f.openReset(t)

	f.interleave(t, func() {
		_, err := f.repo.ResetPassword(ctx, "a@b.com", token, mustHash(t, f, "resetpass"), f.clock.Now())
		require.NoError(t, err)
	})
	_, err := f.svc.Login(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)

	stored, err := f.repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, f.svc.Hasher.Compare(stored.Password, "resetpass"))
	assert.Empty(t, stored.PasswordResetToken)
	assert.NotNil(t, stored.LastLogin)

	err = f.svc.ResetPassword(ctx, "a@b.com", token, "resetpass2")
	requireAppError(t, err, http.StatusBadRequest, MsgResetTokenRejected)
}

func TestLoginDoesNotEraseFreshResetToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signupVerified(t)

	var token string
	f.interleave(t, func() {
		require.NoError(t, f.svc.ForgotPassword(ctx, "a@b.com"))
		token = f.mail.last().Data["Code"].(string)
	})
	_, err := f.svc.Login(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)

	stored, err := f.repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, token, stored.PasswordResetToken)
	require.NoError(t, f.svc.ResetPassword(ctx, "a@b.com", token, "resetpass"))
}

func TestChangePasswordLosesToConcurrentReset(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	token := f.openReset(t)
	u, err := f.repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)

	f.interleave(t, func() {
		_, err := f.repo.ResetPassword(ctx, "a@b.com", token, mustHash(t, f, "resetpass"), f.clock.Now())
		require.NoError(t, err)
	})
	err = f.svc.ChangePassword(ctx, u.ID, "Abcdef1!", "Newpass1!")
	requireAppError(t, err, http.StatusUnauthorized, MsgWrongCurrent)

	stored, err := f.repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, f.svc.Hasher.Compare(stored.Password, "resetpass"))
	assert.Empty(t, stored.PasswordResetToken)
}

func TestForgotPasswordRacesKeepFirstToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signupVerified(t)

	f.interleave(t, func() {
		require.NoError(t, f.svc.ForgotPassword(ctx, "a@b.com"))
	})
	err := f.svc.ForgotPassword(ctx, "a@b.com")
	requireAppError(t, err, http.StatusBadRequest, MsgResetPending)

	first := f.mail.last().Data["Code"].(string)
	stored, err := f.repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, first, stored.PasswordResetToken)
}

func TestVerifyOTPRejectsCodeReplacedMidway(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signup(t)
	stale := f.mail.last().Data["Code"].(string)

	f.clock.Advance(DefaultAuthConfig().OTPResendCooldown)
	f.interleave(t, func() {
		require.NoError(t, f.svc.ResendOTP(ctx, "a@b.com"))
	})
	err := f.svc.VerifyOTP(ctx, "a@b.com", stale)
	requireAppError(t, err, http.StatusBadRequest, MsgInvalidOTP)

	stored, err := f.repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, stored.IsVerified)
	require.NoError(t, f.svc.VerifyOTP(ctx, "a@b.com", f.mail.last().Data["Code"].(string)))
}

func mustHash(t *testing.T, f *authFixture, plain string) string {
	t.Helper()
	h, err := f.svc.Hasher.Hash(plain)
	require.NoError(t, err)
	return h
}
