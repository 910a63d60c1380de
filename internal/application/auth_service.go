package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"expvar"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	repo "github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
	"github.com/oksasatya/go-ecommerce-backend/pkg/mailer"
	"github.com/oksasatya/go-ecommerce-backend/pkg/mailer/templates"
	"github.com/oksasatya/go-ecommerce-backend/pkg/validation"
)

// Caller-facing messages. Login, reset and OTP checks share messages across
// distinct causes so responses do not reveal which part was wrong.
const (
	MsgInvalidName        = "Name must be at least 2 characters long"
	MsgInvalidEmail       = "Please provide a valid email address"
	MsgWeakPassword       = "Password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character"
	MsgPasswordMismatch   = "Passwords do not match"
	MsgInvalidPhone       = "Please provide a valid phone number"
	MsgEmailTaken         = "Email already registered"
	MsgPhoneTaken         = "Phone number already registered"
	MsgSignupMailFailed   = "Failed to send verification email. Please try again."
	MsgInvalidOTPFormat   = "Please provide a valid 6-digit OTP"
	MsgUserNotFound       = "User not found"
	MsgAlreadyVerified    = "Email is already verified"
	MsgNoOTP              = "No OTP found. Please request a new OTP"
	MsgInvalidOTP         = "Invalid OTP"
	MsgOTPExpired         = "OTP has expired. Please request a new one"
	MsgInvalidPassword    = "Please provide a valid password"
	MsgInvalidCredentials = "Invalid credentials"
	MsgVerifyFirst        = "Please verify your email before logging in"
	MsgNoUserWithEmail    = "No user found with this email address"
	MsgVerifyEmailFirst   = "Please verify your email first"
	MsgResetPending       = "A reset token was already sent. Please wait until it expires before requesting another one"
	MsgInvalidResetToken  = "Please provide a valid reset token"
	MsgResetPasswordShort = "Password must be at least 8 characters long"
	MsgResetTokenRejected = "Invalid or expired reset token"
	MsgMissingPasswords   = "Please provide both current and new password"
	MsgWeakNewPassword    = "New password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character"
	MsgSamePassword       = "New password must be different from current password"
	MsgWrongCurrent       = "Current password is incorrect"
)

var (
	statSignups       = expvar.NewInt("auth_signups")
	statVerifications = expvar.NewInt("auth_otp_verifications")
	statLogins        = expvar.NewInt("auth_logins")
	statResets        = expvar.NewInt("auth_password_resets")
)

// AuthConfig holds the credential lifecycle windows.
type AuthConfig struct {
	OTPTTL            time.Duration
	OTPResendCooldown time.Duration
	ResetTokenTTL     time.Duration
}

// DefaultAuthConfig returns 10 minute OTPs with a 1 minute resend cooldown and
// 30 minute reset tokens.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{OTPTTL: 10 * time.Minute, OTPResendCooldown: time.Minute, ResetTokenTTL: 30 * time.Minute}
}

// AuthService orchestrates signup, verification, login, reset and change-password.
type AuthService struct {
	Repo     repo.UserRepository
	Hasher   *helpers.Hasher
	JWT      *helpers.JWTManager
	Notifier mailer.Notifier
	Logger   *logrus.Logger
	Cfg      AuthConfig

	now     func() time.Time
	genCode func() (string, error)
}

func NewAuthService(repo repo.UserRepository, hasher *helpers.Hasher, jwt *helpers.JWTManager, notifier mailer.Notifier, logger *logrus.Logger, cfg AuthConfig) *AuthService {
	return &AuthService{
		Repo:     repo,
		Hasher:   hasher,
		JWT:      jwt,
		Notifier: notifier,
		Logger:   logger,
		Cfg:      cfg,
		now:      time.Now,
		genCode:  helpers.GenOTPCode,
	}
}

// PublicUser is the projection returned to callers. It never carries the
// hash, OTP or reset fields.
type PublicUser struct {
	ID         string      `json:"_id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       entity.Role `json:"role"`
	Phone      string      `json:"phone"`
	IsVerified bool        `json:"isVerified"`
}

func ToPublicUser(u *entity.User) PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Phone: u.Phone, IsVerified: u.IsVerified}
}

// Session is an issued bearer token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

type SignupInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
}

type SignupResult struct {
	UserID  string
	Session Session
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return validation.Valid(email, "required,simpleemail")
}

func minutes(d time.Duration) int {
	return int(d.Round(time.Minute) / time.Minute)
}

func (s *AuthService) logError(err error, msg string, fields logrus.Fields) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(fields).Error(msg)
}

func (s *AuthService) issue(userID string) (Session, error) {
	token, exp, err := s.JWT.GenerateToken(userID)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp}, nil
}

// Signup validates input in order, creates an unverified user with an OTP and
// sends the OTP. If sending fails the user record is removed again.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*SignupResult, error) {
	name := strings.TrimSpace(in.Name)
	if len([]rune(name)) < 2 {
		return nil, validationErr(MsgInvalidName)
	}
	if !validEmail(in.Email) {
		return nil, validationErr(MsgInvalidEmail)
	}
	if !validation.StrongPassword(in.Password) {
		return nil, validationErr(MsgWeakPassword)
	}
	if in.Password != in.ConfirmPassword {
		return nil, validationErr(MsgPasswordMismatch)
	}
	if !validation.Valid(in.Phone, "required,phone") {
		return nil, validationErr(MsgInvalidPhone)
	}

	email := normalizeEmail(in.Email)
	existing, err := s.Repo.FindByEmailOrPhone(ctx, email, in.Phone)
	switch {
	case err == nil:
		if existing.Email == email {
			return nil, conflictErr(MsgEmailTaken)
		}
		return nil, conflictErr(MsgPhoneTaken)
	case !errors.Is(err, repo.ErrNotFound):
		return nil, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	code, err := s.genCode()
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		Name:     name,
		Email:    email,
		Phone:    in.Phone,
		Password: hash,
		Role:     entity.RoleUser,
		OTP:      &entity.OTP{Code: code, ExpiresAt: s.now().Add(s.Cfg.OTPTTL)},
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, conflictErr("Email or phone number already registered")
		}
		return nil, err
	}

	job := mailer.EmailJob{To: u.Email, Template: templates.VerifyOTP, Data: templates.Data(u.Name, code, minutes(s.Cfg.OTPTTL))}
	if err := s.Notifier.Notify(ctx, job); err != nil {
		if delErr := s.Repo.Delete(ctx, u.ID); delErr != nil {
			s.logError(delErr, "signup compensation delete failed", logrus.Fields{"user_id": u.ID})
		}
		return nil, dependencyErr(MsgSignupMailFailed, err)
	}

	sess, err := s.issue(u.ID)
	if err != nil {
		return nil, err
	}
	statSignups.Add(1)
	return &SignupResult{UserID: u.ID, Session: sess}, nil
}

// VerifyOTP confirms the email address with the code on file.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) error {
	if !validEmail(email) {
		return validationErr(MsgInvalidEmail)
	}
	if !validation.Valid(otp, "len=6") {
		return validationErr(MsgInvalidOTPFormat)
	}

	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundErr(MsgUserNotFound)
		}
		return err
	}
	if u.IsVerified {
		return validationErr(MsgAlreadyVerified)
	}
	if u.OTP == nil || u.OTP.Code == "" {
		return validationErr(MsgNoOTP)
	}
	if subtle.ConstantTimeCompare([]byte(u.OTP.Code), []byte(otp)) != 1 {
		return validationErr(MsgInvalidOTP)
	}
	if s.now().After(u.OTP.ExpiresAt) {
		return validationErr(MsgOTPExpired)
	}

	if err := s.Repo.MarkVerified(ctx, u.ID, u.OTP.Code); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return validationErr(MsgInvalidOTP)
		}
		return err
	}
	statVerifications.Add(1)
	return nil
}

// ResendOTP replaces the open OTP and sends the new one. A challenge issued
// less than the cooldown ago is rejected. Send failures are returned; the new
// code stays stored.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	if !validEmail(email) {
		return validationErr(MsgInvalidEmail)
	}
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundErr(MsgUserNotFound)
		}
		return err
	}
	if u.IsVerified {
		return validationErr(MsgAlreadyVerified)
	}

	now := s.now()
	if u.OTP != nil && u.OTP.ExpiresAt.Sub(now) > s.Cfg.OTPTTL-s.Cfg.OTPResendCooldown {
		return rateLimitedErr(fmt.Sprintf("Please wait %s before requesting a new OTP", waitText(s.Cfg.OTPResendCooldown)))
	}

	code, err := s.genCode()
	if err != nil {
		return err
	}
	if err := s.Repo.SetOTP(ctx, u.ID, entity.OTP{Code: code, ExpiresAt: now.Add(s.Cfg.OTPTTL)}); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return validationErr(MsgAlreadyVerified)
		}
		return err
	}

	job := mailer.EmailJob{To: u.Email, Template: templates.ResendOTP, Data: templates.Data(u.Name, code, minutes(s.Cfg.OTPTTL))}
	if err := s.Notifier.Notify(ctx, job); err != nil {
		return dependencyErr("An error occurred while sending new OTP. Please try again.", err)
	}
	return nil
}

func waitText(d time.Duration) string {
	m := minutes(d)
	switch {
	case m == 1:
		return "1 minute"
	case m > 1:
		return fmt.Sprintf("%d minutes", m)
	default:
		return d.String()
	}
}

// LoginResult carries the public projection and a fresh session.
type LoginResult struct {
	User    PublicUser
	Session Session
}

// Login checks credentials for verified users and records lastLogin.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if !validEmail(email) {
		return nil, validationErr(MsgInvalidEmail)
	}
	if !validation.Valid(password, "required,pwd") {
		return nil, validationErr(MsgInvalidPassword)
	}

	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, unauthorizedErr(MsgInvalidCredentials)
		}
		return nil, err
	}
	if !u.IsVerified {
		return nil, validationErr(MsgVerifyFirst)
	}
	if !s.Hasher.Compare(u.Password, password) {
		return nil, unauthorizedErr(MsgInvalidCredentials)
	}

	now := s.now()
	if err := s.Repo.TouchLastLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLogin = &now

	sess, err := s.issue(u.ID)
	if err != nil {
		return nil, err
	}
	statLogins.Add(1)
	return &LoginResult{User: ToPublicUser(u), Session: sess}, nil
}

// ForgotPassword stores and emails a reset token unless one is still valid.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if !validEmail(email) {
		return validationErr(MsgInvalidEmail)
	}
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundErr(MsgNoUserWithEmail)
		}
		return err
	}
	if !u.IsVerified {
		return validationErr(MsgVerifyEmailFirst)
	}

	now := s.now()
	if u.HasOpenReset(now) {
		return rateLimitedErr(MsgResetPending)
	}

	token, err := s.genCode()
	if err != nil {
		return err
	}
	if err := s.Repo.SetResetToken(ctx, u.ID, token, now.Add(s.Cfg.ResetTokenTTL), now); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return rateLimitedErr(MsgResetPending)
		}
		return err
	}

	job := mailer.EmailJob{To: u.Email, Template: templates.ResetToken, Data: templates.Data(u.Name, token, minutes(s.Cfg.ResetTokenTTL))}
	if err := s.Notifier.Notify(ctx, job); err != nil {
		return dependencyErr("An error occurred while processing your request. Please try again.", err)
	}
	return nil
}

// ResetPassword consumes a reset token in one atomic store operation. Only the
// length of the new password is checked here.
func (s *AuthService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	if !validEmail(email) {
		return validationErr(MsgInvalidEmail)
	}
	if !validation.Valid(token, "required,otp") {
		return validationErr(MsgInvalidResetToken)
	}
	if !validation.Valid(newPassword, "required,pwd") {
		return validationErr(MsgResetPasswordShort)
	}

	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	u, err := s.Repo.ResetPassword(ctx, normalizeEmail(email), token, hash, s.now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return validationErr(MsgResetTokenRejected)
		}
		return err
	}
	statResets.Add(1)

	s.notifyAfterCommit(ctx, u, templates.PasswordReset)
	return nil
}

// ChangePassword replaces the password of an authenticated user. Previously
// issued session tokens remain valid until they expire.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return validationErr(MsgMissingPasswords)
	}
	if !validation.StrongPassword(newPassword) {
		return validationErr(MsgWeakNewPassword)
	}
	if currentPassword == newPassword {
		return validationErr(MsgSamePassword)
	}

	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundErr(MsgUserNotFound)
		}
		return err
	}
	if !s.Hasher.Compare(u.Password, currentPassword) {
		return unauthorizedErr(MsgWrongCurrent)
	}

	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	// a reset committed since the read makes currentPassword stale
	if err := s.Repo.SetPassword(ctx, u.ID, u.Password, hash); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return unauthorizedErr(MsgWrongCurrent)
		}
		return err
	}

	s.notifyAfterCommit(ctx, u, templates.PasswordChanged)
	return nil
}

// notifyAfterCommit sends a confirmation for a change that is already stored.
// A failed send is logged, not returned.
func (s *AuthService) notifyAfterCommit(ctx context.Context, u *entity.User, tpl string) {
	job := mailer.EmailJob{To: u.Email, Template: tpl, Data: templates.Data(u.Name, "", 0)}
	if err := s.Notifier.Notify(ctx, job); err != nil {
		s.logError(err, "confirmation email failed", logrus.Fields{"user_id": u.ID, "template": tpl})
	}
}

// ResolveSession verifies a bearer token and loads the bound user with the
// hash cleared.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*entity.User, error) {
	claims, err := s.JWT.ParseToken(token)
	if err != nil {
		return nil, err
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	u.Password = ""
	return u, nil
}
