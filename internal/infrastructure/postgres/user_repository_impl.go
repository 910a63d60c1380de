package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, phone, password_hash, role, is_verified,
	otp_code, otp_expires_at, password_reset_token, password_reset_expires,
	last_login, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var (
		role       string
		otpCode    *string
		otpExpires *time.Time
		resetToken *string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Password, &role, &u.IsVerified,
		&otpCode, &otpExpires, &resetToken, &u.PasswordResetExpires,
		&u.LastLogin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.Role = entity.Role(role)
	if otpCode != nil && *otpCode != "" && otpExpires != nil {
		u.OTP = &entity.OTP{Code: *otpCode, ExpiresAt: *otpExpires}
	}
	if resetToken != nil {
		u.PasswordResetToken = *resetToken
	}
	return u, nil
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicate
	}
	return err
}

func otpColumns(u *entity.User) (*string, *time.Time) {
	if u.OTP == nil {
		return nil, nil
	}
	return &u.OTP.Code, &u.OTP.ExpiresAt
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	otpCode, otpExpires := otpColumns(u)
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, phone, password_hash, role, is_verified, otp_code, otp_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.Phone, u.Password, string(u.Role), u.IsVerified, otpCode, otpExpires)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) FindByEmailOrPhone(ctx context.Context, email, phone string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1 OR phone = $2
		ORDER BY (email = $1) DESC
		LIMIT 1
	`, email, phone))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	otpCode, otpExpires := otpColumns(u)

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, phone = $3, password_hash = $4, role = $5, is_verified = $6,
		    otp_code = $7, otp_expires_at = $8, password_reset_token = $9, password_reset_expires = $10,
		    last_login = $11, updated_at = $12
		WHERE id = $13
	`, u.Name, u.Email, u.Phone, u.Password, string(u.Role), u.IsVerified,
		otpCode, otpExpires, nullableText(u.PasswordResetToken), u.PasswordResetExpires,
		u.LastLogin, u.UpdatedAt, u.ID)
	if err != nil {
		return mapWriteErr(err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// execGuarded runs a single-row UPDATE. Zero affected rows means the row is
// gone or its guard failed.
func (r *UserRepository) execGuarded(ctx context.Context, miss error, sql string, args ...any) error {
	res, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteErr(err)
	}
	if res.RowsAffected() == 0 {
		return miss
	}
	return nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.execGuarded(ctx, repository.ErrNotFound,
		`UPDATE users SET last_login = $2, updated_at = now() WHERE id = $1`, id, at)
}

func (r *UserRepository) MarkVerified(ctx context.Context, id, code string) error {
	return r.execGuarded(ctx, repository.ErrConflict, `
		UPDATE users
		SET is_verified = TRUE, otp_code = NULL, otp_expires_at = NULL, updated_at = now()
		WHERE id = $1 AND is_verified = FALSE AND otp_code = $2
	`, id, code)
}

func (r *UserRepository) SetOTP(ctx context.Context, id string, otp entity.OTP) error {
	return r.execGuarded(ctx, repository.ErrConflict, `
		UPDATE users
		SET otp_code = $2, otp_expires_at = $3, updated_at = now()
		WHERE id = $1 AND is_verified = FALSE
	`, id, otp.Code, otp.ExpiresAt)
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, token string, expires, now time.Time) error {
	return r.execGuarded(ctx, repository.ErrConflict, `
		UPDATE users
		SET password_reset_token = $2, password_reset_expires = $3, updated_at = now()
		WHERE id = $1
		  AND (password_reset_token IS NULL OR password_reset_expires IS NULL OR password_reset_expires <= $4)
	`, id, token, expires, now)
}

func (r *UserRepository) SetPassword(ctx context.Context, id, currentHash, newHash string) error {
	return r.execGuarded(ctx, repository.ErrConflict, `
		UPDATE users
		SET password_hash = $3, updated_at = now()
		WHERE id = $1 AND password_hash = $2
	`, id, currentHash, newHash)
}

func (r *UserRepository) ResetPassword(ctx context.Context, email, token, passwordHash string, now time.Time) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		UPDATE users
		SET password_hash = $1, password_reset_token = NULL, password_reset_expires = NULL, updated_at = $4
		WHERE email = $2 AND password_reset_token = $3 AND password_reset_expires > $4
		RETURNING `+userColumns,
		passwordHash, email, token, now))
}

var _ repository.UserRepository = (*UserRepository)(nil)
