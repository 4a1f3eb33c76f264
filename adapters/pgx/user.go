package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/agromart/core"
	"github.com/lborres/agromart/sandbox"
)

const userColumns = `id, email, username, full_name, phone, role, is_active, is_verified, kyc_status,
	business_name, business_address, business_registration, created_at, updated_at`

func scanUser(row pgx.Row) (*core.User, error) {
	u := &core.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.Phone, &u.Role, &u.IsActive, &u.IsVerified, &u.KYCStatus,
		&u.BusinessName, &u.BusinessAddress, &u.BusinessRegistration, &u.CreatedAt.Time, &u.UpdatedAt.Time)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sandbox.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (a *Adapter) CreateUser(ctx context.Context, user *core.User) error {
	query := `INSERT INTO users (email, username, full_name, phone, role, is_active, is_verified, kyc_status,
	              business_name, business_address, business_registration)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id, created_at`

	var id int64
	var createdAt time.Time
	err := a.pool.QueryRow(ctx, query,
		user.Email, user.Username, user.FullName, user.Phone, user.Role, user.IsActive, user.IsVerified, user.KYCStatus,
		user.BusinessName, user.BusinessAddress, user.BusinessRegistration,
	).Scan(&id, &createdAt)
	if err != nil {
		switch {
		case violates(err, "users_email_key"):
			return sandbox.ErrUserExists
		case violates(err, "users_username_key"):
			return sandbox.ErrUsernameTaken
		}
		return err
	}

	user.ID = id
	user.CreatedAt = core.NewTimestamp(createdAt)
	user.UpdatedAt = user.CreatedAt
	return nil
}

func (a *Adapter) GetUserByID(ctx context.Context, id int64) (*core.User, error) {
	return scanUser(a.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return scanUser(a.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (a *Adapter) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	return scanUser(a.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (a *Adapter) UpdateUser(ctx context.Context, user *core.User) error {
	q := `UPDATE users SET email = $1, username = $2, full_name = $3, phone = $4, role = $5, is_active = $6,
	          is_verified = $7, kyc_status = $8, business_name = $9, business_address = $10,
	          business_registration = $11, updated_at = now()
	      WHERE id = $12
	      RETURNING updated_at`
	var updatedAt time.Time
	err := a.pool.QueryRow(ctx, q,
		user.Email, user.Username, user.FullName, user.Phone, user.Role, user.IsActive, user.IsVerified,
		user.KYCStatus, user.BusinessName, user.BusinessAddress, user.BusinessRegistration, user.ID,
	).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sandbox.ErrUserNotFound
		}
		return err
	}
	user.UpdatedAt = core.NewTimestamp(updatedAt)
	return nil
}

func (a *Adapter) CreateAccount(ctx context.Context, acc *sandbox.Account) error {
	query := `INSERT INTO accounts (user_id, password_hash) VALUES ($1, $2) RETURNING created_at, updated_at`
	return a.pool.QueryRow(ctx, query, acc.UserID, acc.PasswordHash).Scan(&acc.CreatedAt, &acc.UpdatedAt)
}

func (a *Adapter) GetAccountByUserID(ctx context.Context, userID int64) (*sandbox.Account, error) {
	query := `SELECT user_id, password_hash, created_at, updated_at FROM accounts WHERE user_id = $1`

	acc := &sandbox.Account{}
	err := a.pool.QueryRow(ctx, query, userID).Scan(&acc.UserID, &acc.PasswordHash, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sandbox.ErrAccountNotFound
		}
		return nil, err
	}
	return acc, nil
}
