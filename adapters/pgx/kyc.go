package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/agromart/core"
	"github.com/lborres/agromart/sandbox"
)

const applicationColumns = `id, user_id, document_type, document_number, document_file_path, selfie_file_path,
	business_registration, business_address, status, admin_notes, reviewed_by, reviewed_at, created_at, updated_at`

func scanApplication(row pgx.Row) (core.KYCApplication, error) {
	var app core.KYCApplication
	var reviewedAt *time.Time
	err := row.Scan(&app.ID, &app.UserID, &app.DocumentType, &app.DocumentNumber, &app.DocumentFilePath, &app.SelfieFilePath,
		&app.BusinessRegistration, &app.BusinessAddress, &app.Status, &app.AdminNotes, &app.ReviewedBy, &reviewedAt,
		&app.CreatedAt.Time, &app.UpdatedAt.Time)
	if reviewedAt != nil {
		at := core.NewTimestamp(*reviewedAt)
		app.ReviewedAt = &at
	}
	return app, err
}

func (a *Adapter) CreateApplication(ctx context.Context, app *core.KYCApplication) error {
	return pgx.BeginFunc(ctx, a.pool, func(tx pgx.Tx) error {
		query := `INSERT INTO kyc_applications (user_id, document_type, document_number, document_file_path,
		              selfie_file_path, business_registration, business_address, status)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		          RETURNING id, created_at, updated_at`
		err := tx.QueryRow(ctx, query,
			app.UserID, app.DocumentType, app.DocumentNumber, app.DocumentFilePath, app.SelfieFilePath,
			app.BusinessRegistration, app.BusinessAddress, app.Status,
		).Scan(&app.ID, &app.CreatedAt.Time, &app.UpdatedAt.Time)
		if err != nil {
			if violates(err, "kyc_applications_one_active_idx") {
				return core.ErrApplicationActive
			}
			return err
		}

		_, err = tx.Exec(ctx, `UPDATE users SET kyc_status = $1, updated_at = now() WHERE id = $2`, app.Status, app.UserID)
		return err
	})
}

func (a *Adapter) LatestApplication(ctx context.Context, userID int64) (*core.KYCApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM kyc_applications
	          WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`

	app, err := scanApplication(a.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sandbox.ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (a *Adapter) ListApplications(ctx context.Context) ([]core.KYCApplication, error) {
	rows, err := a.pool.Query(ctx, `SELECT `+applicationColumns+` FROM kyc_applications ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.KYCApplication, error) {
		return scanApplication(row)
	})
}

func (a *Adapter) ReviewApplication(ctx context.Context, id, reviewerID int64, input core.ReviewInput, reviewedAt time.Time) (*core.KYCApplication, error) {
	var app core.KYCApplication

	err := pgx.BeginFunc(ctx, a.pool, func(tx pgx.Tx) error {
		query := `UPDATE kyc_applications SET status = $2, admin_notes = $3, reviewed_by = $4, reviewed_at = $5, updated_at = $5
		          WHERE id = $1 AND status IN ('pending', 'under_review')
		          RETURNING ` + applicationColumns

		var err error
		app, err = scanApplication(tx.QueryRow(ctx, query, id, input.Status, input.AdminNotes, reviewerID, reviewedAt))
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM kyc_applications WHERE id = $1)`, id).Scan(&exists); err != nil {
				return err
			}
			if exists {
				return sandbox.ErrNotReviewable
			}
			return sandbox.ErrApplicationNotFound
		}
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `UPDATE users SET kyc_status = $1, is_verified = $2, updated_at = $3 WHERE id = $4`,
			input.Status, input.Status == core.KYCStatusApproved, reviewedAt, app.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}
