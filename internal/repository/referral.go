package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/course-referral/internal/model"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ReferralRepository struct {
	db DBTX
}

func NewReferralRepository(db DBTX) *ReferralRepository {
	return &ReferralRepository{db: db}
}

const referralColumns = `id, referrer_name, referrer_email, referee_name, referee_email, course, created_at`

const createReferral = `
INSERT INTO referrals (referrer_name, referrer_email, referee_name, referee_email, course)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + referralColumns

// Create inserts a referral and returns it with the store-assigned id and
// creation time. Identical submissions produce separate rows.
func (r *ReferralRepository) Create(ctx context.Context, payload *model.CreateReferralPayload) (*model.Referral, error) {
	row := r.db.QueryRow(ctx, createReferral,
		payload.ReferrerName,
		payload.ReferrerEmail,
		payload.RefereeName,
		payload.RefereeEmail,
		payload.Course,
	)

	referral, err := scanReferral(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create referral: %w", err)
	}
	return referral, nil
}

const getReferralByID = `SELECT ` + referralColumns + ` FROM referrals WHERE id = $1`

// GetByID returns pgx.ErrNoRows, annotated with the table, when no
// referral has the id.
func (r *ReferralRepository) GetByID(ctx context.Context, id string) (*model.Referral, error) {
	referral, err := scanReferral(r.db.QueryRow(ctx, getReferralByID, id))
	if err != nil {
		return nil, fmt.Errorf("table:referrals: %w", err)
	}
	return referral, nil
}

func scanReferral(row pgx.Row) (*model.Referral, error) {
	var ref model.Referral
	if err := row.Scan(
		&ref.ID,
		&ref.ReferrerName,
		&ref.ReferrerEmail,
		&ref.RefereeName,
		&ref.RefereeEmail,
		&ref.Course,
		&ref.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ref, nil
}
