package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("account not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetBySubject(ctx context.Context, subjectID string) (*Account, error) {
	var a Account
	err := r.db.GetContext(ctx, &a, getBySubjectQuery, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

const getBySubjectQuery = `SELECT * FROM accounts WHERE subject_id = $1`

func (r *Repository) Create(ctx context.Context, subjectID string) (*Account, error) {
	var a Account
	err := r.db.GetContext(ctx, &a, createAccountQuery, uuid.New(), subjectID)
	return &a, err
}

const createAccountQuery = `INSERT INTO accounts (id, subject_id, created_at) VALUES ($1, $2, now()) RETURNING *`

// GetOrCreate returns the account for a subject, creating it on first sight.
func (r *Repository) GetOrCreate(ctx context.Context, subjectID string) (*Account, error) {
	a, err := r.GetBySubject(ctx, subjectID)
	if errors.Is(err, ErrNotFound) {
		return r.Create(ctx, subjectID)
	}
	return a, err
}

func (r *Repository) AddStripeID(ctx context.Context, subjectID, stripeID string) error {
	_, err := r.db.ExecContext(ctx, addStripeIDQuery, stripeID, subjectID)
	return err
}

const addStripeIDQuery = `UPDATE accounts SET stripe_id = $1 WHERE subject_id = $2`

func (r *Repository) UpdateProfile(ctx context.Context, subjectID, email, name string) error {
	_, err := r.db.ExecContext(ctx, updateProfileQuery, email, name, subjectID)
	return err
}

const updateProfileQuery = `UPDATE accounts SET email = NULLIF($1, ''), name = NULLIF($2, '') WHERE subject_id = $3`
