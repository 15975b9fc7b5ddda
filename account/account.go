// Package account maps identity-provider subjects to local accounts. Every
// domain row is partitioned by the subject string; the account row itself
// exists for profile data and billing linkage.
package account

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID        uuid.UUID      `db:"id"`
	SubjectID string         `db:"subject_id"`
	StripeID  sql.NullString `db:"stripe_id"`
	Email     sql.NullString `db:"email"`
	Name      sql.NullString `db:"name"`
	CreatedAt time.Time      `db:"created_at"`
}
