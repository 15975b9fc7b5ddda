package vehicle

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	owner := "auth0|owner"
	id := uuid.New()

	t.Run("removes the vehicle and dependent rows", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM vehicles WHERE id = $1 AND owner_id = $2 FOR UPDATE")).
			WithArgs(id, owner).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM rentals")).
			WithArgs(id, owner).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM maintenance_records")).
			WithArgs(id, owner).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rentals")).
			WithArgs(id, owner).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM vehicles")).
			WithArgs(id, owner).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Delete(ctx, id, owner))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refuses while a rental is active", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WithArgs(id, owner).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM rentals")).
			WithArgs(id, owner).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Delete(ctx, id, owner), ErrCurrentlyRented)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown or foreign vehicle", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WithArgs(id, "auth0|someone-else").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Delete(ctx, id, "auth0|someone-else"), ErrNotFound)
	})
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("moves the vehicle and dependent rows", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE vehicles SET owner_id")).
			WithArgs(id, "auth0|from", "auth0|to").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE rentals SET owner_id")).
			WithArgs(id, "auth0|from", "auth0|to").
			WillReturnResult(sqlmock.NewResult(0, 4))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE maintenance_records SET owner_id")).
			WithArgs(id, "auth0|from", "auth0|to").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		assert.NoError(t, repo.Transfer(ctx, id, "auth0|from", "auth0|to"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("only the current owner can transfer", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE vehicles SET owner_id")).
			WithArgs(id, "auth0|not-owner", "auth0|to").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Transfer(ctx, id, "auth0|not-owner", "auth0|to"), ErrNotFound)
	})
}

func TestUpdateLocation(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("records the position", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE vehicles SET location")).
			WithArgs(id, "auth0|owner", 53.35, -6.26).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateLocation(ctx, id, "auth0|owner", 53.35, -6.26))
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE vehicles SET location")).
			WithArgs(id, "auth0|owner", 53.35, -6.26).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateLocation(ctx, id, "auth0|owner", 53.35, -6.26), ErrNotFound)
	})
}
