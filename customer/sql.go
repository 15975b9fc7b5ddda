package customer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("customer not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, c *Customer) error {
	return r.db.GetContext(ctx, c, createCustomerQuery,
		c.ID, c.OwnerID, c.Name, c.Email, c.Phone, c.Address, c.Notes)
}

const createCustomerQuery = `
INSERT INTO customers (id, owner_id, name, email, phone, address, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
RETURNING *
`

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, ownerID string) (Customer, error) {
	var c Customer
	err := r.db.GetContext(ctx, &c, getCustomerQuery, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	return c, err
}

const getCustomerQuery = `SELECT * FROM customers WHERE id = $1 AND owner_id = $2`

func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]CustomerWithStats, error) {
	var customers []CustomerWithStats
	err := r.db.SelectContext(ctx, &customers, listCustomersQuery, ownerID)
	return customers, err
}

const listCustomersQuery = `
SELECT c.*, COUNT(r.id) AS rental_count
FROM customers c
LEFT JOIN rentals r ON r.customer_name = c.name AND r.owner_id = c.owner_id
WHERE c.owner_id = $1
GROUP BY c.id
ORDER BY c.name
`

func (r *Repository) Update(ctx context.Context, c *Customer) error {
	err := r.db.GetContext(ctx, c, updateCustomerQuery,
		c.ID, c.OwnerID, c.Name, c.Email, c.Phone, c.Address, c.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const updateCustomerQuery = `
UPDATE customers
SET name = $3, email = $4, phone = $5, address = $6, notes = $7, updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING *
`

func (r *Repository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	res, err := r.db.ExecContext(ctx, deleteCustomerQuery, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const deleteCustomerQuery = `DELETE FROM customers WHERE id = $1 AND owner_id = $2`
