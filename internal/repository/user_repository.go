package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/restaurant-seating/internal/model"
)

// UserRepo provides access to the `users` collection of the entity store.
// Rows are written by the USER_CREATED event consumer and read by the
// notification consumers; the identity store holds the credential record.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Put inserts a user with a fail-if-exists precondition on the id. A
// duplicate key is reported as ErrAlreadyExists so that event redelivery can
// treat the write as an idempotent no-op.
func (r *UserRepo) Put(ctx context.Context, u *model.User) error {
	const q = `INSERT INTO users (id, username, email, name, created_at, restaurant_id, restaurant_role)
	           VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''))`
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.Username, u.Email, u.Name, u.CreatedAt, u.RestaurantID, u.RestaurantRole)
	if isDuplicateKey(err) {
		return ErrAlreadyExists
	}
	return err
}

// Get fetches a user by id. Returns ErrNotFound when absent.
func (r *UserRepo) Get(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT id, username, email, name, created_at,
	                  COALESCE(restaurant_id, ''), COALESCE(restaurant_role, '')
	           FROM users WHERE id = ?`
	var u model.User
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.Username, &u.Email, &u.Name, &u.CreatedAt,
		&u.RestaurantID, &u.RestaurantRole)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetRestaurantAssociation mirrors an identity-store association change onto
// the entity-store projection. Empty values clear the association.
func (r *UserRepo) SetRestaurantAssociation(ctx context.Context, userID, restaurantID, role string) error {
	const q = `UPDATE users SET restaurant_id = NULLIF(?, ''), restaurant_role = NULLIF(?, '') WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, restaurantID, role, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user row. Only used by test teardown tooling.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// isDuplicateKey reports whether err is a MySQL duplicate-key violation
// (error 1062), which is how a violated attribute_not_exists-style
// precondition surfaces on INSERT.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
