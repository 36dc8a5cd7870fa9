// Package identity is the authoritative account store backing
// authentication. It plays the role of the managed identity provider: it
// issues user ids at signup, holds credentials and carries the restaurant
// association that ends up in JWT claims. The entity-store `users` table is
// only a projection of these records, synced through USER_CREATED events.
package identity

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// Sentinel errors returned by the store.
var (
	ErrNotFound    = errors.New("identity: account not found")
	ErrEmailExists = errors.New("identity: email already exists")
)

// Record is a full identity account row from `auth_users`.
type Record struct {
	ID             string
	Username       string
	Email          string
	Name           string
	PasswordHash   string
	RestaurantID   string
	RestaurantRole string
	CreatedAt      string
}

// Store reads and writes identity accounts in MySQL.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store bound to the given database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Create inserts a new account. A duplicate email surfaces as
// ErrEmailExists.
func (s *Store) Create(ctx context.Context, rec *Record) error {
	const q = `INSERT INTO auth_users (id, username, email, name, password_hash, created_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		rec.ID, rec.Username, rec.Email, rec.Name, rec.PasswordHash, rec.CreatedAt)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return ErrEmailExists
	}
	return err
}

// GetByEmail fetches an account by email. Returns ErrNotFound when absent.
func (s *Store) GetByEmail(ctx context.Context, email string) (*Record, error) {
	return s.getWhere(ctx, `email = ?`, email)
}

// GetByID fetches an account by id. Returns ErrNotFound when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Record, error) {
	return s.getWhere(ctx, `id = ?`, id)
}

func (s *Store) getWhere(ctx context.Context, cond string, arg interface{}) (*Record, error) {
	q := `SELECT id, username, email, name, password_hash,
	             COALESCE(restaurant_id, ''), COALESCE(restaurant_role, ''), created_at
	      FROM auth_users WHERE ` + cond
	var rec Record
	err := s.db.QueryRowContext(ctx, q, arg).Scan(
		&rec.ID, &rec.Username, &rec.Email, &rec.Name, &rec.PasswordHash,
		&rec.RestaurantID, &rec.RestaurantRole, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// AssignRestaurantAssociation sets the user's restaurant association, or
// clears it when restaurantID and role are empty. This is step one of the
// two-phase restaurant creation protocol and also its compensating action.
func (s *Store) AssignRestaurantAssociation(ctx context.Context, userID, restaurantID, role string) error {
	const q = `UPDATE auth_users
	           SET restaurant_id = NULLIF(?, ''), restaurant_role = NULLIF(?, '')
	           WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, restaurantID, role, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// RowsAffected is also zero when the row exists but the values are
		// unchanged, which a clear on an already clear account hits; confirm
		// existence before reporting an error.
		if _, err := s.GetByID(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}
