package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/iliyamo/restaurant-seating/internal/model"
)

// Change-record event names, matching what the stream processor expects.
const (
	ChangeInsert = "INSERT"
	ChangeModify = "MODIFY"
)

// SeatingChange is a storage-layer change notification emitted after a
// seating write commits. OldImage is nil for inserts. The stream processor
// translates these into domain events; everything downstream of the commit is
// asynchronous.
type SeatingChange struct {
	EventName string         `json:"eventName"`
	OldImage  *model.Seating `json:"oldImage,omitempty"`
	NewImage  *model.Seating `json:"newImage,omitempty"`
}

// SeatingChangeStream receives change records for asynchronous fan-out. The
// broker-backed implementation lives in the events package; tests inject a
// recording fake.
type SeatingChangeStream interface {
	Emit(ctx context.Context, rec SeatingChange) error
}

// SeatingRepo provides access to the `seatings` collection. The store key is
// the composite (id, restaurant_id) pair. Writes emit change records onto
// the configured stream after they commit; emission failures are logged, not
// surfaced, since the write itself already succeeded.
type SeatingRepo struct {
	db     *sql.DB
	stream SeatingChangeStream
}

// NewSeatingRepo returns a new SeatingRepo bound to the given database.
// stream may be nil, which disables change emission (useful in tests that
// only exercise reads).
func NewSeatingRepo(db *sql.DB, stream SeatingChangeStream) *SeatingRepo {
	return &SeatingRepo{db: db, stream: stream}
}

// Put inserts a seating with a fail-if-exists precondition on the composite
// key. On success an INSERT change record is emitted.
func (r *SeatingRepo) Put(ctx context.Context, s *model.Seating) error {
	const q = `INSERT INTO seatings
	           (id, restaurant_id, user_id, status, seating_time, num_seats, notes, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		s.ID, s.RestaurantID, s.UserID, string(s.Status), s.SeatingTime, s.NumSeats, s.Notes, s.CreatedAt)
	if isDuplicateKey(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	r.emit(ctx, SeatingChange{EventName: ChangeInsert, NewImage: s})
	return nil
}

// Get fetches a seating by its composite key. Returns ErrNotFound when
// absent.
func (r *SeatingRepo) Get(ctx context.Context, seatingID, restaurantID string) (*model.Seating, error) {
	const q = `SELECT id, restaurant_id, user_id, status, seating_time, num_seats, notes, created_at
	           FROM seatings WHERE id = ? AND restaurant_id = ?`
	var s model.Seating
	err := r.db.QueryRowContext(ctx, q, seatingID, restaurantID).Scan(
		&s.ID, &s.RestaurantID, &s.UserID, &s.Status, &s.SeatingTime, &s.NumSeats, &s.Notes, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateStatusFrom atomically moves a seating's status to `to`, provided the
// stored status still matches the image the caller read. The expected-prior-
// status condition turns a concurrent conflicting transition into
// ErrStaleStatus instead of a silent lost update. On success a MODIFY change
// record carrying the old and new images is emitted.
func (r *SeatingRepo) UpdateStatusFrom(ctx context.Context, read *model.Seating, to model.SeatingStatus) error {
	const q = `UPDATE seatings SET status = ? WHERE id = ? AND restaurant_id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, string(to), read.ID, read.RestaurantID, string(read.Status))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "gone" from "moved on" with a fresh read.
		if _, err := r.Get(ctx, read.ID, read.RestaurantID); err != nil {
			return err
		}
		return ErrStaleStatus
	}

	updated := *read
	updated.Status = to
	r.emit(ctx, SeatingChange{EventName: ChangeModify, OldImage: read, NewImage: &updated})
	return nil
}

// ListByRestaurant returns one page of seatings for a restaurant, ordered by
// id. Cursor semantics match RestaurantRepo.ListByVisibilityAndRegion.
func (r *SeatingRepo) ListByRestaurant(
	ctx context.Context,
	restaurantID string,
	limit int,
	cursor string,
) (items []model.Seating, lastEvaluatedKey string, err error) {
	q := `SELECT id, restaurant_id, user_id, status, seating_time, num_seats, notes, created_at
	      FROM seatings
	      WHERE restaurant_id = ? AND id > ?
	      ORDER BY id`
	args := []interface{}{restaurantID, cursor}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit+1)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	items = []model.Seating{}
	for rows.Next() {
		var s model.Seating
		if err := rows.Scan(
			&s.ID, &s.RestaurantID, &s.UserID, &s.Status, &s.SeatingTime,
			&s.NumSeats, &s.Notes, &s.CreatedAt); err != nil {
			return nil, "", err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
		lastEvaluatedKey = items[limit-1].ID
	}
	return items, lastEvaluatedKey, nil
}

// Delete removes a seating row. Only used by test teardown tooling; normal
// operation cancels instead of deleting.
func (r *SeatingRepo) Delete(ctx context.Context, seatingID, restaurantID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM seatings WHERE id = ? AND restaurant_id = ?`, seatingID, restaurantID)
	return err
}

func (r *SeatingRepo) emit(ctx context.Context, rec SeatingChange) {
	if r.stream == nil {
		return
	}
	if err := r.stream.Emit(ctx, rec); err != nil {
		log.Printf("seating-repo: emit change record failed: %v", err)
	}
}
