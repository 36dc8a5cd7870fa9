package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-seating/internal/model"
)

// RestaurantRepo provides access to the `restaurants` collection. Listing by
// region relies on the (visibility, region, id) index so public browsing
// never scans private rows.
type RestaurantRepo struct {
	db *sql.DB
}

// NewRestaurantRepo returns a new RestaurantRepo bound to the given database.
func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{db: db} }

// Put inserts a restaurant with a fail-if-exists precondition on the id.
func (r *RestaurantRepo) Put(ctx context.Context, rest *model.Restaurant) error {
	const q = `INSERT INTO restaurants
	           (id, name, description, visibility, region, profile_photo_url_path, created_at, manager_id, approval_status)
	           VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		rest.ID, rest.Name, rest.Description, string(rest.Visibility), string(rest.Region),
		rest.ProfilePhotoURLPath, rest.CreatedAt, rest.ManagerID, string(rest.ApprovalStatus))
	if isDuplicateKey(err) {
		return ErrAlreadyExists
	}
	return err
}

// Get fetches a restaurant by id. Returns ErrNotFound when absent.
func (r *RestaurantRepo) Get(ctx context.Context, id string) (*model.Restaurant, error) {
	const q = `SELECT id, name, description, visibility, region,
	                  COALESCE(profile_photo_url_path, ''), created_at, manager_id, approval_status
	           FROM restaurants WHERE id = ?`
	var rest model.Restaurant
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&rest.ID, &rest.Name, &rest.Description, &rest.Visibility, &rest.Region,
		&rest.ProfilePhotoURLPath, &rest.CreatedAt, &rest.ManagerID, &rest.ApprovalStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rest, nil
}

// UpdateVisibility sets the visibility of an existing restaurant. The
// exists-precondition is enforced through RowsAffected: a vanished row
// surfaces ErrNotFound so the caller can treat the race as a retryable
// conflict.
func (r *RestaurantRepo) UpdateVisibility(ctx context.Context, id string, v model.RestaurantVisibility) error {
	const q = `UPDATE restaurants SET visibility = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, string(v), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either absent or already at the requested visibility; re-read to
		// tell the two apart.
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// UpdateProfilePhotoPath records the media path written by the external
// photo pipeline. Exists-precondition as in UpdateVisibility.
func (r *RestaurantRepo) UpdateProfilePhotoPath(ctx context.Context, id, path string) error {
	const q = `UPDATE restaurants SET profile_photo_url_path = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, path, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ListByVisibilityAndRegion returns one page of restaurants matching the
// (visibility, region) index. The cursor is the last-seen restaurant id;
// passing the returned lastEvaluatedKey back in resumes the scan. A limit of
// zero means no page bound.
func (r *RestaurantRepo) ListByVisibilityAndRegion(
	ctx context.Context,
	visibility model.RestaurantVisibility,
	region model.Region,
	limit int,
	cursor string,
) (items []model.Restaurant, lastEvaluatedKey string, err error) {
	q := `SELECT id, name, description, visibility, region,
	             COALESCE(profile_photo_url_path, ''), created_at, manager_id, approval_status
	      FROM restaurants
	      WHERE visibility = ? AND region = ? AND id > ?
	      ORDER BY id`
	args := []interface{}{string(visibility), string(region), cursor}
	if limit > 0 {
		// Fetch one extra row to know whether another page exists.
		q += ` LIMIT ?`
		args = append(args, limit+1)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	items = []model.Restaurant{}
	for rows.Next() {
		var rest model.Restaurant
		if err := rows.Scan(
			&rest.ID, &rest.Name, &rest.Description, &rest.Visibility, &rest.Region,
			&rest.ProfilePhotoURLPath, &rest.CreatedAt, &rest.ManagerID, &rest.ApprovalStatus); err != nil {
			return nil, "", err
		}
		items = append(items, rest)
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

// Delete removes a restaurant row. Only used by test teardown tooling.
func (r *RestaurantRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM restaurants WHERE id = ?`, id)
	return err
}
