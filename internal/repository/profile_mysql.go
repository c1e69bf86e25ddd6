package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cambiacartas-api/internal/model"
)

// MySQLProfileRepository reads community profiles from the main site
// MySQL database. The schema is owned by the site, not by this service.
type MySQLProfileRepository struct {
	db *sql.DB
}

// NewMySQLProfileRepository creates a new MySQL profile repository.
func NewMySQLProfileRepository(db *sql.DB) *MySQLProfileRepository {
	return &MySQLProfileRepository{db: db}
}

const profileColumns = `id, username, email, COALESCE(avatar_url, ''), COALESCE(location, ''), COALESCE(rating, 0), COALESCE(transactions_count, 0)`

func scanProfile(row interface{ Scan(...interface{}) error }) (*model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.AvatarURL, &p.Location, &p.Rating, &p.TransactionsCount)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfile retrieves a profile by id.
func (r *MySQLProfileRepository) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ? LIMIT 1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// GetProfileByUsername retrieves a profile by unique username.
func (r *MySQLProfileRepository) GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE username = ? LIMIT 1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, username))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile by username: %w", err)
	}
	return p, nil
}

// GetProfiles retrieves multiple profiles keyed by id. Missing ids are
// simply absent from the result.
func (r *MySQLProfileRepository) GetProfiles(ctx context.Context, ids []string) (map[string]model.Profile, error) {
	if len(ids) == 0 {
		return map[string]model.Profile{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id IN (` + placeholders + `)`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}
	defer rows.Close()

	profiles := make(map[string]model.Profile, len(ids))
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles[p.ID] = *p
	}
	return profiles, rows.Err()
}

// Ensure MySQLProfileRepository implements ProfileRepository
var _ ProfileRepository = (*MySQLProfileRepository)(nil)
