package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PublishRecord is one persisted publish outcome.
type PublishRecord struct {
	ID        string          `db:"id" json:"id"`
	Platform  string          `db:"platform" json:"platform"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// Repository handles database operations for publish records.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new repository with the given database connection.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// RecordPublish inserts a record of a successful platform publish.
func (r *Repository) RecordPublish(ctx context.Context, platform string, content json.RawMessage) error {
	query := `
		INSERT INTO publish_records (id, platform, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		uuid.NewString(),
		platform,
		[]byte(content),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert publish record: %w", err)
	}

	return nil
}

// ListRecords returns publish records newest-first, with the total count
// for pagination.
func (r *Repository) ListRecords(ctx context.Context, limit, offset int) ([]PublishRecord, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM publish_records`
	if countErr := r.db.GetContext(ctx, &total, countQuery); countErr != nil {
		return nil, 0, fmt.Errorf("count publish records: %w", countErr)
	}

	query := `
		SELECT id, platform, payload, created_at
		FROM publish_records
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	records := []PublishRecord{}
	if selectErr := r.db.SelectContext(ctx, &records, query, limit, offset); selectErr != nil {
		return nil, 0, fmt.Errorf("list publish records: %w", selectErr)
	}

	return records, total, nil
}
