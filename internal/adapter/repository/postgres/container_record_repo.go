package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/simaogato/resourceflow-backend/internal/domain"
)

var _ domain.ContainerRecordRepository = (*ContainerRecordRepository)(nil)

// ContainerRecordRepository implements domain.ContainerRecordRepository on the resource_containers table
type ContainerRecordRepository struct {
	db *DB
}

// NewContainerRecordRepository creates a new container record repository
func NewContainerRecordRepository(db *DB) *ContainerRecordRepository {
	return &ContainerRecordRepository{db: db}
}

// List retrieves every container record in world order
func (r *ContainerRecordRepository) List(ctx context.Context) ([]domain.ContainerRecord, error) {
	query := `
		SELECT resource_id, initial_value, min_ref, max_ref
		FROM resource_containers
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query container records: %w", err)
	}
	defer rows.Close()

	var records []domain.ContainerRecord
	for rows.Next() {
		var record domain.ContainerRecord
		var valueStr string
		var minRef, maxRef sql.NullInt64

		if err := rows.Scan(&record.ResourceID, &valueStr, &minRef, &maxRef); err != nil {
			return nil, fmt.Errorf("failed to scan container record: %w", err)
		}

		// Parse initial_value (NUMERIC)
		value, err := decimal.NewFromString(valueStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse initial_value for resource %d: %w", record.ResourceID, err)
		}
		record.InitialValue = value.InexactFloat64()

		// NULL refs mean unbounded
		if minRef.Valid {
			record.MinRef = domain.BoundRef(minRef.Int64)
		}
		if maxRef.Valid {
			record.MaxRef = domain.BoundRef(maxRef.Int64)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating container records: %w", err)
	}

	return records, nil
}

// Create appends a container record to the end of the world
func (r *ContainerRecordRepository) Create(ctx context.Context, record domain.ContainerRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid container record: %w", err)
	}

	query := `
		INSERT INTO resource_containers (resource_id, initial_value, min_ref, max_ref)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		int(record.ResourceID),
		decimal.NewFromFloat(record.InitialValue).String(),
		nullableRef(record.MinRef),
		nullableRef(record.MaxRef),
	)
	if err != nil {
		return fmt.Errorf("failed to create container record: %w", err)
	}

	return nil
}

// DeleteAll removes every container record
func (r *ContainerRecordRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM resource_containers`); err != nil {
		return fmt.Errorf("failed to delete container records: %w", err)
	}
	return nil
}

func nullableRef(ref domain.BoundRef) interface{} {
	if !ref.IsSet() {
		return nil
	}
	return int(ref)
}
