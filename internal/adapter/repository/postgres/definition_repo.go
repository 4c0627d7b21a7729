package postgres

import (
	"context"
	"fmt"

	"github.com/simaogato/resourceflow-backend/internal/domain"
)

var _ domain.DefinitionRepository = (*DefinitionRepository)(nil)

// DefinitionRepository implements domain.DefinitionRepository on the definition and category tables
type DefinitionRepository struct {
	db *DB
}

// NewDefinitionRepository creates a new definition repository
func NewDefinitionRepository(db *DB) *DefinitionRepository {
	return &DefinitionRepository{db: db}
}

// ListCategories retrieves all resource categories ordered by ID
func (r *DefinitionRepository) ListCategories(ctx context.Context) ([]domain.ResourceCategory, error) {
	query := `
		SELECT id, name
		FROM resource_categories
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.ResourceCategory
	for rows.Next() {
		var category domain.ResourceCategory
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// ListDefinitions retrieves all resource definitions with their categories
func (r *DefinitionRepository) ListDefinitions(ctx context.Context) ([]domain.ResourceDefinition, error) {
	query := `
		SELECT d.id, d.name, d.description, dc.category_id
		FROM resource_definitions d
		LEFT JOIN resource_definition_categories dc ON dc.resource_id = d.id
		ORDER BY d.id ASC, dc.position ASC, dc.category_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query resource definitions: %w", err)
	}
	defer rows.Close()

	var definitions []domain.ResourceDefinition
	for rows.Next() {
		var def domain.ResourceDefinition
		var categoryID *int

		if err := rows.Scan(&def.ID, &def.Name, &def.Description, &categoryID); err != nil {
			return nil, fmt.Errorf("failed to scan resource definition: %w", err)
		}

		// One row per category; fold them into the previous definition
		if n := len(definitions); n > 0 && definitions[n-1].ID == def.ID {
			if categoryID != nil {
				definitions[n-1].Categories.AddUnique(domain.CategoryID(*categoryID))
			}
			continue
		}

		if categoryID != nil {
			def.Categories = domain.CategorySet{domain.CategoryID(*categoryID)}
		}
		definitions = append(definitions, def)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resource definitions: %w", err)
	}

	return definitions, nil
}

// CreateCategory inserts a category
func (r *DefinitionRepository) CreateCategory(ctx context.Context, category domain.ResourceCategory) error {
	if err := category.Validate(); err != nil {
		return fmt.Errorf("invalid category: %w", err)
	}

	query := `INSERT INTO resource_categories (id, name) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, int(category.ID), category.Name); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// CreateDefinition inserts a definition and its category memberships in one transaction
func (r *DefinitionRepository) CreateDefinition(ctx context.Context, def domain.ResourceDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("invalid resource definition: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO resource_definitions (id, name, description) VALUES ($1, $2, $3)`,
		int(def.ID), def.Name, def.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to create resource definition: %w", err)
	}

	for i, categoryID := range def.Categories {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO resource_definition_categories (resource_id, category_id, position) VALUES ($1, $2, $3)`,
			int(def.ID), int(categoryID), i,
		)
		if err != nil {
			return fmt.Errorf("failed to link resource %d to category %d: %w", def.ID, categoryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit resource definition: %w", err)
	}
	return nil
}
