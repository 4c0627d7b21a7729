package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/simaogato/resourceflow-backend/internal/domain"
)

// Catalog answers name and category membership questions about resources.
// It is read-only once built.
type Catalog struct {
	definitions map[domain.ResourceID]domain.ResourceDefinition
	categories  map[domain.CategoryID]domain.ResourceCategory
}

// New builds a catalog from already loaded definitions and categories
func New(definitions []domain.ResourceDefinition, categories []domain.ResourceCategory) (*Catalog, error) {
	c := &Catalog{
		definitions: make(map[domain.ResourceID]domain.ResourceDefinition, len(definitions)),
		categories:  make(map[domain.CategoryID]domain.ResourceCategory, len(categories)),
	}

	for _, category := range categories {
		if err := category.Validate(); err != nil {
			return nil, fmt.Errorf("invalid category %d: %w", category.ID, err)
		}
		if _, dup := c.categories[category.ID]; dup {
			return nil, fmt.Errorf("duplicate category ID %d", category.ID)
		}
		c.categories[category.ID] = category
	}

	for _, def := range definitions {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("invalid resource definition %d: %w", def.ID, err)
		}
		if _, dup := c.definitions[def.ID]; dup {
			return nil, fmt.Errorf("duplicate resource ID %d", def.ID)
		}
		for _, categoryID := range def.Categories {
			if _, ok := c.categories[categoryID]; !ok {
				return nil, fmt.Errorf("resource %d references unknown category %d", def.ID, categoryID)
			}
		}
		c.definitions[def.ID] = def
	}

	return c, nil
}

// Load builds a catalog from a definition repository
func Load(ctx context.Context, repo domain.DefinitionRepository) (*Catalog, error) {
	categories, err := repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	definitions, err := repo.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list resource definitions: %w", err)
	}
	return New(definitions, categories)
}

// Definition looks up a resource definition
func (c *Catalog) Definition(id domain.ResourceID) (domain.ResourceDefinition, bool) {
	def, ok := c.definitions[id]
	return def, ok
}

// Category looks up a category
func (c *Catalog) Category(id domain.CategoryID) (domain.ResourceCategory, bool) {
	category, ok := c.categories[id]
	return category, ok
}

// Name returns the display name of a resource
func (c *Catalog) Name(id domain.ResourceID) string {
	if def, ok := c.definitions[id]; ok {
		return def.Name
	}
	return fmt.Sprintf("resource-%d", id)
}

// BelongsToCategory reports whether the resource is a member of the category
func (c *Catalog) BelongsToCategory(resourceID domain.ResourceID, categoryID domain.CategoryID) bool {
	def, ok := c.definitions[resourceID]
	if !ok {
		return false
	}
	return def.Categories.BelongsTo(categoryID)
}

// ResourcesInCategory lists the members of a category ordered by resource ID
func (c *Catalog) ResourcesInCategory(categoryID domain.CategoryID) []domain.ResourceDefinition {
	members := make([]domain.ResourceDefinition, 0)
	for _, def := range c.definitions {
		if def.Categories.BelongsTo(categoryID) {
			members = append(members, def)
		}
	}

	sort.Slice(members, func(i, j int) bool {
		return members[i].ID < members[j].ID
	})

	return members
}
