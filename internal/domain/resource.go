package domain

import (
	"errors"
)

// CategoryID identifies a resource category
type CategoryID int

// ResourceCategory groups resource definitions
type ResourceCategory struct {
	ID   CategoryID
	Name string
}

// Validate ensures the category adheres to domain rules
func (c *ResourceCategory) Validate() error {
	if c.ID <= 0 {
		return errors.New("category ID must be positive")
	}
	if c.Name == "" {
		return errors.New("category name cannot be empty")
	}
	return nil
}

// ResourceDefinition describes a resource type. Definitions are authored
// outside the engine and arrive already validated; Validate guards the
// bootstrap boundary.
type ResourceDefinition struct {
	ID          ResourceID
	Name        string
	Description string
	Categories  CategorySet
}

// Validate ensures the definition adheres to domain rules
func (d *ResourceDefinition) Validate() error {
	if d.ID <= 0 {
		return errors.New("resource ID must be positive")
	}
	if d.Name == "" {
		return errors.New("resource name cannot be empty")
	}
	for _, id := range d.Categories {
		if id <= 0 {
			return errors.New("resource category references must be positive")
		}
	}
	return nil
}

// CategorySet is the list of categories a resource belongs to
type CategorySet []CategoryID

// BelongsTo reports whether the set contains the category
func (s CategorySet) BelongsTo(id CategoryID) bool {
	for _, c := range s {
		if c == id {
			return true
		}
	}
	return false
}

// AddUnique appends the category unless it is already present
func (s *CategorySet) AddUnique(id CategoryID) {
	if !s.BelongsTo(id) {
		*s = append(*s, id)
	}
}

// Remove deletes the category, reporting whether it was present
func (s *CategorySet) Remove(id CategoryID) bool {
	for i, c := range *s {
		if c == id {
			*s = append((*s)[:i], (*s)[i+1:]...)
			return true
		}
	}
	return false
}
