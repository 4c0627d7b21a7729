// Package yamlfile loads worlds and scripted orders from YAML files.
package yamlfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/simaogato/resourceflow-backend/internal/domain"
)

// World is the YAML description of a world: the resource catalog plus the
// containers to seed, in world order.
type World struct {
	Categories []CategoryEntry  `yaml:"categories,omitempty"`
	Resources  []ResourceEntry  `yaml:"resources,omitempty"`
	Containers []ContainerEntry `yaml:"containers"`
}

// CategoryEntry describes one resource category
type CategoryEntry struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

// ResourceEntry describes one resource type
type ResourceEntry struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Categories  []int  `yaml:"categories,omitempty"`
}

// ContainerEntry describes one container. Key names the container in order
// scripts and defaults to "container-<position>", counting from 1. Min and Max
// name the resource whose container value bounds this one; omitted means
// unbounded.
type ContainerEntry struct {
	Key      string  `yaml:"key,omitempty"`
	Resource int     `yaml:"resource"`
	Value    float64 `yaml:"value"`
	Min      int     `yaml:"min,omitempty"`
	Max      int     `yaml:"max,omitempty"`
}

var (
	_ domain.ContainerRecordRepository = (*World)(nil)
	_ domain.DefinitionRepository      = (*World)(nil)
)

// LoadWorld reads and parses a world file
func LoadWorld(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world file: %w", err)
	}

	world, err := DecodeWorld(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return world, nil
}

// DecodeWorld parses a world document, rejecting unknown fields
func DecodeWorld(r io.Reader) (*World, error) {
	var world World
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&world); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("world file is empty")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	seen := make(map[string]int, len(world.Containers))
	for i := range world.Containers {
		c := &world.Containers[i]
		if c.Min < 0 || c.Max < 0 {
			return nil, fmt.Errorf("container %d: bound references cannot be negative", i)
		}
		if c.Key == "" {
			c.Key = fmt.Sprintf("container-%d", i+1)
		}
		if first, ok := seen[c.Key]; ok {
			return nil, fmt.Errorf("container %d: key %q already used by container %d", i, c.Key, first)
		}
		seen[c.Key] = i
	}

	return &world, nil
}

// Keys returns the container keys in file order, which is also the order the
// containers are seeded in
func (w *World) Keys() []string {
	keys := make([]string, 0, len(w.Containers))
	for _, c := range w.Containers {
		keys = append(keys, c.Key)
	}
	return keys
}

// List returns the container records in file order
func (w *World) List(ctx context.Context) ([]domain.ContainerRecord, error) {
	records := make([]domain.ContainerRecord, 0, len(w.Containers))
	for _, c := range w.Containers {
		records = append(records, domain.ContainerRecord{
			ResourceID:   domain.ResourceID(c.Resource),
			InitialValue: c.Value,
			MinRef:       domain.BoundRef(c.Min),
			MaxRef:       domain.BoundRef(c.Max),
		})
	}
	return records, nil
}

// ListCategories returns the categories in file order
func (w *World) ListCategories(ctx context.Context) ([]domain.ResourceCategory, error) {
	categories := make([]domain.ResourceCategory, 0, len(w.Categories))
	for _, c := range w.Categories {
		categories = append(categories, domain.ResourceCategory{
			ID:   domain.CategoryID(c.ID),
			Name: c.Name,
		})
	}
	return categories, nil
}

// ListDefinitions returns the resource definitions in file order
func (w *World) ListDefinitions(ctx context.Context) ([]domain.ResourceDefinition, error) {
	definitions := make([]domain.ResourceDefinition, 0, len(w.Resources))
	for _, r := range w.Resources {
		def := domain.ResourceDefinition{
			ID:          domain.ResourceID(r.ID),
			Name:        r.Name,
			Description: r.Description,
		}
		for _, id := range r.Categories {
			def.Categories.AddUnique(domain.CategoryID(id))
		}
		definitions = append(definitions, def)
	}
	return definitions, nil
}
