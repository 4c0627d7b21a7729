package seeder

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/simaogato/resourceflow-backend/internal/domain"
)

// ContainerInserter is the write side of the container store used at world setup
type ContainerInserter interface {
	Insert(container domain.ResourceContainer) (domain.ContainerHandle, error)
}

// WorldSeeder loads bootstrap container records into a fresh store
type WorldSeeder struct {
	repo   domain.ContainerRecordRepository
	logger *zap.Logger
}

// NewWorldSeeder creates a new WorldSeeder instance
func NewWorldSeeder(repo domain.ContainerRecordRepository, logger *zap.Logger) *WorldSeeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorldSeeder{
		repo:   repo,
		logger: logger,
	}
}

// Seed inserts every record in repository order and returns the new handles
// in the same order. All records are validated before the first insert so a
// bad record never leaves a half-seeded world behind.
//
// Dangling and cyclic bound references are reported but not rejected:
// a dangling reference resolves to zero, and cycles are legal because bound
// resolution never follows more than one hop.
func (s *WorldSeeder) Seed(ctx context.Context, target ContainerInserter) ([]domain.ContainerHandle, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list container records: %w", err)
	}

	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid container record %d (resource %d): %w", i, records[i].ResourceID, err)
		}
	}

	s.reportDanglingRefs(records)
	for _, cycle := range FindBoundCycles(records) {
		s.logger.Warn("cyclic bound references", zap.Ints("resource_ids", toInts(cycle)))
	}

	handles := make([]domain.ContainerHandle, 0, len(records))
	for _, record := range records {
		handle, err := target.Insert(record.Container())
		if err != nil {
			return nil, fmt.Errorf("failed to insert container for resource %d: %w", record.ResourceID, err)
		}
		handles = append(handles, handle)
	}

	s.logger.Info("world seeded", zap.Int("containers", len(handles)))

	return handles, nil
}

func (s *WorldSeeder) reportDanglingRefs(records []domain.ContainerRecord) {
	present := make(map[domain.ResourceID]bool, len(records))
	for _, r := range records {
		present[r.ResourceID] = true
	}

	for _, r := range records {
		for _, ref := range []domain.BoundRef{r.MinRef, r.MaxRef} {
			if ref.IsSet() && !present[ref.ResourceID()] {
				s.logger.Warn("bound reference has no container, resolves to zero",
					zap.Int("resource_id", int(r.ResourceID)),
					zap.Int("bound_resource_id", int(ref.ResourceID())),
				)
			}
		}
	}
}

// FindBoundCycles returns every elementary cycle in the bound reference graph,
// where an edge runs from a container's resource to each resource its bounds
// read. Each cycle is listed once, starting from its smallest resource ID, and
// cycles are ordered by that starting ID.
//
// A cycle is searched for from each resource in ascending order, walking only
// through larger IDs, so every cycle is found exactly once from its smallest
// member. The number of cycles can grow exponentially with dense graphs; world
// files are small enough for that not to matter.
func FindBoundCycles(records []domain.ContainerRecord) [][]domain.ResourceID {
	edges := make(map[domain.ResourceID][]domain.ResourceID)
	for _, r := range records {
		for _, ref := range []domain.BoundRef{r.MinRef, r.MaxRef} {
			if ref.IsSet() {
				edges[r.ResourceID] = appendUnique(edges[r.ResourceID], ref.ResourceID())
			}
		}
	}

	nodes := make([]domain.ResourceID, 0, len(edges))
	for id := range edges {
		nodes = append(nodes, id)
		sort.Slice(edges[id], func(i, j int) bool { return edges[id][i] < edges[id][j] })
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	var cycles [][]domain.ResourceID
	for _, start := range nodes {
		onPath := map[domain.ResourceID]bool{start: true}
		path := []domain.ResourceID{start}

		var walk func(id domain.ResourceID)
		walk = func(id domain.ResourceID) {
			for _, next := range edges[id] {
				switch {
				case next == start:
					cycles = append(cycles, append([]domain.ResourceID(nil), path...))
				case next > start && !onPath[next]:
					onPath[next] = true
					path = append(path, next)
					walk(next)
					path = path[:len(path)-1]
					onPath[next] = false
				}
			}
		}
		walk(start)
	}

	return cycles
}

func appendUnique(ids []domain.ResourceID, id domain.ResourceID) []domain.ResourceID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func toInts(ids []domain.ResourceID) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
