package economy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/simaogato/resourceflow-backend/internal/domain"
	"github.com/simaogato/resourceflow-backend/internal/usecase/catalog"
	"github.com/simaogato/resourceflow-backend/internal/usecase/order"
	"github.com/simaogato/resourceflow-backend/internal/usecase/seeder"
	"github.com/simaogato/resourceflow-backend/internal/usecase/store"
)

var (
	// ErrContainerNotFound is returned when no container holds the requested resource
	ErrContainerNotFound = errors.New("container not found")

	// ErrOrderNotFound is returned for orders that were never created or were swept
	// before the most recent tick
	ErrOrderNotFound = errors.New("order not found")
)

// Recorder receives engine events for metrics
type Recorder interface {
	RecordOrderCreated()
	RecordTick(report order.TickReport, pending int, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordOrderCreated()                             {}
func (nopRecorder) RecordTick(order.TickReport, int, time.Duration) {}

// ContainerView is a read-only snapshot of a container and its resolved bounds
type ContainerView struct {
	Handle       domain.ContainerHandle
	ResourceID   domain.ResourceID
	Name         string
	CurrentValue float64
	MinRef       domain.BoundRef
	MaxRef       domain.BoundRef
	Min          float64
	Max          float64
	WithinBounds bool
}

// EconomyService is the entry point for game logic and tooling. It owns one
// world and serializes every call, so the engine underneath stays
// single-threaded.
type EconomyService struct {
	mu sync.Mutex

	store   *store.Store
	orders  *order.Manager
	catalog *catalog.Catalog

	logger   *zap.Logger
	recorder Recorder

	lastTick map[domain.OrderID]domain.TransferOrder
}

// Option configures an EconomyService
type Option func(*EconomyService)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *EconomyService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(recorder Recorder) Option {
	return func(s *EconomyService) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

// WithCatalog attaches resource definitions for names and category filters
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *EconomyService) {
		if c != nil {
			s.catalog = c
		}
	}
}

// NewEconomyService creates a new EconomyService over an existing store
func NewEconomyService(s *store.Store, opts ...Option) *EconomyService {
	svc := &EconomyService{
		store:    s,
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
		lastTick: make(map[domain.OrderID]domain.TransferOrder),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.catalog == nil {
		svc.catalog, _ = catalog.New(nil, nil)
	}
	svc.orders = order.NewManager(s, svc.logger.Named("orders"))

	return svc
}

// Bootstrap builds a fresh world: it seeds the containers from records and
// loads the catalog from definitions.
func Bootstrap(
	ctx context.Context,
	records domain.ContainerRecordRepository,
	definitions domain.DefinitionRepository,
	opts ...Option,
) (*EconomyService, error) {
	configured := &EconomyService{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(configured)
	}

	c, err := catalog.Load(ctx, definitions)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	s := store.New()
	if _, err := seeder.NewWorldSeeder(records, configured.logger.Named("seeder")).Seed(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to seed world: %w", err)
	}

	withCatalog := make([]Option, 0, len(opts)+1)
	withCatalog = append(withCatalog, opts...)
	withCatalog = append(withCatalog, WithCatalog(c))
	return NewEconomyService(s, withCatalog...), nil
}

// CreateTransfer queues a transfer for the next tick and returns its ID.
// It never fails: invalid requests are rejected when the order is processed.
func (s *EconomyService) CreateTransfer(source, destination domain.ContainerHandle, resourceID domain.ResourceID, amount float64) domain.OrderID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.orders.Create(source, destination, resourceID, amount)
	s.recorder.RecordOrderCreated()

	s.logger.Debug("transfer order created",
		zap.String("order_id", id.String()),
		zap.String("source", source.String()),
		zap.String("destination", destination.String()),
		zap.String("resource", s.catalog.Name(resourceID)),
		zap.Float64("amount", amount),
	)

	return id
}

// RunTick processes every pending order and sweeps the terminal ones.
// Outcomes stay queryable through OrderStatus until the next tick completes.
func (s *EconomyService) RunTick() order.TickReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	report := s.orders.RunTick()
	elapsed := time.Since(started)

	s.lastTick = make(map[domain.OrderID]domain.TransferOrder, len(report.Resolved))
	for _, o := range report.Resolved {
		s.lastTick[o.ID] = o
	}

	s.recorder.RecordTick(report, s.orders.Pending(), elapsed)

	if len(report.Resolved) > 0 {
		s.logger.Info("tick processed",
			zap.Uint64("tick", report.Tick),
			zap.Int("accepted", report.Accepted),
			zap.Int("rejected", report.Rejected),
			zap.Int("swept", report.Swept),
			zap.Duration("elapsed", elapsed),
		)
	}

	return report
}

// Run ticks on a fixed interval until ctx is cancelled
func (s *EconomyService) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("tick loop started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("tick loop stopped", zap.Uint64("ticks", s.Ticks()))
			return nil
		case <-ticker.C:
			s.RunTick()
		}
	}
}

// Ticks returns how many ticks have completed
func (s *EconomyService) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders.Ticks()
}

// OrderStatus returns an order that is pending or was resolved by the most recent tick
func (s *EconomyService) OrderStatus(id domain.OrderID) (domain.TransferOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o, ok := s.orders.Order(id); ok {
		return o, nil
	}
	if o, ok := s.lastTick[id]; ok {
		return o, nil
	}
	return domain.TransferOrder{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
}

// GetCurrentValue returns the value of the container holding the resource
func (s *EconomyService) GetCurrentValue(resourceID domain.ResourceID) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, container, err := s.containerFor(resourceID)
	if err != nil {
		return 0, err
	}
	return container.CurrentValue, nil
}

// GetBounds returns the live min and max of the container holding the resource
func (s *EconomyService) GetBounds(resourceID domain.ResourceID) (float64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, container, err := s.containerFor(resourceID)
	if err != nil {
		return 0, 0, err
	}
	lo, hi := s.orders.Resolver().Bounds(container)
	return lo, hi, nil
}

// IsWithinConstraints reports whether the container holding the resource is inside its bounds
func (s *EconomyService) IsWithinConstraints(resourceID domain.ResourceID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, container, err := s.containerFor(resourceID)
	if err != nil {
		return false, err
	}
	return s.orders.Resolver().IsWithinBounds(container), nil
}

// Container returns a snapshot of a single container
func (s *EconomyService) Container(handle domain.ContainerHandle) (ContainerView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	container, ok := s.store.Get(handle)
	if !ok {
		return ContainerView{}, fmt.Errorf("%w: %s", ErrContainerNotFound, handle)
	}
	return s.view(handle, container), nil
}

// ContainerByResource returns a snapshot of the container holding the resource
func (s *EconomyService) ContainerByResource(resourceID domain.ResourceID) (ContainerView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle, container, err := s.containerFor(resourceID)
	if err != nil {
		return ContainerView{}, err
	}
	return s.view(handle, container), nil
}

// Containers lists every container in world order. A non-zero category
// restricts the list to resources in that category.
func (s *EconomyService) Containers(categoryID domain.CategoryID) []ContainerView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]ContainerView, 0, s.store.Len())
	for _, entry := range s.store.List() {
		if categoryID != 0 && !s.catalog.BelongsToCategory(entry.Container.ResourceID, categoryID) {
			continue
		}
		views = append(views, s.view(entry.Handle, entry.Container))
	}
	return views
}

func (s *EconomyService) containerFor(resourceID domain.ResourceID) (domain.ContainerHandle, domain.ResourceContainer, error) {
	handle, ok := s.store.FindByResource(resourceID)
	if !ok {
		return domain.ContainerHandle{}, domain.ResourceContainer{}, fmt.Errorf("%w: resource %d", ErrContainerNotFound, resourceID)
	}
	container, _ := s.store.Get(handle)
	return handle, container, nil
}

func (s *EconomyService) view(handle domain.ContainerHandle, container domain.ResourceContainer) ContainerView {
	resolver := s.orders.Resolver()
	lo, hi := resolver.Bounds(container)
	return ContainerView{
		Handle:       handle,
		ResourceID:   container.ResourceID,
		Name:         s.catalog.Name(container.ResourceID),
		CurrentValue: container.CurrentValue,
		MinRef:       container.MinRef,
		MaxRef:       container.MaxRef,
		Min:          lo,
		Max:          hi,
		WithinBounds: lo <= container.CurrentValue && container.CurrentValue <= hi,
	}
}
