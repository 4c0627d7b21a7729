package order

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simaogato/resourceflow-backend/internal/domain"
	"github.com/simaogato/resourceflow-backend/internal/usecase/constraint"
	"github.com/simaogato/resourceflow-backend/internal/usecase/transfer"
)

// ContainerStore is everything the manager needs from the container store
type ContainerStore interface {
	FindByResource(id domain.ResourceID) (domain.ContainerHandle, bool)
	Get(handle domain.ContainerHandle) (domain.ResourceContainer, bool)
	Set(handle domain.ContainerHandle, container domain.ResourceContainer) error
	Kind(handle domain.ContainerHandle) domain.EntityKind
}

// TickReport summarizes one process-then-sweep cycle
type TickReport struct {
	Tick     uint64
	Resolved []domain.TransferOrder // in processing order
	Accepted int
	Rejected int
	Swept    int
}

// Manager owns the transfer orders of one world and drives each of them
// through Pending -> Terminal -> Removed exactly once. It is not safe for
// concurrent use.
type Manager struct {
	store    ContainerStore
	resolver *constraint.Resolver
	logger   *zap.Logger

	orders []*domain.TransferOrder // creation order
	index  map[domain.OrderID]*domain.TransferOrder
	seq    uint64
	tick   uint64
}

// NewManager creates an order manager working against the given store
func NewManager(store ContainerStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:    store,
		resolver: constraint.NewResolver(store),
		logger:   logger,
		index:    make(map[domain.OrderID]*domain.TransferOrder),
	}
}

// Resolver exposes the bound resolver bound to the manager's store
func (m *Manager) Resolver() *constraint.Resolver {
	return m.resolver
}

// Create registers a new pending order and returns its ID immediately.
// No validation happens here; malformed orders are rejected when processed.
func (m *Manager) Create(source, destination domain.ContainerHandle, resourceID domain.ResourceID, amount float64) domain.OrderID {
	m.seq++
	o := &domain.TransferOrder{
		ID:          uuid.New(),
		Seq:         m.seq,
		Source:      source,
		Destination: destination,
		ResourceID:  resourceID,
		Amount:      amount,
		State:       domain.OrderStatePending,
	}

	m.orders = append(m.orders, o)
	m.index[o.ID] = o

	return o.ID
}

// ProcessAll validates every pending order in creation order, applies the
// accepted ones and marks every processed order terminal. Later orders see the
// effects of earlier ones. Terminal orders are never touched again.
func (m *Manager) ProcessAll() []domain.TransferOrder {
	resolved := make([]domain.TransferOrder, 0)

	for _, o := range m.orders {
		if o.IsTerminal() {
			continue
		}

		m.process(o)
		resolved = append(resolved, *o)
	}

	return resolved
}

func (m *Manager) process(o *domain.TransferOrder) {
	decision := transfer.Validate(*o, m.store, m.resolver)
	if !decision.Accepted {
		m.logger.Debug("transfer rejected",
			zap.String("order_id", o.ID.String()),
			zap.Int("resource_id", int(o.ResourceID)),
			zap.Float64("amount", o.Amount),
			zap.Stringer("reason", decision.Reason),
		)
		_ = o.Reject(decision.Reason)
		return
	}

	if err := transfer.Apply(m.store, decision); err != nil {
		// Endpoints were read in this same pass, so this only happens if the
		// store is modified behind the manager's back.
		m.logger.Error("failed to apply accepted transfer",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
		_ = o.Reject(domain.RejectMissingEndpoint)
		return
	}

	m.logger.Debug("transfer applied",
		zap.String("order_id", o.ID.String()),
		zap.Int("resource_id", int(o.ResourceID)),
		zap.Float64("amount", o.Amount),
		zap.Float64("source_value", decision.NewSourceValue),
		zap.Float64("destination_value", decision.NewDestValue),
		zap.Float64("moved", decision.Moved),
	)
	_ = o.Accept()
	o.Moved = decision.Moved
}

// Sweep removes every terminal order and returns how many were removed
func (m *Manager) Sweep() int {
	kept := m.orders[:0]
	removed := 0

	for _, o := range m.orders {
		if o.IsTerminal() {
			delete(m.index, o.ID)
			removed++
			continue
		}
		kept = append(kept, o)
	}

	// Release references held past the new length
	for i := len(kept); i < len(m.orders); i++ {
		m.orders[i] = nil
	}
	m.orders = kept

	return removed
}

// RunTick runs one full cycle: ProcessAll, then Sweep
func (m *Manager) RunTick() TickReport {
	m.tick++
	report := TickReport{Tick: m.tick}

	report.Resolved = m.ProcessAll()
	for _, o := range report.Resolved {
		if o.Outcome == domain.OutcomeAccepted {
			report.Accepted++
		} else {
			report.Rejected++
		}
	}
	report.Swept = m.Sweep()

	return report
}

// Order returns a copy of an order that has not been swept yet
func (m *Manager) Order(id domain.OrderID) (domain.TransferOrder, bool) {
	o, ok := m.index[id]
	if !ok {
		return domain.TransferOrder{}, false
	}
	return *o, true
}

// Pending returns the number of orders waiting for the next ProcessAll
func (m *Manager) Pending() int {
	n := 0
	for _, o := range m.orders {
		if !o.IsTerminal() {
			n++
		}
	}
	return n
}

// Len returns the number of orders not yet swept
func (m *Manager) Len() int {
	return len(m.orders)
}

// Ticks returns how many ticks have run
func (m *Manager) Ticks() uint64 {
	return m.tick
}
