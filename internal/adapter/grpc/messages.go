package grpc

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/resourceflow-backend/internal/domain"
	"github.com/simaogato/resourceflow-backend/internal/usecase/economy"
	"github.com/simaogato/resourceflow-backend/internal/usecase/order"
)

// Wire values are carried in google.protobuf.Struct messages. Amounts and
// container values travel as decimal strings; unbounded limits are "-inf" and
// "+inf".

const (
	infPositive = "+inf"
	infNegative = "-inf"
)

// ContainerMessage is the wire form of a container snapshot
type ContainerMessage struct {
	Handle       string `json:"handle"`
	ResourceID   int64  `json:"resource_id"`
	Name         string `json:"name"`
	CurrentValue string `json:"current_value"`
	Min          string `json:"min"`
	Max          string `json:"max"`
	WithinBounds bool   `json:"within_bounds"`
}

// OrderMessage is the wire form of a transfer order
type OrderMessage struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	ResourceID  int64  `json:"resource_id"`
	Amount      string `json:"amount"`
	State       string `json:"state"`
	Outcome     string `json:"outcome"`
	Reason      string `json:"reason,omitempty"`
	Moved       string `json:"moved"`
}

// TickMessage is the wire form of a tick report
type TickMessage struct {
	Tick     uint64         `json:"tick"`
	Accepted int            `json:"accepted"`
	Rejected int            `json:"rejected"`
	Swept    int            `json:"swept"`
	Resolved []OrderMessage `json:"resolved"`
}

// FormatValue renders a float as a decimal string, or as a signed infinity
func FormatValue(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return infPositive
	case math.IsInf(v, -1):
		return infNegative
	case math.IsNaN(v):
		return "NaN"
	}
	return decimal.NewFromFloat(v).String()
}

// ParseValue reverses FormatValue
func ParseValue(s string) (float64, error) {
	switch s {
	case infPositive:
		return math.Inf(1), nil
	case infNegative:
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// ContainerFromView converts a container snapshot to its wire form
func ContainerFromView(v economy.ContainerView) ContainerMessage {
	return ContainerMessage{
		Handle:       v.Handle.String(),
		ResourceID:   int64(v.ResourceID),
		Name:         v.Name,
		CurrentValue: FormatValue(v.CurrentValue),
		Min:          FormatValue(v.Min),
		Max:          FormatValue(v.Max),
		WithinBounds: v.WithinBounds,
	}
}

// OrderFromDomain converts an order to its wire form. Reason is set only for rejected orders.
func OrderFromDomain(o domain.TransferOrder) OrderMessage {
	msg := OrderMessage{
		ID:          o.ID.String(),
		Source:      o.Source.String(),
		Destination: o.Destination.String(),
		ResourceID:  int64(o.ResourceID),
		Amount:      FormatValue(o.Amount),
		State:       string(o.State),
		Outcome:     string(o.Outcome),
		Moved:       FormatValue(o.Moved),
	}
	if o.Outcome == domain.OutcomeRejected {
		msg.Reason = o.Reason.String()
	}
	return msg
}

// TickFromReport converts a tick report to its wire form
func TickFromReport(r order.TickReport) TickMessage {
	msg := TickMessage{
		Tick:     r.Tick,
		Accepted: r.Accepted,
		Rejected: r.Rejected,
		Swept:    r.Swept,
		Resolved: make([]OrderMessage, 0, len(r.Resolved)),
	}
	for _, o := range r.Resolved {
		msg.Resolved = append(msg.Resolved, OrderFromDomain(o))
	}
	return msg
}

func (m ContainerMessage) fields() map[string]interface{} {
	return map[string]interface{}{
		"handle":        m.Handle,
		"resource_id":   m.ResourceID,
		"name":          m.Name,
		"current_value": m.CurrentValue,
		"min":           m.Min,
		"max":           m.Max,
		"within_bounds": m.WithinBounds,
	}
}

func (m OrderMessage) fields() map[string]interface{} {
	return map[string]interface{}{
		"id":          m.ID,
		"source":      m.Source,
		"destination": m.Destination,
		"resource_id": m.ResourceID,
		"amount":      m.Amount,
		"state":       m.State,
		"outcome":     m.Outcome,
		"reason":      m.Reason,
		"moved":       m.Moved,
	}
}

func (m TickMessage) fields() map[string]interface{} {
	resolved := make([]interface{}, 0, len(m.Resolved))
	for _, o := range m.Resolved {
		resolved = append(resolved, o.fields())
	}
	return map[string]interface{}{
		"tick":     m.Tick,
		"accepted": m.Accepted,
		"rejected": m.Rejected,
		"swept":    m.Swept,
		"resolved": resolved,
	}
}

func containerFromStruct(s *structpb.Struct) ContainerMessage {
	f := s.GetFields()
	return ContainerMessage{
		Handle:       f["handle"].GetStringValue(),
		ResourceID:   int64(f["resource_id"].GetNumberValue()),
		Name:         f["name"].GetStringValue(),
		CurrentValue: f["current_value"].GetStringValue(),
		Min:          f["min"].GetStringValue(),
		Max:          f["max"].GetStringValue(),
		WithinBounds: f["within_bounds"].GetBoolValue(),
	}
}

func orderFromStruct(s *structpb.Struct) OrderMessage {
	f := s.GetFields()
	return OrderMessage{
		ID:          f["id"].GetStringValue(),
		Source:      f["source"].GetStringValue(),
		Destination: f["destination"].GetStringValue(),
		ResourceID:  int64(f["resource_id"].GetNumberValue()),
		Amount:      f["amount"].GetStringValue(),
		State:       f["state"].GetStringValue(),
		Outcome:     f["outcome"].GetStringValue(),
		Reason:      f["reason"].GetStringValue(),
		Moved:       f["moved"].GetStringValue(),
	}
}

func tickFromStruct(s *structpb.Struct) TickMessage {
	f := s.GetFields()
	msg := TickMessage{
		Tick:     uint64(f["tick"].GetNumberValue()),
		Accepted: int(f["accepted"].GetNumberValue()),
		Rejected: int(f["rejected"].GetNumberValue()),
		Swept:    int(f["swept"].GetNumberValue()),
	}
	for _, v := range f["resolved"].GetListValue().GetValues() {
		msg.Resolved = append(msg.Resolved, orderFromStruct(v.GetStructValue()))
	}
	return msg
}

// stringField returns a required string field
func stringField(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("%s is required", name)
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%s must be a string", name)
	}
	return str.StringValue, nil
}

// intField returns an integral number field, reporting whether it was present
func intField(s *structpb.Struct, name string) (int64, bool, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, false, nil
	}

	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, true, fmt.Errorf("%s must be an integer", name)
		}
		return int64(n), true, nil
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(kind.StringValue, 10, 64)
		if err != nil {
			return 0, true, fmt.Errorf("%s must be an integer", name)
		}
		return n, true, nil
	default:
		return 0, true, fmt.Errorf("%s must be an integer", name)
	}
}
