package yamlfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// OrderScript is a list of transfers to create during an offline simulation
type OrderScript struct {
	Orders []ScriptedOrder `yaml:"orders"`
}

// ScriptedOrder is one transfer. Source and Destination are container keys
// from the world file; a key with no container yields an order with a missing
// endpoint. Tick is the 1-based tick the order is created before.
type ScriptedOrder struct {
	Tick        int    `yaml:"tick,omitempty"`
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
	Resource    int    `yaml:"resource"`
	Amount      string `yaml:"amount"`
}

// AmountValue parses the decimal amount
func (o ScriptedOrder) AmountValue() (float64, error) {
	d, err := decimal.NewFromString(o.Amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", o.Amount, err)
	}
	return d.InexactFloat64(), nil
}

// LoadOrders reads and parses an order script
func LoadOrders(path string) (*OrderScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read orders file: %w", err)
	}

	script, err := DecodeOrders(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return script, nil
}

// DecodeOrders parses an order script, rejecting unknown fields. Orders
// without a tick are created before the first tick.
func DecodeOrders(r io.Reader) (*OrderScript, error) {
	var script OrderScript
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&script); err != nil {
		if errors.Is(err, io.EOF) {
			return &script, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range script.Orders {
		o := &script.Orders[i]
		if o.Tick == 0 {
			o.Tick = 1
		}
		if o.Tick < 0 {
			return nil, fmt.Errorf("order %d: tick must be positive", i)
		}
		if _, err := o.AmountValue(); err != nil {
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
	}

	return &script, nil
}

// LastTick returns the highest tick any order is scheduled for
func (s *OrderScript) LastTick() int {
	last := 0
	for _, o := range s.Orders {
		if o.Tick > last {
			last = o.Tick
		}
	}
	return last
}
