package yamlfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOrders(t *testing.T) {
	doc := `
orders:
  - source: treasury
    destination: vault
    resource: 1
    amount: 30
  - tick: 3
    source: vault
    destination: treasury
    resource: 1
    amount: "12.75"
`
	script, err := DecodeOrders(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, script.Orders, 2)

	assert.Equal(t, 1, script.Orders[0].Tick)
	assert.Equal(t, 3, script.Orders[1].Tick)
	assert.Equal(t, 3, script.LastTick())
	assert.Equal(t, "treasury", script.Orders[0].Source)
	assert.Equal(t, "vault", script.Orders[0].Destination)

	amount, err := script.Orders[0].AmountValue()
	require.NoError(t, err)
	assert.Equal(t, 30.0, amount)

	amount, err = script.Orders[1].AmountValue()
	require.NoError(t, err)
	assert.Equal(t, 12.75, amount)
}

func TestDecodeOrders_Empty(t *testing.T) {
	script, err := DecodeOrders(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, script.Orders)
	assert.Equal(t, 0, script.LastTick())
}

func TestDecodeOrders_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "bad amount",
			doc:     "orders:\n  - source: a\n    destination: b\n    resource: 1\n    amount: lots\n",
			wantErr: "order 0: invalid amount",
		},
		{
			name:    "negative tick",
			doc:     "orders:\n  - tick: -1\n    amount: 1\n",
			wantErr: "tick must be positive",
		},
		{
			name:    "unknown field",
			doc:     "orders:\n  - src: a\n",
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeOrders(strings.NewReader(tt.doc))
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadOrders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.yaml")
	require.NoError(t, os.WriteFile(path, []byte("orders: []\n"), 0o600))

	script, err := LoadOrders(path)
	require.NoError(t, err)
	assert.Empty(t, script.Orders)
}
