package market

import (
	"testing"

	"github.com/rustyeddy/tradebook/currency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentFactor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, (&Instrument{Symbol: "AAPL"}).Factor())
	assert.Equal(t, 50.0, (&Instrument{Symbol: "ES", PriceFactor: 50}).Factor())
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	usd := currency.NewStandardRegistry().MustLookup("USD")
	r := NewRegistry()

	require.NoError(t, r.Add(&Instrument{Symbol: "MSFT", Currency: usd, Type: Stock}))
	require.NoError(t, r.Add(&Instrument{Symbol: "AAPL", Currency: usd, Type: Stock}))

	err := r.Add(&Instrument{Symbol: "AAPL"})
	assert.ErrorIs(t, err, ErrDuplicateInstrument)
	assert.Error(t, r.Add(&Instrument{}))

	inst, err := r.Lookup("MSFT")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", inst.String())

	_, err = r.Lookup("GOOG")
	assert.ErrorIs(t, err, ErrUnknownInstrument)

	assert.Equal(t, []string{"AAPL", "MSFT"}, r.Symbols())
}
