package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionHistoryIsDefensiveCopy(t *testing.T) {
	t.Parallel()

	a, _ := newAccount(t, usd)
	require.NoError(t, a.Add(t0, 100, usd, "deposit"))

	txs := a.TransactionHistory()
	txs[0] = Transaction{}

	again := a.TransactionHistory()
	assert.Equal(t, 100.0, again[0].Amount())
	assert.Equal(t, "credit", again[0].Action().String())
	assert.Equal(t, "credit USD 100 (deposit)", again[0].String())
}
