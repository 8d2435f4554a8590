package account

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradebook/broker"
	"github.com/rustyeddy/tradebook/currency"
	"github.com/rustyeddy/tradebook/market"
)

var (
	ccys = currency.NewStandardRegistry()
	usd  = ccys.MustLookup("USD")
	eur  = ccys.MustLookup("EUR")
	gbp  = ccys.MustLookup("GBP")
	t0   = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
)

type recorder struct {
	txs []Transaction
}

func (r *recorder) OnTransaction(holder string, tx Transaction) { r.txs = append(r.txs, tx) }

func newAccount(t *testing.T, home currency.Currency) (*Account, *currency.UpdatableConverter) {
	t.Helper()
	conv := currency.NewUpdatableConverter()
	return New("alice", home, conv, zerolog.Nop()), conv
}

func TestAccountAddConvertsForeignCurrency(t *testing.T) {
	t.Parallel()

	a, conv := newAccount(t, eur)
	conv.Update(usd, eur, 0.85)

	require.NoError(t, a.Add(t0, 100, usd, "deposit"))

	assert.InDelta(t, 85.0, a.Balance(), 1e-9)
	txs := a.TransactionHistory()
	require.Len(t, txs, 1)
	tx := txs[0]
	assert.Equal(t, Credit, tx.Action())
	assert.Equal(t, 100.0, tx.Amount())
	assert.InDelta(t, 85.0, tx.AmountConverted(), 1e-9)
	assert.Equal(t, 0.85, tx.ConversionRate())
	assert.True(t, tx.Currency().Equal(usd))
	assert.Equal(t, "deposit", tx.Note())
	assert.NotEmpty(t, tx.ID())
}

func TestAccountAddZeroAndDebit(t *testing.T) {
	t.Parallel()

	a, _ := newAccount(t, usd)
	require.NoError(t, a.Add(t0, 0, usd, "nothing"))
	assert.Empty(t, a.TransactionHistory())

	require.NoError(t, a.Add(t0, 1000, usd, "deposit"))
	require.NoError(t, a.Add(t0.Add(time.Hour), -250, usd, "withdraw"))

	assert.Equal(t, 750.0, a.Balance())
	txs := a.TransactionHistory()
	require.Len(t, txs, 2)
	assert.Equal(t, Debit, txs[1].Action())
	assert.Equal(t, 250.0, txs[1].Amount())
	assert.Equal(t, -250.0, txs[1].Signed())
}

func TestAccountAddUnknownRate(t *testing.T) {
	t.Parallel()

	a, _ := newAccount(t, usd)
	err := a.Add(t0, 10, gbp, "deposit")
	assert.ErrorIs(t, err, currency.ErrRateNotFound)
	assert.Empty(t, a.TransactionHistory())
	assert.Equal(t, 0.0, a.Balance())
}

func TestAccountOutOfOrderDeposit(t *testing.T) {
	t.Parallel()

	a, _ := newAccount(t, usd)
	require.NoError(t, a.Add(t0.Add(time.Hour), 100, usd, "late"))
	require.NoError(t, a.Add(t0.Add(2*time.Hour), 50, usd, "later"))
	require.NoError(t, a.Add(t0, 10, usd, "early"))

	assert.Equal(t, 10.0, a.BalanceAt(t0))
	assert.Equal(t, 110.0, a.BalanceAt(t0.Add(time.Hour)))
	assert.Equal(t, 160.0, a.Balance())
	assert.Len(t, a.BalanceHistory(), 3)
}

func TestAccountExecute(t *testing.T) {
	t.Parallel()

	a, conv := newAccount(t, usd)
	conv.Update(eur, usd, 1.1)
	rec := &recorder{}
	a.SetListener(rec)

	inst := &market.Instrument{Symbol: "SAP", Currency: eur, InitialMargin: 20}
	ex, err := broker.NewExecution(broker.Fill{
		Time: t0, Side: broker.Buy, Quantity: 10, Price: 100, Commission: 2,
	}, inst, conv)
	require.NoError(t, err)

	// cash flow -1000 + debt 800 = -200 EUR margin posted, plus 2 EUR commission
	require.NoError(t, a.Execute(ex))

	txs := a.TransactionHistory()
	require.Len(t, txs, 2)
	assert.Equal(t, Debit, txs[0].Action())
	assert.InDelta(t, 200.0, txs[0].Amount(), 1e-9)
	assert.InDelta(t, 220.0, txs[0].AmountConverted(), 1e-9)
	assert.Equal(t, "order execution", txs[0].Note())
	assert.Equal(t, Debit, txs[1].Action())
	assert.Equal(t, 2.0, txs[1].Amount())
	assert.Equal(t, "order execution commission", txs[1].Note())

	assert.InDelta(t, 2.2, txs[1].AmountConverted(), 1e-9)
	assert.InDelta(t, -222.2, a.Balance(), 1e-9)
	assert.Len(t, rec.txs, 2)
}

func TestAccountExecuteIsAtomic(t *testing.T) {
	t.Parallel()

	a, _ := newAccount(t, usd)
	inst := &market.Instrument{Symbol: "SAP", Currency: eur, InitialMargin: 20}
	ex, err := broker.NewExecution(broker.Fill{Time: t0, Side: broker.Buy, Quantity: 10, Price: 100}, inst, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, a.Execute(ex), currency.ErrRateNotFound)
	assert.Empty(t, a.TransactionHistory())
}

func TestAccountExecuteFullyFinancedOnlyBooksCommission(t *testing.T) {
	t.Parallel()

	a, _ := newAccount(t, usd)
	inst := &market.Instrument{Symbol: "AAPL", Currency: usd}
	ex, err := broker.NewExecution(broker.Fill{Time: t0, Side: broker.Buy, Quantity: 100, Price: 100, Commission: 1}, inst, nil)
	require.NoError(t, err)

	require.NoError(t, a.Execute(ex))
	txs := a.TransactionHistory()
	require.Len(t, txs, 1)
	assert.Equal(t, "order execution commission", txs[0].Note())
	assert.Equal(t, -1.0, a.Balance())
}
