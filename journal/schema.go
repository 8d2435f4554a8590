// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
	tx_id TEXT PRIMARY KEY,
	holder TEXT NOT NULL,
	time DATETIME NOT NULL,
	action TEXT NOT NULL,
	currency TEXT NOT NULL,
	amount REAL NOT NULL,
	rate REAL NOT NULL,
	amount_converted REAL NOT NULL,
	note TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS roundtrips (
	roundtrip_id TEXT PRIMARY KEY,
	instrument TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity REAL NOT NULL,
	entry_time DATETIME NOT NULL,
	entry_price REAL NOT NULL,
	exit_time DATETIME NOT NULL,
	exit_price REAL NOT NULL,
	commission REAL NOT NULL,
	gross_pnl REAL NOT NULL,
	net_pnl REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	holder TEXT NOT NULL,
	balance REAL NOT NULL,
	equity REAL NOT NULL,
	margin REAL NOT NULL,
	debt REAL NOT NULL,
	pnl REAL NOT NULL,
	drawdown REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_time ON transactions(time);
CREATE INDEX IF NOT EXISTS idx_roundtrips_exit ON roundtrips(exit_time);
CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
