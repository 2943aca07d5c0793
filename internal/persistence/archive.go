// Package persistence provides the optional SQLite trade archive.
// Writes are append-only; nothing in the simulation ever reads back.
package persistence

import (
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/protheus99/econsim-sub000/internal/ledger"
)

// Archive wraps a SQLite connection for trade history.
type Archive struct {
	conn *sqlx.DB

	mu      sync.Mutex
	pending []ledger.Entry
}

// Open opens or creates a SQLite archive at the given path.
func Open(path string) (*Archive, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	a := &Archive{conn: conn}
	if err := a.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return a, nil
}

// Close flushes any buffered trades and closes the connection.
func (a *Archive) Close() error {
	if err := a.Flush(); err != nil {
		return err
	}
	return a.conn.Close()
}

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		hour INTEGER NOT NULL,
		category TEXT NOT NULL,
		seller_firm_id TEXT NOT NULL,
		seller_name TEXT NOT NULL,
		seller_city TEXT NOT NULL,
		buyer_firm_id TEXT NOT NULL,
		buyer_name TEXT NOT NULL,
		buyer_city TEXT NOT NULL,
		material TEXT NOT NULL,
		quantity REAL NOT NULL,
		unit_price REAL NOT NULL,
		status TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trades_hour ON trades(hour);
	CREATE INDEX IF NOT EXISTS idx_trades_material ON trades(material);
	CREATE INDEX IF NOT EXISTS idx_trades_seller ON trades(seller_firm_id);
	`
	_, err := a.conn.Exec(schema)
	return err
}

// Record buffers a trade for the next flush. Safe to call from the tick
// loop; no I/O happens here.
func (a *Archive) Record(e ledger.Entry) {
	a.mu.Lock()
	a.pending = append(a.pending, e)
	a.mu.Unlock()
}

// Flush writes all buffered trades in one transaction.
func (a *Archive) Flush() error {
	a.mu.Lock()
	batch := a.pending
	a.pending = nil
	a.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	tx, err := a.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT OR IGNORE INTO trades
		(id, hour, category,
		 seller_firm_id, seller_name, seller_city,
		 buyer_firm_id, buyer_name, buyer_city,
		 material, quantity, unit_price, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range batch {
		_, err := stmt.Exec(
			e.ID, e.Time.TotalHours, string(e.Category),
			e.Seller.FirmID, e.Seller.Name, e.Seller.CityID,
			e.Buyer.FirmID, e.Buyer.Name, e.Buyer.CityID,
			e.Material, e.Quantity, e.UnitPrice, string(e.Status),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
