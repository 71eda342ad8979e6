package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// FactRow is a stored fact.
type FactRow struct {
	Tick     int32   `db:"tick"`
	Type     string  `db:"type"`
	BirdID   uint32  `db:"bird_id"`
	Species  int     `db:"species"`
	Provider    uint32  `db:"provider"`
	ProviderGen uint32  `db:"provider_gen"`
	Action      string  `db:"action"`
	From        string  `db:"from_state"`
	To          string  `db:"to_state"`
	Need        string  `db:"need"`
	Amount      float64 `db:"amount"`
}

// FactStore journals facts to SQLite for offline analysis.
// A nil *FactStore is valid and discards everything.
type FactStore struct {
	conn      *sqlx.DB
	runID     string
	pending   []Fact
	batchSize int
}

// OpenFactStore opens or creates a fact journal at path.
// Returns nil if path is empty (journal disabled).
func OpenFactStore(path, runID string, batchSize int) (*FactStore, error) {
	if path == "" {
		return nil, nil
	}
	if batchSize < 1 {
		batchSize = 256
	}

	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open fact store: %w", err)
	}

	fs := &FactStore{conn: conn, runID: runID, batchSize: batchSize}
	if err := fs.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate fact store: %w", err)
	}
	return fs, nil
}

func (fs *FactStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS facts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		type TEXT NOT NULL,
		bird_id INTEGER NOT NULL,
		species INTEGER NOT NULL,
		provider INTEGER NOT NULL,
		provider_gen INTEGER NOT NULL,
		action TEXT NOT NULL,
		from_state TEXT NOT NULL,
		to_state TEXT NOT NULL,
		need TEXT NOT NULL,
		amount REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		run_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (run_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_facts_run_tick ON facts(run_id, tick);
	CREATE INDEX IF NOT EXISTS idx_facts_bird ON facts(bird_id);
	`
	_, err := fs.conn.Exec(schema)
	return err
}

// RunID returns the run the store writes under.
func (fs *FactStore) RunID() string {
	if fs == nil {
		return ""
	}
	return fs.runID
}

// Append buffers facts and writes a batch once enough are pending.
func (fs *FactStore) Append(facts []Fact) error {
	if fs == nil || len(facts) == 0 {
		return nil
	}
	fs.pending = append(fs.pending, facts...)
	if len(fs.pending) < fs.batchSize {
		return nil
	}
	return fs.Flush()
}

// Flush writes all pending facts in one transaction.
func (fs *FactStore) Flush() error {
	if fs == nil || len(fs.pending) == 0 {
		return nil
	}

	tx, err := fs.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin fact batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO facts
		(run_id, tick, type, bird_id, species, provider, provider_gen, action, from_state, to_state, need, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare fact insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range fs.pending {
		_, err := stmt.Exec(
			fs.runID, f.Tick, f.Type.String(), uint32(f.BirdID), int(f.Species), f.Provider, f.ProviderGen,
			f.Action.String(), f.From.String(), f.To.String(), f.Need.String(), float64(f.Amount),
		)
		if err != nil {
			return fmt.Errorf("insert fact: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fact batch: %w", err)
	}
	slog.Debug("facts flushed", "count", len(fs.pending), "run_id", fs.runID)
	fs.pending = fs.pending[:0]
	return nil
}

// SaveMeta stores a key-value pair for the current run.
func (fs *FactStore) SaveMeta(key, value string) error {
	if fs == nil {
		return nil
	}
	_, err := fs.conn.Exec(
		"INSERT OR REPLACE INTO run_meta (run_id, key, value) VALUES (?, ?, ?)",
		fs.runID, key, value,
	)
	return err
}

// GetMeta retrieves a metadata value for the current run.
func (fs *FactStore) GetMeta(key string) (string, error) {
	var value string
	err := fs.conn.Get(&value, "SELECT value FROM run_meta WHERE run_id = ? AND key = ?", fs.runID, key)
	return value, err
}

// CountByType returns fact counts for the current run, keyed by type name.
func (fs *FactStore) CountByType() (map[string]int, error) {
	var rows []struct {
		Type string `db:"type"`
		N    int    `db:"n"`
	}
	err := fs.conn.Select(&rows,
		"SELECT type, COUNT(*) AS n FROM facts WHERE run_id = ? GROUP BY type",
		fs.runID,
	)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Type] = r.N
	}
	return out, nil
}

// BirdFacts returns the facts recorded for one bird in tick order.
func (fs *FactStore) BirdFacts(birdID uint32, limit int) ([]FactRow, error) {
	var rows []FactRow
	err := fs.conn.Select(&rows,
		`SELECT tick, type, bird_id, species, provider, provider_gen, action, from_state, to_state, need, amount
		FROM facts WHERE run_id = ? AND bird_id = ? ORDER BY id LIMIT ?`,
		fs.runID, birdID, limit,
	)
	return rows, err
}

// Close flushes pending facts and closes the database.
func (fs *FactStore) Close() error {
	if fs == nil {
		return nil
	}
	flushErr := fs.Flush()
	if err := fs.conn.Close(); err != nil && flushErr == nil {
		return err
	}
	return flushErr
}
