// Package persistence provides SQLite-based campaign storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/civic-sim/internal/engine"
	"github.com/talgya/civic-sim/internal/legislation"
	"github.com/talgya/civic-sim/internal/politics"
)

// ErrNoCampaign is returned by LoadState when nothing has been saved yet.
var ErrNoCampaign = errors.New("no saved campaign")

// DB wraps a SQLite connection for campaign persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; SQLite serializes anyway.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS campaign_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		campaign_id TEXT NOT NULL,
		month INTEGER NOT NULL,
		saved_at TEXT NOT NULL,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bills (
		id TEXT PRIMARY KEY,
		proposal_id TEXT NOT NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL,
		author_id TEXT NOT NULL,
		party_id TEXT NOT NULL,
		proposed_on TEXT NOT NULL,
		votes_for INTEGER NOT NULL,
		votes_against INTEGER NOT NULL,
		changes_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS saved_politicians (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		party_id TEXT NOT NULL,
		party_name TEXT NOT NULL,
		office TEXT NOT NULL,
		is_player INTEGER NOT NULL,
		approval REAL NOT NULL,
		ideology TEXT NOT NULL,
		politician_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seq INTEGER,
		month INTEGER NOT NULL,
		date TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		meta_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS campaign_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_month ON events(month);
	CREATE INDEX IF NOT EXISTS idx_bills_status ON bills(status);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}

	// Event logs written before events carried a sequence number.
	var hasSeq int
	if err := db.conn.Get(&hasSeq, "SELECT COUNT(*) FROM pragma_table_info('events') WHERE name = 'seq'"); err != nil {
		return err
	}
	if hasSeq == 0 {
		if _, err := db.conn.Exec("ALTER TABLE events ADD COLUMN seq INTEGER"); err != nil {
			return err
		}
	}
	_, err := db.conn.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_events_seq ON events(seq)")
	return err
}

// SaveState writes the campaign snapshot, bills and office holders (full
// replace) and the event log, all in one transaction.
func (db *DB) SaveState(st *engine.State) error {
	stateJSON, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO campaign_state (id, campaign_id, month, saved_at, state_json)
		VALUES (1, ?, ?, ?, ?)`,
		st.CampaignID, st.Month, time.Now().UTC().Format(time.RFC3339), string(stateJSON)); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := saveBills(tx, st.Bills); err != nil {
		return fmt.Errorf("save bills: %w", err)
	}
	if err := savePoliticians(tx, st); err != nil {
		return fmt.Errorf("save politicians: %w", err)
	}
	if err := saveEvents(tx, st.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := saveMeta(tx, "last_month", strconv.FormatUint(st.Month, 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("campaign saved", "month", st.Month, "bills", len(st.Bills), "events", len(st.Events))
	return nil
}

func saveBills(tx *sqlx.Tx, bills []*legislation.Bill) error {
	if _, err := tx.Exec("DELETE FROM bills"); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO bills
		(id, proposal_id, title, status, author_id, party_id, proposed_on, votes_for, votes_against, changes_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range bills {
		changes, err := json.Marshal(b.Changes)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(b.ID, b.ProposalID, b.Title, b.Status, b.AuthorID, b.PartyID,
			b.ProposedOn.Format(time.DateOnly), b.VotesFor, b.VotesAgainst, string(changes)); err != nil {
			return err
		}
	}
	return nil
}

func savePoliticians(tx *sqlx.Tx, st *engine.State) error {
	if _, err := tx.Exec("DELETE FROM saved_politicians"); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO saved_politicians
		(id, name, party_id, party_name, office, is_player, approval, ideology, politician_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	save := func(p *politics.Politician, office string) error {
		if p == nil {
			return nil
		}
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		isPlayer := 0
		if p.IsPlayer {
			isPlayer = 1
		}
		_, err = stmt.Exec(p.ID, p.Name, p.PartyID, p.PartyName, office, isPlayer,
			p.ApprovalRating, p.CalculatedIdeology, string(data))
		return err
	}

	if err := save(st.Player, ""); err != nil {
		return err
	}
	for _, o := range st.Offices {
		for _, p := range o.Incumbents() {
			if err := save(p, o.OfficeName); err != nil {
				return err
			}
		}
	}
	return nil
}

// saveEvents appends the in-memory events the table does not hold yet. Rows
// are keyed by sequence number, so history trimmed from memory stays stored
// and saving twice adds nothing.
func saveEvents(tx *sqlx.Tx, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	stmt, err := tx.Preparex(`INSERT OR IGNORE INTO events (seq, month, date, category, description, meta_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if e.Seq == 0 {
			continue // unnumbered, already stored by an older save
		}
		meta := []byte("{}")
		if len(e.Meta) > 0 {
			if meta, err = json.Marshal(e.Meta); err != nil {
				return err
			}
		}
		if _, err := stmt.Exec(e.Seq, e.Month, e.Date.Format(time.DateOnly), e.Category, e.Description, string(meta)); err != nil {
			return err
		}
	}
	return nil
}

func saveMeta(tx *sqlx.Tx, key, value string) error {
	_, err := tx.Exec("INSERT OR REPLACE INTO campaign_meta (key, value) VALUES (?, ?)", key, value)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM campaign_meta WHERE key = ?", key)
	return value, err
}

// LoadState restores the saved campaign with shared politicians relinked.
func (db *DB) LoadState() (*engine.State, error) {
	var raw string
	err := db.conn.Get(&raw, "SELECT state_json FROM campaign_state WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoCampaign
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	var st engine.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	st.Relink()
	slog.Info("campaign loaded", "campaign", st.CampaignID, "month", st.Month)
	return &st, nil
}

type eventRow struct {
	Seq         sql.NullInt64 `db:"seq"`
	Month       uint64        `db:"month"`
	Date        string        `db:"date"`
	Category    string        `db:"category"`
	Description string        `db:"description"`
	MetaJSON    string        `db:"meta_json"`
}

// RecentEvents returns the most recent stored events, newest first. An
// empty category matches every event.
func (db *DB) RecentEvents(limit int, category string) ([]engine.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows,
		`SELECT seq, month, date, category, description, meta_json FROM events
		WHERE ? = '' OR category = ? ORDER BY id DESC LIMIT ?`,
		category, category, limit,
	)
	if err != nil {
		return nil, err
	}

	events := make([]engine.Event, 0, len(rows))
	for _, r := range rows {
		e := engine.Event{Seq: uint64(r.Seq.Int64), Month: r.Month, Category: r.Category, Description: r.Description}
		e.Date, _ = time.Parse(time.DateOnly, r.Date)
		if r.MetaJSON != "" && r.MetaJSON != "{}" {
			_ = json.Unmarshal([]byte(r.MetaJSON), &e.Meta)
		}
		events = append(events, e)
	}
	return events, nil
}

// SavedPolitician is one row of the saved_politicians table.
type SavedPolitician struct {
	ID        string  `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	PartyID   string  `db:"party_id" json:"party_id"`
	PartyName string  `db:"party_name" json:"party_name"`
	Office    string  `db:"office" json:"office"`
	IsPlayer  bool    `db:"is_player" json:"is_player"`
	Approval  float64 `db:"approval" json:"approval"`
	Ideology  string  `db:"ideology" json:"ideology"`
}

// SavedPoliticians lists the player and sitting office holders.
func (db *DB) SavedPoliticians() ([]SavedPolitician, error) {
	var out []SavedPolitician
	err := db.conn.Select(&out, `SELECT id, name, party_id, party_name, office, is_player, approval, ideology
		FROM saved_politicians ORDER BY is_player DESC, office, name`)
	return out, err
}

// SavedPolitician loads one politician's full record.
func (db *DB) SavedPolitician(id string) (*politics.Politician, error) {
	var raw string
	if err := db.conn.Get(&raw, "SELECT politician_json FROM saved_politicians WHERE id = ?", id); err != nil {
		return nil, err
	}
	var p politics.Politician
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decode politician %s: %w", id, err)
	}
	return &p, nil
}
