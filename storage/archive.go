package storage

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"companion/config"
	"companion/history"
)

// ArchiveStore keeps archived turns for all sessions in one SQLite database.
type ArchiveStore struct {
	db *sql.DB

	mu    sync.Mutex
	views map[string]*SessionArchive
}

// NewArchiveStore opens the archive database at dsn. An empty dsn opens a
// private in-memory database that lives as long as the store.
func NewArchiveStore(dsn string) (*ArchiveStore, error) {
	if dsn == "" {
		dsn = fmt.Sprintf("file:companion-%s?mode=memory&cache=shared", uuid.New().String())
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &ArchiveStore{
		db:    db,
		views: make(map[string]*SessionArchive),
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if config.Debug {
		config.DebugLog.Printf("[Storage] Opened archive store: %s", dsn)
	}

	return store, nil
}

func (s *ArchiveStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS archive (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		user_message TEXT NOT NULL,
		assistant_message TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_archive_session ON archive(session_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// ForSession returns the archive view for one session. Views are cached, so
// repeated calls return the same value.
func (s *ArchiveStore) ForSession(sessionID string) history.Archive {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, ok := s.views[sessionID]
	if !ok {
		view = &SessionArchive{store: s, sessionID: sessionID}
		s.views[sessionID] = view
	}
	return view
}

func (s *ArchiveStore) save(sessionID string, rec history.Record) error {
	query := `
	INSERT OR REPLACE INTO archive (id, session_id, timestamp, user_message, assistant_message)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		rec.ID,
		sessionID,
		rec.Timestamp,
		rec.UserMessage,
		rec.AssistantMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save archive record: %w", err)
	}
	return nil
}

func (s *ArchiveStore) count(sessionID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM archive WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

func (s *ArchiveStore) list(sessionID string) ([]history.Record, error) {
	query := `
	SELECT id, timestamp, user_message, assistant_message
	FROM archive
	WHERE session_id = ?
	ORDER BY rowid ASC
	`

	rows, err := s.db.Query(query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []history.Record
	for rows.Next() {
		var rec history.Record
		err := rows.Scan(
			&rec.ID,
			&rec.Timestamp,
			&rec.UserMessage,
			&rec.AssistantMessage,
		)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Sessions lists every session id that has archived records.
func (s *ArchiveStore) Sessions() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT session_id FROM archive ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}

func (s *ArchiveStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SessionArchive is the history.Archive view of one session's records.
type SessionArchive struct {
	store     *ArchiveStore
	sessionID string
}

func (a *SessionArchive) Put(rec history.Record) error {
	return a.store.save(a.sessionID, rec)
}

func (a *SessionArchive) Len() int {
	n, err := a.store.count(a.sessionID)
	if err != nil {
		if config.Debug {
			config.DebugLog.Printf("[Storage] Failed to count records for session %s: %v", a.sessionID, err)
		}
		return 0
	}
	return n
}

func (a *SessionArchive) Records() []history.Record {
	records, err := a.store.list(a.sessionID)
	if err != nil && config.Debug {
		config.DebugLog.Printf("[Storage] Failed to list records for session %s: %v", a.sessionID, err)
	}
	if records == nil {
		return []history.Record{}
	}
	return records
}
