package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Session is one run of the control loop.
type Session struct {
	ID        string
	StartedAt time.Time
	EndedAt   sql.NullTime
}

// ActionEvent is a discrete pointer action recorded in the journal.
type ActionEvent struct {
	ID        int64
	SessionID string
	Action    string
	Hand      string
	Gesture   string
	Score     float64
	X         int
	Y         int
	CreatedAt time.Time
}

// JournalRepository records sessions and the actions emitted during them.
type JournalRepository struct {
	db *sql.DB
}

// Journal returns the journal repository for this store.
func (s *Store) Journal() *JournalRepository {
	return &JournalRepository{db: s.db}
}

// StartSession creates a new session with a random ID.
func (r *JournalRepository) StartSession() (*Session, error) {
	session := &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		session.ID, session.StartedAt,
	)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// EndSession stamps the end time of a session.
func (r *JournalRepository) EndSession(id string) error {
	result, err := r.db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetSession retrieves a session by its ID.
func (r *JournalRepository) GetSession(id string) (*Session, error) {
	s := &Session{}
	err := r.db.QueryRow(
		`SELECT id, started_at, ended_at FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.StartedAt, &s.EndedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Record inserts an action event. CreatedAt is set when zero.
func (r *JournalRepository) Record(e *ActionEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO action_events (session_id, action, hand, gesture, score, x, y, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Action, e.Hand, e.Gesture, e.Score, e.X, e.Y, e.CreatedAt,
	)
	if err != nil {
		return err
	}

	e.ID, err = result.LastInsertId()
	return err
}

// Events returns the actions recorded for a session in insertion order.
func (r *JournalRepository) Events(sessionID string) ([]ActionEvent, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, action, hand, gesture, score, x, y, created_at
		 FROM action_events
		 WHERE session_id = ?
		 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ActionEvent
	for rows.Next() {
		var e ActionEvent
		err := rows.Scan(&e.ID, &e.SessionID, &e.Action, &e.Hand, &e.Gesture, &e.Score, &e.X, &e.Y, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
