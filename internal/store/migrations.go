package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Gesture classes known to the classifier model
		`CREATE TABLE IF NOT EXISTS gesture_classes (
			label INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		)`,

		// One row per centroid component of a class
		`CREATE TABLE IF NOT EXISTS class_centroids (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			label INTEGER NOT NULL REFERENCES gesture_classes(label) ON DELETE CASCADE,
			feature_index INTEGER NOT NULL,
			value REAL NOT NULL,
			UNIQUE(label, feature_index)
		)`,

		// Settings table - model and application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Control sessions, one per process run
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Discrete pointer actions emitted during a session
		`CREATE TABLE IF NOT EXISTS action_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			action TEXT NOT NULL,
			hand TEXT NOT NULL,
			gesture TEXT NOT NULL,
			score REAL NOT NULL DEFAULT 0,
			x INTEGER NOT NULL DEFAULT 0,
			y INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_class_centroids_label ON class_centroids(label)`,
		`CREATE INDEX IF NOT EXISTS idx_action_events_session_id ON action_events(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
