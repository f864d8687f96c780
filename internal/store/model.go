package store

import (
	"database/sql"
	"fmt"
	"strconv"
)

// temperatureKey is the settings key holding the model's softmax temperature.
const temperatureKey = "model.temperature"

// Model is a persisted nearest-centroid gesture classifier.
// Labels[i], Names[i] and Centroids[i] describe the same class.
type Model struct {
	Labels      []int
	Names       []string
	Centroids   [][]float64
	Temperature float64
}

// ModelRepository reads and writes the classifier model tables.
type ModelRepository struct {
	db *sql.DB
}

// Models returns the model repository for this store.
func (s *Store) Models() *ModelRepository {
	return &ModelRepository{db: s.db}
}

// Save replaces the stored model with m in a single transaction.
func (r *ModelRepository) Save(m *Model) error {
	if len(m.Labels) != len(m.Centroids) || len(m.Labels) != len(m.Names) {
		return fmt.Errorf("model has %d labels, %d names and %d centroids", len(m.Labels), len(m.Names), len(m.Centroids))
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM gesture_classes`); err != nil {
		return err
	}

	classStmt, err := tx.Prepare(`INSERT INTO gesture_classes (label, name) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer classStmt.Close()

	centroidStmt, err := tx.Prepare(`INSERT INTO class_centroids (label, feature_index, value) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer centroidStmt.Close()

	for i, label := range m.Labels {
		if _, err := classStmt.Exec(label, m.Names[i]); err != nil {
			return fmt.Errorf("insert class %d: %w", label, err)
		}
		for j, v := range m.Centroids[i] {
			if _, err := centroidStmt.Exec(label, j, v); err != nil {
				return fmt.Errorf("insert centroid %d[%d]: %w", label, j, err)
			}
		}
	}

	_, err = tx.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		temperatureKey, strconv.FormatFloat(m.Temperature, 'g', -1, 64),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Load reads the stored model. Classes are ordered by label.
// An empty database yields a Model with no labels.
func (r *ModelRepository) Load() (*Model, error) {
	m := &Model{}

	rows, err := r.db.Query(
		`SELECT c.label, c.name, cc.feature_index, cc.value
		 FROM gesture_classes c
		 JOIN class_centroids cc ON cc.label = c.label
		 ORDER BY c.label, cc.feature_index`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var label, index int
		var name string
		var value float64
		if err := rows.Scan(&label, &name, &index, &value); err != nil {
			return nil, err
		}

		n := len(m.Labels)
		if n == 0 || m.Labels[n-1] != label {
			m.Labels = append(m.Labels, label)
			m.Names = append(m.Names, name)
			m.Centroids = append(m.Centroids, nil)
			n++
		}
		if index != len(m.Centroids[n-1]) {
			return nil, fmt.Errorf("class %d: centroid index %d out of sequence", label, index)
		}
		m.Centroids[n-1] = append(m.Centroids[n-1], value)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	var raw string
	err = r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, temperatureKey).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, err
	default:
		if m.Temperature, err = strconv.ParseFloat(raw, 64); err != nil {
			return nil, fmt.Errorf("parse %s: %w", temperatureKey, err)
		}
	}

	return m, nil
}
