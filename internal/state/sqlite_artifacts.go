package state

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordArtifact records one pipeline object outcome for a run.
// The artifact ID is assigned if empty.
func (s *Store) RecordArtifact(a *Artifact) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if a.ID == "" {
		a.ID = generateID()
	}
	a.CreatedAt = time.Now().UTC()

	var errorPtr *string
	if a.Error != "" {
		errorPtr = &a.Error
	}

	_, err := s.db.Exec(
		`INSERT INTO run_artifacts (id, run_id, mart, object, layer, status, duration_ms, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.RunID, a.Mart, a.Object, a.Layer, a.Status, a.DurationMS, errorPtr, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record artifact: %w", err)
	}

	return nil
}

// ListArtifacts retrieves all artifacts for a run in creation order.
func (s *Store) ListArtifacts(runID string) ([]*Artifact, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, mart, object, layer, status, duration_ms, error, created_at
		 FROM run_artifacts WHERE run_id = ? ORDER BY created_at, object`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*Artifact
	for rows.Next() {
		a := &Artifact{}
		var errMsg sql.NullString

		err := rows.Scan(&a.ID, &a.RunID, &a.Mart, &a.Object, &a.Layer, &a.Status, &a.DurationMS, &errMsg, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}

		if errMsg.Valid {
			a.Error = errMsg.String
		}
		artifacts = append(artifacts, a)
	}

	return artifacts, rows.Err()
}
