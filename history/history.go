// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

// Package history records terminal upgrade operations observed while
// watching, so past upgrades can be reviewed after the page is gone.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/netwisp/fwmon/upgrade"
)

const schema = `
CREATE TABLE IF NOT EXISTS operations (
	id          TEXT PRIMARY KEY,
	device_name TEXT NOT NULL DEFAULT '',
	device_id   TEXT NOT NULL DEFAULT '',
	image_name  TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	log         TEXT NOT NULL DEFAULT '',
	modified    TEXT NOT NULL DEFAULT '',
	recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS operations_recorded_at ON operations(recorded_at);
`

// Record is one archived terminal operation.
type Record struct {
	Operation  upgrade.Operation
	RecordedAt time.Time
}

type Store struct {
	db *sql.DB

	stmtUpsert *sql.Stmt
	stmtList   *sql.Stmt
}

func NewStore(dbFile string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbFile+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("unable to open history db %s: %w", dbFile, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to initialize history db: %w", err)
	}
	s := &Store{db: db}
	if s.stmtUpsert, err = db.Prepare(
		`INSERT INTO operations (id, device_name, device_id, image_name, status, log, modified, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status=excluded.status, log=excluded.log,
			modified=excluded.modified, recorded_at=excluded.recorded_at`,
	); err == nil {
		s.stmtList, err = db.Prepare(
			`SELECT id, device_name, device_id, image_name, status, log, modified, recorded_at
			 FROM operations ORDER BY recorded_at DESC LIMIT ?`,
		)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to prepare history statements: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record archives a terminal operation. Re-recording the same id keeps
// the newest snapshot, so duplicate terminal observations are harmless.
func (s *Store) Record(op upgrade.Operation) error {
	_, err := s.stmtUpsert.Exec(
		op.Id, op.DeviceName, op.DeviceId, op.ImageName,
		string(op.Status), op.Log, op.Modified, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("unable to record operation %s: %w", op.Id, err)
	}
	return nil
}

// List returns the most recently recorded operations, newest first.
func (s *Store) List(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.stmtList.Query(limit)
	if err != nil {
		return nil, fmt.Errorf("unable to list history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var status string
		var recordedAt int64
		if err := rows.Scan(
			&r.Operation.Id, &r.Operation.DeviceName, &r.Operation.DeviceId,
			&r.Operation.ImageName, &status, &r.Operation.Log,
			&r.Operation.Modified, &recordedAt,
		); err != nil {
			return nil, fmt.Errorf("unable to scan history row: %w", err)
		}
		r.Operation.Status = upgrade.Status(status)
		r.RecordedAt = time.Unix(recordedAt, 0)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading history rows: %w", err)
	}
	return out, nil
}
