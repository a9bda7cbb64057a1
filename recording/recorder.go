// Package recording persists cue fire history into SQLite databases. It
// records what happened on a timeline, not the schedule itself.
package recording

import (
	"database/sql"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/brycehanscomb/cuesheet/timeline"
)

// FireRecord is one row of fire history.
type FireRecord struct {
	SchedulerID string
	CueID       string
	NominalTime timeline.VTimeInMS
	WallTimeMS  int64
}

// SQLiteWriter records cue firings into a SQLite database, buffered in
// batches.
type SQLiteWriter struct {
	*sql.DB

	dbName    string
	batchSize int
	pending   []FireRecord
}

// NewSQLiteWriter creates a writer for the database at path (without the
// .sqlite3 suffix). An empty path picks a unique name.
func NewSQLiteWriter(path string) *SQLiteWriter {
	return &SQLiteWriter{
		dbName:    path,
		batchSize: 1024,
	}
}

// Init establishes the database connection and creates the fire table. It
// refuses to overwrite an existing database and registers a flush to run at
// process exit.
func (w *SQLiteWriter) Init() {
	if w.dbName == "" {
		w.dbName = "cuesheet_" + xid.New().String()
	}

	filename := w.dbName + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	w.DB = db

	_, err = db.Exec(`
		CREATE TABLE cue_fires (
			scheduler_id TEXT,
			cue_id       TEXT,
			nominal_time INTEGER,
			wall_time_ms INTEGER
		)`)
	if err != nil {
		panic(err)
	}

	atexit.Register(func() { w.Flush() })
}

// InsertFire buffers one fire record, flushing when the batch fills up.
func (w *SQLiteWriter) InsertFire(rec FireRecord) {
	w.pending = append(w.pending, rec)

	if len(w.pending) >= w.batchSize {
		w.Flush()
	}
}

// Flush writes all buffered records into the database.
func (w *SQLiteWriter) Flush() {
	if len(w.pending) == 0 {
		return
	}

	tx, err := w.Begin()
	if err != nil {
		panic(err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO cue_fires
			(scheduler_id, cue_id, nominal_time, wall_time_ms)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		panic(err)
	}

	for _, rec := range w.pending {
		_, err = stmt.Exec(
			rec.SchedulerID,
			rec.CueID,
			int64(rec.NominalTime),
			rec.WallTimeMS,
		)
		if err != nil {
			panic(err)
		}
	}

	err = stmt.Close()
	if err != nil {
		panic(err)
	}

	err = tx.Commit()
	if err != nil {
		panic(err)
	}

	w.pending = w.pending[:0]
}

// SQLiteReader reads fire history back from a database written by
// SQLiteWriter.
type SQLiteReader struct {
	*sql.DB

	dbName string
}

// NewSQLiteReader creates a reader for the database at path (without the
// .sqlite3 suffix).
func NewSQLiteReader(path string) *SQLiteReader {
	return &SQLiteReader{dbName: path}
}

// Init establishes the database connection.
func (r *SQLiteReader) Init() {
	db, err := sql.Open("sqlite3", r.dbName+".sqlite3")
	if err != nil {
		panic(err)
	}

	r.DB = db
}

// ListFires returns all recorded firings in insertion order.
func (r *SQLiteReader) ListFires() []FireRecord {
	rows, err := r.Query(`
		SELECT scheduler_id, cue_id, nominal_time, wall_time_ms
		FROM cue_fires
		ORDER BY rowid`)
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	var records []FireRecord
	for rows.Next() {
		var rec FireRecord
		var nominal int64

		err = rows.Scan(
			&rec.SchedulerID,
			&rec.CueID,
			&nominal,
			&rec.WallTimeMS,
		)
		if err != nil {
			panic(err)
		}

		rec.NominalTime = timeline.VTimeInMS(nominal)
		records = append(records, rec)
	}

	if rows.Err() != nil {
		panic(rows.Err())
	}

	return records
}
