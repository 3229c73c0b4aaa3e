package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

const DefaultBuffer = 256

// Entry is one accepted sample.
type Entry struct {
	Frame uint64
	Raw   float64
	Level float64
	At    time.Time
}

// Recorder stores accepted samples in a sqlite file.
// Record never blocks: entries go through a bounded buffer to a writer
// goroutine and are dropped when it is full.
type Recorder struct {
	dropped uint64

	path    string
	db      *sql.DB
	entries chan Entry
	done    chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// Open opens (or creates) the sqlite file at path.
func Open(ctx context.Context, path string, buffer int) (*Recorder, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables in %s: %v", path, err)
	}

	r := &Recorder{
		path:    path,
		db:      db,
		entries: make(chan Entry, buffer),
		done:    make(chan struct{}),
	}
	go r.write()

	return r, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS samples (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			frame INTEGER NOT NULL,
			raw   REAL    NOT NULL,
			level REAL    NOT NULL,
			at    INTEGER NOT NULL
		)
	`)
	return err
}

// Record queues e for writing.
func (r *Recorder) Record(e Entry) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	select {
	case r.entries <- e:
	default:
		atomic.AddUint64(&r.dropped, 1)
	}
}

// Dropped is the number of entries lost on a full buffer.
func (r *Recorder) Dropped() uint64 {
	return atomic.LoadUint64(&r.dropped)
}

// Close flushes the queued entries and closes the database.
// Record must not be called after Close.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.entries)
		<-r.done
		r.closeErr = r.db.Close()
	})
	return r.closeErr
}

func (r *Recorder) write() {
	defer close(r.done)

	ctx := context.Background()
	for e := range r.entries {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO samples (frame, raw, level, at) VALUES (?, ?, ?, ?)`,
			e.Frame, e.Raw, e.Level, e.At.UnixNano())
		if err != nil {
			fmt.Println("record:", r.path, "->", err.Error())
		}
	}
}

// Entries returns every stored sample in insertion order.
func (r *Recorder) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT frame, raw, level, at FROM samples ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			at int64
		)
		if err := rows.Scan(&e.Frame, &e.Raw, &e.Level, &at); err != nil {
			return nil, err
		}
		e.At = time.Unix(0, at)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
