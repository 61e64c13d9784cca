// Package stats keeps a local history of skipped segments so the time saved
// can be reported. Segment data itself is never stored.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/mpv-sponsorblock/internal/db"
)

const (
	appName    = "mpv-sponsorblock"
	dbFileName = "stats.db"
)

// Skip is one segment skipped during playback.
type Skip struct {
	VideoID     string
	SegmentUUID string
	Category    string
	// Seconds of playback jumped over.
	Seconds float64
	At      time.Time
}

// CategoryTotal aggregates the skips of one category.
type CategoryTotal struct {
	Category string
	Count    int
	Seconds  float64
}

// Summary is the aggregate view shown by the stats command.
type Summary struct {
	Count      int
	Seconds    float64
	Categories []CategoryTotal // ordered by seconds saved, descending
	LastVideo  string
	LastSkip   time.Time // zero when nothing was recorded
}

// Store persists skips in sqlite.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the database location under the XDG data directory.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := initSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: conn}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts skips in a single transaction.
func (s *Store) Record(ctx context.Context, skips []Skip) error {
	if len(skips) == 0 {
		return nil
	}
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO skips (video_id, segment_uuid, category, seconds, skipped_at)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, sk := range skips {
			if _, err := stmt.ExecContext(ctx,
				sk.VideoID, sk.SegmentUUID, sk.Category, sk.Seconds, sk.At.UnixMilli(),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// Summary aggregates every recorded skip.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var sum Summary

	var (
		lastVideo sql.NullString
		lastAt    sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(seconds), 0),
			(SELECT video_id FROM skips ORDER BY skipped_at DESC, id DESC LIMIT 1),
			MAX(skipped_at)
		FROM skips
	`).Scan(&sum.Count, &sum.Seconds, &lastVideo, &lastAt)
	if err != nil {
		return Summary{}, err
	}
	sum.LastVideo = db.NullStringValue(lastVideo)
	if lastAt.Valid {
		sum.LastSkip = time.UnixMilli(db.NullInt64Value(lastAt))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*), SUM(seconds)
		FROM skips
		GROUP BY category
		ORDER BY SUM(seconds) DESC, category
	`)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Count, &ct.Seconds); err != nil {
			return Summary{}, err
		}
		sum.Categories = append(sum.Categories, ct)
	}
	return sum, rows.Err()
}
