package stats

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS skips (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			video_id TEXT NOT NULL,
			segment_uuid TEXT NOT NULL,
			category TEXT NOT NULL,
			seconds REAL NOT NULL,
			skipped_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_skips_category ON skips(category);
		CREATE INDEX IF NOT EXISTS idx_skips_skipped_at ON skips(skipped_at);
	`)
	if err != nil {
		return err
	}

	var version int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return err
	}
	if version < currentSchemaVersion {
		_, err = db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", currentSchemaVersion)
	}
	return err
}
