package cache

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	kind       TEXT NOT NULL,
	id         TEXT NOT NULL,
	position   INTEGER NOT NULL DEFAULT 0,
	payload    TEXT NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (kind, id)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_kind_position ON snapshots(kind, position);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS sync_log (
	name       TEXT PRIMARY KEY,
	last_sync  INTEGER NOT NULL,
	last_error TEXT NOT NULL DEFAULT ''
);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
