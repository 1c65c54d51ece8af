package docstore

// Schema is the provenance table. It is valid for both postgres and sqlite.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL DEFAULT '',
	path TEXT NOT NULL DEFAULT '',
	ingested_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
