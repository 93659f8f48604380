package ledger

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    source_path                  TEXT PRIMARY KEY,
    project                      TEXT NOT NULL,
    date                         TEXT NOT NULL,
    start_time                   TEXT NOT NULL,
    end_time                     TEXT NOT NULL,
    duration_seconds             INTEGER NOT NULL,
    input_tokens                 INTEGER NOT NULL DEFAULT 0,
    output_tokens                INTEGER NOT NULL DEFAULT 0,
    cache_creation_input_tokens  INTEGER NOT NULL DEFAULT 0,
    cache_read_input_tokens      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS synced_days (
    date          TEXT NOT NULL,
    workspace_id  TEXT NOT NULL,
    synced_at     TEXT NOT NULL,
    PRIMARY KEY (date, workspace_id)
);

CREATE TABLE IF NOT EXISTS synced_entries (
    date          TEXT NOT NULL,
    workspace_id  TEXT NOT NULL,
    project_id    TEXT NOT NULL,
    entry_id      TEXT NOT NULL,
    synced_at     TEXT NOT NULL,
    PRIMARY KEY (date, workspace_id, project_id)
);

CREATE TABLE IF NOT EXISTS sync_runs (
    id              TEXT PRIMARY KEY,
    started_at      TEXT NOT NULL,
    finished_at     TEXT,
    days_synced     INTEGER NOT NULL DEFAULT 0,
    entries_posted  INTEGER NOT NULL DEFAULT 0,
    error           TEXT
);

CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_time);
CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(date);
`
