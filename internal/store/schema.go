package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    segments             INTEGER NOT NULL DEFAULT 0,
    malformed_segments   INTEGER NOT NULL DEFAULT 0,
    unusable_points      INTEGER NOT NULL DEFAULT 0,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS points (
    file_path            TEXT NOT NULL REFERENCES file_tracker(file_path) ON DELETE CASCADE,
    seq                  INTEGER NOT NULL,
    timestamp_ms         INTEGER NOT NULL,
    model                TEXT NOT NULL,
    type                 TEXT NOT NULL,
    session_id           TEXT,
    value                REAL NOT NULL,
    PRIMARY KEY (file_path, seq)
);

CREATE INDEX IF NOT EXISTS idx_points_session ON points(session_id);
CREATE INDEX IF NOT EXISTS idx_points_time ON points(timestamp_ms);
`
