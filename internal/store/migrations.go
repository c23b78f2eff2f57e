package store

const schema = `
CREATE TABLE IF NOT EXISTS clicklog (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    source        TEXT NOT NULL,
    intent_key    TEXT NOT NULL,
    shortcut_id   TEXT NOT NULL DEFAULT '',
    query         TEXT NOT NULL DEFAULT '',
    hit_count     INTEGER NOT NULL DEFAULT 1,
    last_hit_time INTEGER NOT NULL,
    format        TEXT NOT NULL DEFAULT '',
    text1         TEXT NOT NULL DEFAULT '',
    text2         TEXT NOT NULL DEFAULT '',
    text2_url     TEXT NOT NULL DEFAULT '',
    icon1         TEXT NOT NULL DEFAULT '',
    icon2         TEXT NOT NULL DEFAULT '',
    intent_action TEXT NOT NULL DEFAULT '',
    intent_data   TEXT NOT NULL DEFAULT '',
    intent_extra  TEXT NOT NULL DEFAULT '',
    suggest_query TEXT NOT NULL DEFAULT '',
    log_type      TEXT NOT NULL DEFAULT '',
    spinner       BOOLEAN NOT NULL DEFAULT 0,
    UNIQUE(source, intent_key, query)
);

CREATE INDEX IF NOT EXISTS idx_clicklog_query ON clicklog(query);
CREATE INDEX IF NOT EXISTS idx_clicklog_entity ON clicklog(source, shortcut_id);
CREATE INDEX IF NOT EXISTS idx_clicklog_last_hit ON clicklog(last_hit_time);
`
