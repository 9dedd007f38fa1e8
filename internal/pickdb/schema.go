// ABOUTME: SQL schema for the travel-time pick database.
// ABOUTME: Defines the picks, events, and traces tables plus the export views.
package pickdb

// Existing tables are never altered: every statement is IF NOT EXISTS, so
// connecting to a database with a pre-existing, incompatible picks table
// leaves it as-is and later inserts may fail.
const schema = `
CREATE TABLE IF NOT EXISTS picks (
    event TEXT NOT NULL,
    ensemble INTEGER NOT NULL,
    trace INTEGER NOT NULL,
    time REAL NOT NULL,
    predicted REAL,
    residual REAL,
    time_reduced REAL,
    error REAL NOT NULL DEFAULT 0.0,
    timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    method TEXT DEFAULT 'unknown',
    data_file TEXT,
    ray_btm_x REAL,
    ray_btm_y REAL,
    ray_btm_z REAL,
    PRIMARY KEY (event, ensemble, trace)
);

CREATE TABLE IF NOT EXISTS events (
    event TEXT NOT NULL,
    vm_branch INTEGER,
    vm_subid INTEGER DEFAULT 0,
    plot_symbol TEXT NOT NULL DEFAULT '.r',
    PRIMARY KEY (event)
);

CREATE TABLE IF NOT EXISTS traces (
    ensemble INTEGER NOT NULL,
    trace INTEGER NOT NULL,
    source_x REAL NOT NULL,
    source_y REAL NOT NULL,
    source_z REAL NOT NULL,
    receiver_x REAL NOT NULL,
    receiver_y REAL NOT NULL,
    receiver_z REAL NOT NULL,
    trace_in_file INTEGER,
    "offset" REAL,
    faz REAL,
    line TEXT,
    site TEXT,
    PRIMARY KEY (ensemble, trace)
);

CREATE INDEX IF NOT EXISTS idx_picks_event ON picks(event);

CREATE VIEW IF NOT EXISTS all_picks AS
    SELECT * FROM picks NATURAL JOIN traces NATURAL JOIN events;

CREATE VIEW IF NOT EXISTS vmtomo_picks AS
    SELECT ensemble, trace, vm_branch, vm_subid, "offset", time, error
    FROM picks NATURAL JOIN traces NATURAL JOIN events;

CREATE VIEW IF NOT EXISTS vmtomo_shots AS
    SELECT DISTINCT trace, source_x, source_y, source_z
    FROM picks NATURAL JOIN traces NATURAL JOIN events;

CREATE VIEW IF NOT EXISTS vmtomo_instruments AS
    SELECT DISTINCT ensemble, receiver_x, receiver_y, receiver_z
    FROM picks NATURAL JOIN traces NATURAL JOIN events;
`
