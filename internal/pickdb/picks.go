// ABOUTME: Pick CRUD operations against the picks, events, and traces tables.
// ABOUTME: Adding a pick also upserts the event and trace metadata rows.
package pickdb

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rvbelefonte/rockfish/internal/models"
)

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("pickdb: not found")

const timestampLayout = "2006-01-02 15:04:05"

// Filter selects picks by field values. Zero-valued fields are ignored;
// use the pointer fields to match on zero.
type Filter struct {
	Event    string
	Ensemble *int
	Trace    *int
	Method   string
	Line     string
	Site     string
	VMBranch *int
}

func (f Filter) where() (string, []any) {
	var conds []string
	var args []any
	if f.Event != "" {
		conds = append(conds, "event = ?")
		args = append(args, f.Event)
	}
	if f.Ensemble != nil {
		conds = append(conds, "ensemble = ?")
		args = append(args, *f.Ensemble)
	}
	if f.Trace != nil {
		conds = append(conds, "trace = ?")
		args = append(args, *f.Trace)
	}
	if f.Method != "" {
		conds = append(conds, "method = ?")
		args = append(args, f.Method)
	}
	if f.Line != "" {
		conds = append(conds, "line = ?")
		args = append(args, f.Line)
	}
	if f.Site != "" {
		conds = append(conds, "site = ?")
		args = append(args, f.Site)
	}
	if f.VMBranch != nil {
		conds = append(conds, "vm_branch = ?")
		args = append(args, *f.VMBranch)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// AddPick inserts a new pick and makes sure rows exist in the events and
// traces tables for its keys. Adding a duplicate (event, ensemble, trace)
// returns an error; use UpdatePick to overwrite.
func (d *DB) AddPick(p *models.Pick) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := d.exec(`
		INSERT INTO picks (event, ensemble, trace, time, predicted, residual,
			time_reduced, error, method, data_file, ray_btm_x, ray_btm_y, ray_btm_z)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Event, p.Ensemble, p.Trace, p.Time, p.Predicted, p.Residual,
		p.TimeReduced, p.Error, methodOrDefault(p.Method), p.DataFile,
		p.RayBtmX, p.RayBtmY, p.RayBtmZ); err != nil {
		return fmt.Errorf("add pick %s/%d/%d: %w", p.Event, p.Ensemble, p.Trace, err)
	}
	if err := d.upsertEvent(p); err != nil {
		return err
	}
	return d.upsertTrace(p)
}

// UpdatePick inserts the pick, replacing any existing pick row with the
// same keys. Event and trace metadata rows are updated in place, keeping
// stored fields the pick does not carry.
func (d *DB) UpdatePick(p *models.Pick) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := d.exec(`
		INSERT OR REPLACE INTO picks (event, ensemble, trace, time, predicted,
			residual, time_reduced, error, method, data_file,
			ray_btm_x, ray_btm_y, ray_btm_z)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Event, p.Ensemble, p.Trace, p.Time, p.Predicted, p.Residual,
		p.TimeReduced, p.Error, methodOrDefault(p.Method), p.DataFile,
		p.RayBtmX, p.RayBtmY, p.RayBtmZ); err != nil {
		return fmt.Errorf("update pick %s/%d/%d: %w", p.Event, p.Ensemble, p.Trace, err)
	}
	if err := d.upsertEvent(p); err != nil {
		return err
	}
	return d.upsertTrace(p)
}

// RemovePick deletes a pick by its natural key. Rows in the events and
// traces tables are left behind, even when the removed pick was the last
// one for its event or trace. Removing a nonexistent pick is a no-op.
func (d *DB) RemovePick(event string, ensemble, trace int) error {
	_, err := d.exec(
		"DELETE FROM picks WHERE event = ? AND ensemble = ? AND trace = ?",
		event, ensemble, trace)
	if err != nil {
		return fmt.Errorf("remove pick %s/%d/%d: %w", event, ensemble, trace, err)
	}
	return nil
}

// upsertEvent updates only the fields the pick carries: a pick without
// branch data must not wipe a previously recorded vm_branch/vm_subid, and
// the stored plot symbol survives later picks for the same event.
func (d *DB) upsertEvent(p *models.Pick) error {
	plotSymbol := p.PlotSymbol
	if plotSymbol == "" {
		plotSymbol = models.DefaultPlotSymbol
	}
	if _, err := d.exec(`
		INSERT INTO events (event, vm_branch, vm_subid, plot_symbol)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(event) DO UPDATE SET
			vm_branch = excluded.vm_branch,
			vm_subid = excluded.vm_subid
		WHERE excluded.vm_branch IS NOT NULL`,
		p.Event, p.VMBranch, p.VMSubID, plotSymbol); err != nil {
		return fmt.Errorf("upsert event %s: %w", p.Event, err)
	}
	return nil
}

// upsertTrace always refreshes the source and receiver geometry but keeps
// existing optional metadata when the pick leaves it unset.
func (d *DB) upsertTrace(p *models.Pick) error {
	if _, err := d.exec(`
		INSERT INTO traces (ensemble, trace, source_x, source_y,
			source_z, receiver_x, receiver_y, receiver_z, trace_in_file,
			"offset", faz, line, site)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ensemble, trace) DO UPDATE SET
			source_x = excluded.source_x,
			source_y = excluded.source_y,
			source_z = excluded.source_z,
			receiver_x = excluded.receiver_x,
			receiver_y = excluded.receiver_y,
			receiver_z = excluded.receiver_z,
			trace_in_file = COALESCE(excluded.trace_in_file, trace_in_file),
			"offset" = COALESCE(excluded."offset", "offset"),
			faz = COALESCE(excluded.faz, faz),
			line = COALESCE(excluded.line, line),
			site = COALESCE(excluded.site, site)`,
		p.Ensemble, p.Trace, p.SourceX, p.SourceY, p.SourceZ,
		p.ReceiverX, p.ReceiverY, p.ReceiverZ, p.TraceInFile,
		p.Offset, p.Faz, p.Line, p.Site); err != nil {
		return fmt.Errorf("upsert trace %d/%d: %w", p.Ensemble, p.Trace, err)
	}
	return nil
}

// GetPicks returns picks joined with their event and trace metadata,
// optionally narrowed by a filter.
func (d *DB) GetPicks(f Filter) ([]*models.Pick, error) {
	where, args := f.where()
	rows, err := d.query(`
		SELECT event, ensemble, trace, time, predicted, residual, time_reduced,
			error, timestamp, method, data_file, ray_btm_x, ray_btm_y, ray_btm_z,
			source_x, source_y, source_z, receiver_x, receiver_y, receiver_z,
			trace_in_file, "offset", faz, line, site,
			vm_branch, vm_subid, plot_symbol
		FROM all_picks`+where+` ORDER BY event, ensemble, trace`, args...)
	if err != nil {
		return nil, fmt.Errorf("get picks: %w", err)
	}
	defer rows.Close()

	var picks []*models.Pick
	for rows.Next() {
		p, err := scanPick(rows)
		if err != nil {
			return nil, err
		}
		picks = append(picks, p)
	}
	return picks, rows.Err()
}

func scanPick(rows *sql.Rows) (*models.Pick, error) {
	var p models.Pick
	var timestamp string
	var method, plotSymbol sql.NullString
	var vmSubID sql.NullInt64
	err := rows.Scan(&p.Event, &p.Ensemble, &p.Trace, &p.Time,
		&p.Predicted, &p.Residual, &p.TimeReduced, &p.Error, &timestamp,
		&method, &p.DataFile, &p.RayBtmX, &p.RayBtmY, &p.RayBtmZ,
		&p.SourceX, &p.SourceY, &p.SourceZ,
		&p.ReceiverX, &p.ReceiverY, &p.ReceiverZ,
		&p.TraceInFile, &p.Offset, &p.Faz, &p.Line, &p.Site,
		&p.VMBranch, &vmSubID, &plotSymbol)
	if err != nil {
		return nil, fmt.Errorf("scan pick: %w", err)
	}
	if method.Valid {
		p.Method = method.String
	} else {
		p.Method = models.DefaultMethod
	}
	if plotSymbol.Valid {
		p.PlotSymbol = plotSymbol.String
	}
	if vmSubID.Valid {
		p.VMSubID = int(vmSubID.Int64)
	}
	if t, err := time.Parse(timestampLayout, timestamp); err == nil {
		p.Timestamp = t
	} else {
		slog.Warn("pick has an unparseable timestamp",
			"event", p.Event, "ensemble", p.Ensemble, "trace", p.Trace,
			"timestamp", timestamp)
	}
	return &p, nil
}

// CountPicksByEvent returns the number of picks recorded for an event.
func (d *DB) CountPicksByEvent(event string) (int, error) {
	var n int
	err := d.db.QueryRow(
		"SELECT COUNT(*) FROM picks WHERE event = ?", event).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count picks for %s: %w", event, err)
	}
	return n, nil
}

// Events returns the unique event names in the database.
func (d *DB) Events() ([]string, error) {
	rows, err := d.query("SELECT event FROM events ORDER BY event")
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Ensembles returns the unique ensemble numbers with picks, optionally
// narrowed by a filter.
func (d *DB) Ensembles(f Filter) ([]int, error) {
	where, args := f.where()
	rows, err := d.query(
		"SELECT DISTINCT ensemble FROM all_picks"+where+" ORDER BY ensemble",
		args...)
	if err != nil {
		return nil, fmt.Errorf("list ensembles: %w", err)
	}
	defer rows.Close()

	var ensembles []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		ensembles = append(ensembles, n)
	}
	return ensembles, rows.Err()
}

// SourcePositions returns the source x, y, z coordinates from the traces table.
func (d *DB) SourcePositions() ([][3]float64, error) {
	return d.positions("SELECT source_x, source_y, source_z FROM traces")
}

// ReceiverPositions returns the receiver x, y, z coordinates from the
// traces table.
func (d *DB) ReceiverPositions() ([][3]float64, error) {
	return d.positions("SELECT receiver_x, receiver_y, receiver_z FROM traces")
}

func (d *DB) positions(query string) ([][3]float64, error) {
	rows, err := d.query(query)
	if err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}
	defer rows.Close()

	var pos [][3]float64
	for rows.Next() {
		var p [3]float64
		if err := rows.Scan(&p[0], &p[1], &p[2]); err != nil {
			return nil, err
		}
		pos = append(pos, p)
	}
	return pos, rows.Err()
}

// InstrumentPosition returns the receiver x, y, z position of an instrument
// (ensemble) from the VM Tomography instrument view.
func (d *DB) InstrumentPosition(ensemble int) ([3]float64, error) {
	var p [3]float64
	err := d.db.QueryRow(`
		SELECT receiver_x, receiver_y, receiver_z FROM vmtomo_instruments
		WHERE ensemble = ?`, ensemble).Scan(&p[0], &p[1], &p[2])
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("instrument %d: %w", ensemble, ErrNotFound)
	}
	if err != nil {
		return p, fmt.Errorf("instrument %d position: %w", ensemble, err)
	}
	return p, nil
}

func methodOrDefault(method string) string {
	if method == "" {
		return models.DefaultMethod
	}
	return method
}
