// ABOUTME: Export of pick data to VM Tomography input files and JSON/YAML.
// ABOUTME: The .dat writers format the vmtomo_* views with NULLs as 0.0.
package pickdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rvbelefonte/rockfish/internal/models"
	"gopkg.in/yaml.v3"
)

// VMTomoFiles names the three plain-text input files consumed by the
// raytracing and inversion programs.
type VMTomoFiles struct {
	Inst  string
	Picks string
	Shots string
}

// DefaultVMTomoFiles returns the conventional input file names.
func DefaultVMTomoFiles() VMTomoFiles {
	return VMTomoFiles{Inst: "inst.dat", Picks: "picks.dat", Shots: "shots.dat"}
}

// WriteVMTomoInputs writes pick, shot, and instrument data to VM Tomography
// input files in dir, creating the directory if needed.
func (d *DB) WriteVMTomoInputs(dir string, files VMTomoFiles, f Filter) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create input directory: %w", err)
	}
	picks, err := d.VMTomoPicks(f)
	if err != nil {
		return err
	}
	shots, err := d.VMTomoShots(f)
	if err != nil {
		return err
	}
	inst, err := d.VMTomoInstruments(f)
	if err != nil {
		return err
	}
	for name, data := range map[string]string{
		files.Picks: picks,
		files.Shots: shots,
		files.Inst:  inst,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// VMTomoPicks formats pick rows (instrument, shot, branch, sub-ID, range,
// time, error) for input to the VM Tomography programs.
//
// The vmtomo_* views expose only their output columns, so filters are
// applied over all_picks instead, which carries every filterable field.
func (d *DB) VMTomoPicks(f Filter) (string, error) {
	where, args := f.where()
	return d.formatRows(`
		SELECT ensemble, trace, vm_branch, vm_subid, "offset", time, error
		FROM all_picks`+where, args...)
}

// VMTomoShots formats shot rows (shot number, x, y, z) for input to the
// VM Tomography programs.
func (d *DB) VMTomoShots(f Filter) (string, error) {
	where, args := f.where()
	return d.formatRows(`
		SELECT DISTINCT trace, source_x, source_y, source_z
		FROM all_picks`+where, args...)
}

// VMTomoInstruments formats instrument rows (instrument number, x, y, z)
// for input to the VM Tomography programs.
func (d *DB) VMTomoInstruments(f Filter) (string, error) {
	where, args := f.where()
	return d.formatRows(`
		SELECT DISTINCT ensemble, receiver_x, receiver_y, receiver_z
		FROM all_picks`+where, args...)
}

// formatRows dumps query results as space-separated text, one row per line,
// with NULL values written as 0.0.
func (d *DB) formatRows(query string, args ...any) (string, error) {
	rows, err := d.query(query, args...)
	if err != nil {
		return "", fmt.Errorf("format rows: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	values := make([]any, len(cols))
	for i := range values {
		values[i] = new(sql.NullFloat64)
	}
	for rows.Next() {
		if err := rows.Scan(values...); err != nil {
			return "", fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			nf := v.(*sql.NullFloat64)
			val := 0.0
			if nf.Valid {
				val = nf.Float64
			}
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
		}
		b.WriteByte('\n')
	}
	return b.String(), rows.Err()
}

// ExportData is the full export format for a pick database.
type ExportData struct {
	Version    string         `json:"version" yaml:"version"`
	ExportedAt time.Time      `json:"exported_at" yaml:"exported_at"`
	Tool       string         `json:"tool" yaml:"tool"`
	Picks      []*models.Pick `json:"picks" yaml:"picks"`
}

// GetAllData retrieves all picks for export.
func (d *DB) GetAllData() (*ExportData, error) {
	picks, err := d.GetPicks(Filter{})
	if err != nil {
		return nil, err
	}
	return &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Tool:       "rockfish",
		Picks:      picks,
	}, nil
}

// ImportData loads picks from an export, replacing rows with the same keys.
func (d *DB) ImportData(data *ExportData) error {
	for _, p := range data.Picks {
		if err := d.UpdatePick(p); err != nil {
			return fmt.Errorf("import pick: %w", err)
		}
	}
	return nil
}

// ExportJSON exports all picks as JSON.
func (d *DB) ExportJSON() ([]byte, error) {
	data, err := d.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all picks as YAML.
func (d *DB) ExportYAML() ([]byte, error) {
	data, err := d.GetAllData()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(data)
}
