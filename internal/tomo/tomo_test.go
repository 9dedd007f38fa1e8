// ABOUTME: Tests for the tomography wrappers.
// ABOUTME: Checks stdin block contents and runs against stub executables.
package tomo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvbelefonte/rockfish/internal/models"
	"github.com/rvbelefonte/rockfish/internal/pickdb"
	"github.com/rvbelefonte/rockfish/internal/vm"
)

func TestFortranBool(t *testing.T) {
	assert.Equal(t, "T", fortranBool(true))
	assert.Equal(t, "F", fortranBool(false))
	assert.Equal(t, 1, boolInt(true))
	assert.Equal(t, 0, boolInt(false))
}

func TestBuildRaytraceInput(t *testing.T) {
	opts := DefaultRaytraceOptions()
	stdin := buildRaytraceInput("/tmp/model.vm", "/tmp/out.ray", 16,
		[3]float64{5.5, 0, 4.0}, [3]int{100, 1, 50}, [3]int{12, 0, 24}, 2, false, opts)

	lines := strings.Split(strings.TrimRight(stdin, "\n"), "\n")
	require.Len(t, lines, 14)
	assert.Equal(t, "/tmp/model.vm", lines[0])
	assert.Equal(t, "16", lines[1])
	assert.Equal(t, "100,1,50", lines[2])
	// reciprocal of the minimum velocity, 1/1.4
	assert.Equal(t, "0.7142857142857143", lines[3])
	assert.Equal(t, "620", lines[4])
	assert.Equal(t, "5.50000    0.00000    4.00000   ", lines[5])
	assert.Equal(t, "0,2", lines[6])
	assert.Equal(t, "12,0,24", lines[7])
	assert.Equal(t, "0.5", lines[8])
	assert.Equal(t, filepath.Join("forward", "shots.dat"), lines[9])
	assert.Equal(t, filepath.Join("forward", "picks.dat"), lines[10])
	assert.Equal(t, "/tmp/out.ray", lines[11])
	assert.Equal(t, "0", lines[12])
	assert.Equal(t, "0.0", lines[13])

	stdin = buildRaytraceInput("/tmp/model.vm", "/tmp/out.ray", 16,
		[3]float64{5.5, 0, 4.0}, [3]int{100, 1, 50}, [3]int{12, 0, 24}, 2, true, opts)
	lines = strings.Split(strings.TrimRight(stdin, "\n"), "\n")
	assert.Equal(t, "1", lines[12])
}

func TestBuildInvertInput(t *testing.T) {
	model := vm.New([3]float64{0, 0, 0}, [3]float64{100, 0, 30}, 0.5, 1, 0.1, 2)
	opts := DefaultInvertOptions()
	opts.DiagnosticDir = "inverse"

	stdin := buildInvertInput("in.vm", "rays.ray", "out.vm", model, opts)
	lines := strings.Split(strings.TrimRight(stdin, "\n"), "\n")
	require.Len(t, lines, 33)

	assert.Equal(t, "T T T 0", lines[0])
	assert.Equal(t, "T", lines[1])
	assert.Equal(t, "T T", lines[2])
	assert.Equal(t, "in.vm", lines[3])
	assert.Equal(t, "201 1 301", lines[4])
	assert.Equal(t, "0.1 30", lines[5])
	assert.Equal(t, "0 2", lines[6])
	assert.Equal(t, "rays.ray", lines[7])
	assert.Equal(t, filepath.Join("inverse", "frechet_matrix.bin"), lines[8])
	assert.Equal(t, "1", lines[9])
	assert.Equal(t, "20 5", lines[10])
	assert.Equal(t, "0.1 0.1 0.5", lines[17])
	assert.Equal(t, "0", lines[18])
	assert.Equal(t, "0.02 0.005 2 0.04", lines[19])
	assert.Equal(t, "0.2 2 2 2", lines[20])
	assert.Equal(t, "0.5 10", lines[21])
	assert.Equal(t, "1", lines[22])
	assert.Equal(t, filepath.Join("inverse", "sol.dat"), lines[29])
	assert.Equal(t, "1", lines[30])
	assert.Equal(t, "station_statics.dat", lines[31])
	assert.Equal(t, "out.vm", lines[32])
}

func TestBuildInvertInputWithoutStatics(t *testing.T) {
	model := vm.New([3]float64{0, 0, 0}, [3]float64{10, 0, 10}, 1, 1, 1, 0)
	opts := DefaultInvertOptions()
	opts.StationCorrection = false

	stdin := buildInvertInput("in.vm", "rays.ray", "out.vm", model, opts)
	lines := strings.Split(stdin, "\n")
	assert.Equal(t, "T T F 0", lines[0])
}

func TestBuildSmoothInput(t *testing.T) {
	opts := DefaultSmoothOptions()
	stdin := buildSmoothInput("in.vm", "out.vm", opts)
	assert.Equal(t, "in.vm\n5,1,5\n1\nout.vm\n", stdin)
}

func TestRunProgramMissing(t *testing.T) {
	err := runProgram(context.Background(), "no-such-program-here", "", nil, nil)
	assert.Error(t, err)
}

// stubProgram installs a shell script on PATH that appends a marker to the
// file named on the given stdin line, then captures all stdin.
func stubProgram(t *testing.T, name string, outputLine int) string {
	t.Helper()
	dir := t.TempDir()
	capture := filepath.Join(dir, "stdin.txt")
	script := fmt.Sprintf("#!/bin/sh\ncat > %s\nout=$(sed -n %dp %s)\necho traced >> \"$out\"\n",
		capture, outputLine, capture)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return capture
}

func raytraceTestDB(t *testing.T) *pickdb.DB {
	t.Helper()
	db, err := pickdb.Open(pickdb.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for i, trace := range []int{1, 2, 3} {
		p := models.NewPick("Pg", 100, trace, 4.5+float64(i)).
			WithGeometry(float64(10*trace), 0, 0.006, 40, 0, 4.5).
			WithError(0.05).
			WithBranch(1, 0)
		require.NoError(t, db.AddPick(p))
	}
	return db
}

func TestRaytraceWithStub(t *testing.T) {
	capture := stubProgram(t, RaytraceProgram, 12)
	db := raytraceTestDB(t)

	dir := t.TempDir()
	vmfile := filepath.Join(dir, "model.vm")
	require.NoError(t, vm.Default().WriteFile(vmfile))
	rayfile := filepath.Join(dir, "out.ray")

	opts := DefaultRaytraceOptions()
	opts.InputDir = filepath.Join(dir, "forward")
	require.NoError(t, Raytrace(context.Background(), db, vmfile, rayfile, opts))

	// the stub appended one line per instrument to the rayfile
	data, err := os.ReadFile(rayfile)
	require.NoError(t, err)
	assert.Equal(t, "traced\n", string(data))

	stdin, err := os.ReadFile(capture)
	require.NoError(t, err)
	lines := strings.Split(string(stdin), "\n")
	assert.Equal(t, vmfile, lines[0])
	assert.Equal(t, "100", lines[1])

	// cleanup removed the exported input files
	_, err = os.Stat(opts.InputDir)
	assert.True(t, os.IsNotExist(err))
}

func TestRaytraceNoPicks(t *testing.T) {
	stubProgram(t, RaytraceProgram, 12)
	db, err := pickdb.Open(pickdb.Memory)
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	vmfile := filepath.Join(dir, "model.vm")
	require.NoError(t, vm.Default().WriteFile(vmfile))

	opts := DefaultRaytraceOptions()
	opts.InputDir = filepath.Join(dir, "forward")
	err = Raytrace(context.Background(), db, vmfile, filepath.Join(dir, "out.ray"), opts)
	assert.ErrorContains(t, err, "no picks")
}

func TestInvertWithStub(t *testing.T) {
	stubProgram(t, InvertProgram, 33)

	dir := t.TempDir()
	vmfile := filepath.Join(dir, "in.vm")
	require.NoError(t, vm.Default().WriteFile(vmfile))
	outfile := filepath.Join(dir, "out.vm")

	opts := DefaultInvertOptions()
	opts.DiagnosticDir = filepath.Join(dir, "inverse")
	require.NoError(t, Invert(context.Background(), vmfile, "rays.ray", outfile, opts))

	data, err := os.ReadFile(outfile)
	require.NoError(t, err)
	assert.Equal(t, "traced\n", string(data))
}

func TestSmoothWithStub(t *testing.T) {
	stubProgram(t, SmoothProgram, 4)

	dir := t.TempDir()
	outfile := filepath.Join(dir, "smoothed.vm")
	require.NoError(t, Smooth(context.Background(), "in.vm", outfile, DefaultSmoothOptions()))

	data, err := os.ReadFile(outfile)
	require.NoError(t, err)
	assert.Equal(t, "traced\n", string(data))
}
