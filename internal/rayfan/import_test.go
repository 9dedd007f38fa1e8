// ABOUTME: Tests for importing rayfan travel times into a pick database.
// ABOUTME: Covers picks vs traced mode and noise handling.
package rayfan

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvbelefonte/rockfish/internal/pickdb"
)

func testGroup(t *testing.T) *Group {
	t.Helper()
	raw := encodeGroup(t, 2, []fanFixture{testFixture()})
	g, err := Read(bytes.NewReader(raw), binary.LittleEndian)
	require.NoError(t, err)
	g.Path = "test.ray"
	return g
}

func TestImportPicks(t *testing.T) {
	db, err := pickdb.Open(pickdb.Memory)
	require.NoError(t, err)
	defer db.Close()

	n, err := Import(db, testGroup(t), ImportOptions{Mode: ModePicks})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	picks, err := db.GetPicks(pickdb.Filter{Event: "1"})
	require.NoError(t, err)
	require.Len(t, picks, 2)

	p := picks[0]
	assert.Equal(t, 100, p.Ensemble)
	assert.InDelta(t, 4.5, p.Time, 1e-5)
	// receiver comes from the fan start, source from the ray's far end
	assert.InDelta(t, 10.0, p.SourceX, 1e-5)
	assert.InDelta(t, 0.0, p.ReceiverX, 1e-5)
	require.NotNil(t, p.Offset)
	assert.InDelta(t, 10.0, *p.Offset, 1e-5)
	require.NotNil(t, p.DataFile)
	assert.Equal(t, "test.ray", *p.DataFile)
}

func TestImportTraced(t *testing.T) {
	db, err := pickdb.Open(pickdb.Memory)
	require.NoError(t, err)
	defer db.Close()

	_, err = Import(db, testGroup(t), ImportOptions{Mode: ModeTraced})
	require.NoError(t, err)

	picks, err := db.GetPicks(pickdb.Filter{})
	require.NoError(t, err)
	require.Len(t, picks, 2)
	assert.InDelta(t, 4.4, picks[0].Time, 1e-5)
}

func TestImportReplacesExisting(t *testing.T) {
	db, err := pickdb.Open(pickdb.Memory)
	require.NoError(t, err)
	defer db.Close()

	g := testGroup(t)
	_, err = Import(db, g, ImportOptions{Mode: ModePicks})
	require.NoError(t, err)
	_, err = Import(db, g, ImportOptions{Mode: ModeTraced})
	require.NoError(t, err)

	picks, err := db.GetPicks(pickdb.Filter{})
	require.NoError(t, err)
	assert.Len(t, picks, 2)
}

func TestImportWithNoise(t *testing.T) {
	db, err := pickdb.Open(pickdb.Memory)
	require.NoError(t, err)
	defer db.Close()

	opts := ImportOptions{
		Mode:  ModePicks,
		Noise: 0.05,
		Rand:  rand.New(rand.NewSource(42)),
	}
	_, err = Import(db, testGroup(t), opts)
	require.NoError(t, err)

	picks, err := db.GetPicks(pickdb.Filter{})
	require.NoError(t, err)
	for _, p := range picks {
		assert.InDelta(t, 0.05, p.Error, 1e-9)
	}
	// times moved by at most the noise amplitude
	assert.InDelta(t, 4.5, picks[0].Time, 0.05+1e-9)
}

func TestImportBadMode(t *testing.T) {
	db, err := pickdb.Open(pickdb.Memory)
	require.NoError(t, err)
	defer db.Close()

	_, err = Import(db, testGroup(t), ImportOptions{Mode: "bogus"})
	assert.Error(t, err)
}
