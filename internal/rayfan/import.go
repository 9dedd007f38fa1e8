// ABOUTME: Loads raytraced travel times from a rayfan group into a pick database.
// ABOUTME: Supports reimporting observed picks or traced times, with optional noise.
package rayfan

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"github.com/rvbelefonte/rockfish/internal/models"
	"github.com/rvbelefonte/rockfish/internal/pickdb"
)

// Mode selects which travel times an import stores.
type Mode string

const (
	// ModePicks stores the observed pick times carried in the rayfan file.
	ModePicks Mode = "picks"
	// ModeTraced stores the raytraced travel times.
	ModeTraced Mode = "traced"
)

// ImportOptions control a rayfan import.
type ImportOptions struct {
	Mode Mode
	// Noise adds uniform random noise of this amplitude (seconds) to every
	// imported time and records it as the pick error. Zero adds none.
	Noise float64
	// Rand supplies the noise source; nil uses the global generator.
	Rand *rand.Rand
}

// Import stores the travel times of a rayfan group as picks. Existing
// picks for the same event, ensemble, and trace are replaced.
func Import(db *pickdb.DB, g *Group, opts ImportOptions) (int, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModePicks
	}
	uniform := rand.Float64
	if opts.Rand != nil {
		uniform = opts.Rand.Float64
	}

	n := 0
	for _, fan := range g.Fans {
		for i := 0; i < fan.NumRays(); i++ {
			var t float64
			switch mode {
			case ModePicks:
				t = float64(fan.PickTimes[i])
			case ModeTraced:
				t = float64(fan.TravelTimes[i])
			default:
				return n, fmt.Errorf("invalid import mode %q", mode)
			}
			pickErr := 0.0
			if opts.Noise > 0 {
				t += opts.Noise * 2 * (uniform() - 0.5)
				pickErr = opts.Noise
			}

			recv, ok := fan.Endpoint(i)
			if !ok {
				continue // ray never traced, no geometry to store
			}
			src, _ := fan.FarPoint(i)
			offset := math.Hypot(float64(src[0])-float64(recv[0]),
				float64(src[1])-float64(recv[1]))

			event := strconv.Itoa(int(fan.EventIDs[i]))
			p := models.NewPick(event, fan.StartPointID, int(fan.EndPointIDs[i]), t).
				WithGeometry(float64(src[0]), float64(src[1]), float64(src[2]),
					float64(recv[0]), float64(recv[1]), float64(recv[2])).
				WithError(pickErr).
				WithOffset(offset).
				WithBranch(int(fan.EventIDs[i]), int(fan.EventSubIDs[i])).
				WithDataFile(g.Path)
			p.TimeReduced = &t
			if err := db.UpdatePick(p); err != nil {
				return n, fmt.Errorf("storing ray %d of fan %d: %w", i, fan.StartPointID, err)
			}
			n++
		}
	}
	return n, nil
}
