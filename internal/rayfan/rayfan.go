// ABOUTME: Reader for VM Tomography rayfan files produced by the raytracer.
// ABOUTME: A rayfan holds every ray traced to a single instrument.
package rayfan

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// NativeEndian is the byte order used when no explicit order is given.
var NativeEndian binary.ByteOrder = binary.LittleEndian

// CurrentVersion is the rayfan format version written by current builds
// of the raytracer.
const CurrentVersion = 2

// maxFanSize bounds the ray and path-node counts a single fan header may
// declare, so a garbage or truncated header cannot drive a huge allocation.
const maxFanSize = 1 << 26

// Point is a single x, y, z position on a ray path.
type Point [3]float32

// Fan holds all rays traced to one start point (an instrument).
type Fan struct {
	StartPointID     int
	StaticCorrection float64

	EndPointIDs []int32
	EventIDs    []int32
	EventSubIDs []int32
	PickTimes   []float32
	TravelTimes []float32
	PickErrors  []float32
	Paths       [][]Point
}

// NumRays returns the number of rays in the fan.
func (f *Fan) NumRays() int { return len(f.EndPointIDs) }

// Endpoint returns the first point on ray i, or ok=false for an empty path.
func (f *Fan) Endpoint(i int) (Point, bool) {
	if len(f.Paths[i]) == 0 {
		return Point{}, false
	}
	return f.Paths[i][0], true
}

// FarPoint returns the last point on ray i, or ok=false for an empty path.
func (f *Fan) FarPoint(i int) (Point, bool) {
	if len(f.Paths[i]) == 0 {
		return Point{}, false
	}
	return f.Paths[i][len(f.Paths[i])-1], true
}

// Group is the contents of one rayfan file.
type Group struct {
	Path    string
	Version int
	Fans    []*Fan
}

// NumRays returns the total ray count across all fans.
func (g *Group) NumRays() int {
	n := 0
	for _, f := range g.Fans {
		n += f.NumRays()
	}
	return n
}

// ReadFile reads a rayfan file in native byte order.
func ReadFile(path string) (*Group, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rayfan file: %w", err)
	}
	defer f.Close()
	g, err := Read(bufio.NewReader(f), NativeEndian)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	g.Path = path
	return g, nil
}

// Read reads a rayfan group from r.
func Read(r io.Reader, endian binary.ByteOrder) (*Group, error) {
	var n int32
	if err := binary.Read(r, endian, &n); err != nil {
		return nil, fmt.Errorf("read rayfan count: %w", err)
	}
	g := &Group{Version: 1}
	// A negative leading count marks a versioned file; the real count
	// follows.
	if n < 0 {
		g.Version = int(-n)
		if err := binary.Read(r, endian, &n); err != nil {
			return nil, fmt.Errorf("read rayfan count: %w", err)
		}
	}
	if n < 0 {
		return nil, fmt.Errorf("negative rayfan count %d", n)
	}
	for i := 0; i < int(n); i++ {
		f, err := readFan(r, endian, g.Version)
		if err != nil {
			return nil, fmt.Errorf("rayfan %d: %w", i, err)
		}
		g.Fans = append(g.Fans, f)
	}
	return g, nil
}

func readFan(r io.Reader, endian binary.ByteOrder, version int) (*Fan, error) {
	var head [3]int32
	if err := binary.Read(r, endian, head[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	nrays, nsize := int(head[1]), int(head[2])
	if nrays < 0 || nsize < 0 || 3*nsize < nrays {
		return nil, fmt.Errorf("implausible header: nrays=%d nsize=%d", nrays, nsize)
	}
	if nrays > maxFanSize || nsize > maxFanSize {
		return nil, fmt.Errorf("fan header too large: nrays=%d nsize=%d", nrays, nsize)
	}

	f := &Fan{StartPointID: int(head[0])}
	if version > 1 {
		var static float32
		if err := binary.Read(r, endian, &static); err != nil {
			return nil, fmt.Errorf("read static correction: %w", err)
		}
		f.StaticCorrection = float64(static)
	}

	f.EndPointIDs = make([]int32, nrays)
	f.EventIDs = make([]int32, nrays)
	f.EventSubIDs = make([]int32, nrays)
	lens := make([]int32, nrays)
	for _, dst := range [][]int32{f.EndPointIDs, f.EventIDs, f.EventSubIDs, lens} {
		if err := binary.Read(r, endian, dst); err != nil {
			return nil, fmt.Errorf("read ray ids: %w", err)
		}
	}

	f.PickTimes = make([]float32, nrays)
	f.TravelTimes = make([]float32, nrays)
	f.PickErrors = make([]float32, nrays)
	for _, dst := range [][]float32{f.PickTimes, f.TravelTimes, f.PickErrors} {
		if err := binary.Read(r, endian, dst); err != nil {
			return nil, fmt.Errorf("read ray times: %w", err)
		}
	}

	total := 0
	for _, l := range lens {
		if l < 0 {
			return nil, fmt.Errorf("negative path length %d", l)
		}
		total += int(l)
	}
	if total != nsize {
		return nil, fmt.Errorf("path lengths sum to %d nodes, header says %d", total, nsize)
	}

	f.Paths = make([][]Point, nrays)
	for i, l := range lens {
		path := make([]Point, l)
		if err := binary.Read(r, endian, path); err != nil {
			return nil, fmt.Errorf("read ray path %d: %w", i, err)
		}
		f.Paths[i] = path
	}
	return f, nil
}
