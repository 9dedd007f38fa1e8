// ABOUTME: Pick, Event, and Trace models for the travel-time pick database.
// ABOUTME: A Pick carries the full natural-join record across all three tables.
package models

import (
	"fmt"
	"time"
)

// DefaultMethod is recorded for picks that do not declare how they were made.
const DefaultMethod = "unknown"

// DefaultPlotSymbol is the plot symbol assigned to new events.
const DefaultPlotSymbol = ".r"

// Pick is one travel-time pick together with the event and trace metadata
// it is joined with. The (Event, Ensemble, Trace) triple is the natural key.
type Pick struct {
	// picks table
	Event       string
	Ensemble    int
	Trace       int
	Time        float64
	Predicted   *float64
	Residual    *float64
	TimeReduced *float64
	Error       float64
	Timestamp   time.Time
	Method      string
	DataFile    *string
	RayBtmX     *float64
	RayBtmY     *float64
	RayBtmZ     *float64

	// traces table
	SourceX     float64
	SourceY     float64
	SourceZ     float64
	ReceiverX   float64
	ReceiverY   float64
	ReceiverZ   float64
	TraceInFile *int
	Offset      *float64
	Faz         *float64
	Line        *string
	Site        *string

	// events table
	VMBranch   *int
	VMSubID    int
	PlotSymbol string
}

// NewPick creates a pick with the required key fields and pick time.
func NewPick(event string, ensemble, trace int, time float64) *Pick {
	return &Pick{
		Event:      event,
		Ensemble:   ensemble,
		Trace:      trace,
		Time:       time,
		Method:     DefaultMethod,
		PlotSymbol: DefaultPlotSymbol,
	}
}

// WithGeometry sets the source and receiver positions for the pick's trace.
func (p *Pick) WithGeometry(sx, sy, sz, rx, ry, rz float64) *Pick {
	p.SourceX, p.SourceY, p.SourceZ = sx, sy, sz
	p.ReceiverX, p.ReceiverY, p.ReceiverZ = rx, ry, rz
	return p
}

// WithError sets the pick error in seconds.
func (p *Pick) WithError(err float64) *Pick {
	p.Error = err
	return p
}

// WithMethod sets the picking method.
func (p *Pick) WithMethod(method string) *Pick {
	p.Method = method
	return p
}

// WithOffset sets the source-receiver offset.
func (p *Pick) WithOffset(offset float64) *Pick {
	p.Offset = &offset
	return p
}

// WithDataFile records the data file the pick was made on.
func (p *Pick) WithDataFile(name string) *Pick {
	p.DataFile = &name
	return p
}

// WithBranch sets the VM Tomography branch and sub-ID for the pick's event.
func (p *Pick) WithBranch(branch, subID int) *Pick {
	p.VMBranch = &branch
	p.VMSubID = subID
	return p
}

// Validate checks that the required key fields are present.
func (p *Pick) Validate() error {
	if p.Event == "" {
		return fmt.Errorf("pick is missing an event name")
	}
	if p.Ensemble < 0 {
		return fmt.Errorf("pick has a negative ensemble number: %d", p.Ensemble)
	}
	if p.Trace < 0 {
		return fmt.Errorf("pick has a negative trace number: %d", p.Trace)
	}
	return nil
}

// Event is one row of the events table.
type Event struct {
	Event      string
	VMBranch   *int
	VMSubID    int
	PlotSymbol string
}

// Trace is one row of the traces table, describing the acquisition
// geometry of a single recorded channel.
type Trace struct {
	Ensemble    int
	Trace       int
	SourceX     float64
	SourceY     float64
	SourceZ     float64
	ReceiverX   float64
	ReceiverY   float64
	ReceiverZ   float64
	TraceInFile *int
	Offset      *float64
	Faz         *float64
	Line        *string
	Site        *string
}
