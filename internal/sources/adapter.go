package sources

import (
	"fmt"
	"time"

	"github.com/staffgraph/staffgraph/internal/dates"
	"github.com/staffgraph/staffgraph/internal/facts"
)

// Observation is the common format all source adapters produce: one
// person seen in one role at one organization, with optional extra
// facts attached. Org names arrive raw and are normalized downstream.
type Observation struct {
	PersonName string
	OrgName    string
	Role       string

	Start dates.Date
	End   dates.Date

	// Facts carries assertions beyond the tenure itself (nationality,
	// classification overrides, free-text notes).
	Facts []facts.Fact
}

// SourceAdapter defines the interface for source-specific payload parsing
type SourceAdapter interface {
	// GetSourceName returns the source name (e.g. "curated")
	GetSourceName() string

	// GetCategory returns the trust tier observations from this source carry
	GetCategory() facts.SourceCategory

	// ParsePayload parses a raw import body into normalized observations.
	// A single payload can contain many observations (e.g. a full roster).
	ParsePayload(body []byte, observedAt time.Time) ([]Observation, error)
}

// BaseAdapter provides common functionality for all adapters
type BaseAdapter struct {
	SourceName string
	Category   facts.SourceCategory
}

// GetSourceName returns the source name
func (b *BaseAdapter) GetSourceName() string {
	return b.SourceName
}

// GetCategory returns the trust tier for this source
func (b *BaseAdapter) GetCategory() facts.SourceCategory {
	return b.Category
}

// Registry maps source names to their adapters.
type Registry struct {
	adapters map[string]SourceAdapter
}

// NewRegistry creates a registry with all built-in adapters registered.
func NewRegistry() *Registry {
	r := &Registry{adapters: make(map[string]SourceAdapter)}
	r.Register(NewCuratedAdapter())
	r.Register(NewRosterAdapter())
	r.Register(NewNewsAdapter())
	return r
}

// Register adds an adapter under its source name.
func (r *Registry) Register(a SourceAdapter) {
	r.adapters[a.GetSourceName()] = a
}

// Get returns the adapter for a source name.
func (r *Registry) Get(name string) (SourceAdapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("unknown source: %s", name)
	}
	return a, nil
}

// Names lists the registered source names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}

// parseDate converts an optional wire date into a Date, tolerating the
// formats the sources actually emit. Empty strings mean "unknown" for
// starts and "ongoing" for ends; both map to the zero Date.
func parseDate(s string) (dates.Date, error) {
	if s == "" {
		return dates.Date{}, nil
	}
	d, err := dates.Parse(s)
	if err != nil {
		return dates.Date{}, fmt.Errorf("bad date %q: %w", s, err)
	}
	return d, nil
}
