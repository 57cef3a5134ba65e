package port

import (
	"errors"
	"fmt"
)

// ErrPortRangeExhausted matches every *ExhaustedError via errors.Is.
var ErrPortRangeExhausted = errors.New("port range exhausted")

// Request describes the port a single logical service would like to bind.
//
// RangeMin <= Preferred <= RangeMax is expected but not enforced; callers
// are responsible for supplying a sane preferred value.
type Request struct {
	// Name is the service label used in warnings and errors (e.g. "MySQL").
	Name string `json:"name"`

	// Preferred is the port returned as-is when nothing listens on it.
	Preferred int `json:"preferred"`

	// RangeMin and RangeMax bound the fallback scan (inclusive).
	RangeMin int `json:"rangeMin"`
	RangeMax int `json:"rangeMax"`
}

// Resolution is the outcome of resolving one Request.
type Resolution struct {
	Request Request `json:"request"`

	// Port is the port the service will bind to.
	Port int `json:"port"`

	// UsedFallback is true when Preferred was in use and Port came from
	// the range scan.
	UsedFallback bool `json:"usedFallback"`
}

// ExhaustedError reports that Preferred and every port in the scanned
// range were in use. It is always fatal for the provisioning run.
type ExhaustedError struct {
	Name     string
	RangeMin int
	RangeMax int
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no available ports found in range %d-%d for %s", e.RangeMin, e.RangeMax, e.Name)
}

// Is makes errors.Is(err, ErrPortRangeExhausted) true for any ExhaustedError.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrPortRangeExhausted
}

// Resolver decides which host port each service actually binds to.
//
// It is stateless between calls: it does not remember ports it has already
// handed out. Callers that need two services kept apart (primary and test
// database) do so by choosing the second request's range.
type Resolver struct {
	prober Prober
	host   string
}

// NewResolver creates a Resolver that probes host through prober.
// An empty host selects DefaultHost.
func NewResolver(prober Prober, host string) *Resolver {
	if host == "" {
		host = DefaultHost
	}
	return &Resolver{prober: prober, host: host}
}

// Resolve returns Preferred when it is free. Otherwise it scans
// [RangeMin, RangeMax] in ascending order and returns the first free
// port, or an *ExhaustedError when none is free.
//
// The scan starts at RangeMin rather than Preferred+1, so a fallback port
// can be numerically lower than the preferred one. Preferred is also
// accepted when it lies outside the range.
func (r *Resolver) Resolve(req Request) (Resolution, error) {
	if !r.prober.IsPortOpen(req.Preferred, r.host) {
		return Resolution{Request: req, Port: req.Preferred}, nil
	}

	for port := req.RangeMin; port <= req.RangeMax; port++ {
		if !r.prober.IsPortOpen(port, r.host) {
			return Resolution{Request: req, Port: port, UsedFallback: true}, nil
		}
	}

	return Resolution{}, &ExhaustedError{Name: req.Name, RangeMin: req.RangeMin, RangeMax: req.RangeMax}
}

// ResolvePort is the label/number form of Resolve.
func (r *Resolver) ResolvePort(label string, preferred, rangeMin, rangeMax int) (int, error) {
	res, err := r.Resolve(Request{Name: label, Preferred: preferred, RangeMin: rangeMin, RangeMax: rangeMax})
	if err != nil {
		return 0, err
	}
	return res.Port, nil
}
