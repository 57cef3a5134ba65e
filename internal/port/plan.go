package port

import (
	"errors"
	"fmt"

	"github.com/shinji-kodama/stackup/internal/model"
)

// Range is the preferred port and fallback scan range for one service.
type Range struct {
	Preferred int `json:"preferred" yaml:"preferred" toml:"preferred"`
	Min       int `json:"min" yaml:"min" toml:"min"`
	Max       int `json:"max" yaml:"max" toml:"max"`
}

// Validate checks that the range is usable for a scan.
func (r Range) Validate() error {
	if r.Min < 1 || r.Max > 65535 {
		return fmt.Errorf("range %d-%d must lie within 1-65535", r.Min, r.Max)
	}
	if r.Min > r.Max {
		return fmt.Errorf("range min %d is greater than max %d", r.Min, r.Max)
	}
	if r.Preferred < 1 || r.Preferred > 65535 {
		return fmt.Errorf("preferred port %d out of range (1-65535)", r.Preferred)
	}
	return nil
}

// Plan holds the per-service defaults used to build Requests.
//
// The test database has no fixed preferred port: it is always derived from
// the confirmed primary database port (primary+1, scanning primary+1 up to
// MySQLTestMax), which is what keeps the two apart.
type Plan struct {
	PHP          Range
	MySQL        Range
	MySQLTestMax int
	Redis        Range
	Nginx        Range
}

// DefaultPlan returns the built-in service defaults.
func DefaultPlan() Plan {
	return Plan{
		PHP:          Range{Preferred: 9000, Min: 9000, Max: 9100},
		MySQL:        Range{Preferred: 3306, Min: 3306, Max: 3399},
		MySQLTestMax: 3399,
		Redis:        Range{Preferred: 6379, Min: 6379, Max: 6400},
		Nginx:        Range{Preferred: 8080, Min: 8080, Max: 8100},
	}
}

// Services returns the services in the order they are resolved. The test
// database must come after the primary database.
func (p Plan) Services() []model.Service {
	return []model.Service{
		model.ServicePHP,
		model.ServiceMySQL,
		model.ServiceMySQLTest,
		model.ServiceRedis,
		model.ServiceNginx,
	}
}

// Request builds the resolution request for service. mysqlPort is the
// confirmed primary database port and is only consulted for the test
// database.
func (p Plan) Request(service model.Service, mysqlPort int) Request {
	var r Range
	switch service {
	case model.ServicePHP:
		r = p.PHP
	case model.ServiceMySQL:
		r = p.MySQL
	case model.ServiceMySQLTest:
		r = Range{Preferred: mysqlPort + 1, Min: mysqlPort + 1, Max: p.MySQLTestMax}
	case model.ServiceRedis:
		r = p.Redis
	case model.ServiceNginx:
		r = p.Nginx
	}
	return Request{Name: string(service), Preferred: r.Preferred, RangeMin: r.Min, RangeMax: r.Max}
}

// Validate checks every range in the plan.
func (p Plan) Validate() error {
	checks := []struct {
		name string
		r    Range
	}{
		{"php", p.PHP},
		{"mysql", p.MySQL},
		{"redis", p.Redis},
		{"nginx", p.Nginx},
	}
	for _, c := range checks {
		if err := c.r.Validate(); err != nil {
			return fmt.Errorf("services.%s: %w", c.name, err)
		}
	}
	if p.MySQLTestMax < 1 || p.MySQLTestMax > 65535 {
		return fmt.Errorf("mysqlTest.max %d out of range (1-65535)", p.MySQLTestMax)
	}
	return nil
}

// ErrPortConflict is returned by CheckDistinct when the test database
// ended up on the primary database port.
var ErrPortConflict = errors.New("test database port must be different from primary database port")

// CheckDistinct enforces that the two database instances never share a
// host port. Manual entry can produce this even though resolution cannot.
func CheckDistinct(ports model.Ports) error {
	if ports.MySQLTest == ports.MySQL {
		return fmt.Errorf("%w (both %d)", ErrPortConflict, ports.MySQL)
	}
	return nil
}

// ResolveAll resolves every service of the plan without operator
// interaction, accepting each resolved default. It stops at the first
// exhausted range.
func ResolveAll(r *Resolver, plan Plan) (model.Ports, []Resolution, error) {
	var ports model.Ports
	resolutions := make([]Resolution, 0, len(plan.Services()))

	for _, svc := range plan.Services() {
		res, err := r.Resolve(plan.Request(svc, ports.MySQL))
		if err != nil {
			return model.Ports{}, resolutions, err
		}
		ports.Set(svc, res.Port)
		resolutions = append(resolutions, res)
	}

	if err := CheckDistinct(ports); err != nil {
		return model.Ports{}, resolutions, err
	}
	return ports, resolutions, nil
}
