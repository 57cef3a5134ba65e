// Package session asks the operator for everything needed to build a
// model.Project: project type, name, PHP version, the host port of every
// service and, for Laravel, the starter options.
package session

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shinji-kodama/stackup/internal/logging"
	"github.com/shinji-kodama/stackup/internal/model"
	"github.com/shinji-kodama/stackup/internal/port"
	"github.com/shinji-kodama/stackup/internal/prompt"
)

// Session runs the interactive questions against an Asker.
type Session struct {
	asker    prompt.Asker
	resolver *port.Resolver
	plan     port.Plan
}

// New creates a Session. Ports are resolved through resolver using plan.
func New(asker prompt.Asker, resolver *port.Resolver, plan port.Plan) *Session {
	return &Session{asker: asker, resolver: resolver, plan: plan}
}

// Run asks every question and returns the populated project rooted at dir.
func (s *Session) Run(ctx context.Context, dir string) (*model.Project, error) {
	projectType, err := s.ProjectType(ctx)
	if err != nil {
		return nil, err
	}

	name, err := s.ProjectName(ctx)
	if err != nil {
		return nil, err
	}

	phpVersion := model.DefaultPHPVersion
	if projectType == model.ProjectLaravel {
		if phpVersion, err = s.PHPVersion(ctx); err != nil {
			return nil, err
		}
	}

	ports, err := s.Ports(ctx)
	if err != nil {
		return nil, err
	}

	return &model.Project{
		Type:       projectType,
		Name:       name,
		PHPVersion: phpVersion,
		Ports:      ports,
		Dir:        dir,
	}, nil
}

// ProjectType asks for the framework starter.
func (s *Session) ProjectType(ctx context.Context) (model.ProjectType, error) {
	intro := []string{"", "Select project type:"}
	for i, t := range model.ProjectTypes {
		intro = append(intro, fmt.Sprintf("%d. %s", i+1, t.Title()))
	}

	answer, err := prompt.AskOne(ctx, s.asker, prompt.Question{
		Intro:    intro,
		Prompt:   fmt.Sprintf("Select project type (1-%d):", len(model.ProjectTypes)),
		Validate: prompt.Choice(len(model.ProjectTypes)),
	})
	if err != nil {
		return "", err
	}
	return model.ProjectTypes[choiceIndex(answer)], nil
}

// ProjectName asks for the compose project name.
func (s *Session) ProjectName(ctx context.Context) (string, error) {
	return prompt.AskOne(ctx, s.asker, prompt.Question{
		Intro:  []string{""},
		Prompt: "Enter your project name (lowercase, no spaces):",
		Validate: prompt.MatchRegexp(model.NamePattern,
			"Project name must be lowercase, and can only contain letters, numbers, and hyphens"),
	})
}

// PHPVersion asks for the app image version and shows its Laravel
// compatibility warnings.
func (s *Session) PHPVersion(ctx context.Context) (model.PHPVersion, error) {
	intro := []string{"", "Available PHP versions:"}
	for i, v := range model.PHPVersions {
		intro = append(intro, fmt.Sprintf("%d. PHP %s", i+1, v))
	}

	answer, err := prompt.AskOne(ctx, s.asker, prompt.Question{
		Intro:    intro,
		Prompt:   fmt.Sprintf("Select PHP version (1-%d):", len(model.PHPVersions)),
		Validate: prompt.Choice(len(model.PHPVersions)),
	})
	if err != nil {
		return "", err
	}
	version := model.PHPVersions[choiceIndex(answer)]
	logging.Debugf("selected PHP %s", version)

	logging.UserInfo("Checking PHP version compatibility...")
	for _, line := range version.CompatibilityWarnings() {
		logging.UserWarning("%s", line)
	}
	if err := prompt.Pause(ctx, s.asker); err != nil {
		return "", err
	}
	return version, nil
}

// Ports confirms the host port of every service in plan order. The test
// database range is derived from the confirmed primary database port.
func (s *Session) Ports(ctx context.Context) (model.Ports, error) {
	var ports model.Ports
	for _, svc := range s.plan.Services() {
		p, err := s.Port(ctx, s.plan.Request(svc, ports.MySQL))
		if err != nil {
			return model.Ports{}, err
		}
		ports.Set(svc, p)

		if svc == model.ServiceMySQLTest {
			if err := port.CheckDistinct(ports); err != nil {
				return model.Ports{}, err
			}
		}
	}
	return ports, nil
}

// Port resolves req and lets the operator accept the result or enter a
// port inside the request range. Manually entered ports are not probed.
func (s *Session) Port(ctx context.Context, req port.Request) (int, error) {
	res, err := s.resolver.Resolve(req)
	if err != nil {
		return 0, err
	}
	if res.UsedFallback {
		logging.UserWarning("Default port %d for %s is in use.", req.Preferred, req.Name)
		logging.UserWarning("Next available port is: %d", res.Port)
	}

	useDefault, err := prompt.Confirm(ctx, s.asker, fmt.Sprintf("Use default %s port (%d)?", req.Name, res.Port))
	if err != nil {
		return 0, err
	}
	if useDefault {
		return res.Port, nil
	}

	answer, err := prompt.AskOne(ctx, s.asker, prompt.Question{
		Prompt:   fmt.Sprintf("Enter %s port (%d-%d):", req.Name, req.RangeMin, req.RangeMax),
		Validate: prompt.IntInRange(req.RangeMin, req.RangeMax, "Please enter a valid port number between %d and %d"),
	})
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(answer)
}

// choiceIndex converts a validated 1-based menu answer to an index.
func choiceIndex(answer string) int {
	n, _ := strconv.Atoi(answer)
	return n - 1
}
