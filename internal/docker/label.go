package docker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shinji-kodama/stackup/internal/model"
)

// Label keys written on every generated compose service. They let stackup
// recognise its own containers and recover the ports an environment was
// provisioned with, without any state file.
//
// All keys share the "stackup." prefix to avoid collisions with labels set
// by other tools (Docker Compose, IDEs, ...).
const (
	// LabelPrefix is the common prefix for all stackup labels.
	LabelPrefix = "stackup."

	// LabelManagedBy identifies containers created from a stackup compose
	// file. Key: "stackup.managed-by", Value: always "stackup".
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelProject stores the project name, which is also the Compose
	// project name.
	LabelProject = LabelPrefix + "project"

	// LabelType stores the project type ("laravel", "vue", "nuxt").
	LabelType = LabelPrefix + "type"

	// LabelPHPVersion stores the app image PHP version.
	LabelPHPVersion = LabelPrefix + "php-version"

	// LabelPortPrefix is the prefix for per-service host port labels:
	//   "stackup.port.mysql" = "3308"
	LabelPortPrefix = LabelPrefix + "port."
)

// ManagedByValue is the constant value for the LabelManagedBy label.
const ManagedByValue = "stackup"

// Compose labels set by docker compose itself.
const (
	ComposeProjectLabel = "com.docker.compose.project"
	ComposeServiceLabel = "com.docker.compose.service"
)

// portLabelServices maps label suffixes to services in a stable order.
var portLabelServices = []struct {
	suffix  string
	service model.Service
}{
	{"php", model.ServicePHP},
	{"mysql", model.ServiceMySQL},
	{"mysql-test", model.ServiceMySQLTest},
	{"redis", model.ServiceRedis},
	{"nginx", model.ServiceNginx},
}

// BuildPortLabel returns the port label key for a label suffix, e.g.
// "stackup.port.mysql".
func BuildPortLabel(suffix string) string {
	return LabelPortPrefix + suffix
}

// BuildLabels constructs the label map applied to every service of a
// project. Zero ports are omitted.
func BuildLabels(project *model.Project) map[string]string {
	labels := map[string]string{
		LabelManagedBy:  ManagedByValue,
		LabelProject:    project.Name,
		LabelType:       project.Type.String(),
		LabelPHPVersion: project.PHPVersion.String(),
	}

	for _, pl := range portLabelServices {
		if port := project.Ports.Get(pl.service); port != 0 {
			labels[BuildPortLabel(pl.suffix)] = strconv.Itoa(port)
		}
	}

	return labels
}

// ParseLabels reconstructs a Project from container labels. It is the
// inverse of BuildLabels; Dir is not recorded and stays empty.
func ParseLabels(labels map[string]string) (*model.Project, error) {
	if labels[LabelManagedBy] != ManagedByValue {
		return nil, fmt.Errorf("container is not managed by stackup (label %s=%q)", LabelManagedBy, labels[LabelManagedBy])
	}

	var missing []string
	for _, key := range []string{LabelProject, LabelType, LabelPHPVersion} {
		if labels[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required labels: %s", strings.Join(missing, ", "))
	}

	projectType, err := model.ParseProjectType(labels[LabelType])
	if err != nil {
		return nil, fmt.Errorf("invalid label %s: %w", LabelType, err)
	}

	ports, err := ParsePortLabels(labels)
	if err != nil {
		return nil, err
	}

	return &model.Project{
		Type:       projectType,
		Name:       labels[LabelProject],
		PHPVersion: model.PHPVersion(labels[LabelPHPVersion]),
		Ports:      ports,
	}, nil
}

// ParsePortLabels extracts the per-service host ports from labels.
// Services without a label keep port 0.
func ParsePortLabels(labels map[string]string) (model.Ports, error) {
	var ports model.Ports
	for _, pl := range portLabelServices {
		value, ok := labels[BuildPortLabel(pl.suffix)]
		if !ok {
			continue
		}
		port, err := strconv.Atoi(value)
		if err != nil || port < 1 || port > 65535 {
			return model.Ports{}, fmt.Errorf("invalid port label %s=%q", BuildPortLabel(pl.suffix), value)
		}
		ports.Set(pl.service, port)
	}
	return ports, nil
}

// FilterLabels returns only the stackup labels from a full label map.
func FilterLabels(labels map[string]string) map[string]string {
	result := make(map[string]string)
	for k, v := range labels {
		if strings.HasPrefix(k, LabelPrefix) {
			result[k] = v
		}
	}
	return result
}
