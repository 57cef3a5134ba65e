package docker

import (
	"context"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/shinji-kodama/stackup/internal/model"
)

// ProjectContainers lists every container (running or not) that docker
// compose created for project, identified by the com.docker.compose.project
// label. Containers from compose files stackup did not generate are
// included.
//
// Returns a CLIError with ExitDockerNotRunning if the daemon cannot be
// queried.
func ProjectContainers(ctx context.Context, lister ContainerLister, project string) ([]model.ContainerInfo, error) {
	return listContainers(ctx, lister, filters.NewArgs(
		filters.Arg("label", ComposeProjectLabel+"="+project),
	))
}

// ManagedContainers lists every container created from a stackup compose
// file, across all projects.
func ManagedContainers(ctx context.Context, lister ContainerLister) ([]model.ContainerInfo, error) {
	return listContainers(ctx, lister, filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	))
}

// ServiceRunning reports whether a container of service in project is in
// the running state. It backs the readiness wait after compose up.
func ServiceRunning(ctx context.Context, lister ContainerLister, project, service string) (bool, error) {
	containers, err := listContainers(ctx, lister, filters.NewArgs(
		filters.Arg("label", ComposeProjectLabel+"="+project),
		filters.Arg("label", ComposeServiceLabel+"="+service),
	))
	if err != nil {
		return false, err
	}
	for _, c := range containers {
		if c.IsRunning() {
			return true, nil
		}
	}
	return false, nil
}

func listContainers(ctx context.Context, lister ContainerLister, args filters.Args) ([]model.ContainerInfo, error) {
	// Docker performs the label filtering server-side. All includes
	// stopped containers.
	containers, err := lister.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: args,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list Docker containers",
			err,
		)
	}

	result := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		result = append(result, containerToInfo(c))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ContainerName < result[j].ContainerName })
	return result, nil
}

// containerToInfo converts a Docker API container summary to
// model.ContainerInfo. Docker returns names with a leading "/", which is
// stripped.
func containerToInfo(c container.Summary) model.ContainerInfo {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return model.ContainerInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		ServiceName:   c.Labels[ComposeServiceLabel],
		Status:        string(c.State),
		Labels:        c.Labels,
	}
}

// GroupContainersByProject groups containers by their stackup.project
// label. Containers without the label are skipped.
func GroupContainersByProject(containers []model.ContainerInfo) map[string][]model.ContainerInfo {
	groups := make(map[string][]model.ContainerInfo)
	for _, c := range containers {
		name := c.Labels[LabelProject]
		if name == "" {
			continue
		}
		groups[name] = append(groups[name], c)
	}
	return groups
}
