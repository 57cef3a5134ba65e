package cli

import (
	"context"
	"errors"

	"github.com/shinji-kodama/stackup/internal/docker"
	"github.com/shinji-kodama/stackup/internal/installer"
	"github.com/shinji-kodama/stackup/internal/model"
	"github.com/shinji-kodama/stackup/internal/port"
	"github.com/shinji-kodama/stackup/internal/prompt"
	"github.com/shinji-kodama/stackup/internal/wait"
)

// classify maps err to the CLIError whose code Execute exits with.
// Errors that already carry a code are returned unchanged.
func classify(err error) *model.CLIError {
	if cliErr, ok := asCLIError(err); ok {
		return cliErr
	}

	var (
		exitErr *docker.ExitError
		instErr *installer.Error
	)
	switch {
	case errors.Is(err, port.ErrPortRangeExhausted), errors.Is(err, port.ErrPortConflict):
		return model.WrapCLIError(model.ExitPortAllocationFailed, "port allocation failed", err)
	case errors.Is(err, wait.ErrNotReady):
		return model.WrapCLIError(model.ExitNotReady, "containers did not become ready; check docker compose logs", err)
	case errors.Is(err, prompt.ErrCancelled), errors.Is(err, context.Canceled):
		return model.WrapCLIError(model.ExitUserCancelled, "cancelled", err)
	case errors.As(err, &instErr):
		return model.WrapCLIError(model.ExitProvisionFailed, "framework installation failed", err)
	case errors.As(err, &exitErr):
		return model.WrapCLIError(model.ExitProvisionFailed, "command failed", err)
	default:
		return model.WrapCLIError(model.ExitGeneralError, err.Error(), nil)
	}
}
