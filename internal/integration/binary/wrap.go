// Package binary locates and runs the external tools the exporter depends on.
package binary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/farcloser/primordium/fault"
)

// Available checks if a binary is available in the system PATH.
func Available(binName string) (string, bool) {
	path, err := exec.LookPath(binName)

	return path, err == nil
}

// Run executes binName with args and returns its standard output.
// A zero timeout waits for the command for as long as it takes.
func Run(ctx context.Context, timeout time.Duration, binName string, args ...string) ([]byte, error) {
	binPath, found := Available(binName)
	if !found {
		return nil, fmt.Errorf("%w: %s", fault.ErrMissingRequirements, binName)
	}

	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	slog.Debug("binary.Run", "binary", binName, "args", args)

	//nolint:gosec // arguments are built by the integration packages, never by a shell
	cmd := exec.CommandContext(ctx, binPath, args...)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s after %v", fault.ErrTimeout, binName, timeout)
		}

		return nil, fmt.Errorf("%w: %s: %s: %w", fault.ErrCommandFailure, binName, stderr.String(), err)
	}

	return output, nil
}
