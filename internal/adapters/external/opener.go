// Package external hands URLs to the operating system.
package external

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/target/binwatch/internal/ports"
)

var _ ports.LoginOpener = (*Opener)(nil)

// Opener opens URLs with a configured command such as xdg-open or open. Without a
// command the URL is written to Out for the user to follow.
type Opener struct {
	command []string
	out     io.Writer
	logger  *slog.Logger
}

// NewOpener builds an Opener. command is split on whitespace; the URL is appended as
// the last argument.
func NewOpener(command string, out io.Writer, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = io.Discard
	}
	return &Opener{command: strings.Fields(command), out: out, logger: logger}
}

// Open launches the command and waits for it to exit.
func (o *Opener) Open(ctx context.Context, target string) error {
	if len(o.command) == 0 {
		if _, err := fmt.Fprintf(o.out, "Open this URL to continue: %s\n", target); err != nil {
			return fmt.Errorf("print url: %w", err)
		}
		return nil
	}

	args := append(append([]string(nil), o.command[1:]...), target)
	cmd := exec.CommandContext(ctx, o.command[0], args...) //nolint:gosec // command comes from operator config
	if output, err := cmd.CombinedOutput(); err != nil {
		o.logger.ErrorContext(ctx, "url opener failed",
			"command", o.command[0],
			"output", strings.TrimSpace(string(output)),
			"error", err)
		return fmt.Errorf("run %s: %w", o.command[0], err)
	}
	o.logger.DebugContext(ctx, "url opened", "command", o.command[0])
	return nil
}
