// Package actions runs the user-defined shell commands from [action.NAME]
// config sections against an exported image.
package actions

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/example/markpix/internal/config"
)

// DefaultTimeout bounds a single action run.
const DefaultTimeout = 30 * time.Second

// Runner executes configured actions. The zero value is not usable; use
// NewRunner.
type Runner struct {
	actions map[string]config.Action
	timeout time.Duration
}

// NewRunner creates a Runner over the configured action set.
func NewRunner(actions map[string]config.Action) *Runner {
	return &Runner{actions: actions, timeout: DefaultTimeout}
}

// Names returns the configured action names, unordered.
func (r *Runner) Names() []string {
	out := make([]string, 0, len(r.actions))
	for name := range r.actions {
		out = append(out, name)
	}
	return out
}

// Run writes img to a temporary PNG, substitutes its path for every {file}
// placeholder in the named action's command and executes it through the
// shell. The temporary file is removed afterwards. Command output is
// returned for display; a non-zero exit is an error carrying stderr.
func (r *Runner) Run(ctx context.Context, name string, img image.Image) (string, error) {
	action, ok := r.actions[name]
	if !ok {
		return "", fmt.Errorf("actions: unknown action %q", name)
	}
	if strings.TrimSpace(action.Command) == "" {
		return "", fmt.Errorf("actions: action %q has no command", name)
	}

	dir, err := os.MkdirTemp("", "markpix-action-")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "markpix.png")
	if err := imaging.Save(img, file); err != nil {
		return "", fmt.Errorf("write action image: %w", err)
	}

	return r.runCommand(ctx, action.Command, file)
}

func (r *Runner) runCommand(ctx context.Context, command, file string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	expanded := strings.ReplaceAll(command, "{file}", file)
	cmd := exec.CommandContext(ctx, "sh", "-c", expanded)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return stdout.String(), fmt.Errorf("action timed out: %w", ctx.Err())
		}
		return stdout.String(), fmt.Errorf("action failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
