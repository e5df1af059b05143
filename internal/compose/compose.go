package compose

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/dashlab/labctl/internal/logger"
	"github.com/dashlab/labctl/internal/models"
)

// commandContext is swapped out in tests to avoid touching the real engine.
var commandContext = exec.CommandContext

// Options configures a compose runner
type Options struct {
	Bin          string // container engine binary, "docker" when empty
	ComposeFile  string
	EnvFile      string // passed via --env-file when set
	OverrideFile string // second -f file when set
	Stdout       io.Writer
	Stderr       io.Writer
	Stdin        io.Reader
}

// Runner wraps `docker compose` invocations against a single compose file.
// All operations fail fast: the first failing engine command aborts the
// sequence and its exit code is preserved in the returned error.
type Runner struct {
	bin          string
	composeFile  string
	envFile      string
	overrideFile string
	stdout       io.Writer
	stderr       io.Writer
	stdin        io.Reader
}

// NewRunner creates a new compose runner. The compose file must exist before
// any engine command is attempted.
func NewRunner(opts Options) (*Runner, error) {
	if opts.ComposeFile == "" {
		return nil, fmt.Errorf("compose file path is required")
	}
	if _, err := os.Stat(opts.ComposeFile); err != nil {
		return nil, fmt.Errorf("compose file not found: %s", opts.ComposeFile)
	}
	if opts.OverrideFile != "" {
		if _, err := os.Stat(opts.OverrideFile); err != nil {
			return nil, fmt.Errorf("override file not found: %s", opts.OverrideFile)
		}
	}

	bin := opts.Bin
	if bin == "" {
		bin = "docker"
	}

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Runner{
		bin:          bin,
		composeFile:  opts.ComposeFile,
		envFile:      opts.EnvFile,
		overrideFile: opts.OverrideFile,
		stdout:       stdout,
		stderr:       stderr,
		stdin:        opts.Stdin,
	}, nil
}

// ComposeFile returns the compose file path the runner is bound to
func (r *Runner) ComposeFile() string {
	return r.composeFile
}

// composeArgs builds the common `compose -f FILE [--env-file E] [-f OVERRIDE]`
// prefix followed by the given subcommand arguments.
func (r *Runner) composeArgs(extra ...string) []string {
	args := []string{"compose", "-f", r.composeFile}
	if r.envFile != "" {
		args = append(args, "--env-file", r.envFile)
	}
	if r.overrideFile != "" {
		args = append(args, "-f", r.overrideFile)
	}
	return append(args, extra...)
}

// Up builds and starts the named services in the foreground, blocking until
// they exit or the context is cancelled.
func (r *Runner) Up(ctx context.Context, services ...string) error {
	if len(services) == 0 {
		return fmt.Errorf("at least one service is required")
	}
	args := append([]string{"up", "--build"}, services...)
	return r.run(ctx, r.composeArgs(args...)...)
}

// UpDetached builds and starts the named services in the background so that
// readiness probes can run against them.
func (r *Runner) UpDetached(ctx context.Context, services ...string) error {
	if len(services) == 0 {
		return fmt.Errorf("at least one service is required")
	}
	args := append([]string{"up", "--build", "--detach"}, services...)
	return r.run(ctx, r.composeArgs(args...)...)
}

// Down tears down containers, networks and volumes for the compose file.
func (r *Runner) Down(ctx context.Context) error {
	return r.run(ctx, r.composeArgs("down", "--volumes", "--remove-orphans")...)
}

// RunOneShot runs exactly one service to completion and removes its
// container afterward regardless of exit status (--rm).
func (r *Runner) RunOneShot(ctx context.Context, service string) error {
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	return r.run(ctx, r.composeArgs("run", "--rm", service)...)
}

// Logs streams logs for the named services.
func (r *Runner) Logs(ctx context.Context, follow bool, services ...string) error {
	args := []string{"logs"}
	if follow {
		args = append(args, "--follow")
	}
	args = append(args, services...)
	return r.run(ctx, r.composeArgs(args...)...)
}

// Ps lists the state of the compose file's services.
func (r *Runner) Ps(ctx context.Context) ([]models.ServiceState, error) {
	cmd := commandContext(ctx, r.bin, r.composeArgs("ps", "--all", "--format", "json")...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = r.stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("compose ps failed: %w", err)
	}

	// Compose v2 emits one JSON object per line.
	var states []models.ServiceState
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var state models.ServiceState
		if err := json.Unmarshal(line, &state); err != nil {
			return nil, fmt.Errorf("failed to parse compose ps output: %w", err)
		}
		states = append(states, state)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read compose ps output: %w", err)
	}

	return states, nil
}

// Prune removes dangling images, stopped containers and unused volumes.
func (r *Runner) Prune(ctx context.Context) error {
	return Prune(ctx, r.bin, r.stdout, r.stderr)
}

// Prune removes dangling images, stopped containers and unused volumes
// using the given engine binary. Each prune step is attempted even if an
// earlier one failed; the first error is returned.
func Prune(ctx context.Context, bin string, stdout, stderr io.Writer) error {
	if bin == "" {
		bin = "docker"
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	var firstErr error
	for _, target := range []string{"image", "container", "volume"} {
		cmd := commandContext(ctx, bin, target, "prune", "--force")
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		if err := cmd.Run(); err != nil {
			logger.Warning("%s prune failed: %v", target, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s prune failed: %w", target, err)
			}
		}
	}
	return firstErr
}

// run executes the engine binary with the given arguments, streaming output
// to the runner's writers.
func (r *Runner) run(ctx context.Context, args ...string) error {
	logger.Debug("exec: %s %v", r.bin, args)

	cmd := commandContext(ctx, r.bin, args...)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	cmd.Stdin = r.stdin

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s failed: %w", r.bin, args[0], err)
	}
	return nil
}

// ExitCode extracts the process exit code from an error returned by a
// runner operation. A nil error maps to 0, a non-exec failure to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
