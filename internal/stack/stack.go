package stack

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/dashlab/labctl/internal/compose"
	"github.com/dashlab/labctl/internal/config"
	"github.com/dashlab/labctl/internal/history"
	"github.com/dashlab/labctl/internal/logger"
	"github.com/dashlab/labctl/internal/models"
	"github.com/dashlab/labctl/internal/probe"
)

// composeRunner is the subset of the compose runner the launcher drives.
type composeRunner interface {
	Up(ctx context.Context, services ...string) error
	UpDetached(ctx context.Context, services ...string) error
	Down(ctx context.Context) error
	RunOneShot(ctx context.Context, service string) error
	Prune(ctx context.Context) error
}

// readinessProber gates detached starts on service health.
type readinessProber interface {
	WaitForDashboard(ctx context.Context) error
	WaitForMongo(ctx context.Context) error
}

// Test seams
var (
	newRunner = func(opts compose.Options) (composeRunner, error) {
		return compose.NewRunner(opts)
	}
	newProber = func(cfg config.ProbeConfig) readinessProber {
		return probe.New(cfg.DashboardURL, cfg.MongoURI,
			time.Duration(cfg.TimeoutSeconds)*time.Second, cfg.AttemptsPerSec)
	}
)

// Launcher orchestrates named environments: it validates inputs, starts the
// requested service set, and guarantees teardown and pruning on every exit
// path. Each action is journaled in the run history.
type Launcher struct {
	cfg   *config.Config
	store history.Store // nil disables journaling
}

// NewLauncher creates a new launcher
func NewLauncher(cfg *config.Config, store history.Store) *Launcher {
	return &Launcher{cfg: cfg, store: store}
}

// runnerFor builds a compose runner bound to the given compose file.
// ENV_FILE_PATH and OVERRIDE_FILE_PATH override the configured defaults.
func (l *Launcher) runnerFor(composeFile string) (composeRunner, error) {
	envFile := l.cfg.EnvFile
	if v := os.Getenv("ENV_FILE_PATH"); v != "" {
		envFile = v
	}
	overrideFile := l.cfg.OverrideFile
	if v := os.Getenv("OVERRIDE_FILE_PATH"); v != "" {
		overrideFile = v
	}

	return newRunner(compose.Options{
		Bin:          l.cfg.ComposeBin,
		ComposeFile:  composeFile,
		EnvFile:      envFile,
		OverrideFile: overrideFile,
		Stdin:        os.Stdin,
	})
}

// Up builds and starts the named environment. In foreground mode it blocks
// until the services exit or the context is cancelled, then tears down
// containers, networks and volumes and prunes the engine. In detached mode
// the services are left running (readiness-probed when the environment asks
// for it) and teardown only happens if the start itself failed.
func (l *Launcher) Up(ctx context.Context, name string, detach bool) error {
	env, err := l.cfg.Environment(name)
	if err != nil {
		return err
	}
	if len(env.Services) == 0 {
		return fmt.Errorf("environment %s has no services configured", name)
	}

	// Fails before any engine call when the compose file is missing.
	runner, err := l.runnerFor(env.ComposeFile)
	if err != nil {
		return err
	}

	runID := l.recordStart(ctx, "up", name, env.Services)

	var upErr error
	if detach {
		upErr = runner.UpDetached(ctx, env.Services...)
		if upErr == nil && env.Probe {
			upErr = l.waitReady(ctx)
		}
		if upErr != nil {
			l.teardown(runner)
		}
	} else {
		upErr = runner.Up(ctx, env.Services...)
		// Teardown runs on success, failure and interrupt alike. Use a
		// fresh context so cancellation does not skip cleanup.
		l.teardown(runner)
	}

	l.recordFinish(runID, upErr)
	return upErr
}

// Down tears down the named environment and prunes the engine.
func (l *Launcher) Down(ctx context.Context, name string) error {
	env, err := l.cfg.Environment(name)
	if err != nil {
		return err
	}

	runner, err := l.runnerFor(env.ComposeFile)
	if err != nil {
		return err
	}

	runID := l.recordStart(ctx, "down", name, env.Services)

	downErr := runner.Down(ctx)
	if err := runner.Prune(ctx); err != nil {
		logger.Warning("prune after down failed: %v", err)
	}

	l.recordFinish(runID, downErr)
	return downErr
}

// Lint runs the configured lint service as a one-shot task. The container
// is removed afterward regardless of exit status.
func (l *Launcher) Lint(ctx context.Context) error {
	if l.cfg.Lint.Service == "" {
		return fmt.Errorf("no lint service configured")
	}

	runner, err := l.runnerFor(l.cfg.Lint.ComposeFile)
	if err != nil {
		return err
	}

	runID := l.recordStart(ctx, "lint", "", []string{l.cfg.Lint.Service})

	lintErr := runner.RunOneShot(ctx, l.cfg.Lint.Service)

	l.recordFinish(runID, lintErr)
	return lintErr
}

// Prune removes dangling images, stopped containers and unused volumes.
func (l *Launcher) Prune(ctx context.Context) error {
	runID := l.recordStart(ctx, "prune", "", nil)

	pruneErr := compose.Prune(ctx, l.cfg.ComposeBin, nil, nil)

	l.recordFinish(runID, pruneErr)
	return pruneErr
}

// waitReady runs the readiness probes against a detached stack.
func (l *Launcher) waitReady(ctx context.Context) error {
	prober := newProber(l.cfg.Probe)

	logger.Info("Waiting for dashboard at %s", l.cfg.Probe.DashboardURL)
	if err := prober.WaitForDashboard(ctx); err != nil {
		return err
	}

	logger.Info("Waiting for document database at %s", l.cfg.Probe.MongoURI)
	if err := prober.WaitForMongo(ctx); err != nil {
		return err
	}

	return nil
}

// teardown removes containers, networks and volumes and prunes the engine.
// Runs with a fresh context so an interrupted up still cleans up; failures
// are logged, never returned, so they cannot mask the run's own error.
func (l *Launcher) teardown(runner composeRunner) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := runner.Down(ctx); err != nil {
		logger.Warning("teardown failed: %v", err)
	}
	if err := runner.Prune(ctx); err != nil {
		logger.Warning("prune failed: %v", err)
	}
}

// recordStart journals the beginning of a run. Journaling is best-effort:
// a history failure never blocks orchestration.
func (l *Launcher) recordStart(ctx context.Context, action, environment string, services []string) string {
	if l.store == nil {
		return ""
	}

	run := &models.Run{
		ID:          uuid.New().String(),
		Environment: environment,
		Action:      action,
		Services:    services,
		Status:      models.RunRunning,
		StartedAt:   time.Now().UTC(),
	}
	if err := l.store.CreateRun(ctx, run); err != nil {
		logger.Warning("failed to record run start: %v", err)
		return ""
	}
	return run.ID
}

// recordFinish journals the terminal state of a run.
func (l *Launcher) recordFinish(runID string, runErr error) {
	if l.store == nil || runID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status := models.RunSucceeded
	errMsg := ""
	if runErr != nil {
		status = models.RunFailed
		errMsg = runErr.Error()
	}

	if err := l.store.FinishRun(ctx, runID, status, compose.ExitCode(runErr), errMsg); err != nil {
		logger.Warning("failed to record run finish: %v", err)
	}
}
