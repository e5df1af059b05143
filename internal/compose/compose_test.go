package compose

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeComposeFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docker-compose.yml")
	require.NoError(t, os.WriteFile(path, []byte("services: {}\n"), 0644))
	return path
}

// stubEngine replaces the engine invocation with a recording stub. Every
// call is captured as [bin, args...]; the stub process itself succeeds or
// fails according to ok.
func stubEngine(t *testing.T, ok bool) *[][]string {
	t.Helper()
	calls := &[][]string{}
	orig := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		*calls = append(*calls, append([]string{name}, args...))
		if ok {
			return exec.CommandContext(ctx, "true")
		}
		return exec.CommandContext(ctx, "false")
	}
	t.Cleanup(func() { commandContext = orig })
	return calls
}

func TestNewRunnerValidation(t *testing.T) {
	t.Run("missing compose file path", func(t *testing.T) {
		_, err := NewRunner(Options{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "compose file path is required")
	})

	t.Run("nonexistent compose file", func(t *testing.T) {
		calls := stubEngine(t, true)
		_, err := NewRunner(Options{ComposeFile: "/nonexistent/docker-compose.yml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "compose file not found")
		// The engine must never be invoked for a missing compose file.
		assert.Empty(t, *calls)
	})

	t.Run("nonexistent override file", func(t *testing.T) {
		_, err := NewRunner(Options{
			ComposeFile:  writeComposeFile(t),
			OverrideFile: "/nonexistent/override.yml",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "override file not found")
	})
}

func TestUpArguments(t *testing.T) {
	file := writeComposeFile(t)
	runner, err := NewRunner(Options{ComposeFile: file})
	require.NoError(t, err)

	calls := stubEngine(t, true)
	require.NoError(t, runner.Up(context.Background(), "dashboard", "mongo"))

	require.Len(t, *calls, 1)
	assert.Equal(t, []string{
		"docker", "compose", "-f", file, "up", "--build", "dashboard", "mongo",
	}, (*calls)[0])
}

func TestUpRequiresServices(t *testing.T) {
	runner, err := NewRunner(Options{ComposeFile: writeComposeFile(t)})
	require.NoError(t, err)

	calls := stubEngine(t, true)
	err = runner.Up(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one service is required")
	assert.Empty(t, *calls)
}

func TestEnvAndOverrideFilesAreForwarded(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "docker-compose.yml")
	override := filepath.Join(dir, "override.yml")
	envFile := filepath.Join(dir, ".env")
	for _, p := range []string{file, override, envFile} {
		require.NoError(t, os.WriteFile(p, []byte(""), 0644))
	}

	runner, err := NewRunner(Options{
		ComposeFile:  file,
		EnvFile:      envFile,
		OverrideFile: override,
	})
	require.NoError(t, err)

	calls := stubEngine(t, true)
	require.NoError(t, runner.UpDetached(context.Background(), "dashboard"))

	require.Len(t, *calls, 1)
	assert.Equal(t, []string{
		"docker", "compose", "-f", file, "--env-file", envFile, "-f", override,
		"up", "--build", "--detach", "dashboard",
	}, (*calls)[0])
}

func TestDownArguments(t *testing.T) {
	file := writeComposeFile(t)
	runner, err := NewRunner(Options{ComposeFile: file})
	require.NoError(t, err)

	calls := stubEngine(t, true)
	require.NoError(t, runner.Down(context.Background()))

	require.Len(t, *calls, 1)
	assert.Equal(t, []string{
		"docker", "compose", "-f", file, "down", "--volumes", "--remove-orphans",
	}, (*calls)[0])
}

func TestRunOneShot(t *testing.T) {
	file := writeComposeFile(t)
	runner, err := NewRunner(Options{ComposeFile: file})
	require.NoError(t, err)

	t.Run("missing service", func(t *testing.T) {
		calls := stubEngine(t, true)
		err := runner.RunOneShot(context.Background(), "")
		require.Error(t, err)
		assert.Empty(t, *calls)
	})

	t.Run("removes container with --rm", func(t *testing.T) {
		calls := stubEngine(t, true)
		require.NoError(t, runner.RunOneShot(context.Background(), "lint"))
		require.Len(t, *calls, 1)
		assert.Equal(t, []string{
			"docker", "compose", "-f", file, "run", "--rm", "lint",
		}, (*calls)[0])
	})
}

func TestPruneRunsAllTargets(t *testing.T) {
	runner, err := NewRunner(Options{ComposeFile: writeComposeFile(t)})
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		calls := stubEngine(t, true)
		require.NoError(t, runner.Prune(context.Background()))
		require.Len(t, *calls, 3)
		assert.Equal(t, []string{"docker", "image", "prune", "--force"}, (*calls)[0])
		assert.Equal(t, []string{"docker", "container", "prune", "--force"}, (*calls)[1])
		assert.Equal(t, []string{"docker", "volume", "prune", "--force"}, (*calls)[2])
	})

	t.Run("keeps pruning after a failure", func(t *testing.T) {
		calls := stubEngine(t, false)
		err := runner.Prune(context.Background())
		require.Error(t, err)
		assert.Len(t, *calls, 3)
	})
}

func TestPsParsesPerLineJSON(t *testing.T) {
	runner, err := NewRunner(Options{ComposeFile: writeComposeFile(t)})
	require.NoError(t, err)

	orig := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "echo",
			`{"Name":"dashlab-dashboard-1","Service":"dashboard","State":"running","Status":"Up 5 seconds","Image":"dashlab:latest"}`)
	}
	t.Cleanup(func() { commandContext = orig })

	states, err := runner.Ps(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, "dashboard", states[0].Service)
	assert.Equal(t, "running", states[0].State)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))

	runner, err := NewRunner(Options{ComposeFile: writeComposeFile(t)})
	require.NoError(t, err)

	stubEngine(t, false)
	upErr := runner.Up(context.Background(), "dashboard")
	require.Error(t, upErr)
	assert.Equal(t, 1, ExitCode(upErr))
}
