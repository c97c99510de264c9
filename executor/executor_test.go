package executor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-deploy/executor"
)

func TestWrappedExecutor_Run(t *testing.T) {
	sh := executor.NewWrappedExecutor("sh", executor.WithEnvVar("GREETING", "hi"))

	result, err := sh.Run(context.Background(), "-c", "echo $GREETING $0 && echo warn >&2", "there")
	require.NoError(t, err)
	assert.Equal(t, "hi there\n", result.Stdout)
	assert.Equal(t, "warn\n", result.Stderr)
	assert.Equal(t, 0, result.ExitCode)
}

func TestWrappedExecutor_OptionsNotShared(t *testing.T) {
	sh := executor.NewWrappedExecutor("sh")

	_, err := sh.Command("-c", "true").Execute(context.Background(), executor.WithEnvVar("LEAK", "1"))
	require.NoError(t, err)

	result, err := sh.Run(context.Background(), "-c", "echo \"[$LEAK]\"")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", result.Stdout)
}

func TestWorkingDirectory(t *testing.T) {
	dir := t.TempDir()

	result, err := executor.NewWrappedExecutor("pwd", executor.WithWorkingDir(dir)).Run(context.Background())
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want, strings.TrimSpace(result.Stdout))
}

func TestExitError(t *testing.T) {
	result, err := executor.NewWrappedExecutor("sh").
		Run(context.Background(), "-c", "echo 'fatal: not a git repository' >&2; exit 128")
	require.Error(t, err)

	var exitErr *executor.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 128, exitErr.ExitCode)
	assert.Equal(t, 128, result.ExitCode)
	assert.Equal(t, "sh", exitErr.Program)
	assert.Contains(t, err.Error(), "exit status 128: fatal: not a git repository")
}

func TestMissingProgram(t *testing.T) {
	result, err := executor.NewWrappedExecutor("definitely-not-a-real-program-xyz").Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, -1, result.ExitCode)

	var exitErr *executor.ExitError
	assert.False(t, errors.As(err, &exitErr))
}

func TestRetry(t *testing.T) {
	counter := filepath.Join(t.TempDir(), "attempts")
	script := `n=$(cat "$0" 2>/dev/null || echo 0); n=$((n+1)); echo $n > "$0"; [ $n -ge 3 ]`

	tests := []struct {
		name         string
		opts         []executor.Option
		wantErr      bool
		wantAttempts string
	}{
		{
			name:         "succeeds on third attempt",
			opts:         []executor.Option{executor.WithRetry(3, time.Millisecond)},
			wantAttempts: "3",
		},
		{
			name:         "gives up",
			opts:         []executor.Option{executor.WithRetry(1, time.Millisecond)},
			wantErr:      true,
			wantAttempts: "2",
		},
		{
			name: "condition stops retries",
			opts: []executor.Option{
				executor.WithRetry(5, time.Millisecond),
				executor.WithRetryCondition(func(error) bool { return false }),
			},
			wantErr:      true,
			wantAttempts: "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.RemoveAll(counter))

			_, err := executor.NewWrappedExecutor("sh", tt.opts...).Run(context.Background(), "-c", script, counter)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			got, err := os.ReadFile(counter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAttempts, strings.TrimSpace(string(got)))
		})
	}
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := executor.NewWrappedExecutor("sleep").Run(ctx, "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
