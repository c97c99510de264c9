// Package executor runs external programs with output capture, retries
// and context cancellation.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Result holds the output and error from a command execution
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Runner runs a fixed program with the given arguments. *WrappedExecutor
// implements it; tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, args ...string) (*Result, error)
}

// ExitError is returned when the program ran and exited unsuccessfully.
type ExitError struct {
	Program  string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

// Error implements the error interface. The first line of stderr is
// included since that is where programs explain themselves.
func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s %s: exit status %d", e.Program, strings.Join(e.Args, " "), e.ExitCode)
	if line, _, _ := strings.Cut(strings.TrimSpace(e.Stderr), "\n"); line != "" {
		msg += ": " + line
	}
	return msg
}

// Unwrap returns the underlying *exec.ExitError.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Options configures command execution behavior
type Options struct {
	MaxRetries int
	RetryDelay time.Duration
	RetryOn    func(error) bool

	WorkingDir string

	// Env is appended to the current environment.
	Env map[string]string
}

// Option is a function that modifies Options
type Option func(*Options)

// DefaultOptions returns default execution options. Nothing is retried.
func DefaultOptions() *Options {
	return &Options{
		RetryDelay: time.Second,
		Env:        make(map[string]string),
	}
}

// CommandExecutor runs one program invocation.
type CommandExecutor struct {
	program string
	args    []string
	options *Options
}

// WrappedExecutor runs a specific program with varying arguments.
type WrappedExecutor struct {
	program string
	options *Options
}

var _ Runner = (*WrappedExecutor)(nil)

// NewWrappedExecutor creates an executor for program. opts become the
// defaults of every invocation.
func NewWrappedExecutor(program string, opts ...Option) *WrappedExecutor {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &WrappedExecutor{program: program, options: options}
}

// Command creates a new executor for the wrapped program with specific arguments
func (w *WrappedExecutor) Command(args ...string) *CommandExecutor {
	options := *w.options
	options.Env = maps.Clone(w.options.Env)
	return &CommandExecutor{
		program: w.program,
		args:    args,
		options: &options,
	}
}

// Run implements Runner.
func (w *WrappedExecutor) Run(ctx context.Context, args ...string) (*Result, error) {
	return w.Command(args...).Execute(ctx)
}

// Execute runs the command, retrying failed attempts as configured. opts
// apply to this invocation only.
func (c *CommandExecutor) Execute(ctx context.Context, opts ...Option) (*Result, error) {
	options := c.mergeOptions(opts...)

	maxAttempts := options.MaxRetries + 1
	var (
		result *Result
		err    error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err = c.executeOnce(ctx, options)
		if err == nil || attempt == maxAttempts {
			break
		}
		if options.RetryOn != nil && !options.RetryOn(err) {
			break
		}

		select {
		case <-ctx.Done():
			return result, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(options.RetryDelay):
		}
	}
	return result, err
}

func (c *CommandExecutor) setupCommand(cmd *exec.Cmd, options *Options) {
	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}

	if len(options.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range options.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}
}

func (c *CommandExecutor) executeOnce(ctx context.Context, options *Options) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.program, c.args...)
	c.setupCommand(cmd, options)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Err:    err,
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case ctx.Err() != nil:
		result.ExitCode = -1
		return result, fmt.Errorf("%s: %w", c.program, ctx.Err())
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, &ExitError{
			Program:  c.program,
			Args:     c.args,
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
			Err:      err,
		}
	default:
		result.ExitCode = -1
		return result, fmt.Errorf("command execution failed: %w", err)
	}
}

func (c *CommandExecutor) mergeOptions(opts ...Option) *Options {
	merged := *c.options
	merged.Env = maps.Clone(c.options.Env)
	for _, opt := range opts {
		opt(&merged)
	}
	return &merged
}

// WithRetry configures retry behavior
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(o *Options) {
		o.MaxRetries = maxRetries
		o.RetryDelay = delay
	}
}

// WithRetryCondition sets a custom retry condition
func WithRetryCondition(fn func(error) bool) Option {
	return func(o *Options) {
		o.RetryOn = fn
	}
}

// WithWorkingDir sets the working directory
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}

// WithEnvVar adds a single environment variable
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		o.Env[key] = value
	}
}
