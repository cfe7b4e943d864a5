//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"

	"github.com/oshokin/release-builder/internal/logger"
)

// Command describes one external process invocation.
type Command struct {
	// Name is the executable, looked up in PATH when it has no separator.
	Name string
	// Args are passed verbatim; no shell interpretation happens.
	Args []string
	// Env is appended to the inherited environment.
	Env map[string]string
	// Dir is the working directory; empty means the current one.
	Dir string
	// AllowFailure turns a failure into a warning and an empty result.
	AllowFailure bool
	// Stream sends output to the runner's writer instead of capturing it.
	Stream bool
}

// Shell wraps a script for the cases that need shell-level chaining.
func Shell(script string) Command {
	return Command{
		Name: "sh",
		Args: []string{"-c", script},
	}
}

// String renders the command for logs: environment first, then argv.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Env)+len(c.Args)+1)
	parts = append(parts, c.envPairs()...)
	parts = append(parts, quote(c.Name))

	for _, arg := range c.Args {
		parts = append(parts, quote(arg))
	}

	return strings.Join(parts, " ")
}

// envPairs returns KEY=VALUE entries sorted by key.
func (c Command) envPairs() []string {
	pairs := make([]string, 0, len(c.Env))
	for _, key := range slices.Sorted(maps.Keys(c.Env)) {
		pairs = append(pairs, key+"="+c.Env[key])
	}

	return pairs
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"'<>|&;$") {
		return strconv.Quote(s)
	}

	return s
}

// Runner executes external commands.
type Runner interface {
	// Run executes cmd synchronously and returns its trimmed merged output.
	Run(ctx context.Context, cmd Command) (string, error)
}

// ErrCommandFailed matches every *CommandError.
var ErrCommandFailed = errors.New("command failed")

// errEmptyCommand is returned when a Command has no executable name.
var errEmptyCommand = errors.New("command name is empty")

// CommandError describes a command that exited non-zero or could not start.
type CommandError struct {
	// Command is the rendered command line.
	Command string
	// Output is the trimmed merged stdout and stderr.
	Output string
	// ExitCode is the process exit code, or -1 when it never ran.
	ExitCode int
	// Err is the underlying launch or wait error.
	Err error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed (exit code %d): %v", e.Command, e.ExitCode, e.Err)
}

// Unwrap exposes both ErrCommandFailed and the underlying cause.
func (e *CommandError) Unwrap() []error {
	return []error{ErrCommandFailed, e.Err}
}

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	// output receives streamed command output.
	output io.Writer
}

// Option configures an ExecRunner.
type Option func(*ExecRunner)

// WithOutput sets where streamed output goes. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *ExecRunner) {
		if w != nil {
			r.output = w
		}
	}
}

// NewExecRunner creates a runner for child processes.
func NewExecRunner(opts ...Option) *ExecRunner {
	r := &ExecRunner{
		output: os.Stdout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes cmd, merging stderr into stdout.
//
// A failed command returns a *CommandError unless AllowFailure is set, in
// which case it is logged as a warning and ("", nil) is returned.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (string, error) {
	line := cmd.String()
	logger.Debug(ctx, line)

	if cmd.Name == "" {
		return "", r.fail(ctx, cmd, line, "", -1, errEmptyCommand)
	}

	//nolint:gosec // Running configured build tools is the purpose of this runner.
	process := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	process.Dir = cmd.Dir

	if len(cmd.Env) > 0 {
		process.Env = append(os.Environ(), cmd.envPairs()...)
	}

	var merged bytes.Buffer
	if cmd.Stream {
		process.Stdout = r.output
		process.Stderr = r.output
	} else {
		process.Stdout = &merged
		process.Stderr = &merged
	}

	err := process.Run()
	output := strings.TrimSpace(merged.String())

	if err == nil {
		return output, nil
	}

	exitCode := -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	return "", r.fail(ctx, cmd, line, output, exitCode, err)
}

// fail applies the allow-failure policy and builds the returned error.
func (r *ExecRunner) fail(ctx context.Context, cmd Command, line, output string, exitCode int, cause error) error {
	if cmd.AllowFailure {
		logger.WarnKV(ctx, "Command failed, continuing",
			"command", line, "output", output, "error", cause)

		return nil
	}

	logger.ErrorKV(ctx, "Command failed",
		"command", line, "output", output, "error", cause)

	return &CommandError{
		Command:  line,
		Output:   output,
		ExitCode: exitCode,
		Err:      cause,
	}
}
