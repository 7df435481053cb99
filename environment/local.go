// Package environment provides the command execution capability for
// the agent loop. The Local environment runs commands through the shell
// in a fixed working directory, with a per-command deadline, process
// group cleanup, and a filtered set of environment variables.
package environment

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/martinemde/shellagent/agent"
)

// sensitiveEnvPatterns are case-insensitive suffixes for environment
// variables that are excluded from executed commands by default.
var sensitiveEnvPatterns = []string{
	"_API_KEY",
	"_SECRET",
	"_TOKEN",
	"_PASSWORD",
	"_CREDENTIAL",
}

// safeEnvVars are always included regardless of filtering.
var safeEnvVars = map[string]bool{
	"PATH": true, "HOME": true, "USER": true, "SHELL": true,
	"LANG": true, "TERM": true, "TMPDIR": true,
	"XDG_CONFIG_HOME": true, "XDG_DATA_HOME": true, "XDG_CACHE_HOME": true,
}

func isSensitiveEnvVar(name string) bool {
	upper := strings.ToUpper(name)
	for _, pattern := range sensitiveEnvPatterns {
		if strings.HasSuffix(upper, pattern) {
			return true
		}
	}
	return false
}

// filterEnvironment returns the host environment minus sensitive
// variables, plus any caller-specified overrides.
func filterEnvironment(overrides map[string]string) []string {
	var filtered []string
	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name := parts[0]
		if safeEnvVars[name] || !isSensitiveEnvVar(name) {
			filtered = append(filtered, env)
		}
	}
	for k, v := range overrides {
		filtered = append(filtered, k+"="+v)
	}
	return filtered
}

// Local runs commands on the local machine.
type Local struct {
	workingDir string
	timeout    time.Duration
	envVars    map[string]string
}

var _ agent.Environment = (*Local)(nil)

// LocalOption configures a Local environment.
type LocalOption func(*Local)

// WithEnvVars adds environment variable overrides for executed
// commands.
func WithEnvVars(vars map[string]string) LocalOption {
	return func(l *Local) { l.envVars = vars }
}

// NewLocal creates a local execution environment. An empty workingDir
// uses the current directory; a non-positive timeout disables the
// per-command deadline.
func NewLocal(workingDir string, timeout time.Duration, opts ...LocalOption) *Local {
	if workingDir == "" {
		workingDir, _ = os.Getwd()
	}
	l := &Local{
		workingDir: workingDir,
		timeout:    timeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WorkingDirectory returns the directory commands run in.
func (l *Local) WorkingDirectory() string { return l.workingDir }

// Execute runs a shell command and returns its combined output as raw
// bytes. When the per-command deadline fires the process group is
// killed and a *agent.CommandTimeoutError carrying the partial output
// is returned. Cancellation of the caller's ctx surfaces as ctx.Err().
func (l *Local) Execute(ctx context.Context, command string) (*agent.ExecResult, error) {
	deadline := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		deadline, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	shell := "/bin/bash"
	shellArg := "-c"
	if runtime.GOOS == "windows" {
		shell = "cmd.exe"
		shellArg = "/c"
	}

	cmd := exec.CommandContext(deadline, shell, shellArg, command)
	cmd.Dir = l.workingDir
	cmd.Env = filterEnvironment(l.envVars)

	// Process group so the whole tree dies on timeout; without it an
	// orphaned grandchild would keep the output pipe open past the
	// deadline.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return os.ErrProcessDone
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	err := cmd.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// The caller's own ctx ended; no output recovery.
			return nil, ctxErr
		}
		if deadline.Err() == context.DeadlineExceeded {
			return nil, &agent.CommandTimeoutError{
				Command: command,
				Partial: combined.Bytes(),
			}
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &agent.ExecResult{
				Output:     combined.Bytes(),
				ReturnCode: exitErr.ExitCode(),
			}, nil
		}
		return nil, fmt.Errorf("execute command: %w", err)
	}

	return &agent.ExecResult{
		Output:     combined.Bytes(),
		ReturnCode: 0,
	}, nil
}

// TemplateVars returns environment-specific template variables.
func (l *Local) TemplateVars() map[string]string {
	return map[string]string{
		"cwd":             l.workingDir,
		"platform":        runtime.GOOS,
		"arch":            runtime.GOARCH,
		"timeout_seconds": strconv.Itoa(int(l.timeout / time.Second)),
	}
}
