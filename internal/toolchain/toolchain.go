// Package toolchain drives the Node side of a generated project: npm
// installs and the vite build probe used to collect compile errors.
package toolchain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultInstallTimeout bounds npm install.
	DefaultInstallTimeout = 300 * time.Second
	// DefaultBuildTimeout bounds the vite build error probe.
	DefaultBuildTimeout = 60 * time.Second
)

// Logf receives toolchain progress lines. Nil disables logging.
type Logf func(format string, args ...interface{})

// ToolchainError represents a failed npm or vite invocation.
//
//nolint:revive // name mirrors the package for call sites using errors.As
type ToolchainError struct {
	Message string
	Output  string
	Cause   error
}

func (e *ToolchainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ToolchainError) Unwrap() error {
	return e.Cause
}

// Runner executes npm commands inside one project directory.
type Runner struct {
	Dir            string
	InstallTimeout time.Duration
	BuildTimeout   time.Duration
	Logf           Logf
}

// NewRunner returns a Runner with default timeouts.
func NewRunner(dir string) *Runner {
	return &Runner{Dir: dir, InstallTimeout: DefaultInstallTimeout, BuildTimeout: DefaultBuildTimeout}
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

func (r *Runner) installTimeout() time.Duration {
	if r.InstallTimeout > 0 {
		return r.InstallTimeout
	}
	return DefaultInstallTimeout
}

func (r *Runner) buildTimeout() time.Duration {
	if r.BuildTimeout > 0 {
		return r.BuildTimeout
	}
	return DefaultBuildTimeout
}

// ciEnv is the process environment with CI=true, which suppresses npm's
// interactive prompts and progress rendering.
func ciEnv() []string {
	return append(os.Environ(), "CI=true")
}

// Install runs npm install in the project directory.
func (r *Runner) Install(ctx context.Context) error {
	if _, err := exec.LookPath("npm"); err != nil {
		return &ToolchainError{
			Message: "npm not found in PATH. Please install Node.js (https://nodejs.org)",
			Cause:   err,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.installTimeout())
	defer cancel()

	r.logf("running npm install in %s", r.Dir)
	cmd := exec.CommandContext(ctx, "npm", "install")
	cmd.Dir = r.Dir
	cmd.Env = ciEnv()

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		output := stdout.String() + "\n" + stderr.String()
		return &ToolchainError{
			Message: "npm install failed",
			Output:  tail(output, 1500),
			Cause:   err,
		}
	}
	r.logf("npm install complete")
	return nil
}

// EnsureDeps installs dependencies only when the vite binary is missing
// from node_modules.
func (r *Runner) EnsureDeps(ctx context.Context) error {
	viteBin := filepath.Join(r.Dir, "node_modules", ".bin", "vite")
	if _, err := os.Stat(viteBin); err == nil {
		return nil
	}
	return r.Install(ctx)
}

// BuildErrors runs `npm run build` and returns its combined output when the
// build fails, "" when it succeeds. A vite build exits nonzero with the
// real compile error on stderr, which is far more reliable than scraping
// the dev server.
func (r *Runner) BuildErrors(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, r.buildTimeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, "npm", "run", "build")
	cmd.Dir = r.Dir
	cmd.Env = ciEnv()

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		r.logf("npm build failed, collected compile errors")
		output := strings.TrimSpace(stdout.String() + "\n" + stderr.String())
		return head(output, 2000)
	}
	r.logf("npm build succeeded, no compile errors")
	return ""
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
