// Package toolchain - devserver.go manages the vite dev server process for
// a project: one live instance at a time, with its stderr drained into a
// ring buffer the repair loop can query for compile errors.
package toolchain

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
)

// stderrRingSize caps how many stderr lines a DevServer retains.
const stderrRingSize = 400

// errorKeywords select the stderr lines worth feeding back to the model.
var errorKeywords = []string{
	"Error", "error", "SyntaxError", "ReferenceError", "TypeError",
	"Cannot find", "is not defined", "failed", "plugin:vite",
}

// DevServer is one running `npm run dev` process.
type DevServer struct {
	Dir  string
	Port int
	Logf Logf

	cmd *exec.Cmd

	mu     sync.Mutex
	stderr []string
}

// NewDevServer prepares a dev server for the project directory. Start must
// be called before the server is live.
func NewDevServer(dir string, port int) *DevServer {
	return &DevServer{Dir: dir, Port: port}
}

func (s *DevServer) logf(format string, args ...interface{}) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

// URL returns the address the dev server listens on.
func (s *DevServer) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.Port)
}

// Start launches vite and begins draining its output. The process keeps
// running after ctx is done only until Stop is called.
func (s *DevServer) Start(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "npm", "run", "dev", "--",
		"--port", strconv.Itoa(s.Port), "--host")
	cmd.Dir = s.Dir
	cmd.Env = ciEnv()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &ToolchainError{Message: "failed to attach to vite stdout", Cause: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &ToolchainError{Message: "failed to attach to vite stderr", Cause: err}
	}

	if err := cmd.Start(); err != nil {
		return &ToolchainError{Message: "failed to start vite dev server", Cause: err}
	}
	s.cmd = cmd

	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				s.logf("[vite] %s", line)
			}
		}
	}()
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			s.mu.Lock()
			s.stderr = append(s.stderr, line)
			if len(s.stderr) > stderrRingSize {
				s.stderr = s.stderr[len(s.stderr)-stderrRingSize:]
			}
			s.mu.Unlock()
			if containsAny(line, "Error", "error", "failed", "SyntaxError") {
				s.logf("[vite] %s", truncate(line, 120))
			}
		}
		_ = cmd.Wait()
	}()

	s.logf("vite dev server starting on %s", s.URL())
	return nil
}

// Stop terminates the dev server process. Safe to call when never started.
func (s *DevServer) Stop() {
	if s.cmd == nil || s.cmd.Process == nil {
		return
	}
	_ = s.cmd.Process.Signal(syscall.SIGTERM)
}

// ErrorOutput returns the last 40 stderr lines that look like errors.
func (s *DevServer) ErrorOutput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []string
	for _, line := range s.stderr {
		if containsAny(line, errorKeywords...) {
			errs = append(errs, line)
		}
	}
	if len(errs) > 40 {
		errs = errs[len(errs)-40:]
	}
	return strings.Join(errs, "\n")
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Supervisor keeps at most one dev server alive, replacing it on restart
// so fix iterations always verify against a fresh compile.
type Supervisor struct {
	Logf Logf

	mu      sync.Mutex
	current *DevServer
}

// Restart stops any running server, ensures node dependencies and starts a
// fresh vite process for the project directory.
func (sv *Supervisor) Restart(ctx context.Context, runner *Runner, port int) (*DevServer, error) {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	if sv.current != nil {
		sv.current.Stop()
		sv.current = nil
	}
	if err := runner.EnsureDeps(ctx); err != nil {
		return nil, err
	}

	server := NewDevServer(runner.Dir, port)
	server.Logf = sv.Logf
	if err := server.Start(ctx); err != nil {
		return nil, err
	}
	sv.current = server
	return server, nil
}

// Current returns the live dev server, or nil.
func (sv *Supervisor) Current() *DevServer {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	return sv.current
}

// Stop terminates the live dev server, if any.
func (sv *Supervisor) Stop() {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if sv.current != nil {
		sv.current.Stop()
		sv.current = nil
	}
}
