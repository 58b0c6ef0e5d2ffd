package syncer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"tagsync/internal/logging"
)

// Invocation is one sync run of the external tool.
type Invocation struct {
	// RemotePath is the "<group>/<project>" source path.
	RemotePath string
	// Dest is the local directory files are synced into.
	Dest string
	// Includes are file-type include flags.
	Includes []string
	// Filter scopes the run to tagged containers. Required.
	Filter *FilterExpression
	// AuditPath receives the tool's audit log for this run.
	AuditPath string
}

// Tool is the capability the orchestrator needs from the external sync
// tool. Implementations are synchronous; cancellation mid-run is not
// supported beyond the context deadline killing the process.
type Tool interface {
	Login(ctx context.Context, apiKey string) error
	Sync(ctx context.Context, inv Invocation) error
}

// CLI drives the external sync tool as a subprocess.
type CLI struct {
	path    string
	timeout time.Duration
}

// NewCLI returns a CLI for the tool at path. An empty path looks the
// tool up on PATH.
func NewCLI(path string, timeout time.Duration) (*CLI, error) {
	if path == "" {
		found, err := exec.LookPath("fw")
		if err != nil {
			return nil, fmt.Errorf("sync tool not found on PATH; install it or set remote.tool_path: %w", err)
		}
		path = found
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	logging.SyncDebug("using sync tool %s (timeout %s)", path, timeout)
	return &CLI{path: path, timeout: timeout}, nil
}

// checkArgs refuses any argument containing shell control characters.
// The tool is never run through a shell, but tag and path inputs are
// user-controlled and must not reach the command line with them.
func checkArgs(args []string) error {
	for _, a := range args {
		if strings.ContainsAny(a, "|;&") {
			return &InjectionError{Arg: a}
		}
	}
	return nil
}

// Login authenticates the tool with the given API key.
func (c *CLI) Login(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("api key required for login")
	}
	args := []string{"login", apiKey}
	if err := checkArgs(args); err != nil {
		return err
	}
	if err := c.run(ctx, args); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	logging.Sync("logged in to remote store")
	return nil
}

// Sync runs one scoped sync invocation.
func (c *CLI) Sync(ctx context.Context, inv Invocation) error {
	if inv.RemotePath == "" {
		return fmt.Errorf("remote path required")
	}
	if inv.Dest == "" {
		return fmt.Errorf("destination directory required")
	}
	if inv.Filter == nil || inv.Filter.Empty() {
		return fmt.Errorf("container filter required")
	}

	args := []string{"sync", inv.RemotePath, inv.Dest}
	for _, inc := range inv.Includes {
		args = append(args, "--include", inc)
	}
	args = append(args,
		"--include-container-tags", inv.Filter.String(),
		"--save-audit-logs", inv.AuditPath,
	)
	if err := checkArgs(args); err != nil {
		return err
	}
	return c.run(ctx, args)
}

// run executes the tool and waits for it. Stdout and stderr are log-only
// per the tool contract; the tail of stderr is folded into errors.
func (c *CLI) run(ctx context.Context, args []string) error {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	logging.SyncDebug("exec: %s %s", c.path, strings.Join(args, " "))
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			logging.SyncError("tool killed after %s: %s", c.timeout, args[0])
			return fmt.Errorf("tool timed out after %s", c.timeout)
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			logging.SyncError("tool exited %d: %s", exitErr.ExitCode(), tail(stderr.String()))
			return fmt.Errorf("tool exited %d: %s", exitErr.ExitCode(), tail(stderr.String()))
		}
		logging.SyncError("tool failed to launch: %v", err)
		return fmt.Errorf("launch tool: %w", err)
	}

	logging.Sync("tool %s completed in %s (stdout %d bytes)", args[0], elapsed, stdout.Len())
	return nil
}

// tail returns the last few lines of tool output for error messages.
func tail(s string) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, " / ")
}
