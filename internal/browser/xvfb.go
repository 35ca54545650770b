// CLAUDE:SUMMARY Runs the Xvfb virtual display of the xvfb browser mode and hands its DISPLAY to the Chrome launcher.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// x11SocketDir is where an X server listening on display :N creates XN.
var x11SocketDir = "/tmp/.X11-unix"

// virtualDisplay is one Xvfb server owned by the manager.
type virtualDisplay struct {
	display string
	cmd     *exec.Cmd
	logger  *slog.Logger
}

// displayNumber parses ":N" or ":N.S" into N.
func displayNumber(display string) (int, error) {
	rest, ok := strings.CutPrefix(display, ":")
	if !ok {
		return 0, fmt.Errorf("xvfb: display %q: want :N", display)
	}
	rest, _, _ = strings.Cut(rest, ".")
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("xvfb: display %q: want :N", display)
	}
	return n, nil
}

// startXvfb starts Xvfb on display and waits until its socket accepts
// clients, so Chrome never races the server.
func startXvfb(ctx context.Context, display string, logger *slog.Logger) (*virtualDisplay, error) {
	n, err := displayNumber(display)
	if err != nil {
		return nil, err
	}
	socket := filepath.Join(x11SocketDir, "X"+strconv.Itoa(n))
	if _, err := os.Stat(socket); err == nil {
		return nil, fmt.Errorf("xvfb: display %s already in use", display)
	}

	cmd := exec.Command("Xvfb", display, "-screen", "0", "1920x1080x24", "-nolisten", "tcp", "-ac")
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("xvfb: start: %w", err)
	}
	exited := make(chan struct{})
	go func() {
		cmd.Wait()
		close(exited)
	}()

	wait := backoff.NewExponentialBackOff()
	wait.InitialInterval = 50 * time.Millisecond
	wait.MaxInterval = 500 * time.Millisecond
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		select {
		case <-exited:
			return struct{}{}, backoff.Permanent(errors.New("xvfb: exited during startup"))
		default:
		}
		_, err := os.Stat(socket)
		return struct{}{}, err
	}, backoff.WithBackOff(wait), backoff.WithMaxElapsedTime(5*time.Second))
	if err != nil {
		cmd.Process.Kill()
		<-exited
		return nil, fmt.Errorf("xvfb: display %s not ready: %w", display, err)
	}

	logger.Info("browser: xvfb started", "display", display, "pid", cmd.Process.Pid)
	return &virtualDisplay{display: display, cmd: cmd, logger: logger}, nil
}

// env returns base with DISPLAY pointing at this server.
func (v *virtualDisplay) env(base []string) []string {
	out := make([]string, 0, len(base)+1)
	for _, kv := range base {
		if !strings.HasPrefix(kv, "DISPLAY=") {
			out = append(out, kv)
		}
	}
	return append(out, "DISPLAY="+v.display)
}

func (v *virtualDisplay) stop() {
	if v == nil || v.cmd.Process == nil {
		return
	}
	v.cmd.Process.Kill()
	v.logger.Info("browser: xvfb stopped", "display", v.display)
}
