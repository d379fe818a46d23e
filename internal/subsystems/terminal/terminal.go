// Package terminal supplies the Terminal subsystem: bridges a local
// command's stdout (not stderr) into the WebSocket hub as line-buffered text
// frames. Full PTY allocation and terminal emulation (resize, ANSI
// handling) are out of scope; this provides the
// channel the bridge would ride on.
package terminal

import (
	"bufio"
	"os/exec"
	"sync"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/websocket"
)

// lineBufferSize matches the core's documented line buffer default.
const lineBufferSize = 4096

func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	log := ctx.LoggerFor("Terminal")

	var mu sync.Mutex
	var cmd *exec.Cmd

	return &orchestrator.Subsystem{
		Name:         "Terminal",
		Dependencies: []string{"WebSocket"},
		CheckReady: func() orchestrator.ReadinessVerdict {
			return orchestrator.ReadinessVerdict{Ready: true}
		},
		Launch: func() bool {
			hubVal, ok := ctx.Get(websocket.HubKey)
			if !ok {
				log.Error("websocket hub not available")
				return false
			}
			hub := hubVal.(*websocket.Hub)
			ctx.Put("terminal.hub", hub)
			return true
		},
		Land: func() bool {
			mu.Lock()
			defer mu.Unlock()
			if cmd != nil && cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
			return true
		},
	}
}

// RunInteractive starts command, streaming its stdout line-by-line to
// hub. It is exported to be called on demand; no route in this daemon
// calls it, and it does not run automatically at Launch.
func RunInteractive(hub *websocket.Hub, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	go func() {
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, lineBufferSize), lineBufferSize)
		for scanner.Scan() {
			hub.Broadcast(scanner.Bytes())
		}
		_ = cmd.Wait()
	}()

	return nil
}
