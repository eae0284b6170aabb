// Package open launches URLs with the system's default handler.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Start opens link with the default handler without waiting for it.
func Start(link string) error {
	cmd, ok := command(runtime.GOOS, link)
	if !ok {
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	return cmd.Start()
}

// Each system has its own launcher for the default URL handler.
const (
	windows = "windows"
	darwin  = "darwin"
	linux   = "linux"
	android = "android"
)

func command(goos, link string) (*exec.Cmd, bool) {
	switch goos {
	case windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", link), true
	case darwin:
		return exec.Command("open", link), true
	case linux:
		return exec.Command("xdg-open", link), true
	case android:
		return exec.Command("termux-open", link), true
	default:
		return nil, false
	}
}
