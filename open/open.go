// Package open hands a path or url to the desktop's default handler.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/marquee-cli/marquee/constant"
)

// launcher returns the program and arguments that open target on goos.
func launcher(goos, target string) (name string, args []string, ok bool) {
	switch goos {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return rundll, []string{"url.dll,FileProtocolHandler", target}, true
	case constant.Darwin:
		return "open", []string{target}, true
	case constant.Linux:
		return "xdg-open", []string{target}, true
	case constant.Android:
		return "termux-open", []string{target}, true
	default:
		return "", nil, false
	}
}

// Start opens target without waiting for the handler to exit.
func Start(target string) error {
	name, args, ok := launcher(runtime.GOOS, target)
	if !ok {
		return fmt.Errorf("opening files is not supported on %s", runtime.GOOS)
	}

	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return cmd.Process.Release()
}
