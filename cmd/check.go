package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/marquee-cli/marquee/color"
	"github.com/marquee-cli/marquee/constant"
	"github.com/marquee-cli/marquee/icon"
	"github.com/marquee-cli/marquee/key"
	"github.com/marquee-cli/marquee/style"
	"github.com/spf13/viper"
)

// checkDependencies exits when the configured player binary cannot be found.
func checkDependencies() {
	binary := viper.GetString(key.PlayerBinary)
	if _, err := exec.LookPath(binary); err != nil {
		fmt.Println(missingDependency(binary))
		os.Exit(1)
	}
}

func installHint(goos string) string {
	switch goos {
	case constant.Darwin:
		return "brew install mpv"
	case constant.Linux:
		return "sudo apt install mpv"
	case constant.Windows:
		return "scoop install mpv"
	default:
		return ""
	}
}

func missingDependency(binary string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(icon.Get(icon.Fail) + " Missing dependency")
	body := fmt.Sprintf("%s was not found in your PATH. Set %s to its location or install it.",
		style.Bold(binary), style.Fg(color.Purple)(key.PlayerBinary))

	if hint := installHint(runtime.GOOS); hint != "" {
		body += "\n\n" + style.Faint("Try") + "  " + style.New().Bold(true).Foreground(color.Cyan).Render(hint)
	}

	return box.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body))
}
