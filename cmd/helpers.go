package cmd

import (
	"fmt"
	"strings"

	"github.com/volbak/volbak/internal/config"
)

func loadConfigManager() (*config.Manager, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	return config.NewManager(path)
}

// terminalConfirmer asks on stdin. Anything but y/yes declines.
type terminalConfirmer struct{}

func (terminalConfirmer) Confirm(prompt string) bool {
	fmt.Print(labelStyle.Render(prompt + " [y/N]: "))

	var response string
	fmt.Scanln(&response)

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// autoConfirmer approves everything, for --force runs.
type autoConfirmer struct{}

func (autoConfirmer) Confirm(string) bool { return true }

func formatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d bytes", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f kb", float64(bytes)/1024)
	case bytes < 1024*1024*1024:
		return fmt.Sprintf("%.1f mb", float64(bytes)/(1024*1024))
	default:
		return fmt.Sprintf("%.1f gb", float64(bytes)/(1024*1024*1024))
	}
}
