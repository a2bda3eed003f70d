package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/volbak/volbak/internal/backup"
	"github.com/volbak/volbak/internal/docker"
)

var backupInteractive bool

var backupCmd = &cobra.Command{
	Use:   "backup [volume...]",
	Short: "Back up volumes",
	Long: "Back up the named volumes, or every configured volume when none are given.\n" +
		"With --interactive, pick volumes from the ones mounted by running containers.",
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	cm, err := loadConfigManager()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := cm.GetConfig()

	dockerClient, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer dockerClient.Close()

	fmt.Println(dimStyle.Render("runtime: " + dockerClient.GetRuntimeInfo().GetRuntimeName()))

	volumes := args
	if backupInteractive {
		volumes, err = pickRunningVolumes(cmd.Context(), dockerClient)
		if err != nil {
			return err
		}
	}
	if len(volumes) == 0 {
		volumes = cfg.ConfiguredVolumes()
	}
	if len(volumes) == 0 {
		fmt.Println(dimStyle.Render("no volumes configured; nothing to do"))
		return nil
	}

	manager, err := backup.NewManager(cfg, dockerClient)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> backing up %d volume(s)", len(volumes))))

	result := manager.BackupAll(cmd.Context(), volumes)

	for _, a := range result.Succeeded {
		fmt.Printf("  %s %s %s\n",
			successStyle.Render("[done]"),
			valueStyle.Render(a.VolumeName),
			dimStyle.Render(fmt.Sprintf("(%s, keep %d)", formatSize(a.SizeBytes), cfg.ResolveRetention(a.VolumeName))))
	}
	for _, f := range result.Failed {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("  [error] %s: %v", f.VolumeName, f.Err)))
	}

	return result.Err()
}

// pickRunningVolumes prompts with the volumes currently mounted by running
// containers and reads a space-separated list of selections.
func pickRunningVolumes(ctx context.Context, dockerClient *docker.Client) ([]string, error) {
	names, err := dockerClient.RunningVolumeNames(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no volumes are mounted by running containers")
	}

	fmt.Println(labelStyle.Render("volumes in use by running containers:"))
	for i, name := range names {
		fmt.Printf("  %s %s\n", dimStyle.Render(fmt.Sprintf("%2d)", i+1)), valueStyle.Render(name))
	}
	fmt.Print(labelStyle.Render("select volumes (numbers or names, space separated, empty for all): "))

	reader := bufioLine()
	if reader == "" {
		return names, nil
	}

	var selected []string
	for _, tok := range strings.Fields(reader) {
		if idx, err := strconv.Atoi(tok); err == nil {
			if idx < 1 || idx > len(names) {
				return nil, fmt.Errorf("selection %d out of range", idx)
			}
			selected = append(selected, names[idx-1])
			continue
		}
		selected = append(selected, tok)
	}

	return selected, nil
}

func bufioLine() string {
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}

func init() {
	backupCmd.Flags().BoolVarP(&backupInteractive, "interactive", "i", false, "pick volumes interactively")
	rootCmd.AddCommand(backupCmd)
}
