package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/volbak/volbak/internal/archive"
	"github.com/volbak/volbak/internal/docker"
	"github.com/volbak/volbak/internal/restore"
	"github.com/volbak/volbak/pkg/models"
)

var (
	restoreArchive string
	restoreForce   bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore [volume]",
	Short: "Restore a volume from an archive",
	Long: "Replace a volume's contents from one of its archives. The newest archive\n" +
		"is used unless --archive selects another. Without a volume argument the\n" +
		"volumes with backup history are listed for selection.",
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	cm, err := loadConfigManager()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := cm.GetConfig()

	registry, err := archive.LoadRegistry(cfg.BackupDirectory)
	if err != nil {
		return err
	}

	var volumeName string
	if len(args) > 0 {
		volumeName = args[0]
	} else {
		volumeName, err = pickRestorableVolume(cfg.BackupDirectory, registry)
		if err != nil {
			return err
		}
	}

	selected, err := selectArchive(cfg.BackupDirectory, volumeName)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> restoring volume: %s", volumeName)))
	fmt.Printf("  %s %s\n", dimStyle.Render("archive:"), valueStyle.Render(selected.Path))
	fmt.Printf("  %s %s\n", dimStyle.Render("size:"), valueStyle.Render(formatSize(selected.SizeBytes)))
	fmt.Println()

	dockerClient, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer dockerClient.Close()

	var confirmer restore.Confirmer = terminalConfirmer{}
	if restoreForce {
		confirmer = autoConfirmer{}
	}

	coordinator := restore.NewCoordinator(dockerClient, dockerClient, confirmer)
	session, err := coordinator.Restore(cmd.Context(), volumeName, selected.Path)

	if errors.Is(err, restore.ErrCancelled) {
		fmt.Println(labelStyle.Render("restore cancelled."))
		return nil
	}
	if err != nil {
		if len(session.Stopped) > len(session.Restarted) {
			fmt.Fprintln(os.Stderr, errorStyle.Render(
				fmt.Sprintf("[warn] %d container(s) remain stopped; inspect the volume before restarting them",
					len(session.Stopped)-len(session.Restarted))))
		}
		return err
	}

	fmt.Println(successStyle.Render("  [done] volume restored"))
	if len(session.Restarted) > 0 {
		fmt.Println(dimStyle.Render(fmt.Sprintf("  restarted %d container(s)", len(session.Restarted))))
	}
	return nil
}

// selectArchive resolves --archive (path or timestamp) against the
// volume's history, defaulting to the newest archive.
func selectArchive(root, volumeName string) (*models.Archive, error) {
	archives, err := archive.List(root, volumeName)
	if err != nil {
		return nil, err
	}
	if len(archives) == 0 {
		return nil, fmt.Errorf("no archives found for volume %s", volumeName)
	}

	if restoreArchive == "" {
		return &archives[0], nil
	}

	if info, err := os.Stat(restoreArchive); err == nil {
		return &models.Archive{VolumeName: volumeName, Path: restoreArchive, SizeBytes: info.Size()}, nil
	}
	for i := range archives {
		if archives[i].Timestamp == restoreArchive {
			return &archives[i], nil
		}
	}

	return nil, fmt.Errorf("archive %q not found for volume %s", restoreArchive, volumeName)
}

// pickRestorableVolume lists the volumes with backup history. The
// registry resolves each directory back to its original volume name;
// directories without a registry entry fall back to the directory name.
func pickRestorableVolume(root string, registry *archive.Registry) (string, error) {
	dirs, err := archive.ListDirs(root)
	if err != nil {
		return "", err
	}
	if len(dirs) == 0 {
		return "", fmt.Errorf("no backups found under %s", root)
	}

	names := make([]string, len(dirs))
	for i, dir := range dirs {
		if original, ok := registry.Original(dir); ok {
			names[i] = original
		} else {
			names[i] = dir
		}
	}

	fmt.Println(labelStyle.Render("volumes with backups:"))
	for i, name := range names {
		fmt.Printf("  %s %s\n", dimStyle.Render(fmt.Sprintf("%2d)", i+1)), valueStyle.Render(name))
	}
	fmt.Print(labelStyle.Render("select a volume (number or name): "))

	choice := bufioLine()
	if choice == "" {
		return "", fmt.Errorf("no volume selected")
	}
	if idx, err := strconv.Atoi(choice); err == nil {
		if idx < 1 || idx > len(names) {
			return "", fmt.Errorf("selection %d out of range", idx)
		}
		return names[idx-1], nil
	}

	return choice, nil
}

func init() {
	restoreCmd.Flags().StringVar(&restoreArchive, "archive", "", "archive path or timestamp (default: newest)")
	restoreCmd.Flags().BoolVarP(&restoreForce, "force", "f", false, "skip confirmation")
	rootCmd.AddCommand(restoreCmd)
}
