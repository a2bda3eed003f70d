package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/volbak/volbak/internal/archive"
)

var listCmd = &cobra.Command{
	Use:   "list [volume]",
	Short: "List archived backups",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cm, err := loadConfigManager()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	root := cm.GetConfig().BackupDirectory

	registry, err := archive.LoadRegistry(root)
	if err != nil {
		return err
	}

	var volumes []string
	if len(args) > 0 {
		volumes = args
	} else {
		dirs, err := archive.ListDirs(root)
		if err != nil {
			return err
		}
		for _, dir := range dirs {
			if original, ok := registry.Original(dir); ok {
				volumes = append(volumes, original)
			} else {
				volumes = append(volumes, dir)
			}
		}
	}

	if len(volumes) == 0 {
		fmt.Println(dimStyle.Render("no backups found"))
		return nil
	}

	for _, name := range volumes {
		archives, err := archive.List(root, name)
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render(fmt.Sprintf("==> %s", name)) +
			dimStyle.Render(fmt.Sprintf("  (%d archive(s))", len(archives))))
		for _, a := range archives {
			created := a.Timestamp
			if ts, err := time.ParseInLocation(archive.TimestampLayout, a.Timestamp, time.Local); err == nil {
				created = ts.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("  %s  %s  %s\n",
				valueStyle.Render(created),
				labelStyle.Render(formatSize(a.SizeBytes)),
				dimStyle.Render(a.Path))
		}
	}

	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
}
