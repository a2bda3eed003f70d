package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/volbak/volbak/pkg/models"
)

var (
	configureBackupDir  string
	configureMaxBackups int
	configureVolumes    []string
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Show or change the backup configuration",
	Long: "Without flags, prints the current configuration. Flags update it:\n" +
		"  --backup-dir     base directory for archives\n" +
		"  --max-backups    default number of archives kept per volume\n" +
		"  --volume name=N  per-volume retention override (name alone uses the default)",
	RunE: runConfigure,
}

func runConfigure(cmd *cobra.Command, args []string) error {
	cm, err := loadConfigManager()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := cm.GetConfig()

	changed := false

	if configureBackupDir != "" {
		cfg.BackupDirectory = configureBackupDir
		changed = true
	}
	if configureMaxBackups > 0 {
		cfg.DefaultMaxBackups = configureMaxBackups
		changed = true
	}
	for _, spec := range configureVolumes {
		name, keep, err := parseVolumeSpec(spec)
		if err != nil {
			return err
		}
		cfg.SetVolumePolicy(name, keep)
		changed = true
	}

	if changed {
		if err := cm.Save(); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("[done] configuration saved"))
		fmt.Println()
	}

	fmt.Println(titleStyle.Render("==> configuration") + dimStyle.Render("  ("+cm.Path()+")"))
	fmt.Printf("  %s %s\n", labelStyle.Render("backup directory:"), valueStyle.Render(cfg.BackupDirectory))
	fmt.Printf("  %s %s\n", labelStyle.Render("default retention:"), valueStyle.Render(strconv.Itoa(cfg.ResolveRetention(""))))

	if len(cfg.Volumes) > 0 {
		fmt.Println(labelStyle.Render("  volumes:"))
		for _, v := range cfg.Volumes {
			fmt.Printf("    %s %s\n",
				valueStyle.Render(v.Name),
				dimStyle.Render(fmt.Sprintf("(keep %d)", cfg.ResolveRetention(v.Name))))
		}
	}

	return nil
}

// parseVolumeSpec splits "name=keep" or plain "name".
func parseVolumeSpec(spec string) (string, int, error) {
	name, keepStr, found := strings.Cut(spec, "=")
	if name == "" {
		return "", 0, fmt.Errorf("invalid volume spec %q", spec)
	}
	if !found {
		return name, 0, nil
	}

	keep, err := strconv.Atoi(keepStr)
	if err != nil || keep < models.MinRetention {
		return "", 0, fmt.Errorf("invalid retention in %q: must be a positive integer", spec)
	}
	return name, keep, nil
}

func init() {
	configureCmd.Flags().StringVar(&configureBackupDir, "backup-dir", "", "base directory for archives")
	configureCmd.Flags().IntVar(&configureMaxBackups, "max-backups", 0, "default archives kept per volume")
	configureCmd.Flags().StringArrayVar(&configureVolumes, "volume", nil, "volume policy, name or name=keep (repeatable)")
	rootCmd.AddCommand(configureCmd)
}
