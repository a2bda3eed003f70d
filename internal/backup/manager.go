package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/volbak/volbak/internal/archive"
	"github.com/volbak/volbak/internal/logger"
	"github.com/volbak/volbak/internal/rotate"
	"github.com/volbak/volbak/pkg/models"
)

var (
	// ErrPath means the archive directory could not be created.
	ErrPath = errors.New("backup path error")
	// ErrArchive means the external archiver exited non-zero.
	ErrArchive = errors.New("archiver failed")
)

// Archiver produces a compressed archive of a volume's contents at
// hostDir/archiveName. The concrete implementation runs tar inside a
// throwaway container.
type Archiver interface {
	Compress(ctx context.Context, volumeName, hostDir, archiveName string) error
}

type Manager struct {
	cfg      *models.Config
	archiver Archiver
	registry *archive.Registry
}

func NewManager(cfg *models.Config, archiver Archiver) (*Manager, error) {
	registry, err := archive.LoadRegistry(cfg.BackupDirectory)
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg:      cfg,
		archiver: archiver,
		registry: registry,
	}, nil
}

// Backup archives one volume, verifies the written file, and rotates the
// volume's history down to its retention count. A failed or corrupt
// archive is deleted before the error is returned; no run leaves a bad
// file behind.
func (m *Manager) Backup(ctx context.Context, volumeName string) (*models.Archive, error) {
	dir, err := archive.Dir(m.cfg.BackupDirectory, volumeName)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPath, err)
	}

	timestamp := archive.NewTimestamp()
	filename, err := archive.Filename(volumeName, timestamp)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, filename)

	logger.L().Infow("starting backup", "volume", volumeName, "path", path)

	if err := m.archiver.Compress(ctx, volumeName, dir, filename); err != nil {
		removePartial(path)
		return nil, fmt.Errorf("%w: %v", ErrArchive, err)
	}

	if err := archive.Verify(path); err != nil {
		removePartial(path)
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: archive missing after write: %v", ErrArchive, err)
	}

	if err := m.registry.Record(volumeName); err != nil {
		logger.L().Warnw("failed to record volume in registry",
			"volume", volumeName, "error", err)
	}

	m.rotateVolume(volumeName)

	return &models.Archive{
		VolumeName: volumeName,
		Timestamp:  timestamp,
		Path:       path,
		SizeBytes:  info.Size(),
	}, nil
}

// rotateVolume prunes the volume's history. Rotation problems are logged
// but never fail a backup that already verified.
func (m *Manager) rotateVolume(volumeName string) {
	archives, err := archive.List(m.cfg.BackupDirectory, volumeName)
	if err != nil {
		logger.L().Warnw("failed to list archives for rotation",
			"volume", volumeName, "error", err)
		return
	}

	keep := m.cfg.ResolveRetention(volumeName)
	result := rotate.Apply(archives, keep)
	if result.Err() != nil {
		logger.L().Warnw("rotation incomplete",
			"volume", volumeName, "failed", len(result.Failed))
	}
}

// VolumeFailure records one volume that failed in a batch run.
type VolumeFailure struct {
	VolumeName string
	Err        error
}

// BatchResult aggregates a batch backup. Volumes are processed
// sequentially and failures are isolated: one bad volume never stops the
// rest.
type BatchResult struct {
	Succeeded []*models.Archive
	Failed    []VolumeFailure
}

func (r *BatchResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}

	names := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		names[i] = f.VolumeName
	}
	return fmt.Errorf("backup failed for volume(s): %s", strings.Join(names, ", "))
}

// BackupAll backs up each volume in order.
func (m *Manager) BackupAll(ctx context.Context, volumeNames []string) *BatchResult {
	result := &BatchResult{}

	for _, name := range volumeNames {
		a, err := m.Backup(ctx, name)
		if err != nil {
			logger.L().Errorw("backup failed", "volume", name, "error", err)
			result.Failed = append(result.Failed, VolumeFailure{VolumeName: name, Err: err})
			continue
		}
		result.Succeeded = append(result.Succeeded, a)
	}

	return result
}

func removePartial(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.L().Warnw("failed to remove partial archive", "path", path, "error", err)
	}
}
