package restore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/volbak/volbak/internal/logger"
	"github.com/volbak/volbak/pkg/models"
)

var (
	// ErrArchiveNotFound means the selected archive file does not exist.
	ErrArchiveNotFound = errors.New("archive not found")
	// ErrRestoreFailed means extraction into the recreated volume failed.
	ErrRestoreFailed = errors.New("restore failed")
	// ErrCancelled means the operator declined a destructive step. It is
	// not a fault; nothing was stopped or removed.
	ErrCancelled = errors.New("restore cancelled")
)

// Runtime is the slice of container-runtime behavior a restore needs.
type Runtime interface {
	VolumeExists(ctx context.Context, name string) (bool, error)
	ContainersUsingVolume(ctx context.Context, name string) ([]models.Container, error)
	StopContainer(ctx context.Context, id string) error
	StartContainer(ctx context.Context, id string) error
	CreateVolume(ctx context.Context, name string) error
	RemoveVolume(ctx context.Context, name string) error
}

// Extractor unpacks hostDir/archiveName into a volume.
type Extractor interface {
	Extract(ctx context.Context, volumeName, hostDir, archiveName string) error
}

// Confirmer gates each destructive step. Every stop/remove needs an
// explicit yes; in tests and --force runs it is a stub.
type Confirmer interface {
	Confirm(prompt string) bool
}

type State int

const (
	StatePending State = iota
	StateDone
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Session is the record of one restore attempt. Stopped is exactly the
// set of containers this session stopped, and the only containers it will
// ever start.
type Session struct {
	VolumeName         string
	ArchivePath        string
	Dependents         []models.Container
	PriorVolumeExisted bool
	Stopped            []string
	Restarted          []string
	State              State
}

type Coordinator struct {
	runtime   Runtime
	extractor Extractor
	confirmer Confirmer
}

func NewCoordinator(rt Runtime, ex Extractor, cf Confirmer) *Coordinator {
	return &Coordinator{runtime: rt, extractor: ex, confirmer: cf}
}

// Restore replaces a volume's contents from an archive. The existing
// volume (if any) is removed and recreated empty before extraction, with
// dependent containers stopped first and restarted only after extraction
// succeeds. If extraction fails the dependents stay stopped: restarting
// containers onto a half-written volume is worse than leaving the operator
// to decide.
func (c *Coordinator) Restore(ctx context.Context, volumeName, archivePath string) (*Session, error) {
	session := &Session{
		VolumeName:  volumeName,
		ArchivePath: archivePath,
	}

	if _, err := os.Stat(archivePath); err != nil {
		session.State = StateFailed
		return session, fmt.Errorf("%w: %s", ErrArchiveNotFound, archivePath)
	}

	exists, err := c.runtime.VolumeExists(ctx, volumeName)
	if err != nil {
		session.State = StateFailed
		return session, fmt.Errorf("failed to check volume %s: %w", volumeName, err)
	}
	session.PriorVolumeExisted = exists

	if exists {
		if err := c.replaceExisting(ctx, session); err != nil {
			return session, err
		}
	} else {
		if err := c.runtime.CreateVolume(ctx, volumeName); err != nil {
			session.State = StateFailed
			return session, fmt.Errorf("failed to create volume %s: %w", volumeName, err)
		}
	}

	logger.L().Infow("extracting archive",
		"volume", volumeName, "archive", archivePath)

	dir := filepath.Dir(archivePath)
	name := filepath.Base(archivePath)
	if err := c.extractor.Extract(ctx, volumeName, dir, name); err != nil {
		// dependents stay stopped on purpose
		session.State = StateFailed
		return session, fmt.Errorf("%w: %v", ErrRestoreFailed, err)
	}

	if err := c.restartStopped(ctx, session); err != nil {
		session.State = StateFailed
		return session, err
	}

	session.State = StateDone
	return session, nil
}

// replaceExisting runs the destructive half of the state machine for a
// volume that already exists: confirm, stop dependents, remove, recreate.
func (c *Coordinator) replaceExisting(ctx context.Context, session *Session) error {
	dependents, err := c.runtime.ContainersUsingVolume(ctx, session.VolumeName)
	if err != nil {
		session.State = StateFailed
		return fmt.Errorf("failed to list containers using volume %s: %w", session.VolumeName, err)
	}
	session.Dependents = dependents

	if len(dependents) > 0 {
		prompt := fmt.Sprintf("volume %s is in use by %d container(s); stop them and replace the volume?",
			session.VolumeName, len(dependents))
		if !c.confirmer.Confirm(prompt) {
			session.State = StateCancelled
			return ErrCancelled
		}

		for _, cont := range dependents {
			// an exited dependent stays exited; only running ones are
			// stopped, so only they come back after extraction
			if !cont.Running {
				continue
			}
			if err := c.runtime.StopContainer(ctx, cont.ID); err != nil {
				session.State = StateFailed
				return fmt.Errorf("failed to stop container %s: %w", cont.Name, err)
			}
			session.Stopped = append(session.Stopped, cont.ID)
			logger.L().Infow("stopped dependent container",
				"volume", session.VolumeName, "container", cont.Name)
		}
	} else {
		prompt := fmt.Sprintf("replace existing volume %s?", session.VolumeName)
		if !c.confirmer.Confirm(prompt) {
			session.State = StateCancelled
			return ErrCancelled
		}
	}

	if err := c.runtime.RemoveVolume(ctx, session.VolumeName); err != nil {
		session.State = StateFailed
		return fmt.Errorf("failed to remove volume %s: %w", session.VolumeName, err)
	}

	if err := c.runtime.CreateVolume(ctx, session.VolumeName); err != nil {
		session.State = StateFailed
		return fmt.Errorf("failed to recreate volume %s: %w", session.VolumeName, err)
	}

	return nil
}

// restartStopped starts exactly the containers this session stopped.
func (c *Coordinator) restartStopped(ctx context.Context, session *Session) error {
	var failed []string
	for _, id := range session.Stopped {
		if err := c.runtime.StartContainer(ctx, id); err != nil {
			logger.L().Errorw("failed to restart container",
				"volume", session.VolumeName, "container", id, "error", err)
			failed = append(failed, id)
			continue
		}
		session.Restarted = append(session.Restarted, id)
	}

	if len(failed) > 0 {
		return fmt.Errorf("restored volume %s but failed to restart %d container(s)",
			session.VolumeName, len(failed))
	}
	return nil
}
