package rotate

import (
	"fmt"
	"os"

	"github.com/volbak/volbak/internal/logger"
	"github.com/volbak/volbak/pkg/models"
)

// DeleteFailure records one archive the sweep could not remove.
type DeleteFailure struct {
	Archive models.Archive
	Err     error
}

// Result reports what a rotation sweep did.
type Result struct {
	Deleted []models.Archive
	Failed  []DeleteFailure
}

func (r *Result) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return fmt.Errorf("rotation failed to delete %d archive(s)", len(r.Failed))
}

// SelectForDeletion picks the archives falling outside the newest-keep
// window. The input must be sorted newest first. An invalid keep clamps to
// the minimum rather than aborting the sweep.
func SelectForDeletion(archives []models.Archive, keep int) []models.Archive {
	if keep < models.MinRetention {
		logger.L().Warnw("invalid retention count, clamping",
			"keep", keep, "clamped", models.MinRetention)
		keep = models.MinRetention
	}

	if len(archives) <= keep {
		return nil
	}
	return archives[keep:]
}

// Apply removes every archive outside the retention window. Each deletion
// is independent; one failure does not stop the rest of the sweep.
func Apply(archives []models.Archive, keep int) *Result {
	result := &Result{}

	for _, a := range SelectForDeletion(archives, keep) {
		if err := os.Remove(a.Path); err != nil {
			logger.L().Warnw("failed to delete rotated archive",
				"volume", a.VolumeName, "path", a.Path, "error", err)
			result.Failed = append(result.Failed, DeleteFailure{Archive: a, Err: err})
			continue
		}
		logger.L().Infow("deleted rotated archive",
			"volume", a.VolumeName, "path", a.Path)
		result.Deleted = append(result.Deleted, a)
	}

	return result
}
