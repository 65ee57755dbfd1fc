package postprocess

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"av1janitor/internal/fileutil"
	"av1janitor/internal/logging"
	"av1janitor/internal/services"
)

// Replacer swaps finished encodes into the original's path.
type Replacer struct {
	logger *slog.Logger
}

// NewReplacer constructs a Replacer.
func NewReplacer(logger *slog.Logger) *Replacer {
	return &Replacer{logger: logging.NewComponentLogger(logger, "postprocess")}
}

// Replace moves the candidate over the original. The original is parked
// under a unique backup name first so the second rename can be rolled
// back; the source path is never left without a playable file unless the
// rollback itself fails, which is logged as an alert with the backup
// location.
func (r *Replacer) Replace(ctx context.Context, originalPath, candidatePath string) error {
	logger := logging.WithContext(ctx, r.logger)
	backupPath := fileutil.BackupPath(originalPath, uuid.NewString())

	if err := os.Rename(originalPath, backupPath); err != nil {
		return services.Wrap(services.ErrReplacement, "postprocess", "park original", originalPath, err)
	}
	if err := os.Rename(candidatePath, originalPath); err != nil {
		if restoreErr := os.Rename(backupPath, originalPath); restoreErr != nil {
			logging.ErrorWithContext(logger, "replacement rollback failed; original survives only as backup",
				"replace_rollback_failed",
				logging.Error(restoreErr),
				logging.String("backup_path", backupPath),
				logging.Alert("manual restore required"),
				logging.String(logging.FieldErrorHint, "rename the backup file over the original path by hand"),
				logging.String(logging.FieldImpact, "source file missing from library until restored"),
			)
			return services.Wrap(services.ErrReplacement, "postprocess", "install candidate", originalPath, err)
		}
		return services.Wrap(services.ErrReplacement, "postprocess", "install candidate", originalPath, err)
	}
	if err := os.Remove(backupPath); err != nil {
		logging.WarnWithContext(logger, "backup removal failed; stale copy left behind",
			"backup_remove_failed",
			logging.Error(err),
			logging.String("backup_path", backupPath),
			logging.String(logging.FieldImpact, "disk space not reclaimed until the backup is deleted"),
		)
	}
	return nil
}
