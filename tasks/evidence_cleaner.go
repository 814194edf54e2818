package tasks

import (
	"os"
	"path/filepath"
	"time"

	"mod-ledger/model"

	"go.uber.org/zap"
)

// CleanOldEvidence removes files from the evidence path that are older
// than the configured max age. Returns the number of files deleted.
func CleanOldEvidence(cfg model.EvidenceConfig, log *zap.Logger) int {
	if cfg.Path == "" {
		log.Debug("evidence cleaner path is not configured, skipping")
		return 0
	}

	maxAge := time.Duration(cfg.MaxAgeDays) * 24 * time.Hour
	cutoff := time.Now().Add(-maxAge)

	files, err := os.ReadDir(cfg.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		log.Error("failed to read evidence directory", zap.String("path", cfg.Path), zap.Error(err))
		return 0
	}

	deleted := 0
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		path := filepath.Join(cfg.Path, file.Name())
		info, err := file.Info()
		if err != nil {
			log.Warn("could not stat evidence file", zap.String("path", path), zap.Error(err))
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				log.Error("failed to delete old evidence file", zap.String("path", path), zap.Error(err))
				continue
			}
			deleted++
		}
	}

	if deleted > 0 {
		log.Info("evidence retention sweep complete",
			zap.String("path", cfg.Path),
			zap.Int("deleted", deleted),
			zap.Int("max_age_days", cfg.MaxAgeDays))
	}
	return deleted
}
