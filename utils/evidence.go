package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// SaveEvidenceAttachment writes one evidence attachment to the on-disk
// evidence store as file-per-record. The file is written to a temp
// name and renamed into place so a crash never leaves a partial file
// visible.
func SaveEvidenceAttachment(dir, messageID, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create evidence directory %s: %w", dir, err)
	}

	finalPath := filepath.Join(dir, fmt.Sprintf("msg-%s-%s", messageID, filepath.Base(name)))
	tmp, err := os.CreateTemp(dir, ".evidence-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp evidence file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write evidence file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close evidence file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to publish evidence file: %w", err)
	}
	return finalPath, nil
}
