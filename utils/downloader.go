package utils

import (
	"fmt"
	"io"
	"net/http"
)

// DownloadAttachment fetches an evidence attachment and stores it in
// the on-disk evidence store, returning the local path.
func DownloadAttachment(destDir, messageID, fileName, url string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status downloading attachment: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read attachment body: %w", err)
	}

	return SaveEvidenceAttachment(destDir, messageID, fileName, data)
}
