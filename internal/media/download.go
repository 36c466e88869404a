package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Downloader streams a resolved link into a temporary directory.
type Downloader struct {
	client  *http.Client
	dir     string
	maxSize int64
}

func NewDownloader(client *http.Client, dir string, maxSize int64) *Downloader {
	return &Downloader{client: client, dir: dir, maxSize: maxSize}
}

// Download writes link to dir and returns the file path. Every call gets its
// own file, even for the same link. Empty or oversized files are removed
// before the error is returned.
func (d *Downloader) Download(ctx context.Context, link Link, ext string) (string, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("create temp directory: %w", err)
	}
	path := filepath.Join(d.dir, uuid.NewString()+"-"+SanitizeFilename(link.Filename, ext))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.URL, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	var body io.Reader = resp.Body
	if d.maxSize > 0 {
		body = io.LimitReader(resp.Body, d.maxSize+1)
	}
	written, copyErr := io.Copy(file, body)
	closeErr := file.Close()

	switch {
	case copyErr != nil:
		err = fmt.Errorf("write file: %w", copyErr)
	case closeErr != nil:
		err = fmt.Errorf("close file: %w", closeErr)
	case written == 0:
		err = ErrEmptyFile
	case d.maxSize > 0 && written > d.maxSize:
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}
