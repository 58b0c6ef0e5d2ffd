// Package download fetches individual files from the remote store and
// extracts zip archives. It sits outside the sync pipeline; some jobs
// need a single config or side-car file without a full container sync.
package download

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tagsync/internal/hierarchy"
	"tagsync/internal/logging"
)

// Downloader copies files from the remote store to local disk.
type Downloader struct {
	client hierarchy.Client
}

// New returns a downloader backed by the given store client.
func New(client hierarchy.Client) *Downloader {
	return &Downloader{client: client}
}

// Files downloads every file into destDir and returns the directory. An
// empty destDir creates a temporary one.
func (d *Downloader) Files(ctx context.Context, files []*hierarchy.File, destDir string) (string, error) {
	if destDir == "" {
		dir, err := os.MkdirTemp("", "tagsync_downloads_")
		if err != nil {
			return "", fmt.Errorf("create download dir: %w", err)
		}
		destDir = dir
	}
	for _, f := range files {
		destPath := filepath.Join(destDir, f.Name)
		if err := d.client.Download(ctx, f, destPath); err != nil {
			return "", fmt.Errorf("download %q: %w", f.Name, err)
		}
		logging.SyncDebug("downloaded %q to %s", f.Name, destPath)
	}
	return destDir, nil
}

// FilesAndUnzip downloads every file into destDir and extracts any zip
// archives next to themselves.
func (d *Downloader) FilesAndUnzip(ctx context.Context, files []*hierarchy.File, destDir string) (string, error) {
	destDir, err := d.Files(ctx, files, destDir)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if !strings.HasSuffix(f.Name, ".zip") {
			continue
		}
		if err := Unzip(filepath.Join(destDir, f.Name), destDir); err != nil {
			return "", fmt.Errorf("unzip %q: %w", f.Name, err)
		}
	}
	return destDir, nil
}

// Unzip extracts an archive into destDir. Entries that would escape
// destDir are rejected.
func Unzip(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, entry := range r.File {
		target := filepath.Join(destDir, entry.Name)
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes destination", entry.Name)
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := extractFile(entry, target); err != nil {
			return err
		}
	}
	logging.SyncDebug("extracted %s into %s", zipPath, destDir)
	return nil
}

func extractFile(entry *zip.File, target string) error {
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, entry.Mode())
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
