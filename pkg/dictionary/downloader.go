package dictionary

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Downloader fetches an offline dictionary file when it is missing locally.
type Downloader struct {
	URL        string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewDownloader creates a Downloader for the given archive or JSON URL.
func NewDownloader(url string, logger *zap.Logger) *Downloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 2 * time.Minute},
		Logger:     logger,
	}
}

// Ensure checks if the dictionary exists at path and downloads it otherwise.
// The download may be plain JSON, gzip-compressed JSON, or a .tgz holding a
// single JSON file.
func (d *Downloader) Ensure(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if d.URL == "" {
		return fmt.Errorf("dictionary not found at %s and no download url configured", path)
	}

	d.Logger.Info("dictionary missing, downloading", zap.String("path", path), zap.String("url", d.URL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "hanreader-cli")

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: download: %v", ErrLookupUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: download failed: %s", ErrLookupUnavailable, resp.Status)
	}

	// Write to a sibling temp file so a failed download never leaves a
	// truncated dictionary at path.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".dict-*.json")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := extract(resp.Body, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	d.Logger.Info("dictionary downloaded", zap.String("path", path))
	return nil
}

func extract(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if len(magic) < 2 || magic[0] != 0x1f || magic[1] != 0x8b {
		_, err := io.Copy(w, br)
		return err
	}

	gz, err := gzip.NewReader(br)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	inner := bufio.NewReader(gz)
	// A tar header carries "ustar" at offset 257.
	if hdr, err := inner.Peek(262); err == nil && string(hdr[257:262]) == "ustar" {
		return extractTar(inner, w)
	}
	_, err = io.Copy(w, inner)
	return err
}

func extractTar(r io.Reader, w io.Writer) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading tar archive: %w", err)
		}
		if header.Typeflag == tar.TypeReg && strings.HasSuffix(header.Name, ".json") {
			if _, err := io.Copy(w, tr); err != nil {
				return fmt.Errorf("failed to write to file: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("no json file found in downloaded archive")
}
