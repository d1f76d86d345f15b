package fetch

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
)

var (
	ErrNoCandidates     = errors.New("no dist URL available")
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// ChecksumError reports a downloaded archive whose sha1 differs from the
// one the package declares.
type ChecksumError struct {
	URL      string
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%s: sha1 %s, expected %s", e.URL, e.Actual, e.Expected)
}

func (e *ChecksumError) Unwrap() error {
	return ErrChecksumMismatch
}

// Dist is the part of a package descriptor the downloader needs.
// *composer.Package satisfies it.
type Dist interface {
	Name() string
	Version() string
	DistType() string
	DistReference() string
	DistSha1Checksum() string
	DistURLs() []string
}

// Result describes a completed download.
type Result struct {
	URL  string // the candidate that succeeded
	Path string
	Size int64
}

// Downloader fetches a package's dist archive, trying its candidate URLs
// (mirrors included) in order until one succeeds.
type Downloader struct {
	fetcher ArchiveFetcher
	log     logr.Logger
}

// NewDownloader returns a downloader using f for each candidate.
func NewDownloader(f ArchiveFetcher, log logr.Logger) *Downloader {
	return &Downloader{fetcher: f, log: log}
}

// Download writes the archive for pkg into dir. A candidate that fails to
// download or does not match the declared sha1 is skipped in favour of
// the next one; if all fail, the joined errors are returned.
func (d *Downloader) Download(ctx context.Context, pkg Dist, dir string) (*Result, error) {
	urls := pkg.DistURLs()
	if len(urls) == 0 {
		return nil, fmt.Errorf("%s: %w", pkg.Name(), ErrNoCandidates)
	}

	log := d.log.WithValues("package", pkg.Name(), "version", pkg.Version())
	target := filepath.Join(dir, archiveFilename(pkg))

	var errs []error
	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		size, err := d.downloadTo(ctx, url, target, pkg.DistSha1Checksum())
		if err == nil {
			log.V(1).Info("downloaded dist archive", "url", url, "path", target, "size", size)
			return &Result{URL: url, Path: target, Size: size}, nil
		}

		errs = append(errs, fmt.Errorf("%s: %w", url, err))
		if i < len(urls)-1 {
			log.Info("dist download failed, trying next URL", "url", url, "error", err.Error())
		}
	}

	return nil, fmt.Errorf("downloading %s: %w", pkg.Name(), errors.Join(errs...))
}

func (d *Downloader) downloadTo(ctx context.Context, url, target, checksum string) (int64, error) {
	archive, err := d.fetcher.Fetch(ctx, url)
	if err != nil {
		return 0, err
	}
	defer func() { _ = archive.Body.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(target), ".download-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	hash := sha1.New()
	size, err := io.Copy(io.MultiWriter(tmp, hash), archive.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("writing archive: %w", err)
	}

	if checksum != "" {
		actual := hex.EncodeToString(hash.Sum(nil))
		if !strings.EqualFold(actual, checksum) {
			return 0, &ChecksumError{URL: url, Expected: checksum, Actual: actual}
		}
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return 0, fmt.Errorf("moving archive into place: %w", err)
	}
	return size, nil
}

var unsafeFilenameChar = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// archiveFilename names the archive after the package and the dist
// reference, falling back to the version.
func archiveFilename(pkg Dist) string {
	id := pkg.DistReference()
	if id == "" {
		id = pkg.Version()
	}
	ext := pkg.DistType()
	if ext == "" {
		ext = "zip"
	}
	name := unsafeFilenameChar.ReplaceAllString(pkg.Name()+"-"+id, "-")
	return name + "." + ext
}
