package common

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// backupStamp sorts lexically in time order.
const backupStamp = "20060102-150405.000"

// logRotator turns an oversized log file into a gzip backup next to it
// and keeps at most maxBackups of them.
type logRotator struct {
	path       string
	maxSize    int64
	maxBackups int
	now        func() time.Time
}

func newLogRotator(path string, maxSize int64, maxBackups int) logRotator {
	return logRotator{path: path, maxSize: maxSize, maxBackups: maxBackups, now: time.Now}
}

// due reports whether the log file has reached maxSize.
func (r logRotator) due() bool {
	info, err := os.Stat(r.path)
	return err == nil && r.maxSize > 0 && info.Size() >= r.maxSize
}

// rotate moves the log file into a new backup and prunes old ones. It
// returns the backup path.
func (r logRotator) rotate() (string, error) {
	backup := r.backupPath()
	if err := gzipFile(r.path, backup); err != nil {
		// Keep the content uncompressed rather than lose it.
		backup = strings.TrimSuffix(backup, ".gz")
		if renameErr := os.Rename(r.path, backup); renameErr != nil {
			return "", errors.Join(err, renameErr)
		}
	} else if err := os.Remove(r.path); err != nil {
		return backup, err
	}
	return backup, r.prune()
}

func (r logRotator) backupPath() string {
	base := r.path + "." + r.now().Format(backupStamp)
	candidate := base + ".gz"
	for i := 1; FileExists(candidate) || FileExists(strings.TrimSuffix(candidate, ".gz")); i++ {
		candidate = fmt.Sprintf("%s-%d.gz", base, i)
	}
	return candidate
}

// backups lists rotated files, oldest first.
func (r logRotator) backups() ([]string, error) {
	matches, err := filepath.Glob(r.path + ".*")
	if err != nil {
		return nil, err
	}
	matches = slices.DeleteFunc(matches, func(m string) bool {
		return strings.HasSuffix(m, ".tmp")
	})
	slices.Sort(matches)
	return matches, nil
}

// prune removes the oldest backups beyond maxBackups.
func (r logRotator) prune() error {
	if r.maxBackups <= 0 {
		return nil
	}
	backups, err := r.backups()
	if err != nil || len(backups) <= r.maxBackups {
		return err
	}
	var errs []error
	for _, path := range backups[:len(backups)-r.maxBackups] {
		if err := os.Remove(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// gzipFile compresses src into dst through a temporary file, so dst only
// ever holds a complete archive.
func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	zw := gzip.NewWriter(out)
	zw.Name = filepath.Base(src)
	_, err = io.Copy(zw, in)
	err = errors.Join(err, zw.Close(), out.Close())
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
