package stores

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/colonyops/taproom/internal/data/db"
)

var corruptionMessages = []string{
	"database disk image is malformed",
	"file is not a database",
}

// primaryCode returns the primary SQLite result code of err, or 0 when err
// did not come from SQLite.
func primaryCode(err error) int {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return 0
	}
	return sqliteErr.Code() & 0xff
}

// IsBusyError reports whether err is SQLITE_BUSY or SQLITE_LOCKED.
func IsBusyError(err error) bool {
	switch primaryCode(err) {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

// IsCorruptionError reports whether err means the database file cannot be
// used and should be moved aside.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	switch primaryCode(err) {
	case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
		return true
	}
	msg := err.Error()
	return slices.ContainsFunc(corruptionMessages, func(m string) bool {
		return strings.Contains(msg, m)
	})
}

// RecoverFromCorruption moves the database in dataDir aside, together with
// its WAL and shared-memory files, so the next Open starts from an empty
// database. It returns the path the database was moved to. A missing
// database is not an error.
func RecoverFromCorruption(dataDir string) (string, error) {
	return quarantine(filepath.Join(dataDir, db.FileName), time.Now())
}

func quarantine(path string, now time.Time) (string, error) {
	backup := fmt.Sprintf("%s.corrupt.%s", path, now.Format("20060102-150405"))

	for _, suffix := range []string{"", "-wal", "-shm"} {
		err := os.Rename(path+suffix, backup+suffix)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if suffix == "" {
			return "", fmt.Errorf("move database aside: %w", err)
		}
		// A stale WAL or SHM file left next to a fresh database breaks it.
		if rmErr := os.Remove(path + suffix); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			return "", fmt.Errorf("remove %s file: %w", strings.TrimPrefix(suffix, "-"), rmErr)
		}
	}
	return backup, nil
}
