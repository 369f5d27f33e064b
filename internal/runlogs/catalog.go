package runlogs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	filePrefix = "sptnr_"
	fileExt    = ".log"
)

// Entry describes one run log file.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
	// Summary is valid only when Completed is true.
	Summary   Summary
	Completed bool
}

// NewRunLogPath names the log file for a run started at now.
func NewRunLogPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s%d%s", filePrefix, now.Unix(), fileExt))
}

// IsRunLog reports whether name follows the run log naming scheme.
func IsRunLog(name string) bool {
	return strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileExt)
}

// List returns the run logs in dir, newest first. A missing directory yields
// an empty list.
func List(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read log directory: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if !dirEntry.Type().IsRegular() || !IsRunLog(dirEntry.Name()) {
			continue
		}
		info, err := dirEntry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		entry := Entry{
			Name:    dirEntry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		last, err := LastLine(filepath.Join(dir, entry.Name))
		if err != nil {
			return nil, err
		}
		entry.Summary, entry.Completed = ParseSummary(last)
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].Name > entries[j].Name
		}
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	return entries, nil
}

// Resolve maps name to a path inside dir. Names that are not a single path
// element, or that do not point at a regular file, report fs.ErrNotExist.
func Resolve(dir, name string) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("run log %q: %w", name, fs.ErrNotExist)
	}
	path := filepath.Join(dir, name)
	info, err := os.Lstat(path)
	if err != nil {
		return "", fmt.Errorf("run log %q: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("run log %q: %w", name, fs.ErrNotExist)
	}
	return path, nil
}

// Open returns the full content of a log file inside dir.
func Open(dir, name string) ([]byte, error) {
	path, err := Resolve(dir, name)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run log: %w", err)
	}
	return content, nil
}
