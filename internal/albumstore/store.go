package albumstore

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

// Set is the persisted set of album IDs whose tracks have all been rated.
// The file holds one ID per line and is only ever appended to.
type Set struct {
	path string
	lock *flock.Flock

	mu  sync.Mutex
	ids map[string]struct{}
}

// Open loads the set stored at path. When force is true the file is not read
// and the set starts empty, but later additions are still appended to it.
// A missing file is an empty set.
func Open(path string, force bool) (*Set, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("processed albums path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure processed albums directory: %w", err)
	}
	set := &Set{
		path: path,
		lock: flock.New(path + ".lock"),
		ids:  make(map[string]struct{}),
	}
	if force {
		return set, nil
	}
	if err := set.load(); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *Set) load() error {
	if err := s.lock.RLock(); err != nil {
		return fmt.Errorf("lock processed albums: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	file, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open processed albums: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if id := strings.TrimSpace(scanner.Text()); id != "" {
			s.ids[id] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read processed albums: %w", err)
	}
	return nil
}

// Path returns the backing file location.
func (s *Set) Path() string { return s.path }

// Len reports how many IDs are known in memory.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Contains reports whether id was loaded or added during this run.
func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Add records id in memory and appends it to the file under an exclusive
// lock, so concurrent runs never interleave partial lines.
func (s *Set) Add(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("album id required")
	}

	s.mu.Lock()
	s.ids[id] = struct{}{}
	s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock processed albums: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open processed albums: %w", err)
	}
	if _, err := file.WriteString(id + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("append processed album: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close processed albums: %w", err)
	}
	return nil
}
