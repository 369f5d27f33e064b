package albumstore_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"sptnr/internal/albumstore"
)

func TestOpenMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "processed_albums.txt")
	set, err := albumstore.Open(path, false)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if set.Len() != 0 || set.Contains("al1") {
		t.Fatalf("expected empty set, got %d entries", set.Len())
	}
}

func TestAddAppendsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_albums.txt")
	if err := os.WriteFile(path, []byte("al1\n\nal2\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	set, err := albumstore.Open(path, false)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if !set.Contains("al1") || !set.Contains("al2") || set.Len() != 2 {
		t.Fatalf("expected seeded ids to load, len=%d", set.Len())
	}
	if err := set.Add("al3"); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if !set.Contains("al3") {
		t.Fatal("expected added id in memory")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(content) != "al1\n\nal2\nal3\n" {
		t.Fatalf("unexpected file content %q", content)
	}

	reloaded, err := albumstore.Open(path, false)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !reloaded.Contains("al3") {
		t.Fatal("expected appended id after reload")
	}
}

func TestForceIgnoresExistingFileButStillAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_albums.txt")
	if err := os.WriteFile(path, []byte("al1\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	set, err := albumstore.Open(path, true)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if set.Contains("al1") {
		t.Fatal("expected forced open to ignore the file")
	}
	if err := set.Add("al1"); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	content, _ := os.ReadFile(path)
	if string(content) != "al1\nal1\n" {
		t.Fatalf("expected duplicate append under force, got %q", content)
	}
}

func TestConcurrentAddsProduceWholeLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_albums.txt")
	const writers = 4
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		set, err := albumstore.Open(path, false)
		if err != nil {
			t.Fatalf("Open returned error: %v", err)
		}
		wg.Add(1)
		go func(w int, set *albumstore.Set) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if err := set.Add(fmt.Sprintf("w%d-al%d", w, i)); err != nil {
					t.Errorf("Add returned error: %v", err)
					return
				}
			}
		}(w, set)
	}
	wg.Wait()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	if len(lines) != writers*perWriter {
		t.Fatalf("expected %d lines, got %d", writers*perWriter, len(lines))
	}
	sort.Strings(lines)
	for i := 1; i < len(lines); i++ {
		if lines[i] == lines[i-1] {
			t.Fatalf("duplicate line %q", lines[i])
		}
	}
}

func TestAddRejectsEmptyID(t *testing.T) {
	set, err := albumstore.Open(filepath.Join(t.TempDir(), "p.txt"), false)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := set.Add("  "); err == nil {
		t.Fatal("expected empty id to fail")
	}
}
