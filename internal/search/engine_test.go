package search

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeNote(t *testing.T, root, rel, body string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return path
}

func TestSearchSingleNote(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	path := writeNote(t, root, "notes/test.org", "This is a test file.\nAnother test with one keyword.\n")
	writeNote(t, root, "notes/other.org", "Nothing relevant here.\n")

	results, err := New(Config{Root: root, MaxResults: 5}).Search([]string{"test", "keyword"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []Result{{Path: path, Relevance: 3}}
	if !reflect.DeepEqual(results, want) {
		t.Errorf("results = %+v, want %+v", results, want)
	}
}

func TestSearchNoMatchesIsEmpty(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeNote(t, root, "a.org", "alpha beta")

	results, err := New(Config{Root: root, MaxResults: 5}).Search([]string{"nonexistent", "notfound"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("results = %#v, want empty non-nil slice", results)
	}
}

func TestSearchEmptyKeywords(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeNote(t, root, "a.org", "anything")

	for _, keywords := range [][]string{nil, {}, {""}} {
		results, err := New(Config{Root: root, MaxResults: 5}).Search(keywords)
		if err != nil {
			t.Fatalf("Search(%q): %v", keywords, err)
		}
		if len(results) != 0 {
			t.Errorf("Search(%q) = %+v, want empty", keywords, results)
		}
	}
}

func TestSearchOnlyOrgFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	org := writeNote(t, root, "keep.org", "match")
	writeNote(t, root, "skip.txt", "match match match")
	writeNote(t, root, "skip.md", "match match match")
	writeNote(t, root, "skip.org.txt", "match match match")

	results, err := New(Config{Root: root, MaxResults: 10}).Search([]string{"match"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != org {
		t.Errorf("results = %+v, want only %s", results, org)
	}
}

func TestSearchRankingAndTruncation(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	for i := 1; i <= 6; i++ {
		body := ""
		for range i {
			body += "go "
		}
		writeNote(t, root, fmt.Sprintf("n%d.org", i), body)
	}

	results, err := New(Config{Root: root, MaxResults: 3}).Search([]string{"go"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len = %d, want 3", len(results))
	}
	for i, want := range []float64{6, 5, 4} {
		if results[i].Relevance != want {
			t.Errorf("results[%d].Relevance = %v, want %v", i, results[i].Relevance, want)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Relevance > results[i-1].Relevance {
			t.Errorf("scores increase at %d: %+v", i, results)
		}
	}
}

func TestSearchTiesOrderedByPath(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	c := writeNote(t, root, "c.org", "tie")
	a := writeNote(t, root, "a.org", "tie")
	b := writeNote(t, root, "sub/b.org", "tie")

	results, err := New(Config{Root: root, MaxResults: 10}).Search([]string{"tie"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	got := []string{}
	for _, r := range results {
		got = append(got, r.Path)
	}
	want := []string{a, c, b}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSearchIndependentOfWorkerCount(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	for i := range 40 {
		body := ""
		for range i % 7 {
			body += "Alpha beta "
		}
		writeNote(t, root, fmt.Sprintf("d%d/n%02d.org", i%4, i), body)
	}

	baseline, err := New(Config{Root: root, MaxResults: 25, Workers: 1}).Search([]string{"alpha", "BETA"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, workers := range []int{2, 3, 8, 32} {
		got, err := New(Config{Root: root, MaxResults: 25, Workers: workers}).Search([]string{"alpha", "BETA"})
		if err != nil {
			t.Fatalf("Search(workers=%d): %v", workers, err)
		}
		if !reflect.DeepEqual(got, baseline) {
			t.Errorf("workers=%d ranking differs from single worker", workers)
		}
	}
}

func TestSearchSkipsInvalidUTF8(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	good := writeNote(t, root, "good.org", "needle")
	writeNote(t, root, "bad.org", "needle \xff\xfe needle")

	results, err := New(Config{Root: root, MaxResults: 5}).Search([]string{"needle"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != good {
		t.Errorf("results = %+v, want only %s", results, good)
	}
}

func TestSearchSkipsUnreadableFiles(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files regardless of mode")
	}
	t.Parallel()
	root := t.TempDir()
	good := writeNote(t, root, "good.org", "needle")
	locked := writeNote(t, root, "locked.org", "needle needle")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	results, err := New(Config{Root: root, MaxResults: 5}).Search([]string{"needle"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != good {
		t.Errorf("results = %+v, want only %s", results, good)
	}
}

func TestSearchRootNotFound(t *testing.T) {
	t.Parallel()
	root := filepath.Join(t.TempDir(), "missing")
	_, err := New(Config{Root: root, MaxResults: 5}).Search([]string{"x"})
	if !errors.Is(err, ErrRootNotFound) {
		t.Fatalf("err = %v, want ErrRootNotFound", err)
	}
}

func TestSearchZeroMaxResults(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeNote(t, root, "a.org", "hit")

	results, err := New(Config{Root: root, MaxResults: 0}).Search([]string{"hit"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v, want none", results)
	}
}

func TestSearchSymlinkedRoot(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	target := filepath.Join(dir, "synced")
	writeNote(t, target, "a.org", "test test")
	link := filepath.Join(dir, "org")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	direct, err := New(Config{Root: target, MaxResults: 5}).Search([]string{"test"})
	if err != nil {
		t.Fatalf("Search(direct): %v", err)
	}
	linked, err := New(Config{Root: link, MaxResults: 5}).Search([]string{"test"})
	if err != nil {
		t.Fatalf("Search(symlink): %v", err)
	}
	if len(direct) != 1 || len(linked) != 1 {
		t.Fatalf("direct = %+v, symlinked = %+v, want one result each", direct, linked)
	}
	if want := filepath.Join(link, "a.org"); linked[0].Path != want || linked[0].Relevance != 2 {
		t.Errorf("symlinked result = %+v, want %s with relevance 2", linked[0], want)
	}
}
