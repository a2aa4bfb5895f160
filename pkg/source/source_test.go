package source

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestSet_AddAndRead(t *testing.T) {
	s := NewSet()
	data := []byte("int x;")
	if err := s.Add("a.c", data); err != nil {
		t.Fatalf("Add: %v", err)
	}
	data[0] = 'X' // the set must hold its own copy

	got, err := s.Read("a.c")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "int x;" {
		t.Errorf("Read = %q", got)
	}
	if s.Bytes() != 6 {
		t.Errorf("Bytes = %d, want 6", s.Bytes())
	}

	if err := s.Add("a.c", []byte("int y; int z;")); err != nil {
		t.Fatal(err)
	}
	if s.Bytes() != 13 {
		t.Errorf("Bytes after replace = %d, want 13", s.Bytes())
	}
}

func TestSet_RejectsNonSource(t *testing.T) {
	s := NewSet()
	for _, name := range []string{"a.h", "dir/a.c", "noext", ""} {
		if err := s.Add(name, nil); err != ErrNotCSource {
			t.Errorf("Add(%q) = %v, want ErrNotCSource", name, err)
		}
	}
	if _, err := s.Read("missing.c"); err != ErrFileNotFound {
		t.Errorf("Read(missing) = %v", err)
	}
}

func TestSet_LoadDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"one.c":   "int one;",
		"two.i":   "int two;",
		"skip.h":  "int skip;",
		"readme":  "text",
		"three.c": "int three;",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s := NewSet()
	n, err := s.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if n != 3 {
		t.Errorf("loaded %d files, want 3", n)
	}
	want := []string{"one.c", "three.c", "two.i"}
	got := s.List()
	if len(got) != len(want) {
		t.Fatalf("List = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	f, err := s.Get("one.c")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(f.Path) {
		t.Errorf("Path %q is not absolute", f.Path)
	}
}

func TestSet_LoadFileMissing(t *testing.T) {
	s := NewSet()
	if _, err := s.LoadFile(filepath.Join(t.TempDir(), "nope.c")); err != ErrFileNotFound {
		t.Errorf("LoadFile = %v, want ErrFileNotFound", err)
	}
}

func TestSet_ConcurrentReads(t *testing.T) {
	s := NewSet()
	_ = s.Add("a.c", []byte("int a;"))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Read("a.c"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}
