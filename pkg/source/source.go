// Package source holds translation-unit buffers. Files are read eagerly so
// that lexing never waits on I/O, and the set is safe to read from several
// compiler goroutines at once.
package source

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"
)

// MaxFileBytes caps a single translation unit.
const MaxFileBytes = 16 << 20

// sourceName accepts preprocessed C inputs: foo.c or foo.i.
var sourceName = regexp.MustCompile(`^[^/\\]+\.(c|i)$`)

var (
	ErrFileNotFound = errors.New("source file not found")
	ErrNotCSource   = errors.New("not a C source file (.c or .i)")
	ErrTooLarge     = errors.New("source file too large")
)

// File is one loaded translation unit.
type File struct {
	Name     string // base name used in diagnostics
	Path     string // absolute host path, empty for in-memory files
	Data     []byte
	Modified time.Time
}

// Set is an in-memory collection of translation units keyed by name.
type Set struct {
	mu    sync.RWMutex
	files map[string]*File
	bytes int
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{files: make(map[string]*File)}
}

// Add stores a copy of data under name, replacing any previous entry.
func (s *Set) Add(name string, data []byte) error {
	if !sourceName.MatchString(name) {
		return ErrNotCSource
	}
	if len(data) > MaxFileBytes {
		return ErrTooLarge
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return s.put(&File{Name: name, Data: buf, Modified: time.Now()})
}

func (s *Set) put(f *File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.files[f.Name]; ok {
		s.bytes -= len(old.Data)
	}
	s.files[f.Name] = f
	s.bytes += len(f.Data)
	return nil
}

// LoadFile reads the host file at relPath into the set.
func (s *Set) LoadFile(relPath string) (*File, error) {
	fullPath, _, err := PathInfo(relPath)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(fullPath)
	if !sourceName.MatchString(name) {
		return nil, ErrNotCSource
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	if info.Size() > MaxFileBytes {
		return nil, ErrTooLarge
	}
	raw, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, err
	}
	f := &File{Name: name, Path: fullPath, Data: raw, Modified: info.ModTime()}
	return f, s.put(f)
}

// LoadDir loads every .c and .i file directly inside dir and returns how
// many were added.
func (s *Set) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, entry := range entries {
		if entry.IsDir() || !sourceName.MatchString(entry.Name()) {
			continue
		}
		if _, err := s.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Get returns the file stored under name.
func (s *Set) Get(name string) (*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[name]
	if !ok {
		return nil, ErrFileNotFound
	}
	return f, nil
}

// Read returns the contents stored under name.
func (s *Set) Read(name string) ([]byte, error) {
	f, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	return f.Data, nil
}

// List returns all names in sorted order.
func (s *Set) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.files))
	for k := range s.files {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Bytes reports the total size of all loaded buffers.
func (s *Set) Bytes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bytes
}

// PathInfo resolves relPath to an absolute path and its parent directory.
func PathInfo(relPath string) (fullPath string, parentDir string, err error) {
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}
	return fullPath, filepath.Dir(fullPath), nil
}
