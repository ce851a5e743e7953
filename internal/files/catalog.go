package files

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

var ErrNotExist = errors.New("file does not exist")

type Entry struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified_at"`
}

// Handle is an open protected file. Callers must Close it.
type Handle struct {
	*os.File
	Entry Entry
}

// DirCatalog lists and opens regular files directly inside one directory.
// Names are expected to be bare base names; anything else is reported as
// not existing.
type DirCatalog struct {
	dir string
}

func NewDirCatalog(dir string) *DirCatalog {
	return &DirCatalog{dir: dir}
}

func (c *DirCatalog) Dir() string { return c.dir }

func (c *DirCatalog) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("read files dir: %w", err)
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Name: de.Name(), Size: info.Size(), ModTime: info.ModTime().UTC()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (c *DirCatalog) Open(name string) (*Handle, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, ErrNotExist
	}
	path := filepath.Join(c.dir, name)
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, ErrNotExist
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return &Handle{File: f, Entry: Entry{Name: name, Size: info.Size(), ModTime: info.ModTime().UTC()}}, nil
}
