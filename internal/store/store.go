// Package store implements the shell's FileStore on top of a core.FS.
//
// Two backends are provided: an in-memory tree and a directory on the local
// disk. Both are go-billy filesystems behind the core.FS interface, so the
// shell sees the same absolute "/"-rooted paths either way. Paths are cleaned
// by the backend and a local store is chrooted, so ".." cannot leave the root.
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"

	"github.com/jmgilman/go/fs/billy"
	"github.com/jmgilman/go/fs/core"

	"github.com/Neev4n/flashshell/pkg/shell"
)

// DefaultCapacity is the total size reported when none is configured.
const DefaultCapacity = 1 << 20

var ErrNotEmpty = errors.New("directory not empty")

// Store adapts a core.FS to shell.FileStore.
type Store struct {
	fsys     core.FS
	capacity int64
}

var _ shell.FileStore = (*Store)(nil)

// New wraps fsys. capacity is what TotalBytes reports; it is informational
// and not enforced on writes.
func New(fsys core.FS, capacity int64) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	// memfs has no root entry until something is created under it.
	if err := fsys.MkdirAll("/", 0o755); err != nil {
		return nil, fmt.Errorf("failed to create root: %w", err)
	}

	return &Store{fsys: fsys, capacity: capacity}, nil
}

// NewMemory returns an empty in-memory store.
func NewMemory(capacity int64) *Store {
	s, err := New(billy.NewMemory(), capacity)
	if err != nil {
		// MkdirAll on a fresh memfs cannot fail.
		panic(err)
	}
	return s
}

// NewLocal returns a store rooted at dir on the local disk, creating dir if
// needed.
func NewLocal(dir string, capacity int64) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	local := billy.NewLocal()
	if err := local.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", abs, err)
	}

	rooted, err := local.Chroot(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to chroot to %s: %w", abs, err)
	}

	return New(rooted, capacity)
}

// Type reports the backing filesystem kind.
func (s *Store) Type() core.FSType {
	return s.fsys.Type()
}

func isRoot(p string) bool {
	return path.Clean("/"+p) == "/"
}

func (s *Store) Open(name string) (io.ReadCloser, error) {
	return s.fsys.Open(name)
}

func (s *Store) Create(name string) (io.WriteCloser, error) {
	return s.fsys.Create(name)
}

func (s *Store) Size(name string) (int64, error) {
	info, err := s.fsys.Stat(name)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *Store) Exists(name string) bool {
	if isRoot(name) {
		return true
	}

	ok, err := s.fsys.Exists(name)
	return ok && err == nil
}

func (s *Store) IsDir(name string) bool {
	if isRoot(name) {
		return true
	}

	info, err := s.fsys.Stat(name)
	return err == nil && info.IsDir()
}

// List returns the entries of a directory sorted by name.
func (s *Store) List(name string) ([]shell.Entry, error) {
	dirents, err := s.fsys.ReadDir(name)
	if err != nil {
		return nil, err
	}

	entries := make([]shell.Entry, 0, len(dirents))
	for _, d := range dirents {
		info, err := d.Info()
		if err != nil {
			return nil, err
		}
		entries = append(entries, shell.Entry{
			Name:  d.Name(),
			Size:  info.Size(),
			IsDir: d.IsDir(),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (s *Store) Remove(name string) error {
	return s.fsys.Remove(name)
}

func (s *Store) Rename(from, to string) error {
	return s.fsys.Rename(from, to)
}

func (s *Store) Mkdir(name string) error {
	return s.fsys.Mkdir(name, 0o755)
}

// Rmdir removes an empty directory.
func (s *Store) Rmdir(name string) error {
	if isRoot(name) {
		return &fs.PathError{Op: "rmdir", Path: name, Err: fs.ErrPermission}
	}

	children, err := s.fsys.ReadDir(name)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return &fs.PathError{Op: "rmdir", Path: name, Err: ErrNotEmpty}
	}

	return s.fsys.Remove(name)
}

// UsedBytes sums the sizes of every regular file in the store.
func (s *Store) UsedBytes() int64 {
	var used int64
	_ = s.fsys.Walk("/", func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			used += info.Size()
		}
		return nil
	})
	return used
}

func (s *Store) TotalBytes() int64 {
	return s.capacity
}

// Format removes everything below the root.
func (s *Store) Format() error {
	children, err := s.fsys.ReadDir("/")
	if err != nil {
		return err
	}

	for _, child := range children {
		if err := s.fsys.RemoveAll(path.Join("/", child.Name())); err != nil {
			return err
		}
	}

	return nil
}
