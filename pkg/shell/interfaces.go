package shell

import (
	"io"
)

// Entry is one row of a directory listing.
type Entry struct {
	Name  string
	Size  int64
	IsDir bool
}

// FileStore is the backing file tree the shell operates on. Paths are
// absolute and "/"-separated.
type FileStore interface {
	Open(path string) (io.ReadCloser, error)
	Create(path string) (io.WriteCloser, error)
	Size(path string) (int64, error)
	Exists(path string) bool
	IsDir(path string) bool
	List(path string) ([]Entry, error)
	Remove(path string) error
	Rename(from, to string) error
	Mkdir(path string) error
	Rmdir(path string) error
	UsedBytes() int64
	TotalBytes() int64
	Format() error
}

// EnvironmentInfo answers the informational commands. Every method returns
// ready-to-print text.
type EnvironmentInfo interface {
	Uptime() string
	Free() string
	ChipInfo() string
}

type Parser interface {
	Parse(line string) Command
}
