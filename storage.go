package shiftlight

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/pkg/errors"
)

// DirStore is the Storage collaborator backed by a directory on the
// local filesystem (the mounted SD card on the target).
type DirStore struct {
	dir string
}

func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "unable to create storage dir %s", dir)
	}
	return &DirStore{dir: dir}, nil
}

func (s *DirStore) Append(name string, p []byte) error {
	f, err := os.OpenFile(filepath.Join(s.dir, name),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", name)
	}
	defer f.Close()
	if _, err := f.Write(p); err != nil {
		return errors.Wrapf(err, "unable to append to %s", name)
	}
	return nil
}

func (s *DirStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list %s", s.dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *DirStore) Free() (uint64, error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(s.dir, &st); err != nil {
		return 0, errors.Wrapf(err, "unable to statfs %s", s.dir)
	}
	return st.Bavail * uint64(st.Bsize), nil
}

func (s *DirStore) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", name)
	}
	return f, nil
}
