package filesystem

import (
	"io"
	"os"
)

// GacheFs adapts the active backend to gache.FileSystem so cached stores follow SetMemMapFs.
type GacheFs struct{}

func (GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return API().OpenFile(name, flag, perm)
}

func (GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return API().MkdirAll(path, perm)
}
