package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	filePerm = 0o600
	dirPerm  = 0o700
)

// File stores license bytes in a single file. Failures are logged and
// reported as false.
type File struct {
	fs     afero.Fs
	path   string
	logger logrus.FieldLogger
}

// FileOption configures a File.
type FileOption func(*File)

// WithLogger sets the logger for storage failures.
func WithLogger(logger logrus.FieldLogger) FileOption {
	return func(f *File) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFile returns a File at path on fs. A nil fs selects the OS filesystem.
func NewFile(fs afero.Fs, path string, opts ...FileOption) *File {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	l := logrus.New()
	l.SetOutput(io.Discard)

	f := &File{fs: fs, path: path, logger: l}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Save writes data to a temporary file in the same directory and renames it
// over the target, so a reader never sees a partial license.
func (f *File) Save(data []byte) bool {
	log := f.logger.WithField("path", f.path)

	if err := f.fs.MkdirAll(filepath.Dir(f.path), dirPerm); err != nil {
		log.WithError(err).Error("create license directory")
		return false
	}

	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, filePerm); err != nil {
		log.WithError(err).Error("write license file")
		_ = f.fs.Remove(tmp)
		return false
	}
	if err := f.fs.Rename(tmp, f.path); err != nil {
		log.WithError(err).Error("replace license file")
		_ = f.fs.Remove(tmp)
		return false
	}
	return true
}

func (f *File) Load() ([]byte, bool) {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.WithField("path", f.path).WithError(err).Error("read license file")
		}
		return nil, false
	}
	return data, true
}

func (f *File) Exists() bool {
	ok, err := afero.Exists(f.fs, f.path)
	if err != nil {
		f.logger.WithField("path", f.path).WithError(err).Warn("stat license file")
		return false
	}
	return ok
}

// Delete removes the file. A file that does not exist counts as deleted.
func (f *File) Delete() bool {
	err := f.fs.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		f.logger.WithField("path", f.path).WithError(err).Error("delete license file")
		return false
	}
	return true
}
