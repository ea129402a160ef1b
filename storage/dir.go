package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
)

// DefaultPath is the license directory used when none is configured.
const DefaultPath = "~/.licensekit"

// LicenseExt is the extension of license container files.
const LicenseExt = ".lic"

// Dir is a directory holding one license file per application.
type Dir struct {
	path string
}

// NewDir returns a Dir at path, expanding a leading "~".
func NewDir(path string) (Dir, error) {
	if path == "" {
		path = DefaultPath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return Dir{}, fmt.Errorf("expand license directory %q: %w", path, err)
	}
	return Dir{path: filepath.Clean(expanded)}, nil
}

// DefaultDir returns the Dir at DefaultPath.
func DefaultDir() (Dir, error) {
	return NewDir(DefaultPath)
}

// Path returns the directory path.
func (d Dir) Path() string { return d.path }

// Create makes the directory with owner-only permissions.
func (d Dir) Create(fs afero.Fs) error {
	if err := fs.MkdirAll(d.path, dirPerm); err != nil {
		return fmt.Errorf("create license directory: %w", err)
	}
	return nil
}

// Expand returns the path of name inside the directory.
func (d Dir) Expand(name string) string {
	return filepath.Join(d.path, name)
}

// LicensePath returns the license file path of an application. Path
// separators in appID are replaced so the file stays in the directory.
func (d Dir) LicensePath(appID string) string {
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(appID)
	if name == "" || name == "." || name == ".." {
		name = "license"
	}
	return d.Expand(name + LicenseExt)
}

// File returns the File storage of an application's license.
func (d Dir) File(fs afero.Fs, appID string, opts ...FileOption) *File {
	return NewFile(fs, d.LicensePath(appID), opts...)
}
