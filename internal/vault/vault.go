// Package vault provides the file collaborators the sync engine calls:
// existence checks, binary and text reads and writes, and folder creation,
// all by vault-relative path.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideVault is returned for a path that resolves outside the vault root.
var ErrOutsideVault = errors.New("path escapes vault root")

// Host is the set of file operations the engine depends on.
type Host interface {
	Exists(path string) (bool, error)
	ReadBinary(path string) ([]byte, error)
	WriteBinary(path string, data []byte) error
	ReadText(path string) (string, error)
	WriteText(path string, text string) error
	MkdirAll(path string) error
}

// Dir is a Host rooted at a directory on the local filesystem.
type Dir struct {
	root string
}

// Open returns a Dir rooted at root, creating the directory if needed.
// A leading "~/" is expanded to the user's home directory.
func Open(root string) (*Dir, error) {
	if strings.HasPrefix(root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		root = filepath.Join(home, root[2:])
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create vault root: %w", err)
	}

	return &Dir{root: abs}, nil
}

// Root returns the absolute vault root.
func (d *Dir) Root() string {
	return d.root
}

// Resolve maps a vault-relative path to an absolute filesystem path.
// Both slash styles are accepted.
func (d *Dir) Resolve(path string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(strings.TrimLeft(path, `/\`)))
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, path)
	}
	return filepath.Join(d.root, rel), nil
}

// Exists reports whether a file or folder exists at path.
func (d *Dir) Exists(path string) (bool, error) {
	full, err := d.Resolve(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return true, nil
}

// ReadBinary returns the contents of the file at path.
func (d *Dir) ReadBinary(path string) ([]byte, error) {
	full, err := d.Resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// WriteBinary replaces the file at path with data. Parent folders are
// created. The file is written to a temporary sibling and renamed into
// place, so readers never observe a partial write.
func (d *Dir) WriteBinary(path string, data []byte) error {
	full, err := d.Resolve(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create folder for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(full)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	if err := os.Rename(tmpName, full); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// ReadText returns the file at path as a string.
func (d *Dir) ReadText(path string) (string, error) {
	data, err := d.ReadBinary(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteText replaces the file at path with text.
func (d *Dir) WriteText(path string, text string) error {
	return d.WriteBinary(path, []byte(text))
}

// MkdirAll creates the folder at path along with any missing parents.
func (d *Dir) MkdirAll(path string) error {
	full, err := d.Resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(full, 0755); err != nil {
		return fmt.Errorf("create folder %s: %w", path, err)
	}
	return nil
}
