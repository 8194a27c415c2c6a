package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var ErrArtifactNotFound = errors.New("ARTIFACT_NOT_FOUND")

// ArtifactStore holds short-lived generated files such as exports. Every
// artifact gets a unique name, so concurrent writers never share a file.
type ArtifactStore struct {
	fs    afero.Fs
	dir   string
	newID func() string
}

func NewArtifactStore(fs afero.Fs, dir string) (*ArtifactStore, error) {
	if err := ensureDir(fs, dir); err != nil {
		return nil, fmt.Errorf("prepare artifact dir %s: %w", dir, err)
	}
	return &ArtifactStore{fs: fs, dir: dir, newID: uuid.NewString}, nil
}

// Write names the artifact <prefix>_<uuid><ext>, streams write into a hidden
// partial file and renames it into place only when write succeeded.
func (s *ArtifactStore) Write(prefix, ext string, write func(w io.Writer) error) (string, error) {
	name := fmt.Sprintf("%s_%s%s", prefix, s.newID(), ext)
	partial := filepath.Join(s.dir, "."+name+partialSuffix)

	f, err := s.fs.OpenFile(partial, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}

	if err := write(f); err != nil {
		f.Close()
		_ = s.fs.Remove(partial)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(partial)
		return "", fmt.Errorf("close artifact: %w", err)
	}
	if err := s.fs.Rename(partial, filepath.Join(s.dir, name)); err != nil {
		_ = s.fs.Remove(partial)
		return "", fmt.Errorf("publish artifact: %w", err)
	}
	return name, nil
}

// Open returns a finished artifact.
func (s *ArtifactStore) Open(name string) (afero.File, os.FileInfo, error) {
	if err := ValidateLocator(name); err != nil {
		return nil, nil, err
	}
	f, err := s.fs.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
		}
		return nil, nil, fmt.Errorf("open artifact: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat artifact: %w", err)
	}
	return f, info, nil
}

// Remove deletes a finished artifact; a missing artifact is not an error.
func (s *ArtifactStore) Remove(name string) error {
	if err := ValidateLocator(name); err != nil {
		return err
	}
	if err := s.fs.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove artifact: %w", err)
	}
	return nil
}
