// Package storage persists uploaded resumes and export artifacts on an afero filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var (
	ErrInvalidLocator = errors.New("INVALID_RESUME_LOCATOR")
	ErrResumeNotFound = errors.New("RESUME_NOT_FOUND")
)

const (
	locatorTimeLayout = "20060102T150405"
	maxNameLength     = 100
	partialSuffix     = ".partial"
)

var (
	unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	repeatedDots    = regexp.MustCompile(`\.{2,}`)
	// locators never contain separators and never start with a dot, so
	// they cannot escape the root or address in-flight partial files
	locatorPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// ResumeStore keeps resumes under root, one file per locator.
type ResumeStore struct {
	fs    afero.Fs
	root  string
	now   func() time.Time
	newID func() string
}

// NewResumeStore creates root if needed.
func NewResumeStore(fs afero.Fs, root string) (*ResumeStore, error) {
	if err := ensureDir(fs, root); err != nil {
		return nil, fmt.Errorf("prepare resume root %s: %w", root, err)
	}
	return &ResumeStore{
		fs:    fs,
		root:  root,
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

// NewOSResumeStore stores resumes on the local disk.
func NewOSResumeStore(root string) (*ResumeStore, error) {
	return NewResumeStore(afero.NewOsFs(), root)
}

func ensureDir(fs afero.Fs, dir string) error {
	ok, err := afero.DirExists(fs, dir)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return fs.MkdirAll(dir, 0o750)
}

// SanitizeFilename reduces a client supplied name to a safe base name.
func SanitizeFilename(name string) string {
	// clients may send Windows paths
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = repeatedDots.ReplaceAllString(name, ".")
	name = strings.TrimLeft(name, "._-")
	if len(name) > maxNameLength {
		ext := filepath.Ext(name)
		if len(ext) > 10 {
			ext = ""
		}
		name = name[:maxNameLength-len(ext)] + ext
	}
	if name == "" {
		return "resume"
	}
	return name
}

// NewLocator builds <timestamp>_<uuid>_<sanitized name>.
func (s *ResumeStore) NewLocator(originalName string) string {
	return fmt.Sprintf("%s_%s_%s",
		s.now().UTC().Format(locatorTimeLayout),
		s.newID(),
		SanitizeFilename(originalName),
	)
}

// Save writes content under a fresh locator and returns it. The file becomes
// visible under its final name only after it is completely written.
func (s *ResumeStore) Save(ctx context.Context, originalName string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	locator := s.NewLocator(originalName)
	final := s.path(locator)
	partial := filepath.Join(s.root, "."+locator+partialSuffix)

	f, err := s.fs.OpenFile(partial, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("create resume file: %w", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		_ = s.fs.Remove(partial)
		return "", fmt.Errorf("write resume file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(partial)
		return "", fmt.Errorf("close resume file: %w", err)
	}

	if exists, _ := afero.Exists(s.fs, final); exists {
		_ = s.fs.Remove(partial)
		return "", fmt.Errorf("resume locator collision: %s", locator)
	}
	if err := s.fs.Rename(partial, final); err != nil {
		_ = s.fs.Remove(partial)
		return "", fmt.Errorf("publish resume file: %w", err)
	}

	return locator, nil
}

// Open returns the stored file for locator.
func (s *ResumeStore) Open(locator string) (afero.File, os.FileInfo, error) {
	if err := ValidateLocator(locator); err != nil {
		return nil, nil, err
	}

	f, err := s.fs.Open(s.path(locator))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrResumeNotFound, locator)
		}
		return nil, nil, fmt.Errorf("open resume: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat resume: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %s", ErrResumeNotFound, locator)
	}
	return f, info, nil
}

// Remove deletes the file for locator. Removing a missing file is not an error.
func (s *ResumeStore) Remove(locator string) error {
	if err := ValidateLocator(locator); err != nil {
		return err
	}
	if err := s.fs.Remove(s.path(locator)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove resume: %w", err)
	}
	return nil
}

func (s *ResumeStore) path(locator string) string {
	return filepath.Join(s.root, locator)
}

// ValidateLocator rejects anything that is not a plain stored file name.
func ValidateLocator(locator string) error {
	if !locatorPattern.MatchString(locator) || strings.Contains(locator, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidLocator, locator)
	}
	return nil
}

// OriginalName recovers the sanitized client file name from a locator.
func OriginalName(locator string) string {
	parts := strings.SplitN(locator, "_", 3)
	if len(parts) == 3 && parts[2] != "" {
		return parts[2]
	}
	return locator
}
