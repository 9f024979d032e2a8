package setup

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/magefile/mage/sh"
	"github.com/sirupsen/logrus"
)

// MetadataStager copies the metadata files required by the package manifest
// from the parent project directory into the build root, and removes them again.
//
// Stage and Unstage bracket one run:
//
//	if err := stager.Stage(); err != nil {
//	    return err
//	}
//	defer stager.Unstage()
//
// A file that already exists in the build root is left alone by both calls.
//
// # Thread Safety
//
// MetadataStager is NOT thread-safe. Runs against the same build root must be serialized.
type MetadataStager struct {
	root   string
	source string
	files  []string
	staged []string
	log    logrus.FieldLogger
}

// NewMetadataStager creates a stager for the given build root.
func NewMetadataStager(root string, files []string, log logrus.FieldLogger) *MetadataStager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &MetadataStager{
		root:   root,
		source: filepath.Join(root, ".."),
		files:  append([]string(nil), files...),
		log:    log,
	}
}

// Staged returns the files this stager copied and still owns.
func (s *MetadataStager) Staged() []string {
	return append([]string(nil), s.staged...)
}

// Stage copies every metadata file into the build root.
//
// On failure the files copied so far are removed before the error is returned,
// so the build root is left as it was found.
func (s *MetadataStager) Stage() error {
	for _, name := range s.files {
		dest := filepath.Join(s.root, name)
		if _, err := os.Lstat(dest); err == nil {
			s.log.WithField("file", name).Debug("metadata file already present, leaving in place")
			continue
		}

		if err := copyMetadata(dest, filepath.Join(s.source, name)); err != nil {
			stageErr := &StagingError{Op: OpStage, File: name, Err: err}
			// dest did not exist before this copy, so a half-written file is ours.
			_ = removeMetadata(dest)
			if rollbackErr := s.Unstage(); rollbackErr != nil {
				s.log.WithError(rollbackErr).Warn("rollback of partially staged metadata failed")
			}
			return stageErr
		}

		s.staged = append(s.staged, name)
		s.log.WithField("file", name).Debug("staged metadata file")
	}
	return nil
}

// Unstage removes every file staged by this stager.
//
// All removals are attempted; failures are joined. Calling Unstage again is a no-op
// for files already removed.
func (s *MetadataStager) Unstage() error {
	var errs []error
	var remaining []string

	for _, name := range s.staged {
		if err := removeMetadata(filepath.Join(s.root, name)); err != nil {
			errs = append(errs, &StagingError{Op: OpUnstage, File: name, Err: err})
			remaining = append(remaining, name)
			continue
		}
		s.log.WithField("file", name).Debug("removed metadata file")
	}

	s.staged = remaining
	return errors.Join(errs...)
}

// Swapped in tests.
var (
	copyMetadata = func(dst, src string) error {
		if _, err := os.Stat(src); err != nil {
			return err
		}
		return sh.Copy(dst, src)
	}
	removeMetadata = func(path string) error {
		err := sh.Rm(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
)
