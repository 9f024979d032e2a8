package setup

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingVersionFile is returned when the version declaration does not exist.
	ErrMissingVersionFile = errors.New("version file not found")

	// ErrInvalidVersionSource is returned when the version declaration cannot be parsed.
	ErrInvalidVersionSource = errors.New("invalid version declaration")

	// ErrMetadataStaging is returned when a metadata file cannot be copied into the build root.
	ErrMetadataStaging = errors.New("metadata staging failed")

	// ErrUnstaging is returned when a staged metadata file cannot be removed.
	ErrUnstaging = errors.New("metadata unstaging failed")

	// ErrComposition wraps any failure raised while the toolchain runs commands.
	ErrComposition = errors.New("package composition failed")
)

// Staging operations reported by StagingError.
const (
	OpStage   = "stage"
	OpUnstage = "unstage"
)

// StagingError records which metadata file failed and during which operation.
type StagingError struct {
	Op   string
	File string
	Err  error
}

func (e *StagingError) Error() string {
	if e.Op == OpUnstage {
		return fmt.Sprintf("%v: remove %s: %v", ErrUnstaging, e.File, e.Err)
	}
	return fmt.Sprintf("%v: copy %s: %v", ErrMetadataStaging, e.File, e.Err)
}

func (e *StagingError) Unwrap() error {
	return e.Err
}

// Is matches ErrMetadataStaging or ErrUnstaging depending on the operation.
func (e *StagingError) Is(target error) bool {
	switch target {
	case ErrMetadataStaging:
		return e.Op == OpStage
	case ErrUnstaging:
		return e.Op == OpUnstage
	}
	return false
}
