package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultVersionText is used when the declaration omits version_text.
const DefaultVersionText = "999.0.0"

// VersionInfo is the release identifier and related constants declared by a package.
//
// A declaration looks like:
//
//	version_text = "8.1.0"
//	version = [8, 1, 0]
//	extra = ""
//	license = "GPLv2 with FOSS License Exception"
//	edition = ""
//
//	[constants]
//	protobuf_min = "4.21.1"
type VersionInfo struct {
	Text      string            `toml:"version_text"`
	Version   []int             `toml:"version"`
	Extra     string            `toml:"extra"`
	License   string            `toml:"license"`
	Edition   string            `toml:"edition"`
	Constants map[string]string `toml:"constants"`
}

// LoadVersion reads a version declaration file.
//
// The file is plain TOML and is never executed. Unknown keys are rejected so a
// typo cannot silently fall back to the default version.
func LoadVersion(path string) (*VersionInfo, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingVersionFile, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidVersionSource, path, err)
	}

	var info VersionInfo
	meta, err := toml.DecodeFile(path, &info)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidVersionSource, path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("%w: %s: unknown keys: %s", ErrInvalidVersionSource, path, strings.Join(keys, ", "))
	}

	if !meta.IsDefined("version_text") {
		info.Text = DefaultVersionText
	}
	info.Text = strings.TrimSpace(info.Text)
	if info.Text == "" {
		return nil, fmt.Errorf("%w: %s: version_text is empty", ErrInvalidVersionSource, path)
	}

	return &info, nil
}

// Constant returns a named constant from the declaration.
func (v *VersionInfo) Constant(name string) (string, bool) {
	value, ok := v.Constants[name]
	return value, ok
}
