package setup

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Macro is a preprocessor definition passed to the compiler.
//
// An empty Value defines the name without a value (-DNAME).
type Macro struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value,omitempty"`
}

// Flag renders the macro as a compiler flag.
func (m Macro) Flag() string {
	if m.Value == "" {
		return "-D" + m.Name
	}
	return fmt.Sprintf("-D%s=%s", m.Name, m.Value)
}

// Extension declares one native module to be built from a fixed list of sources.
//
// Sources are compiled and linked in the order given. Extensions are declared
// once per run and are not mutated afterward; the composer keeps its own copy.
type Extension struct {
	Name         string   `yaml:"name"`
	Sources      []string `yaml:"sources"`
	IncludeDirs  []string `yaml:"include_dirs,omitempty"`
	DefineMacros []Macro  `yaml:"define_macros,omitempty"`
	Libraries    []string `yaml:"libraries,omitempty"`
	LibraryDirs  []string `yaml:"library_dirs,omitempty"`
}

// Clone returns a deep copy of the extension.
func (e Extension) Clone() Extension {
	return Extension{
		Name:         e.Name,
		Sources:      append([]string(nil), e.Sources...),
		IncludeDirs:  append([]string(nil), e.IncludeDirs...),
		DefineMacros: append([]Macro(nil), e.DefineMacros...),
		Libraries:    append([]string(nil), e.Libraries...),
		LibraryDirs:  append([]string(nil), e.LibraryDirs...),
	}
}

// Language reports "c++" when any source is a C++ translation unit, "c" otherwise.
func (e Extension) Language() string {
	for _, src := range e.Sources {
		switch strings.ToLower(filepath.Ext(src)) {
		case ".cc", ".cpp", ".cxx", ".c++":
			return "c++"
		}
	}
	return "c"
}

// Requirement is a dependency constraint such as "lz4>=2.1.6,<=4.3.2".
type Requirement struct {
	Name      string `yaml:"name"`
	Specifier string `yaml:"specifier,omitempty"`
}

func (r Requirement) String() string {
	return r.Name + r.Specifier
}

// MarshalYAML renders the requirement in its string form.
func (r Requirement) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

// ParseRequirement splits a requirement string into its name and version specifier.
func ParseRequirement(raw string) (Requirement, error) {
	raw = strings.TrimSpace(raw)
	idx := strings.IndexAny(raw, "<>=!~ ;[")
	if idx == 0 || raw == "" {
		return Requirement{}, fmt.Errorf("invalid requirement %q", raw)
	}
	name, spec := raw, ""
	if idx > 0 {
		name, spec = raw[:idx], strings.TrimSpace(raw[idx:])
	}
	for _, r := range name {
		if !(r == '-' || r == '_' || r == '.' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return Requirement{}, fmt.Errorf("invalid requirement %q", raw)
		}
	}
	return Requirement{Name: name, Specifier: spec}, nil
}

// Project is the static declaration of one distributed package.
type Project struct {
	Name            string
	Description     string
	LongDescription string
	Author          string
	AuthorEmail     string
	License         string
	Keywords        string
	URL             string
	DownloadURL     string
	Classifiers     []string

	// VersionFile is relative to the build root.
	VersionFile string
	// PackageRoot holds the pure packages, relative to the build root.
	PackageRoot string

	Extensions      []Extension
	PythonRequires  string
	InstallRequires []string
	Extras          map[string][]string

	// MetadataFiles are staged from the parent directory for the duration of a run.
	MetadataFiles []string
}

// Descriptor is the composed package description handed to the toolchain.
type Descriptor struct {
	Name            string                   `yaml:"name"`
	Version         string                   `yaml:"version"`
	Description     string                   `yaml:"description"`
	LongDescription string                   `yaml:"long_description,omitempty"`
	Author          string                   `yaml:"author"`
	AuthorEmail     string                   `yaml:"author_email,omitempty"`
	License         string                   `yaml:"license"`
	Keywords        string                   `yaml:"keywords,omitempty"`
	URL             string                   `yaml:"url,omitempty"`
	DownloadURL     string                   `yaml:"download_url,omitempty"`
	PackageDir      string                   `yaml:"package_dir"`
	Packages        []string                 `yaml:"packages"`
	Classifiers     []string                 `yaml:"classifiers"`
	Extensions      []Extension              `yaml:"ext_modules"`
	Commands        []string                 `yaml:"cmdclass"`
	PythonRequires  string                   `yaml:"python_requires"`
	InstallRequires []Requirement            `yaml:"install_requires,omitempty"`
	Extras          map[string][]Requirement `yaml:"extras_require,omitempty"`
	MetadataFiles   []string                 `yaml:"metadata_files,omitempty"`

	registry *CommandRegistry
}

// Registry returns the command overrides the descriptor was composed with.
func (d *Descriptor) Registry() *CommandRegistry {
	return d.registry
}

// BuildOptions controls the build-support commands.
//
// Relative directories are resolved against the build root.
type BuildOptions struct {
	Root       string `mapstructure:"root"`
	BuildDir   string `mapstructure:"build_dir"`
	DistDir    string `mapstructure:"dist_dir"`
	InstallDir string `mapstructure:"install_dir"`
	RecordFile string `mapstructure:"record"`

	CC               string   `mapstructure:"cc"`
	CXX              string   `mapstructure:"cxx"`
	Debug            bool     `mapstructure:"debug"`
	ExtraCompileArgs []string `mapstructure:"extra_compile_args"`
	ExtraLinkArgs    []string `mapstructure:"extra_link_args"`
	PythonInclude    string   `mapstructure:"python_include"`

	MySQLConfig        string `mapstructure:"with_mysql_capi"`
	ProtobufIncludeDir string `mapstructure:"with_protobuf_include_dir"`
	ProtobufLibDir     string `mapstructure:"with_protobuf_lib_dir"`

	Formats     string `mapstructure:"formats"`
	Label       string `mapstructure:"label"`
	PythonTag   string `mapstructure:"python_tag"`
	PlatformTag string `mapstructure:"plat_name"`

	Verbose bool `mapstructure:"verbose"`
}

// Path resolves dir against the build root.
func (o *BuildOptions) Path(dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(o.Root, dir)
}

// WithDefaults fills unset directories and tags.
func (o BuildOptions) WithDefaults() BuildOptions {
	if o.Root == "" {
		o.Root = "."
	}
	if o.BuildDir == "" {
		o.BuildDir = "build"
	}
	if o.DistDir == "" {
		o.DistDir = "dist"
	}
	if o.Formats == "" {
		o.Formats = "gztar"
	}
	if o.PythonTag == "" {
		o.PythonTag = "cp3"
	}
	return o
}
