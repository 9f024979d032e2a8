package setup

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Compose assembles the package descriptor from the static project declaration,
// the loaded version, the command overrides and the discovered packages.
//
// Extensions and requirement lists are copied, so the descriptor does not alias
// the project. Extension names must be unique and every extension needs at least
// one source.
func Compose(p *Project, version *VersionInfo, registry *CommandRegistry, packages []string) (*Descriptor, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("project name is required")
	}
	if version == nil {
		return nil, fmt.Errorf("%w: no version loaded for %s", ErrInvalidVersionSource, p.Name)
	}
	if registry == nil {
		registry = NewCommandRegistry()
	}

	extensions, err := cloneExtensions(p.Extensions)
	if err != nil {
		return nil, err
	}

	installRequires, err := parseRequirements(p.InstallRequires)
	if err != nil {
		return nil, fmt.Errorf("install_requires: %w", err)
	}

	var extras map[string][]Requirement
	if len(p.Extras) > 0 {
		extras = make(map[string][]Requirement, len(p.Extras))
		for name, reqs := range p.Extras {
			if strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("extras_require: empty extra name")
			}
			parsed, err := parseRequirements(reqs)
			if err != nil {
				return nil, fmt.Errorf("extras_require[%s]: %w", name, err)
			}
			extras[name] = parsed
		}
	}

	return &Descriptor{
		Name:            p.Name,
		Version:         version.Text,
		Description:     p.Description,
		LongDescription: p.LongDescription,
		Author:          p.Author,
		AuthorEmail:     p.AuthorEmail,
		License:         p.License,
		Keywords:        p.Keywords,
		URL:             p.URL,
		DownloadURL:     p.DownloadURL,
		PackageDir:      p.PackageRoot,
		Packages:        append([]string(nil), packages...),
		Classifiers:     append([]string(nil), p.Classifiers...),
		Extensions:      extensions,
		Commands:        registry.Names(),
		PythonRequires:  p.PythonRequires,
		InstallRequires: installRequires,
		Extras:          extras,
		MetadataFiles:   append([]string(nil), p.MetadataFiles...),
		registry:        registry,
	}, nil
}

func cloneExtensions(exts []Extension) ([]Extension, error) {
	seen := make(map[string]struct{}, len(exts))
	out := make([]Extension, 0, len(exts))

	for i, ext := range exts {
		if strings.TrimSpace(ext.Name) == "" {
			return nil, fmt.Errorf("extension[%d]: name is required", i)
		}
		if _, dup := seen[ext.Name]; dup {
			return nil, fmt.Errorf("extension %s declared twice", ext.Name)
		}
		if len(ext.Sources) == 0 {
			return nil, fmt.Errorf("extension %s has no sources", ext.Name)
		}
		seen[ext.Name] = struct{}{}
		out = append(out, ext.Clone())
	}
	return out, nil
}

func parseRequirements(raw []string) ([]Requirement, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	reqs := make([]Requirement, 0, len(raw))
	for _, r := range raw {
		req, err := ParseRequirement(r)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// FindPackages returns the dotted names of every package below root.
//
// A package is a directory holding an __init__.py file whose name has no dot.
// Directories that are not packages are pruned along with everything below
// them, since nothing inside is importable. Results are sorted.
func FindPackages(root string) ([]string, error) {
	var packages []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if strings.Contains(d.Name(), ".") {
			return filepath.SkipDir
		}
		if _, statErr := os.Stat(filepath.Join(path, "__init__.py")); statErr != nil {
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		packages = append(packages, strings.ReplaceAll(filepath.ToSlash(rel), "/", "."))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan packages in %s: %w", root, err)
	}

	sort.Strings(packages)
	return packages, nil
}
