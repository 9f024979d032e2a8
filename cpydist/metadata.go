package cpydist

import (
	"fmt"
	"sort"
	"strings"

	setup "github.com/contriboss/connector-setup"
)

// pkgInfo renders core metadata (PKG-INFO / METADATA) for the descriptor.
func pkgInfo(desc *setup.Descriptor) string {
	var b strings.Builder

	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", name, value)
		}
	}

	field("Metadata-Version", "2.1")
	field("Name", desc.Name)
	field("Version", desc.Version)
	field("Summary", desc.Description)
	field("Home-page", desc.URL)
	field("Download-URL", desc.DownloadURL)
	field("Author", desc.Author)
	field("Author-email", desc.AuthorEmail)
	field("License", desc.License)
	field("Keywords", desc.Keywords)
	for _, classifier := range desc.Classifiers {
		field("Classifier", classifier)
	}
	field("Requires-Python", desc.PythonRequires)
	for _, req := range desc.InstallRequires {
		field("Requires-Dist", req.String())
	}

	extras := make([]string, 0, len(desc.Extras))
	for name := range desc.Extras {
		extras = append(extras, name)
	}
	sort.Strings(extras)
	for _, name := range extras {
		field("Provides-Extra", name)
		for _, req := range desc.Extras[name] {
			field("Requires-Dist", fmt.Sprintf("%s ; extra == %q", req.String(), name))
		}
	}

	if desc.LongDescription != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(desc.LongDescription))
		b.WriteString("\n")
	}
	return b.String()
}
