package setup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read %s: %v", dir, err)
	}
	return len(entries)
}

// fakeCommand records its runs and returns err, or runs fn when set.
type fakeCommand struct {
	name  string
	err   error
	fn    func(ctx context.Context, dist *Distribution) error
	calls int
}

func (c *fakeCommand) Name() string { return c.name }

func (c *fakeCommand) Run(ctx context.Context, dist *Distribution) error {
	c.calls++
	if c.fn != nil {
		return c.fn(ctx, dist)
	}
	return c.err
}

func requiredFakes() []Command {
	cmds := make([]Command, 0, len(RequiredCommands))
	for _, name := range RequiredCommands {
		cmds = append(cmds, &fakeCommand{name: name})
	}
	return cmds
}
