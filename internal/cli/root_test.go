package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func testCLI(args ...string) (*CLI, *bytes.Buffer, func() error) {
	c := New(io.Discard, log.InfoLevel)
	root := c.command(args)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	return c, &out, func() error { return root.ExecuteContext(context.Background()) }
}

func TestVersionFlag(t *testing.T) {
	_, out, run := testCLI("--version")
	if err := run(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "cardsheet version ") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	for _, name := range []string{"serve", "export", "forms", "fields", "data", "config", "hash-password", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestVerboseFlagSetsDebug(t *testing.T) {
	c, _, run := testCLI("-v", "fields")
	if err := run(); err != nil {
		t.Fatal(err)
	}
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}

func TestUnknownCommand(t *testing.T) {
	_, _, run := testCLI("frobnicate")
	if err := run(); err == nil {
		t.Error("expected error for unknown command")
	}
}
