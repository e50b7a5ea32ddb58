package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/crypto/bcrypt"

	"github.com/matzehuels/cardsheet/pkg/compose"
	"github.com/matzehuels/cardsheet/pkg/config"
	apperr "github.com/matzehuels/cardsheet/pkg/errors"
	"github.com/matzehuels/cardsheet/pkg/forms"
	"github.com/matzehuels/cardsheet/pkg/pipeline"
)

func TestHashPassword(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	root := c.command([]string{"hash-password"})
	var out strings.Builder
	root.SetOut(&out)
	root.SetIn(strings.NewReader("s3cret\n"))
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	hash := strings.TrimSpace(out.String())
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")); err != nil {
		t.Errorf("hash does not match password: %v", err)
	}
}

func TestReadPasswordFromPipe(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pw\n", "pw"},
		{"pw\r\n", "pw"},
		{"no newline", "no newline"},
		{"first\nsecond\n", "first"},
	}
	for _, tt := range tests {
		got, err := readPassword(strings.NewReader(tt.in), nil, true)
		if err != nil {
			t.Fatalf("readPassword(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("readPassword(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardsheet", "config.toml")
	c := New(os.Stderr, LogInfo)
	root := c.command([]string{"--config", path, "config", "init", "--email", "admin@school.test"})
	root.SetIn(strings.NewReader("1234\n"))
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Admin.Email != "admin@school.test" {
		t.Errorf("email = %q", cfg.Admin.Email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cfg.Admin.PasswordHash), []byte("1234")); err != nil {
		t.Errorf("stored hash: %v", err)
	}

	root = New(os.Stderr, LogInfo).command([]string{"--config", path, "config", "init", "--email", "x@y.z"})
	root.SetIn(strings.NewReader("1234\n"))
	root.SetErr(&strings.Builder{})
	if err := root.Execute(); err == nil {
		t.Error("second init without --force should fail")
	}
}

func TestMergeOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Export.Quality = "print"
	opts := exportDefaults(cfg)
	if opts.Layout != "2x4" || opts.PageSize != "a4" || opts.Quality != compose.QualityPrint {
		t.Fatalf("defaults = %+v", opts)
	}

	mergeOptions(&opts, pipeline.Options{PageSize: "a3", IncludeCropMarks: true})
	want := pipeline.Options{Layout: "2x4", PageSize: "a3", Quality: compose.QualityPrint, IncludeCropMarks: true}
	if opts != want {
		t.Errorf("merged = %+v, want %+v", opts, want)
	}
}

func TestExportEmptyStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	cfgPath := filepath.Join(dir, "config.toml")
	body := "[cache]\ndisabled = true\n[media]\ndir = \"" + filepath.ToSlash(filepath.Join(dir, "uploads")) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, run := testCLI("--config", cfgPath, "export", "-o", filepath.Join(dir, "out.pdf"))
	err := run()
	if !apperr.Is(err, apperr.ErrCodeEmptyInput) {
		t.Fatalf("err = %v, want EMPTY_INPUT", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out.pdf")); !os.IsNotExist(err) {
		t.Error("no file should be written")
	}
}

func TestSchoolListModel(t *testing.T) {
	m := NewSchoolListModel([]forms.School{
		{SchoolName: "Green Valley", TotalSubmissions: 3},
		{SchoolName: "Empty School"},
		{SchoolName: "Hill Top", TotalSubmissions: 1},
	})

	press := func(m SchoolListModel, key string) SchoolListModel {
		var msg tea.KeyMsg
		switch key {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		}
		next, _ := m.Update(msg)
		return next.(SchoolListModel)
	}

	m = press(m, "up")
	if m.Cursor != 0 {
		t.Errorf("cursor moved above top: %d", m.Cursor)
	}
	m = press(m, "down")
	m = press(m, "enter")
	if m.Selected != nil {
		t.Error("school without submissions should not be selectable")
	}
	m = press(m, "down")
	m = press(m, "down")
	if m.Cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.Cursor)
	}
	m = press(m, "enter")
	if m.Selected == nil || m.Selected.SchoolName != "Hill Top" {
		t.Errorf("selected = %+v", m.Selected)
	}
	if !strings.Contains(m.View(), "Green Valley") {
		t.Error("view should list schools")
	}
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := humanBytes(tt.n); got != tt.want {
			t.Errorf("humanBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
