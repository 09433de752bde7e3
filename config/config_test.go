package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Name    string            `mapstructure:"name"`
	Timeout time.Duration     `mapstructure:"timeout"`
	Keys    map[string]string `mapstructure:"keys"`
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad_FileAndDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app.yaml")
	writeFile(t, path, "name: demo\nkeys:\n  openai: sk-1\n")

	c, err := Load[testConfig](path,
		WithoutWatch[testConfig](),
		WithDefaults[testConfig](map[string]any{"timeout": "30s", "name": "ignored"}),
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := c.Get()
	if got.Name != "demo" {
		t.Errorf("Name = %q, want %q", got.Name, "demo")
	}
	if got.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", got.Timeout)
	}
	if got.Keys["openai"] != "sk-1" {
		t.Errorf("Keys = %v", got.Keys)
	}
	if c.Path() != path {
		t.Errorf("Path = %q", c.Path())
	}
}

func TestLoad_Env(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	writeFile(t, path, "name: demo\n")
	t.Setenv("CFGTEST_NAME", "from-env")

	c, err := Load[testConfig](path, WithoutWatch[testConfig](), WithEnv[testConfig]("CFGTEST"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := c.Get().Name; got != "from-env" {
		t.Fatalf("Name = %q, want from-env", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load[testConfig](filepath.Join(t.TempDir(), "nope.yaml"), WithoutWatch[testConfig]()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app.yaml")
	writeFile(t, path, "keys:\n  a: one\n")

	c, err := Load[testConfig](path, WithoutWatch[testConfig]())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	first := c.Get()
	first.Keys["a"] = "mutated"
	if got := c.Get().Keys["a"]; got != "one" {
		t.Fatalf("Keys[a] = %q after caller mutation", got)
	}
}

func TestReload_NotifiesOnChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app.yaml")
	writeFile(t, path, "name: v1\n")

	c, err := Load[testConfig](path, WithoutWatch[testConfig]())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var calls int
	var oldName, newName string
	c.OnChange(func(old, new testConfig) {
		calls++
		oldName, newName = old.Name, new.Name
	})
	c.OnChange(func(old, new testConfig) { panic("watcher bug") })

	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if calls != 0 {
		t.Fatalf("watcher called without a change")
	}

	writeFile(t, path, "name: v2\n")
	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if calls != 1 || oldName != "v1" || newName != "v2" {
		t.Fatalf("calls = %d, old = %q, new = %q", calls, oldName, newName)
	}
	if c.Get().Name != "v2" {
		t.Fatalf("Get().Name = %q", c.Get().Name)
	}
}

func TestReload_KeepsValueOnError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app.yaml")
	writeFile(t, path, "name: good\n")

	c, err := Load[testConfig](path, WithoutWatch[testConfig]())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	writeFile(t, path, "name: [unterminated\n")
	if err := c.Reload(); err == nil {
		t.Fatalf("expected reload error")
	}
	if c.Get().Name != "good" {
		t.Fatalf("Get().Name = %q, want previous value", c.Get().Name)
	}
}

func TestChanged(t *testing.T) {
	t.Parallel()

	a := testConfig{Name: "x", Keys: map[string]string{"k": "v"}}
	b := testConfig{Name: "x", Keys: map[string]string{"k": "v"}}
	if Changed(a, b) {
		t.Errorf("equal configs reported as changed")
	}
	b.Keys["k"] = "w"
	if !Changed(a, b) {
		t.Errorf("different configs reported as unchanged")
	}
}
