package config

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 0}}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_EventsRequireAddrs(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{Port: 8080},
		Events: EventsConfig{Enabled: true},
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing events.addrs")
	}
	if err.Error() != "events.addrs is required when events are enabled" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_ArticlePathPlaceholder(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Site: SiteConfig{ArticlePath: "/wiki/"},
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for article path without $1")
	}
}

func TestValidate_PageSizes(t *testing.T) {
	cfg := Config{
		HTTP:  HTTPConfig{Port: 8080},
		Index: IndexConfig{DefaultPageSize: 100, MaxPageSize: 50},
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when default page size exceeds max")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 8080, RateLimitRPS: 0.5}}
	cfg.ApplyDefaults()

	if cfg.Index.BatchSize != 250 {
		t.Errorf("batch size: got %d, want 250", cfg.Index.BatchSize)
	}
	if cfg.Index.TreeMaxDepth != 32 || cfg.Index.TreeMaxNodes != 5000 {
		t.Errorf("tree limits: got %d/%d", cfg.Index.TreeMaxDepth, cfg.Index.TreeMaxNodes)
	}
	if cfg.Index.DefaultPageSize != 25 || cfg.Index.MaxPageSize != 500 {
		t.Errorf("page sizes: got %d/%d", cfg.Index.DefaultPageSize, cfg.Index.MaxPageSize)
	}
	if cfg.HTTP.RateLimitBurst != 1 {
		t.Errorf("burst: got %d, want 1", cfg.HTTP.RateLimitBurst)
	}
	if cfg.Site.ArticlePath != "/wiki/$1" {
		t.Errorf("article path: got %q", cfg.Site.ArticlePath)
	}
	if cfg.Events.Consumer == "" {
		t.Error("consumer name must be defaulted")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("WIKINDEX_TEST_PORT", "9090")

	got := string(expandEnvVars([]byte("a: ${WIKINDEX_TEST_PORT}\nb: ${WIKINDEX_TEST_UNSET:-fallback}\nc: ${WIKINDEX_TEST_UNSET}")))
	want := "a: 9090\nb: fallback\nc: "
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
http:
  port: 8081
namespaces:
  names: {0: "", 4: "Project", 12: "Help"}
  content: [0, 4]
  subpages: [12]
exclusions:
  users: [" Bob ", "Alice", "Alice"]
  groups: [bot]
permissions:
  4: [sysop]
messages:
  group-sysop: Administrators
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 8081 {
		t.Errorf("port: got %d", cfg.HTTP.Port)
	}
	if got := cfg.Permissions[4]; !slices.Equal(got, []string{"sysop"}) {
		t.Errorf("permissions: got %v", got)
	}
	if cfg.Messages["group-sysop"] != "Administrators" {
		t.Errorf("messages: got %v", cfg.Messages)
	}

	ns := cfg.NamespaceRegistry()
	if idx, ok := ns.Index("help"); !ok || idx != 12 {
		t.Errorf("help namespace: got %d %v", idx, ok)
	}
	if !ns.IsContent(4) || ns.IsContent(12) {
		t.Error("content namespaces not applied")
	}
	if !ns.HasSubpages(12) || ns.HasSubpages(0) {
		t.Error("subpage namespaces not applied")
	}

	excl := NewExclusions(cfg.Exclusions)
	if got := excl.Users(); !slices.Equal(got, []string{"Alice", "Bob"}) {
		t.Errorf("users: got %v", got)
	}
	if !excl.HasGroup("bot") || excl.HasGroup("sysop") {
		t.Error("group lookup mismatch")
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNamespaceRegistry_Default(t *testing.T) {
	cfg := Config{}
	ns := cfg.NamespaceRegistry()
	if idx, ok := ns.Index("Category"); !ok || idx != 14 {
		t.Errorf("category namespace: got %d %v", idx, ok)
	}
}

func TestWatchExclusions_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.yaml")
	write := func(groups string) {
		t.Helper()
		body := "http:\n  port: 8080\nexclusions:\n  groups: [" + groups + "]\n"
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write("bot")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("path: got %q", cfg.Path())
	}
	excl := NewExclusions(cfg.Exclusions)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- WatchExclusions(ctx, path, excl, zap.NewNop()) }()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		// rewrite until the watcher is registered and picks it up
		write("bot, spammer")
		if excl.HasGroup("spammer") {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("exclusions not reloaded, groups=%v", excl.Groups())
}
