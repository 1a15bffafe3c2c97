package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromYAML(t *testing.T) {
	tmp := t.TempDir()
	orig, _ := os.Getwd()
	defer func() { _ = os.Chdir(orig) }()
	_ = os.Chdir(tmp)

	yaml := `
groq:
  model: test-model
scenes:
  max_in_flight: 4
  scene_timeout_seconds: 30
assembly:
  policy: skip_failed
projects:
  dir: /tmp/reels
`
	_ = os.WriteFile(filepath.Join(tmp, "config.yaml"), []byte(yaml), 0644)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Groq.Model != "test-model" {
		t.Errorf("Groq.Model = %q, want test-model", cfg.Groq.Model)
	}
	if cfg.Scenes.MaxInFlight != 4 {
		t.Errorf("Scenes.MaxInFlight = %d, want 4", cfg.Scenes.MaxInFlight)
	}
	if cfg.Scenes.SceneTimeout() != 30*time.Second {
		t.Errorf("Scenes.SceneTimeout() = %v, want 30s", cfg.Scenes.SceneTimeout())
	}
	if cfg.Assembly.Policy != "skip_failed" {
		t.Errorf("Assembly.Policy = %q, want skip_failed", cfg.Assembly.Policy)
	}
	if cfg.Projects.Dir != "/tmp/reels" {
		t.Errorf("Projects.Dir = %q, want /tmp/reels", cfg.Projects.Dir)
	}
}

func TestLoadFromEnv(t *testing.T) {
	tmp := t.TempDir()
	orig, _ := os.Getwd()
	defer func() { _ = os.Chdir(orig) }()
	_ = os.Chdir(tmp)

	_ = os.WriteFile(filepath.Join(tmp, "config.yaml"), []byte("groq:\n  model: x"), 0644)

	t.Setenv("GROQ_API_KEY", "test-groq")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.GroqAPIKey != "test-groq" {
		t.Errorf("GroqAPIKey = %q, want test-groq", cfg.GroqAPIKey)
	}
	if cfg.GeminiProject != "test-project" {
		t.Errorf("GeminiProject = %q, want test-project", cfg.GeminiProject)
	}
}

func TestLoadMissingConfigFileUsesDefaults(t *testing.T) {
	tmp := t.TempDir()
	orig, _ := os.Getwd()
	defer func() { _ = os.Chdir(orig) }()
	_ = os.Chdir(tmp)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.ListenAddr != defaultListenAddr {
		t.Errorf("Server.ListenAddr = %q, want %q", cfg.Server.ListenAddr, defaultListenAddr)
	}
	if cfg.Scenes.MaxInFlight != defaultMaxInFlight {
		t.Errorf("Scenes.MaxInFlight = %d, want %d", cfg.Scenes.MaxInFlight, defaultMaxInFlight)
	}
	if cfg.Assembly.Policy != defaultAssemblyPolicy {
		t.Errorf("Assembly.Policy = %q, want %q", cfg.Assembly.Policy, defaultAssemblyPolicy)
	}
	if cfg.Media.VoiceName != defaultVoiceName {
		t.Errorf("Media.VoiceName = %q, want %q", cfg.Media.VoiceName, defaultVoiceName)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Media.ClipSeconds = 5
	cfg.Assembly.FPS = 30

	applyDefaults(cfg)

	if cfg.Media.ClipSeconds != 5 {
		t.Errorf("Media.ClipSeconds = %d, want 5", cfg.Media.ClipSeconds)
	}
	if cfg.Assembly.FPS != 30 {
		t.Errorf("Assembly.FPS = %d, want 30", cfg.Assembly.FPS)
	}
}

func TestResolveSecretsPassthrough(t *testing.T) {
	cfg := &Config{GroqAPIKey: "plain-key"}

	if err := resolveSecrets(context.Background(), cfg); err != nil {
		t.Fatalf("resolveSecrets() error: %v", err)
	}
	if cfg.GroqAPIKey != "plain-key" {
		t.Errorf("GroqAPIKey = %q, want plain-key", cfg.GroqAPIKey)
	}
}
