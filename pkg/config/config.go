package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath     = "config.yaml"
	defaultProjectsDir    = "./projects"
	defaultListenAddr     = "127.0.0.1:8400"
	defaultGroqModel      = "llama-3.3-70b-versatile"
	defaultTTSModel       = "gemini-2.5-flash-preview-tts"
	defaultImageModel     = "imagen-3.0-generate-002"
	defaultVideoModel     = "veo-2.0-generate-001"
	defaultVoiceName      = "Algenib"
	defaultAspectRatio    = "9:16"
	defaultClipSeconds    = 8
	defaultPollSeconds    = 10
	defaultTimeoutSeconds = 300
	defaultMaxInFlight    = 2
	defaultAssemblyPolicy = "strict"
	defaultResolution     = "1080x1920"
	defaultTokenPath      = "./youtube_token.json"
	defaultPrivacyStatus  = "private"

	secretPrefix = "sm://"
)

type Config struct {
	GroqAPIKey          string
	GeminiProject       string
	GeminiLocation      string
	GCSBucket           string
	YouTubeClientID     string
	YouTubeClientSecret string
	YouTubeTokenPath    string

	Server   ServerConfig   `yaml:"server"`
	Groq     GroqConfig     `yaml:"groq"`
	Media    MediaConfig    `yaml:"media"`
	Scenes   ScenesConfig   `yaml:"scenes"`
	Assembly AssemblyConfig `yaml:"assembly"`
	Projects ProjectsConfig `yaml:"projects"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	GCS      GCSConfig      `yaml:"gcs"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

type GroqConfig struct {
	Model string `yaml:"model"`
}

type MediaConfig struct {
	Provider            string `yaml:"provider"` // "gemini" or "stub"
	TTSModel            string `yaml:"tts_model"`
	ImageModel          string `yaml:"image_model"`
	VideoModel          string `yaml:"video_model"`
	VoiceName           string `yaml:"voice_name"`
	AspectRatio         string `yaml:"aspect_ratio"`
	ClipSeconds         int    `yaml:"clip_seconds"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
}

func (m MediaConfig) PollInterval() time.Duration {
	return time.Duration(m.PollIntervalSeconds) * time.Second
}

type ScenesConfig struct {
	MaxInFlight         int `yaml:"max_in_flight"`
	SceneTimeoutSeconds int `yaml:"scene_timeout_seconds"`
}

func (s ScenesConfig) SceneTimeout() time.Duration {
	return time.Duration(s.SceneTimeoutSeconds) * time.Second
}

type AssemblyConfig struct {
	Policy     string `yaml:"policy"` // "strict" or "skip_failed"
	Resolution string `yaml:"resolution"`
	FPS        int    `yaml:"fps"`
}

type ProjectsConfig struct {
	Dir string `yaml:"dir"`
}

type YouTubeConfig struct {
	DefaultTags   []string `yaml:"default_tags"`
	PrivacyStatus string   `yaml:"privacy_status"`
	CategoryID    string   `yaml:"category_id"`
}

type GCSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Prefix  string `yaml:"prefix"`
}

func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		GroqAPIKey:          os.Getenv("GROQ_API_KEY"),
		GeminiProject:       os.Getenv("GOOGLE_CLOUD_PROJECT"),
		GeminiLocation:      getEnvOrDefault("GOOGLE_CLOUD_LOCATION", "us-central1"),
		GCSBucket:           os.Getenv("GCS_BUCKET"),
		YouTubeClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		YouTubeTokenPath:    getEnvOrDefault("YOUTUBE_TOKEN_PATH", defaultTokenPath),
	}

	loadYAMLConfig(cfg)
	applyDefaults(cfg)

	if err := resolveSecrets(ctx, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadYAMLConfig(cfg *Config) {
	path := getEnvOrDefault("REELFORGE_CONFIG", defaultConfigPath)

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("No config file found, using defaults", "path", path)
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Error("Failed to parse config file", "path", path, "error", err)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = defaultListenAddr
	}
	if cfg.Groq.Model == "" {
		cfg.Groq.Model = defaultGroqModel
	}
	applyMediaDefaults(cfg)
	if cfg.Scenes.MaxInFlight <= 0 {
		cfg.Scenes.MaxInFlight = defaultMaxInFlight
	}
	if cfg.Scenes.SceneTimeoutSeconds <= 0 {
		cfg.Scenes.SceneTimeoutSeconds = defaultTimeoutSeconds
	}
	if cfg.Assembly.Policy == "" {
		cfg.Assembly.Policy = defaultAssemblyPolicy
	}
	if cfg.Assembly.Resolution == "" {
		cfg.Assembly.Resolution = defaultResolution
	}
	if cfg.Assembly.FPS == 0 {
		cfg.Assembly.FPS = 24
	}
	if cfg.Projects.Dir == "" {
		cfg.Projects.Dir = defaultProjectsDir
	}
	if cfg.YouTube.PrivacyStatus == "" {
		cfg.YouTube.PrivacyStatus = defaultPrivacyStatus
	}
	if cfg.YouTube.CategoryID == "" {
		cfg.YouTube.CategoryID = "27"
	}
}

func applyMediaDefaults(cfg *Config) {
	if cfg.Media.Provider == "" {
		cfg.Media.Provider = "gemini"
	}
	if cfg.Media.TTSModel == "" {
		cfg.Media.TTSModel = defaultTTSModel
	}
	if cfg.Media.ImageModel == "" {
		cfg.Media.ImageModel = defaultImageModel
	}
	if cfg.Media.VideoModel == "" {
		cfg.Media.VideoModel = defaultVideoModel
	}
	if cfg.Media.VoiceName == "" {
		cfg.Media.VoiceName = defaultVoiceName
	}
	if cfg.Media.AspectRatio == "" {
		cfg.Media.AspectRatio = defaultAspectRatio
	}
	if cfg.Media.ClipSeconds == 0 {
		cfg.Media.ClipSeconds = defaultClipSeconds
	}
	if cfg.Media.PollIntervalSeconds == 0 {
		cfg.Media.PollIntervalSeconds = defaultPollSeconds
	}
}

// resolveSecrets replaces sm://projects/<p>/secrets/<s>[/versions/<v>] values
// with the payload from Secret Manager. Plain values pass through untouched.
func resolveSecrets(ctx context.Context, cfg *Config) error {
	refs := []*string{
		&cfg.GroqAPIKey,
		&cfg.YouTubeClientID,
		&cfg.YouTubeClientSecret,
	}

	var client *secretmanager.Client
	for _, ref := range refs {
		if !strings.HasPrefix(*ref, secretPrefix) {
			continue
		}
		if client == nil {
			var err error
			client, err = secretmanager.NewClient(ctx)
			if err != nil {
				return fmt.Errorf("create secret manager client: %w", err)
			}
			defer client.Close()
		}

		value, err := accessSecret(ctx, client, *ref)
		if err != nil {
			return err
		}
		*ref = value
	}

	return nil
}

func accessSecret(ctx context.Context, client *secretmanager.Client, ref string) (string, error) {
	name := strings.TrimPrefix(ref, secretPrefix)
	if !strings.Contains(name, "/versions/") {
		name += "/versions/latest"
	}

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("access secret %s: %w", name, err)
	}

	return strings.TrimSpace(string(resp.Payload.Data)), nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
