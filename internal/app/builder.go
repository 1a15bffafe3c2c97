package app

import (
	"context"
	"fmt"
	"log/slog"

	"reelforge/internal/llm/groq"
	"reelforge/internal/media"
	"reelforge/internal/media/gemini"
	"reelforge/internal/scenes"
	"reelforge/internal/storage"
	"reelforge/internal/video"
	"reelforge/pkg/config"
	"reelforge/pkg/prompts"
)

// BuildService wires the configured backends into a ready Service.
func BuildService(ctx context.Context, cfg *config.Config) (*Service, error) {
	p, err := prompts.Load()
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required")
	}
	textClient, err := groq.NewClient(cfg.GroqAPIKey, cfg.Groq.Model, p)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	generator, err := buildGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := storage.NewStore(cfg.Projects.Dir)
	if err := store.EnsureRoot(); err != nil {
		return nil, fmt.Errorf("prepare projects dir: %w", err)
	}

	policy, err := video.ParsePolicy(cfg.Assembly.Policy)
	if err != nil {
		return nil, err
	}

	var archiver Archiver
	if cfg.GCS.Enabled {
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("GCS_BUCKET is required when gcs.enabled is set")
		}
		gcs, err := storage.NewGCSArchiver(ctx, cfg.GCSBucket, cfg.GCS.Prefix)
		if err != nil {
			return nil, fmt.Errorf("create gcs archiver: %w", err)
		}
		archiver = gcs
	}

	svc := &Service{
		Config:    cfg,
		LLM:       textClient,
		Generator: generator,
		Coordinator: scenes.NewCoordinator(textClient, generator, scenes.Options{
			MaxInFlight:  cfg.Scenes.MaxInFlight,
			SceneTimeout: cfg.Scenes.SceneTimeout(),
		}),
		Assembler: video.NewAssembler(video.AssemblerOptions{
			Resolution: cfg.Assembly.Resolution,
			FPS:        cfg.Assembly.FPS,
		}),
		Sessions: NewSessionStore(store),
		Archiver: archiver,
		Policy:   policy,
		Log:      slog.Default(),
	}
	return svc, nil
}

func buildGenerator(ctx context.Context, cfg *config.Config) (media.Generator, error) {
	switch cfg.Media.Provider {
	case "stub":
		return media.NewStubGenerator(), nil
	case "gemini":
		if cfg.GeminiProject == "" {
			return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the gemini provider")
		}
		return gemini.NewClient(ctx, gemini.Options{
			Project:      cfg.GeminiProject,
			Location:     cfg.GeminiLocation,
			TTSModel:     cfg.Media.TTSModel,
			ImageModel:   cfg.Media.ImageModel,
			VideoModel:   cfg.Media.VideoModel,
			VoiceName:    cfg.Media.VoiceName,
			AspectRatio:  cfg.Media.AspectRatio,
			ClipSeconds:  cfg.Media.ClipSeconds,
			PollInterval: cfg.Media.PollInterval(),
		})
	default:
		return nil, fmt.Errorf("unknown media provider: %q", cfg.Media.Provider)
	}
}
