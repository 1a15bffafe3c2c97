package app

import (
	"context"
	"log/slog"

	"reelforge/internal/llm"
	"reelforge/internal/media"
	"reelforge/internal/scenes"
	"reelforge/internal/storage"
	"reelforge/internal/video"
	"reelforge/pkg/config"
)

// Archiver copies a finished project folder to durable remote storage.
// Archival is best effort: a failure never fails the workflow.
type Archiver interface {
	Archive(ctx context.Context, project *storage.Project, sessionID string) error
}

// Service bundles the backends the orchestrator drives. Construct one
// with BuildService, or assemble it by hand in tests.
type Service struct {
	Config      *config.Config
	LLM         llm.Client
	Generator   media.Generator
	Coordinator *scenes.Coordinator
	Assembler   *video.Assembler
	Sessions    *SessionStore
	Archiver    Archiver
	Policy      video.Policy
	Log         *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}
