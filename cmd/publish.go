package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"reelforge/internal/app"
	"reelforge/internal/llm"
	"reelforge/internal/storage"
	"reelforge/internal/uploader"
	"reelforge/pkg/config"
)

var publishPrivacy string

var publishCmd = &cobra.Command{
	Use:   "publish <session-id>",
	Short: "Upload a finished video to YouTube",
	Long: `Upload the assembled video of a finished session to YouTube, using the
title, description and tags produced by the workflow.`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVarP(&publishPrivacy, "privacy", "p", "", "Privacy status (overrides config)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if cfg.YouTubeClientID == "" || cfg.YouTubeClientSecret == "" {
		return errors.New("YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET must be set in .env")
	}

	sessions := app.NewSessionStore(storage.NewStore(cfg.Projects.Dir))
	session, err := sessions.Load(args[0])
	if err != nil {
		return err
	}
	if session.Stage != app.StageDone {
		return fmt.Errorf("session %s is not finished (stage: %s)", session.ID, session.Stage)
	}
	if _, err := os.Stat(session.FinalVideoPath); err != nil {
		return fmt.Errorf("final video missing: %w", err)
	}

	meta := session.Metadata
	if meta == nil {
		meta = &llm.Metadata{Title: session.Theme.Theme}
	}

	privacy := publishPrivacy
	if privacy == "" {
		privacy = cfg.YouTube.PrivacyStatus
	}

	auth := uploader.NewYouTubeAuth(cfg.YouTubeClientID, cfg.YouTubeClientSecret, cfg.YouTubeTokenPath)
	yt := uploader.NewYouTubeUploader(auth)

	slog.Info("uploading video", "session", session.ID, "title", meta.Title, "privacy", privacy)
	resp, err := yt.Upload(ctx, uploader.UploadRequest{
		FilePath:    session.FinalVideoPath,
		Title:       meta.Title,
		Description: meta.Description,
		Tags:        append(meta.Tags, cfg.YouTube.DefaultTags...),
		Privacy:     privacy,
		CategoryID:  cfg.YouTube.CategoryID,
	})
	if err != nil {
		return err
	}

	slog.Info("video published", "id", resp.ID, "url", resp.URL)
	fmt.Println(resp.URL)
	return nil
}
