package cmd

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"reelforge/internal/app"
	"reelforge/pkg/config"
)

var onceTopic string

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Create a single video without the chat loop",
	Long: `Run the whole workflow in-process, approving the theme and the script
automatically. Useful for scripting and smoke tests.`,
	RunE: runOnce,
}

func init() {
	onceCmd.Flags().StringVarP(&onceTopic, "topic", "t", "", "What the video should be about")
	rootCmd.AddCommand(onceCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	if onceTopic == "" {
		return errors.New("please provide --topic")
	}

	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	service, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}
	orch := app.NewOrchestrator(service)

	session, _, err := orch.Start(ctx)
	if err != nil {
		return err
	}
	slog.Info("session started", "session", session.ID, "topic", onceTopic)

	// Theme proposal, then auto-approve both gates.
	for _, text := range []string{onceTopic, "yes", "yes"} {
		session, _, err = orch.HandleMessage(ctx, session.ID, text)
		if err != nil {
			return err
		}
	}

	slog.Info("video created",
		"session", session.ID,
		"path", session.FinalVideoPath,
		"title", session.Metadata.Title,
	)
	return nil
}
