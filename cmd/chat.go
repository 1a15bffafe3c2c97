package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"reelforge/internal/api"
	"reelforge/internal/client"
	"reelforge/pkg/config"
)

var (
	chatTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	chatAssistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	chatSuccessStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	chatErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var chatSessionID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a running backend to create a video",
	Long: `Connect to a running backend (see "reelforge serve") and drive the
workflow over chat. Use --session to resume an existing session.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSessionID, "session", "s", "", "Resume an existing session")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	c := client.New("http://" + cfg.Server.ListenAddr)
	if err := c.WaitUntilReady(ctx, 3*time.Second); err != nil {
		return fmt.Errorf("%w (is \"reelforge serve\" running?)", err)
	}

	fmt.Println(chatTitleStyle.Render("🎬 Reelforge"))

	var session api.SessionResponse
	if chatSessionID != "" {
		resp, err := c.GetSession(ctx, chatSessionID)
		if err != nil {
			return err
		}
		session = *resp
		fmt.Println(chatAssistantStyle.Render(fmt.Sprintf("Resuming session %s (stage: %s)", session.ID, session.Stage)))
	} else {
		started, err := c.StartSession(ctx)
		if err != nil {
			return err
		}
		session = started.Session
		fmt.Println(chatAssistantStyle.Render(started.Reply))
	}

	for session.Stage != "done" && session.Stage != "failed" {
		var text string
		err := huh.NewInput().
			Title("You").
			Value(&text).
			Run()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println(chatAssistantStyle.Render("Session saved. Resume with --session " + session.ID))
				return nil
			}
			return err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		var resp *api.MessageResponse
		var sendErr error
		if err := spinner.New().
			Title("Working...").
			Action(func() {
				resp, sendErr = c.SendMessage(ctx, session.ID, text)
			}).
			Run(); err != nil {
			return err
		}
		if sendErr != nil {
			return sendErr
		}

		session = resp.Session
		fmt.Println(chatAssistantStyle.Render(resp.Reply))
	}

	if session.Stage == "failed" {
		fmt.Println(chatErrorStyle.Render("✗ Session failed: " + session.FailureReason))
		return nil
	}
	fmt.Println(chatSuccessStyle.Render("✓ Done: " + session.FinalVideoPath))
	return nil
}
