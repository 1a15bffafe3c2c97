package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"reelforge/internal/app"
	"reelforge/internal/storage"
	"reelforge/pkg/config"
)

var (
	sessionsHeaderStyle = lipgloss.NewStyle().Bold(true)
	sessionsDoneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	sessionsFailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List sessions in the projects directory",
	RunE:  runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	sessions := app.NewSessionStore(storage.NewStore(cfg.Projects.Dir))
	ids, err := sessions.List()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No sessions yet. Start one with \"reelforge chat\".")
		return nil
	}

	fmt.Println(sessionsHeaderStyle.Render(fmt.Sprintf("%-36s  %-10s  %-19s  %s", "ID", "STAGE", "UPDATED", "THEME")))
	for _, id := range ids {
		s, err := sessions.Load(id)
		if err != nil {
			fmt.Printf("%-36s  %s\n", id, sessionsFailStyle.Render("unreadable: "+err.Error()))
			continue
		}
		theme := ""
		if s.Theme != nil {
			theme = s.Theme.Theme
		}
		line := fmt.Sprintf("%-36s  %-10s  %-19s  %s", s.ID, s.Stage, s.UpdatedAt.Format("2006-01-02 15:04:05"), theme)
		switch s.Stage {
		case app.StageDone:
			fmt.Println(sessionsDoneStyle.Render(line))
		case app.StageFailed:
			fmt.Println(sessionsFailStyle.Render(line))
		default:
			fmt.Println(line)
		}
	}
	return nil
}
