package app

import (
	"fmt"
	"strings"

	"reelforge/internal/llm"
	"reelforge/internal/scenes"
)

func themeProposal(theme *llm.Theme) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is the plan:\n\nTheme: %s\nIntent: %s\n\n", theme.Theme, theme.Intent)
	b.WriteString("Reply \"yes\" to approve, or tell me what to change.")
	return b.String()
}

func scriptProposal(script string) string {
	var b strings.Builder
	b.WriteString("Here is the script draft:\n\n")
	b.WriteString(script)
	b.WriteString("\n\nReply \"yes\" to start production, or tell me what to change.")
	return b.String()
}

func productionReport(s *Session, summary scenes.Summary, warnings []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your video is ready: %s\n", s.FinalVideoPath)
	fmt.Fprintf(&b, "Scenes: %s\n", summary.String())
	for _, w := range warnings {
		fmt.Fprintf(&b, "Warning: %s\n", w)
	}
	if s.Metadata != nil {
		fmt.Fprintf(&b, "\nTitle: %s\nDescription: %s\nTags: %s\n",
			s.Metadata.Title, s.Metadata.Description, strings.Join(s.Metadata.Tags, ", "))
	}
	return b.String()
}
