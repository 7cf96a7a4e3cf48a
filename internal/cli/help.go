package cli

import (
	"embed"
	"io/fs"
	"os"

	"github.com/arthur-debert/dac/pkg/cobrax/topics"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var topicFiles embed.FS

// installHelpTopics serves the embedded topics through "dac help <topic>".
// Markdown is styled only when stdout is a terminal.
func installHelpTopics(rootCmd *cobra.Command) {
	fsys, err := fs.Sub(topicFiles, "topics")
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
		return
	}

	var renderer topics.Renderer = &topics.PlainRenderer{}
	if colorEnabled(os.Stdout) {
		renderer = topics.NewGlamourRenderer()
	}

	m, err := topics.Load(fsys, topics.Options{Renderer: renderer, GroupID: "misc"})
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
		return
	}
	m.Install(rootCmd)
}
