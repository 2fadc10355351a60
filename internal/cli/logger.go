package cli

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// NewLogger creates the CLI logger: a charmbracelet logger used as the slog
// handler. Debug records are shown only when verbose is set. Colors follow
// the terminal behind w and honour NO_COLOR.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	l := log.NewWithOptions(w, log.Options{
		Prefix: "xovigen",
		Level:  level,
	})

	styles := log.DefaultStyles()
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Bold(true).
		Foreground(lipgloss.Color("214"))
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(lipgloss.Color("196"))
	l.SetStyles(styles)
	l.SetColorProfile(termenv.NewOutput(w).EnvColorProfile())

	return slog.New(l)
}
