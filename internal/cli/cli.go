// Package cli implements the ledgerctl commands: printing, exporting and
// checking the opening balance of the daybook from a terminal.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"ledger-backend/internal/config"
	"ledger-backend/internal/database"
	"ledger-backend/internal/daybook"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
)

// Globals defines global flags available to all commands.
type Globals struct {
	EnvFile string `help:"Env file to load before reading the environment." default:".env" type:"path"`
}

type Commands struct {
	Globals

	Daybook DaybookCmd `cmd:"" help:"Print the daybook of a date range."`
	Export  ExportCmd  `cmd:"" help:"Write the daybook of a date range to an xlsx file."`
	Opening OpeningCmd `cmd:"" help:"Print the cash in hand at the start of a day."`
}

// Env is what every command runs against.
type Env struct {
	Engine *daybook.Engine
	Out    io.Writer
}

// Connect loads the env file, opens the configured database and builds the
// daybook engine over it.
func Connect(g *Globals, out io.Writer) (*Env, error) {
	if err := godotenv.Load(g.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", g.EnvFile, err)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	engine := daybook.New(daybook.NewStore(db),
		daybook.WithLocation(cfg.Location),
		daybook.WithFetchTimeout(cfg.FetchTimeout),
	)
	return &Env{Engine: engine, Out: out}, nil
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5F5FD7", Dark: "#87AFFF"})
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#00AF87", Dark: "#00D787"})
	totalStyle   = lipgloss.NewStyle().Bold(true)
	negStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F87"})
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#8A8A8A"})

	descCol    = lipgloss.NewStyle().Width(44)
	voucherCol = lipgloss.NewStyle().Width(12)
	amountCol  = lipgloss.NewStyle().Width(14).Align(lipgloss.Right)
)

func parseDay(v string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a YYYY-MM-DD date", v)
	}
	return t, nil
}
