package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ledger-backend/internal/daybook"
)

type DaybookCmd struct {
	From string `help:"First day (YYYY-MM-DD)." required:""`
	To   string `help:"Last day (YYYY-MM-DD), inclusive. Defaults to --from."`
}

func (cmd *DaybookCmd) Run(env *Env) error {
	r, err := generate(env.Engine, cmd.From, cmd.To)
	if err != nil {
		return err
	}
	Render(env.Out, r)
	return nil
}

type ExportCmd struct {
	From string `help:"First day (YYYY-MM-DD)." required:""`
	To   string `help:"Last day (YYYY-MM-DD), inclusive. Defaults to --from."`
	Out  string `help:"Output file." default:"daybook.xlsx" type:"path"`
}

func (cmd *ExportCmd) Run(env *Env) error {
	r, err := generate(env.Engine, cmd.From, cmd.To)
	if err != nil {
		return err
	}

	f, err := os.Create(cmd.Out)
	if err != nil {
		return err
	}
	if err := daybook.WriteXLSX(f, r); err != nil {
		f.Close()
		_ = os.Remove(cmd.Out)
		return fmt.Errorf("export: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "%s %d days written to %s\n", sectionStyle.Render("✓"), len(r.Days), filepath.Base(cmd.Out))
	return nil
}

type OpeningCmd struct {
	Date string `help:"Day (YYYY-MM-DD)." required:""`
}

func (cmd *OpeningCmd) Run(env *Env) error {
	day, err := parseDay(cmd.Date, env.Engine.Location())
	if err != nil {
		return err
	}
	balance, err := env.Engine.OpeningBalance(context.Background(), day)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "Opening cash in hand on %s: %s\n", day.Format("02-01-2006"), signed(balance))
	return nil
}

func generate(e *daybook.Engine, from, to string) (daybook.RangeSummary, error) {
	if to == "" {
		to = from
	}
	first, err := parseDay(from, e.Location())
	if err != nil {
		return daybook.RangeSummary{}, err
	}
	last, err := parseDay(to, e.Location())
	if err != nil {
		return daybook.RangeSummary{}, err
	}
	return e.Generate(context.Background(), first, last)
}
