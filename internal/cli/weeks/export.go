package weeks

import (
	"context"
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/export"
)

type ExportCmd struct {
	From string `help:"First day of the range (YYYY-MM-DD)." required:""`
	To   string `help:"Last day of the range (YYYY-MM-DD)." default:"today"`
	Out  string `short:"o" help:"Directory to write the CSV into." default:"." type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	start, err := ctx.ParseDateArg(c.From)
	if err != nil {
		return err
	}
	end, err := ctx.ParseDateArg(c.To)
	if err != nil {
		return err
	}
	s, err := ctx.Store(context.Background())
	if err != nil {
		return err
	}

	path, err := export.WriteFile(c.Out, s.Activities(), start, end)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Printf("✓ Exported %d activities to %s\n", len(s.Activities()), path)
	return nil
}
