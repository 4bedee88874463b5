package admin

import (
	"fmt"

	"github.com/farolabs/faro/internal/config"
	"github.com/spf13/cobra"
)

// AreasCmd returns the areas command
func AreasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "areas",
		Short: "List indexed areas",
		Long:  "List every indexed area with its chunk count",
		Args:  cobra.NoArgs,
		RunE:  runAreas,
	}
}

func runAreas(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	idx := newIndex(cfg)

	areas, err := idx.Areas()
	if err != nil {
		return err
	}
	if len(areas) == 0 {
		fmt.Printf("no indexed areas under %s\n", cfg.IndexRoot)
		return nil
	}

	for _, area := range areas {
		count, err := idx.Count(area)
		if err != nil {
			return err
		}
		fmt.Printf("%-24s %d chunks\n", area, count)
	}
	return nil
}
