package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/farolabs/faro/internal/config"
	"github.com/farolabs/faro/internal/domain"
	"github.com/farolabs/faro/internal/retrieval"
	"github.com/spf13/cobra"
)

// QueryCmd returns the query command
func QueryCmd() *cobra.Command {
	var (
		area        string
		topK        int
		showContext bool
	)

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run retrieval without a completion",
		Long:  "Retrieve the chunks most relevant to a query and show their sources, without calling the completion endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(args[0], area, topK, showContext)
		},
	}

	cmd.Flags().StringVarP(&area, "area", "a", "", "Area to search (default: all indexed areas)")
	cmd.Flags().IntVar(&topK, "k", retrieval.DefaultTopK, "Number of results to retrieve")
	cmd.Flags().BoolVar(&showContext, "context", false, "Print the assembled context")

	return cmd
}

func runQuery(query, area string, topK int, showContext bool) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	engine := newEngine(cfg, newIndex(cfg))

	res, err := engine.BuildContext(ctx, query, topK, area)
	if err != nil {
		return err
	}

	if len(res.AreasSearched) == 0 {
		fmt.Println("No indexed areas. Run 'farod ingest' first.")
		return nil
	}

	fmt.Printf("Searched: %s\n", strings.Join(res.AreasSearched, ", "))
	if res.DetectedArea != "" {
		fmt.Printf("Area: %s\n", res.DetectedArea)
	}

	if len(res.Sources) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("\n%d sources:\n", len(res.Sources))
	for i, src := range res.Sources {
		fmt.Printf("%d. %s (distance %.4f)\n", i+1, src.Path, src.Distance)
		if loc := sourceLocation(src); loc != "" {
			fmt.Printf("   %s\n", loc)
		}
		fmt.Printf("   %s\n", src.Preview)
	}

	if showContext {
		fmt.Printf("\n--- context (%d chars) ---\n%s\n", len([]rune(res.Context)), res.Context)
	}
	return nil
}

func sourceLocation(src domain.SourceRef) string {
	switch {
	case src.Sheet != "":
		return fmt.Sprintf("sheet %s, row %d", src.Sheet, src.Row)
	case src.Page > 0:
		return fmt.Sprintf("page %d", src.Page)
	default:
		return ""
	}
}
