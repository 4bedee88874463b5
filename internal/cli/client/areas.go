package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// AreasResponse represents the areas API response.
type AreasResponse struct {
	Areas []string `json:"areas"`
}

// AreasCmd creates the areas command.
func AreasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "areas",
		Short: "List indexed areas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAreas(cmd, outputJSON)
		},
	}
}

func runAreas(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/api/areas")
	if err != nil {
		return fmt.Errorf("failed to list areas: %w", err)
	}

	var areasResp AreasResponse
	if err := json.Unmarshal(resp.Data, &areasResp); err != nil {
		return fmt.Errorf("failed to parse areas response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(areasResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(areasResp.Areas) == 0 {
		fmt.Println("No indexed areas.")
		return nil
	}
	for _, area := range areasResp.Areas {
		fmt.Println(area)
	}
	return nil
}
