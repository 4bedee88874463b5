package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// UploadResponse represents the upload API response.
type UploadResponse struct {
	File   string `json:"file"`
	Area   string `json:"area"`
	Chunks int    `json:"chunks"`
}

// UploadCmd creates the upload command.
func UploadCmd() *cobra.Command {
	var area string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document",
		Long:  "Uploads a document into an area and indexes it immediately.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUpload(cmd, args[0], area, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&area, "area", "a", "", "Area to file the document under (required)")
	_ = cmd.MarkFlagRequired("area")

	return cmd
}

func runUpload(cmd *cobra.Command, filePath, area string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.PostFile("/api/upload/"+url.PathEscape(area), filePath)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	var uploadResp UploadResponse
	if err := json.Unmarshal(resp.Data, &uploadResp); err != nil {
		return fmt.Errorf("failed to parse upload response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(uploadResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Uploaded %s to %s (%d chunks indexed)\n", uploadResp.File, uploadResp.Area, uploadResp.Chunks)
	return nil
}
