package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// ChatRequest represents the chat API request.
type ChatRequest struct {
	Message string `json:"message"`
	K       int    `json:"k,omitempty"`
}

// ChatSource is one source reference behind a reply.
type ChatSource struct {
	Path     string  `json:"path"`
	Type     string  `json:"type"`
	Area     string  `json:"area,omitempty"`
	Sheet    string  `json:"sheet,omitempty"`
	Row      int     `json:"row,omitempty"`
	Page     int     `json:"page,omitempty"`
	Distance float32 `json:"distance"`
	Preview  string  `json:"preview"`
}

// ChatResponse represents the chat API response.
type ChatResponse struct {
	Reply         string       `json:"reply"`
	Area          string       `json:"area,omitempty"`
	Sources       []ChatSource `json:"sources"`
	AreasSearched []string     `json:"areas_searched,omitempty"`
}

// ChatCmd creates the chat command.
func ChatCmd() *cobra.Command {
	var (
		area        string
		topK        int
		showSources bool
	)

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask the assistant a question",
		Long:  "Sends a question to the assistant and prints the reply grounded on the indexed documents.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runChat(cmd, args[0], area, topK, showSources, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&area, "area", "a", "", "Scope the question to one area")
	cmd.Flags().IntVar(&topK, "k", 0, "Number of chunks to retrieve")
	cmd.Flags().BoolVar(&showSources, "sources", false, "Print the sources behind the reply")

	return cmd
}

func runChat(cmd *cobra.Command, message, area string, topK int, showSources, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	path := "/api/chat"
	if area != "" {
		path += "/" + url.PathEscape(area)
	}

	resp, err := api.Post(path, ChatRequest{Message: message, K: topK})
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(resp.Data, &chatResp); err != nil {
		return fmt.Errorf("failed to parse chat response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(chatResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(chatResp.Reply)
	if chatResp.Area != "" {
		fmt.Printf("\n[area: %s]\n", chatResp.Area)
	}
	if showSources && len(chatResp.Sources) > 0 {
		fmt.Println("\nSources:")
		for i, src := range chatResp.Sources {
			fmt.Printf("%d. %s (distance %.4f)\n", i+1, src.Path, src.Distance)
		}
	}
	return nil
}
