package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/execq/execq/pkg/job"
)

// submitRequest mirrors httpapi.SubmitBatchInput.Body — kept as a local
// type so this CLI has no import-time dependency on the server package.
type submitRequest struct {
	Submissions []job.Input `json:"submissions"`
}

var submitCmd = &cobra.Command{
	Use:   "submit <file>",
	Short: "Submit a batch of jobs from a JSON file",
	Long: `Reads a JSON file containing either a single job input object or a
{"submissions": [...]} batch, and posts it to the orchestrator's
/submit/batch endpoint.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		req, err := parseSubmission(data)
		if err != nil {
			return err
		}

		body, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}

		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Post(baseURL+"/submit/batch", "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("submitting batch: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			var errBody map[string]interface{}
			_ = json.NewDecoder(resp.Body).Decode(&errBody)
			return fmt.Errorf("orchestrator rejected submission (%s): %v", resp.Status, errBody)
		}

		var out struct {
			Tokens []string `json:"tokens"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		for _, tok := range out.Tokens {
			fmt.Println(tok)
		}
		return nil
	},
}

// parseSubmission accepts either a bare job.Input or a full
// {"submissions": [...]} batch, for operator convenience.
func parseSubmission(data []byte) (submitRequest, error) {
	var batch submitRequest
	if err := json.Unmarshal(data, &batch); err == nil && len(batch.Submissions) > 0 {
		return batch, nil
	}

	var single job.Input
	if err := json.Unmarshal(data, &single); err != nil {
		return submitRequest{}, fmt.Errorf("parsing submission file: %w", err)
	}
	return submitRequest{Submissions: []job.Input{single}}, nil
}

func init() {
	rootCmd.AddCommand(submitCmd)
}
