package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Poll queue depth and worker count",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get(baseURL + "/queue/status")
		if err != nil {
			return fmt.Errorf("status check failed: %w", err)
		}
		defer resp.Body.Close()

		var body struct {
			Queued      int64 `json:"queued"`
			WorkerCount int   `json:"worker_count"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		fmt.Printf("queued: %d\nworkers: %d\n", body.Queued, body.WorkerCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
