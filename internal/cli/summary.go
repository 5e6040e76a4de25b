package cli

import (
	"net/http"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the aggregate warmth picture across all contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		var sum map[string]any
		if err := callAPI(http.MethodGet, "/v1/warmth/summary", nil, &sum); err != nil {
			return err
		}
		return printJSON(sum)
	},
}
