package cli

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/spf13/cobra"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute <contact-id> [contact-id...]",
	Short: "Recompute warmth snapshots for one or more contacts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			var resp map[string]any
			if err := callAPI(http.MethodPost, "/v1/contacts/"+args[0]+"/warmth/recompute", nil, &resp); err != nil {
				return err
			}
			return printJSON(resp)
		}

		body, err := json.Marshal(map[string]any{"contact_ids": args})
		if err != nil {
			return err
		}
		var resp map[string]any
		if err := callAPI(http.MethodPost, "/v1/warmth/recompute", bytes.NewReader(body), &resp); err != nil {
			return err
		}
		return printJSON(resp)
	},
}
