package cli

import (
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream snapshot updates as they happen",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := url.Parse(strings.TrimRight(serverURL, "/") + "/v1/warmth/events")
		if err != nil {
			return err
		}
		switch u.Scheme {
		case "http":
			u.Scheme = "ws"
		case "https":
			u.Scheme = "wss"
		}

		conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
		if err != nil {
			return fmt.Errorf("connect %s: %w", u, err)
		}
		defer conn.Close()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			_ = conn.Close()
		}()

		for {
			var ev map[string]any
			if err := conn.ReadJSON(&ev); err != nil {
				return nil
			}
			if err := printJSON(ev); err != nil {
				return err
			}
		}
	},
}
