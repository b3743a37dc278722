// Package dmcli is the command line client for the messaging API
package dmcli

import (
	"fmt"
	"os"

	"github.com/damoang/angple-messenger/pkg/syncclient"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	Server string
	Token  string
	Format string // "text" | "json"

	// newAPI is replaced in tests
	newAPI func(server, token string) syncclient.API
}

// ValidFormats defines the allowed output formats
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the dmclient root command
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{
		newAPI: func(server, token string) syncclient.API {
			return syncclient.NewHTTPAPI(server, token)
		},
	})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dmclient",
		Short: "Direct messages from the terminal",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "text" && opts.Format != "json" {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Token == "" {
				return fmt.Errorf("an access token is required (--token or DM_TOKEN)")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Server, "server", envOr("DM_SERVER", "http://localhost:8090"), "messaging server base URL")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", os.Getenv("DM_TOKEN"), "bearer access token")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newInboxCommand(opts))
	cmd.AddCommand(newOpenCommand(opts))
	cmd.AddCommand(newStartCommand(opts))
	cmd.AddCommand(newSendCommand(opts))
	cmd.AddCommand(newReactCommand(opts))
	cmd.AddCommand(newUnsendCommand(opts))
	cmd.AddCommand(newWhoisCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))

	return cmd
}

func (o *RootOptions) api() syncclient.API {
	return o.newAPI(o.Server, o.Token)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
