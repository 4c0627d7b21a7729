// Package cli implements the resourcectl command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	grpcadapter "github.com/simaogato/resourceflow-backend/internal/adapter/grpc"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Addr    string
	Token   string
	Format  string // "json" | "text"
	Timeout time.Duration
	Verbose bool

	// DialOptions are appended when connecting to the server
	DialOptions []grpc.DialOption
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for resourcectl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resourcectl",
		Short: "resourcectl - game economy transfer engine",
		Long: `Drive and inspect a resource economy.

simulate runs a world offline from YAML files. transfer, inspect, order and
tick talk to a running server over gRPC.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}
	// Global flags
	cmd.PersistentFlags().StringVar(&opts.Addr, "addr", envOr("RESOURCEFLOW_ADDR", "localhost:8080"), "server address")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", envOr("API_TOKEN", "dev-token"), "API token sent as authorization metadata")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 5*time.Second, "per-request timeout")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewTransferCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewOrderCommand(opts))
	cmd.AddCommand(NewTickCommand(opts))

	return cmd
}

// withClient connects to the server, runs fn under the request timeout and
// closes the connection.
func withClient(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, client *grpcadapter.Client) error) error {
	client, err := grpcadapter.Dial(opts.Addr, opts.Token, opts.DialOptions...)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	return fn(ctx, client)
}

func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format: opts.Format,
		Writer: cmd.OutOrStdout(),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
