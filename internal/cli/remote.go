package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	grpcadapter "github.com/simaogato/resourceflow-backend/internal/adapter/grpc"
)

// TransferOptions holds flags for the transfer command.
type TransferOptions struct {
	Source      string
	Destination string
	Resource    int64
	Amount      string
}

// NewTransferCommand creates the transfer command.
func NewTransferCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransferOptions{}

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Queue a transfer on the server",
		Long: `Queue a transfer between two container handles. The order is only
validated at the next tick; use "order <id>" to see the outcome.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, rootOpts, func(ctx context.Context, client *grpcadapter.Client) error {
				id, err := client.CreateTransfer(ctx, opts.Source, opts.Destination, opts.Resource, opts.Amount)
				if err != nil {
					return err
				}
				return formatter(cmd, rootOpts).Created(id)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Source, "source", "", "source container handle (required)")
	cmd.Flags().StringVar(&opts.Destination, "destination", "", "destination container handle (required)")
	cmd.Flags().Int64Var(&opts.Resource, "resource", 0, "resource ID to move (required)")
	cmd.Flags().StringVar(&opts.Amount, "amount", "", "decimal amount (required)")
	for _, name := range []string{"source", "destination", "resource", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	Handle   string
	Resource int64
	Category int64
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show containers with their live bounds",
		Long: `Without flags, list every container. --category restricts the list to
one category, --handle or --resource show a single container.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Handle != "" && opts.Resource != 0 {
				return errors.New("--handle and --resource are mutually exclusive")
			}

			return withClient(cmd, rootOpts, func(ctx context.Context, client *grpcadapter.Client) error {
				var (
					containers []grpcadapter.ContainerMessage
					err        error
				)

				switch {
				case opts.Handle != "":
					var c grpcadapter.ContainerMessage
					c, err = client.GetContainer(ctx, opts.Handle)
					containers = []grpcadapter.ContainerMessage{c}
				case opts.Resource != 0:
					var c grpcadapter.ContainerMessage
					c, err = client.GetContainerByResource(ctx, opts.Resource)
					containers = []grpcadapter.ContainerMessage{c}
				default:
					containers, err = client.ListContainers(ctx, opts.Category)
				}
				if err != nil {
					return err
				}

				return formatter(cmd, rootOpts).Containers(containers)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Handle, "handle", "", "container handle")
	cmd.Flags().Int64Var(&opts.Resource, "resource", 0, "resource ID")
	cmd.Flags().Int64Var(&opts.Category, "category", 0, "category ID filter")

	return cmd
}

// NewOrderCommand creates the order command.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "order <order-id>",
		Short: "Show a pending or recently resolved order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, rootOpts, func(ctx context.Context, client *grpcadapter.Client) error {
				o, err := client.GetOrder(ctx, args[0])
				if err != nil {
					return err
				}
				return formatter(cmd, rootOpts).Order(o)
			})
		},
	}
}

// NewTickCommand creates the tick command.
func NewTickCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Force one tick on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, rootOpts, func(ctx context.Context, client *grpcadapter.Client) error {
				tick, err := client.RunTick(ctx)
				if err != nil {
					return err
				}
				return formatter(cmd, rootOpts).Tick(tick)
			})
		},
	}
}
