package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	grpcadapter "github.com/simaogato/resourceflow-backend/internal/adapter/grpc"
	"github.com/simaogato/resourceflow-backend/internal/adapter/repository/yamlfile"
	"github.com/simaogato/resourceflow-backend/internal/domain"
	"github.com/simaogato/resourceflow-backend/internal/usecase/economy"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	World  string
	Orders string
	Ticks  int
}

// SimulationResult is the JSON output of simulate.
type SimulationResult struct {
	Ticks      []grpcadapter.TickMessage      `json:"ticks"`
	Containers []grpcadapter.ContainerMessage `json:"containers"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a world offline",
		Long: `Seed a world from a YAML file, create the scripted orders before their
tick and run the requested number of ticks. Prints every tick's resolved orders
and the final containers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.World, "world", "w", "", "world YAML file (required)")
	cmd.Flags().StringVarP(&opts.Orders, "orders", "o", "", "order script YAML file")
	cmd.Flags().IntVarP(&opts.Ticks, "ticks", "n", 0, "ticks to run (default: last scripted tick, at least 1)")
	_ = cmd.MarkFlagRequired("world")

	return cmd
}

func runSimulate(cmd *cobra.Command, rootOpts *RootOptions, opts *SimulateOptions) error {
	world, err := yamlfile.LoadWorld(opts.World)
	if err != nil {
		return err
	}

	script := &yamlfile.OrderScript{}
	if opts.Orders != "" {
		if script, err = yamlfile.LoadOrders(opts.Orders); err != nil {
			return err
		}
	}

	ticks := opts.Ticks
	if ticks < 0 {
		return errors.New("ticks must not be negative")
	}
	if ticks == 0 {
		ticks = script.LastTick()
		if ticks == 0 {
			ticks = 1
		}
	}
	if last := script.LastTick(); last > ticks {
		return fmt.Errorf("orders are scheduled up to tick %d but only %d ticks requested", last, ticks)
	}

	logger := zap.NewNop()
	if rootOpts.Verbose {
		logger = verboseLogger(cmd)
	}
	defer func() { _ = logger.Sync() }()

	svc, err := economy.Bootstrap(cmd.Context(), world, world, economy.WithLogger(logger))
	if err != nil {
		return err
	}

	handles := containerHandles(svc, world.Keys())

	out := formatter(cmd, rootOpts)
	result := SimulationResult{}

	for tick := 1; tick <= ticks; tick++ {
		for _, o := range script.Orders {
			if o.Tick != tick {
				continue
			}
			amount, _ := o.AmountValue()
			// An unknown key maps to the zero handle, which the engine rejects
			// as a missing endpoint
			svc.CreateTransfer(
				handles[o.Source],
				handles[o.Destination],
				domain.ResourceID(o.Resource),
				amount,
			)
		}

		msg := grpcadapter.TickFromReport(svc.RunTick())
		if rootOpts.Format == "json" {
			result.Ticks = append(result.Ticks, msg)
			continue
		}
		if err := out.Tick(msg); err != nil {
			return err
		}
	}

	for _, v := range svc.Containers(0) {
		result.Containers = append(result.Containers, grpcadapter.ContainerFromView(v))
	}

	if rootOpts.Format == "json" {
		return out.json(result)
	}
	return out.Containers(result.Containers)
}

// containerHandles maps world keys to the handles of the seeded containers.
// Containers are seeded in file order, so the i-th listed container carries the
// i-th key.
func containerHandles(svc *economy.EconomyService, keys []string) map[string]domain.ContainerHandle {
	views := svc.Containers(0)
	handles := make(map[string]domain.ContainerHandle, len(keys))
	for i, key := range keys {
		if i < len(views) {
			handles[key] = views[i].Handle
		}
	}
	return handles
}

func verboseLogger(cmd *cobra.Command) *zap.Logger {
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(cmd.ErrOrStderr()), zapcore.DebugLevel)
	return zap.New(core)
}
