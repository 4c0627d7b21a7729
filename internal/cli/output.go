package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	grpcadapter "github.com/simaogato/resourceflow-backend/internal/adapter/grpc"
	"github.com/simaogato/resourceflow-backend/internal/domain"
)

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func (f *OutputFormatter) json(v interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Containers prints a container table
func (f *OutputFormatter) Containers(containers []grpcadapter.ContainerMessage) error {
	if f.Format == "json" {
		return f.json(containers)
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RESOURCE\tNAME\tVALUE\tMIN\tMAX\tOK\tHANDLE")
	for _, c := range containers {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%t\t%s\n",
			c.ResourceID, c.Name, c.CurrentValue, c.Min, c.Max, c.WithinBounds, c.Handle)
	}
	return tw.Flush()
}

// Tick prints a tick report with one line per resolved order
func (f *OutputFormatter) Tick(tick grpcadapter.TickMessage) error {
	if f.Format == "json" {
		return f.json(tick)
	}

	fmt.Fprintf(f.Writer, "tick %d: %d accepted, %d rejected, %d swept\n",
		tick.Tick, tick.Accepted, tick.Rejected, tick.Swept)
	for _, o := range tick.Resolved {
		fmt.Fprintf(f.Writer, "  %s\n", orderLine(o))
	}
	return nil
}

// Order prints a single order
func (f *OutputFormatter) Order(o grpcadapter.OrderMessage) error {
	if f.Format == "json" {
		return f.json(o)
	}
	_, err := fmt.Fprintln(f.Writer, orderLine(o))
	return err
}

// Created prints the ID of a newly queued order
func (f *OutputFormatter) Created(orderID string) error {
	if f.Format == "json" {
		return f.json(map[string]string{"order_id": orderID, "state": "PENDING"})
	}
	_, err := fmt.Fprintf(f.Writer, "order %s queued\n", orderID)
	return err
}

func orderLine(o grpcadapter.OrderMessage) string {
	line := fmt.Sprintf("%s resource=%d amount=%s %s", o.ID, o.ResourceID, o.Amount, o.State)
	if o.Outcome != "" {
		line += " " + o.Outcome
	}
	if o.Reason != "" {
		line += " (" + o.Reason + ")"
	}
	if o.Outcome == string(domain.OutcomeAccepted) {
		line += " moved=" + o.Moved
	}
	return line
}
