package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nfrund/charroom/internal/modules/chat/events"
	"github.com/nfrund/charroom/internal/pubsub"
	"github.com/spf13/cobra"

	// Registers the chat topics in the bus catalog.
	_ "github.com/nfrund/charroom/internal/modules/chat/topics"
)

var eventsFormat string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List WebSocket events and bus topics",
	Long: `List the events carried over the /ws socket and the topics published
on the internal message bus.

Output formats:
  table - Human-readable table format (default)
  json  - Machine-readable JSON`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printEvents(cmd.OutOrStdout(), eventsFormat)
	},
}

func printEvents(w io.Writer, format string) error {
	wire := events.Catalog()
	topics := pubsub.Topics()

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"events": wire, "topics": topics})
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "EVENT\tDIRECTION\tPAYLOAD\tDESCRIPTION")
		for _, e := range wire {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Direction, e.Payload, e.Description)
		}
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "TOPIC\tPAYLOAD\tFIELDS\tDESCRIPTION")
		for _, t := range topics {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Name, t.TypeName, strings.Join(t.PayloadFields, ","), t.Description)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format %q, use table or json", format)
	}
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().StringVarP(&eventsFormat, "format", "f", "table", "Output format (table, json)")
}
