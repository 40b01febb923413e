// cmd/client/cmd/outbox/status.go
package outbox

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"workpro/internal/app/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var showAll bool

var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Состояние локальной очереди",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := client.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		counts, err := app.Counts(cmd.Context())
		if err != nil {
			return err
		}
		actions, err := app.Actions(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON(cmd) {
			return printJSON(struct {
				DeviceID string                      `json:"deviceId"`
				Counts   map[client.OutboxStatus]int `json:"counts"`
				Actions  []*client.OutboxAction      `json:"actions"`
			}{app.Config().DeviceID, counts, actions})
		}

		if !term.IsTerminal(int(os.Stdout.Fd())) {
			color.NoColor = true
		}

		fmt.Printf("Устройство: %s\n", app.Config().DeviceID)
		fmt.Printf("Сервер:     %s\n\n", app.Config().BaseURL())
		fmt.Printf("%s %d  %s %d  %s %d  %s %d\n\n",
			statusColor(client.OutboxQueued)("в очереди:"), counts[client.OutboxQueued],
			statusColor(client.OutboxPending)("в обработке:"), counts[client.OutboxPending],
			statusColor(client.OutboxOK)("применено:"), counts[client.OutboxOK],
			statusColor(client.OutboxError)("ошибки:"), counts[client.OutboxError],
		)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID\tТип\tСущность\tОперация\tСтатус\tПопыток\tОшибка\t\n")
		for _, a := range actions {
			if !showAll && a.Status == client.OutboxOK {
				continue
			}
			id := a.ServerEntityID
			if id == "" && a.EntityID != nil {
				id = *a.EntityID
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t\n",
				a.ID, a.EntityType, id, a.Operation, statusColor(a.Status)(string(a.Status)), a.Attempts, a.Error)
		}
		return w.Flush()
	},
}

func statusColor(s client.OutboxStatus) func(a ...interface{}) string {
	switch s {
	case client.OutboxOK:
		return color.New(color.FgGreen).SprintFunc()
	case client.OutboxError:
		return color.New(color.FgRed).SprintFunc()
	case client.OutboxPending:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgCyan).SprintFunc()
	}
}

func asJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	StatusCmd.Flags().BoolVar(&showAll, "all", false, "показывать и применённые действия")
}
