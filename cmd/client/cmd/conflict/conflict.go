// cmd/client/cmd/conflict/conflict.go
package conflict

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"workpro/internal/app/client"

	"github.com/spf13/cobra"
)

var listStatus string

// ConflictCmd выводит конфликты, зарегистрированные на сервере
var ConflictCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Конфликты синхронизации",
	Long: `Список конфликтов арендатора на сервере. Разрешить конфликт:
  workpro resolve <id> --resolution server|client|manual`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := client.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		items, err := app.Conflicts(cmd.Context(), listStatus)
		if err != nil {
			return fmt.Errorf("ошибка получения конфликтов: %w", err)
		}

		if asJSON(cmd) {
			return printJSON(items)
		}
		if len(items) == 0 {
			fmt.Println("Конфликты не найдены")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID\tСущность\tУстройство\tВерсии (сервер/клиент)\tСтатус\tСоздан\t\n")
		for _, c := range items {
			fmt.Fprintf(w, "%s\t%s %s\t%s\t%s/%s\t%s\t%s\t\n",
				c.ID, c.EntityType, c.EntityID, c.DeviceID,
				version(c.ServerVersion), version(c.ClientVersion),
				c.Status, c.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func version(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
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
	ConflictCmd.Flags().StringVar(&listStatus, "status", "pending", "фильтр по статусу: pending, resolved; пусто - все")
}
