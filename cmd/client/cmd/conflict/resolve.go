// cmd/client/cmd/conflict/resolve.go
package conflict

import (
	"fmt"

	"workpro/internal/app/client"

	"github.com/spf13/cobra"
)

var (
	resolution string
	notes      string
)

var ResolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Разрешить конфликт",
	Long: `Разрешает конфликт по одной из политик:
  server - оставить данные сервера
  client - записать данные клиента поверх серверных
  manual - данные уже исправлены вручную`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := client.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		res, err := app.Resolve(cmd.Context(), args[0], resolution, notes)
		if err != nil {
			return fmt.Errorf("ошибка разрешения конфликта: %w", err)
		}

		if asJSON(cmd) {
			return printJSON(res)
		}
		if res.AlreadyResolved {
			fmt.Printf("Конфликт %s уже был разрешён ранее\n", res.ID)
			return nil
		}
		fmt.Printf("✓ Конфликт %s разрешён (%s)\n", res.ID, resolution)
		return nil
	},
}

func init() {
	ResolveCmd.Flags().StringVar(&resolution, "resolution", "server", "политика: server, client, manual")
	ResolveCmd.Flags().StringVar(&notes, "notes", "", "комментарий")
}
