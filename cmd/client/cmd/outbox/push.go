// cmd/client/cmd/outbox/push.go
package outbox

import (
	"errors"
	"fmt"
	"time"

	"workpro/internal/app/client"

	"github.com/spf13/cobra"
)

var PushCmd = &cobra.Command{
	Use:   "push",
	Short: "Отправить очередь на сервер",
	Long: `Отправляет неотправленные действия пакетами. Если связь оборвалась,
команду можно просто повторить.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := client.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		start := time.Now()
		result, err := app.Push(cmd.Context())
		if errors.Is(err, client.ErrUnauthorized) {
			return fmt.Errorf("%w: задайте --token или WORKPRO_TOKEN", err)
		}
		if err != nil && result == nil {
			return err
		}

		if asJSON(cmd) {
			if perr := printJSON(result); perr != nil {
				return perr
			}
			return err
		}

		fmt.Printf("Отправлено: %d (пакетов: %d) за %v\n", result.Sent, result.Batches, time.Since(start).Round(time.Millisecond))
		fmt.Printf("  применено: %d\n", result.Applied)
		fmt.Printf("  с ошибкой: %d\n", result.Failed)
		if result.Pending > 0 {
			fmt.Printf("  в обработке: %d (будут отправлены повторно)\n", result.Pending)
		}
		return err
	},
}
