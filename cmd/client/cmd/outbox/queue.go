// cmd/client/cmd/outbox/queue.go
package outbox

import (
	"encoding/json"
	"fmt"

	"workpro/internal/app/client"
	"workpro/internal/domain/entity"

	"github.com/spf13/cobra"
)

var (
	entityType string
	entityID   string
	operation  string
	payload    string
)

var QueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Поставить изменение в очередь",
	Long: `Сохраняет изменение сущности в локальную очередь. Сеть не нужна:
действие уйдёт на сервер при следующем push.

Пример:
  workpro queue --op create --payload '{"title":"Замена насоса"}'
  workpro queue --op update --entity-id WO-1 --payload '{"status":"completed"}'`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := client.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		var data map[string]any
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), &data); err != nil {
				return fmt.Errorf("payload должен быть JSON-объектом: %w", err)
			}
		}

		action, err := app.Queue(cmd.Context(), client.QueueInput{
			EntityType: entityType,
			EntityID:   entityID,
			Operation:  entity.Operation(operation),
			Payload:    data,
		})
		if err != nil {
			return err
		}

		if asJSON(cmd) {
			return printJSON(action)
		}
		fmt.Printf("✓ Действие %s поставлено в очередь (%s %s)\n", action.ID, action.Operation, action.EntityType)
		return nil
	},
}

func init() {
	QueueCmd.Flags().StringVar(&entityType, "entity-type", entity.DefaultType, "тип сущности")
	QueueCmd.Flags().StringVar(&entityID, "entity-id", "", "идентификатор сущности (для update и delete)")
	QueueCmd.Flags().StringVar(&operation, "op", string(entity.OperationCreate), "операция: create, update, delete")
	QueueCmd.Flags().StringVar(&payload, "payload", "", "данные изменения в JSON")
}
