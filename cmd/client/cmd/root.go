// cmd/client/cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"

	"workpro/cmd/client/cmd/conflict"
	"workpro/cmd/client/cmd/outbox"
	"workpro/internal/app/client"
	"workpro/internal/app/client/config"
	"workpro/internal/utils/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	serverURL string
	token     string
	app       *client.App
)

var rootCmd = &cobra.Command{
	Use:   "workpro",
	Short: "Workpro - офлайн-клиент синхронизации",
	Long: `Workpro ставит изменения сущностей в локальную очередь, пока нет связи,
и отправляет их на сервер синхронизации пакетами.

Каждое действие несёт ключ идемпотентности, поэтому повторная отправка
после обрыва связи не применяет изменение дважды.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	if err := v.BindPFlag("server_address", cmd.Flags().Lookup("server")); err != nil {
		return err
	}
	if err := v.BindPFlag("token", cmd.Flags().Lookup("token")); err != nil {
		return err
	}

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	log := logger.NewWithWriter(cfg.Env, os.Stderr)

	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}
	cmd.SetContext(client.WithApp(cmd.Context(), app))

	return nil
}

func closeApp(_ *cobra.Command, _ []string) error {
	if app == nil {
		return nil
	}
	return app.Close()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
	rootCmd.PersistentFlags().Bool("json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера синхронизации")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "токен доступа")

	rootCmd.AddCommand(outbox.QueueCmd)
	rootCmd.AddCommand(outbox.PushCmd)
	rootCmd.AddCommand(outbox.StatusCmd)

	rootCmd.AddCommand(conflict.ConflictCmd)
	rootCmd.AddCommand(conflict.ResolveCmd)
}
