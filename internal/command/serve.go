package command

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elakbay/elakbay/internal/app"
	"github.com/elakbay/elakbay/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP gateway",
	Long:  "Start the HTTP gateway serving auth, catalog, weather and analytics routes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := config.Load(ctx)
		if err != nil {
			return err
		}

		infra, err := app.NewInfrastructure(ctx, *cfg)
		if err != nil {
			return err
		}

		application := app.NewApp(infra, cfg)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			<-quit
			infra.Logger().Info("Received shutdown signal")
			cancel()
		}()

		if err := application.Run(ctx); err != nil {
			infra.Logger().Error("Application failed", zap.Error(err))
			return err
		}
		return nil
	},
}
