package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ucid-labs/ucid/internal/config"
	"github.com/ucid-labs/ucid/internal/infra"
	"github.com/ucid-labs/ucid/internal/logging"
	"github.com/ucid-labs/ucid/internal/registry"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "ucidctl",
		Short:         "operate on the UCID identity registry",
		Long:          "ucidctl generates identities and inspects the credential registry kept in the configured store (see STORE_DRIVER).",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newKeygen(), newRegistry(), newQR())
	return root
}

// withRegistry opens the configured store for the duration of fn.
func withRegistry(ctx context.Context, fn func(ctx context.Context, svc *registry.Service) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Discard()
	if cfg.LogLevel == "debug" {
		logger = logging.New(cfg.LogLevel)
	}

	store, err := infra.OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store", slog.Any("error", err))
		}
	}()

	svc := registry.NewService(registry.NewStoreRepository(store, cfg.Namespace), logger, nil)
	return fn(ctx, svc)
}
