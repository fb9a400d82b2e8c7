package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dixieflatline76/Paperize/config"
	"github.com/dixieflatline76/Paperize/pkg/catalog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadConfig reads the bootstrap config named by the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Load(viper.New(), file)
}

// openCatalog opens the catalog database, creating the data dir first.
func openCatalog(ctx context.Context, cfg *config.Config) (*catalog.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return catalog.Open(ctx, cfg.Database, afero.NewOsFs())
}
