// Package commands implements the catalogctl subcommands.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/zatekoja/catalogsearch/internal/app"
	"github.com/zatekoja/catalogsearch/pkg/config"
)

// newApp loads configuration and builds the catalog pipelines. --fixture
// forces the in-memory backend.
func newApp(ctx context.Context, cmd *cli.Command) (*app.App, *config.Config, error) {
	cfg, err := config.LoadFrom(cmd.String("env"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if fixture := cmd.String("fixture"); fixture != "" {
		cfg.Catalog.Backend = config.CatalogBackendMemory
		cfg.Catalog.FixturePath = fixture
	}

	application, err := app.Build(ctx, cfg, nil, app.Options{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}
	return application, cfg, nil
}

func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
