package commands

import (
	"github.com/urfave/cli/v3"
	"github.com/zatekoja/catalogsearch/internal/domain/entities"
)

// NewRootCommand assembles the catalogctl command tree
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalogctl",
		Usage: "query the service catalog from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Usage: "environment file path",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "fixture",
				Usage: "serve the catalog from a JSON fixture instead of the configured backend",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "search and rank catalog items",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "q", Usage: "free-text query"},
					&cli.StringFlag{Name: "district", Usage: "branch district"},
					&cli.StringFlag{Name: "city", Usage: "branch city"},
					&cli.StringFlag{Name: "provider", Usage: "provider id"},
					&cli.StringFlag{Name: "type", Usage: "service type (atomic or package)"},
					&cli.FloatFlag{Name: "min-price", Usage: "minimum price"},
					&cli.FloatFlag{Name: "max-price", Usage: "maximum price"},
					&cli.IntFlag{Name: "limit", Usage: "maximum results (0 uses the default)"},
					&cli.BoolFlag{Name: "debug", Usage: "show relevance scores"},
					jsonFlag(),
				},
				Action: SearchAction,
			},
			{
				Name:  "suggest",
				Usage: "show autocomplete suggestions",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "q", Usage: "typed prefix", Required: true},
					jsonFlag(),
				},
				Action: SuggestAction,
			},
			{
				Name:  "items",
				Usage: "catalog item commands",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "page through catalog items",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "status", Usage: "item status filter", Value: string(entities.ItemStatusActive)},
							&cli.IntFlag{Name: "limit", Usage: "page size", Value: 50},
							&cli.IntFlag{Name: "offset", Usage: "items to skip"},
							jsonFlag(),
						},
						Action: ItemsListAction,
					},
				},
			},
		},
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "print JSON instead of a table",
	}
}
