package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
	"github.com/zatekoja/catalogsearch/internal/application/services"
	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
)

// SearchAction runs one catalog search and prints the ranked items
func SearchAction(ctx context.Context, cmd *cli.Command) error {
	application, _, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	params := services.SearchParams{
		Query:    cmd.String("q"),
		District: cmd.String("district"),
		City:     cmd.String("city"),
		Limit:    cmd.Int("limit"),
		Filters: services.SearchFilters{
			ProviderID: cmd.String("provider"),
		},
		WithScores: cmd.Bool("debug"),
	}

	switch kind := entities.ItemKind(cmd.String("type")); kind {
	case "":
	case entities.ItemKindAtomic, entities.ItemKindPackage:
		params.Filters.Kind = kind
	default:
		return fmt.Errorf("unknown service type %q (want atomic or package)", kind)
	}
	if cmd.IsSet("min-price") {
		v := cmd.Float("min-price")
		params.Filters.MinPrice = &v
	}
	if cmd.IsSet("max-price") {
		v := cmd.Float("max-price")
		params.Filters.MaxPrice = &v
	}

	result, err := application.Search.Search(ctx, params)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	w := output(cmd)
	if cmd.Bool("json") {
		return writeJSON(w, result)
	}
	return renderSearchTable(w, result, params.WithScores)
}

// SuggestAction prints autocomplete suggestions for a prefix
func SuggestAction(ctx context.Context, cmd *cli.Command) error {
	application, _, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	suggestions, err := application.Suggestions.Suggest(ctx, cmd.String("q"))
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}

	w := output(cmd)
	if cmd.Bool("json") {
		return writeJSON(w, suggestions)
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Type", "Provider", "Price")
	for _, s := range suggestions {
		if err := table.Append(s.ID, s.Name, string(s.Kind), s.ProviderName, formatPrice(s.Price)); err != nil {
			return err
		}
	}
	return table.Render()
}

// ItemsListAction pages through the catalog
func ItemsListAction(ctx context.Context, cmd *cli.Command) error {
	application, _, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	items, err := application.Catalog.ListItems(ctx, repositories.ListFilter{
		Status: entities.ItemStatus(cmd.String("status")),
		Limit:  cmd.Int("limit"),
		Offset: cmd.Int("offset"),
	})
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	w := output(cmd)
	if cmd.Bool("json") {
		return writeJSON(w, items)
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Type", "Status", "Bookable", "Price")
	for _, item := range items {
		if err := table.Append(
			item.ID,
			item.Name,
			string(item.Kind),
			string(item.Status),
			strconv.FormatBool(item.IsBookable),
			formatPrice(item.Price),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderSearchTable(w io.Writer, result *entities.SearchResult, withScores bool) error {
	table := tablewriter.NewWriter(w)
	if withScores {
		table.Header("ID", "Name", "Type", "Provider", "Price", "Score")
	} else {
		table.Header("ID", "Name", "Type", "Provider", "Price")
	}

	for _, item := range result.Items {
		provider := ""
		if item.Provider != nil {
			provider = item.Provider.Name
		}
		row := []any{item.ID, item.Name, string(item.Kind), provider, formatPrice(item.Price)}
		if withScores && item.Score != nil {
			row = append(row, strconv.Itoa(*item.Score))
		}
		if err := table.Append(row...); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%d result(s)\n", result.Total)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
