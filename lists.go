package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jlaine/spo-go/internal/sharepoint"
)

func newListsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "List the site's lists",
		Args:  cobra.NoArgs,
		RunE:  runLists,
	}

	cmd.Flags().Bool("hidden", false, "include hidden lists")

	return cmd
}

func newItemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items <list-title>",
		Short: "List the items of a list",
		Args:  cobra.ExactArgs(1),
		RunE:  runItems,
	}

	cmd.Flags().StringSlice("select", nil, "fields to fetch")
	cmd.Flags().String("filter", "", "OData filter expression")
	cmd.Flags().Int("top", 0, "maximum number of items")

	return cmd
}

func newItemAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item-add <list-title>",
		Short: "Add an item to a list",
		Args:  cobra.ExactArgs(1),
		RunE:  runItemAdd,
	}

	cmd.Flags().StringArray("field", nil, "field value as name=value (repeatable)")

	return cmd
}

func newItemRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "item-rm <list-title> <item-id>",
		Short: "Delete an item from a list",
		Args:  cobra.ExactArgs(2),
		RunE:  runItemRm,
	}
}

// listsJSONEntry is the JSON output schema for a single list.
type listsJSONEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ItemCount int    `json:"item_count"`
	Template  int    `json:"template"`
	Modified  string `json:"modified"`
}

func runLists(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := cmd.Context()

	site, err := siteClient(logger)
	if err != nil {
		return err
	}

	includeHidden, err := cmd.Flags().GetBool("hidden")
	if err != nil {
		return err
	}

	opt := &sharepoint.QueryOptions{}
	if !includeHidden {
		opt.Filter = "Hidden eq false"
	}

	lists, err := site.Lists(ctx, opt)
	if err != nil {
		return fmt.Errorf("listing lists: %w", err)
	}

	sort.Slice(lists, func(i, j int) bool { return lists[i].Title < lists[j].Title })

	if flagJSON {
		out := make([]listsJSONEntry, 0, len(lists))
		for _, l := range lists {
			out = append(out, listsJSONEntry{
				ID:        l.ID.String(),
				Title:     l.Title,
				ItemCount: l.ItemCount,
				Template:  l.BaseTemplate,
				Modified:  l.Modified.Format("2006-01-02T15:04:05Z"),
			})
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(out)
	}

	headers := []string{"TITLE", "ITEMS", "TEMPLATE", "MODIFIED"}
	rows := make([][]string, 0, len(lists))

	for _, l := range lists {
		rows = append(rows, []string{
			l.Title,
			strconv.Itoa(l.ItemCount),
			strconv.Itoa(l.BaseTemplate),
			formatTime(l.Modified),
		})
	}

	printTable(os.Stdout, headers, rows)

	return nil
}

func runItems(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := cmd.Context()

	site, err := siteClient(logger)
	if err != nil {
		return err
	}

	list, err := site.ListByTitle(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetching list %q: %w", args[0], err)
	}

	selectFields, err := cmd.Flags().GetStringSlice("select")
	if err != nil {
		return err
	}

	filter, err := cmd.Flags().GetString("filter")
	if err != nil {
		return err
	}

	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return err
	}

	items, err := list.Items(ctx, &sharepoint.QueryOptions{
		Select: selectFields,
		Filter: filter,
		Top:    top,
	})
	if err != nil {
		return fmt.Errorf("listing items of %q: %w", args[0], err)
	}

	if flagJSON {
		out := make([]map[string]any, 0, len(items))
		for _, it := range items {
			out = append(out, it.ToMap())
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(out)
	}

	headers := []string{"ID", "TITLE", "MODIFIED"}
	rows := make([][]string, 0, len(items))

	for _, it := range items {
		rows = append(rows, []string{
			strconv.Itoa(it.ID),
			it.Title,
			formatTime(it.Modified),
		})
	}

	printTable(os.Stdout, headers, rows)

	return nil
}

// parseFieldArgs turns repeated name=value flags into an item payload.
func parseFieldArgs(pairs []string) (map[string]any, error) {
	fields := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid --field %q, want name=value", pair)
		}

		fields[name] = value
	}

	return fields, nil
}

func runItemAdd(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := cmd.Context()

	pairs, err := cmd.Flags().GetStringArray("field")
	if err != nil {
		return err
	}

	fields, err := parseFieldArgs(pairs)
	if err != nil {
		return err
	}

	if len(fields) == 0 {
		return fmt.Errorf("at least one --field is required")
	}

	site, err := siteClient(logger)
	if err != nil {
		return err
	}

	list, err := site.ListByTitle(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetching list %q: %w", args[0], err)
	}

	item, err := list.AddItem(ctx, fields)
	if err != nil {
		return fmt.Errorf("adding item to %q: %w", args[0], err)
	}

	logger.Debug("item added", "list", args[0], "item_id", item.ID)

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(item.ToMap())
	}

	statusf("Added item %d to %s\n", item.ID, args[0])

	return nil
}

func runItemRm(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := cmd.Context()

	id, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid item id %q", args[1])
	}

	site, err := siteClient(logger)
	if err != nil {
		return err
	}

	list, err := site.ListByTitle(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetching list %q: %w", args[0], err)
	}

	item, err := list.ItemByID(ctx, id)
	if err != nil {
		return fmt.Errorf("fetching item %d: %w", id, err)
	}

	if err := item.Delete(ctx); err != nil {
		return fmt.Errorf("deleting item %d: %w", id, err)
	}

	logger.Debug("item deleted", "list", args[0], "item_id", id)
	statusf("Deleted item %d from %s\n", id, args[0])

	return nil
}
