package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/steward/internal/backend"
	"github.com/five82/steward/internal/config"
	"github.com/five82/steward/internal/export"
	"github.com/five82/steward/internal/logging"
	"github.com/five82/steward/internal/table"
	"github.com/five82/steward/internal/ui"
)

func newExportCmd() *cobra.Command {
	var (
		search   string
		sorts    []string
		filters  []string
		page     int
		pageSize int
		all      bool
		out      string
	)

	cmd := &cobra.Command{
		Use:   "export <resource>",
		Short: "Write a resource's rows to CSV or XLSX",
		Long: "Fetches every row of a resource, applies search, filters and sort the way the\n" +
			"list screen does, and writes the result. Resources: " + resourceNames() + ".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := ui.ParseResource(args[0])
			if err != nil {
				return err
			}
			sort, err := parseSorts(sorts)
			if err != nil {
				return err
			}
			filterMap, err := parseFilters(filters)
			if err != nil {
				return err
			}

			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
				cfg.LogLevel = lvl
			}
			logger, closer, err := logging.Open(cfg.LogPath(), cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("open log: %w", err)
			}
			defer closer.Close()

			client, err := backend.NewClient(cfg.APIBind,
				backend.WithToken(cfg.APIToken),
				backend.WithLogger(logging.Component(logger, "backend")),
			)
			if err != nil {
				return fmt.Errorf("init backend client: %w", err)
			}

			headers, rows, err := ui.Export(cmd.Context(), client, resource, ui.ExportOptions{
				Search:   search,
				Sort:     sort,
				Filters:  filterMap,
				Page:     page,
				PageSize: pageSize,
				All:      all,
				Logger:   logging.Component(logger, "export"),
			})
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return export.WriteCSV(cmd.OutOrStdout(), headers, rows)
			}
			if err := export.Write(out, headers, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(rows), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Global search text")
	cmd.Flags().StringArrayVar(&sorts, "sort", nil, "Sort column, col or col:desc (repeatable, first wins)")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Column filter, col=value (repeatable)")
	cmd.Flags().IntVar(&page, "page", 1, "Page to write when --all=false (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "Rows per page when --all=false")
	cmd.Flags().BoolVar(&all, "all", true, "Write every matching row instead of a single page")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file (.csv or .xlsx), - for CSV on stdout")
	return cmd
}

func resourceNames() string {
	names := make([]string, 0, len(ui.Resources()))
	for _, r := range ui.Resources() {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

func parseSorts(values []string) ([]table.Sort, error) {
	out := make([]table.Sort, 0, len(values))
	for _, v := range values {
		id, dir, _ := strings.Cut(strings.TrimSpace(v), ":")
		if id == "" {
			return nil, fmt.Errorf("invalid --sort %q", v)
		}
		switch strings.ToLower(dir) {
		case "", "asc":
			out = append(out, table.Sort{ColumnID: id})
		case "desc":
			out = append(out, table.Sort{ColumnID: id, Desc: true})
		default:
			return nil, fmt.Errorf("invalid --sort %q: direction must be asc or desc", v)
		}
	}
	return out, nil
}

func parseFilters(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(values))
	for _, v := range values {
		id, value, ok := strings.Cut(v, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid --filter %q: want col=value", v)
		}
		out[id] = value
	}
	return out, nil
}
