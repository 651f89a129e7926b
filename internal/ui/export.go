package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/five82/steward/internal/backend"
	"github.com/five82/steward/internal/table"
)

// ExportOptions describe a one-shot table run outside the TUI.
type ExportOptions struct {
	Search  string
	Sort    []table.Sort
	Filters map[string]string
	// Page and PageSize pick a single page when All is false. Page is 1-based.
	Page     int
	PageSize int
	All      bool
	Logger   zerolog.Logger
}

// Resources lists every resource a screen exists for, in display order.
func Resources() []backend.Resource {
	return []backend.Resource{
		backend.ResourceDepartments,
		backend.ResourceRoles,
		backend.ResourceApplications,
		backend.ResourceLoans,
		backend.ResourceActiveLoans,
		backend.ResourcePayrollRuns,
	}
}

// ParseResource resolves a resource name as typed on the command line.
func ParseResource(name string) (backend.Resource, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "active-loans" {
		return backend.ResourceActiveLoans, nil
	}
	for _, r := range Resources() {
		if string(r) == name {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown resource %q", name)
}

// Export fetches every row of resource, runs them through a client-mode
// table with the screen's columns and returns the rendered result.
func Export(ctx context.Context, f backend.Fetcher, resource backend.Resource, opts ExportOptions) ([]string, [][]string, error) {
	switch resource {
	case backend.ResourceDepartments:
		return exportTable(ctx, f, departmentsDef(), opts)
	case backend.ResourceRoles:
		return exportTable(ctx, f, rolesDef(), opts)
	case backend.ResourceApplications:
		return exportTable(ctx, f, applicationsDef(), opts)
	case backend.ResourceLoans:
		return exportTable(ctx, f, loansDef(), opts)
	case backend.ResourceActiveLoans:
		return exportTable(ctx, f, activeLoansDef(), opts)
	case backend.ResourcePayrollRuns:
		return exportTable(ctx, f, payrollDef(), opts)
	}
	return nil, nil, fmt.Errorf("unknown resource %q", resource)
}

func exportTable[R any](ctx context.Context, f backend.Fetcher, def screenDef[R], opts ExportOptions) ([]string, [][]string, error) {
	ids := make([]string, 0, len(def.Columns))
	for _, c := range def.Columns {
		ids = append(ids, c.ID)
	}
	for _, s := range opts.Sort {
		if !slices.Contains(ids, s.ColumnID) {
			return nil, nil, fmt.Errorf("unknown sort column %q (have %s)", s.ColumnID, strings.Join(ids, ", "))
		}
	}
	for id := range opts.Filters {
		if !slices.Contains(ids, id) {
			return nil, nil, fmt.Errorf("unknown filter column %q (have %s)", id, strings.Join(ids, ", "))
		}
	}

	rows, err := backend.ListAll[R](ctx, f, def.Resource, nil)
	if err != nil {
		return nil, nil, err
	}

	s := newTableScreen(def, false, screenDeps{
		pageSize: max(opts.PageSize, 1),
		debounce: -1,
		logger:   opts.Logger,
	})
	defer s.close()
	ctrl := s.ctrl

	ctrl.SetData(rows)
	if len(opts.Sort) > 0 {
		ctrl.SetSorting(opts.Sort)
	}
	for id, value := range opts.Filters {
		ctrl.SetColumnFilter(id, value)
	}
	ctrl.SetGlobalFilter(opts.Search)

	result := ctrl.Result()
	if !opts.All {
		ctrl.SetPagination(table.Pagination{PageIndex: max(opts.Page-1, 0), PageSize: max(opts.PageSize, 1)})
		result = ctrl.View().Rows
	}

	headers := make([]string, 0, len(def.Columns))
	for _, c := range def.Columns {
		headers = append(headers, c.Title)
	}
	out := make([][]string, 0, len(result))
	for _, row := range result {
		line := make([]string, 0, len(def.Columns))
		for _, c := range def.Columns {
			line = append(line, c.text(row))
		}
		out = append(out, line)
	}
	opts.Logger.Debug().Str("resource", string(def.Resource)).Int("fetched", len(rows)).Int("exported", len(out)).Msg("export ready")
	return headers, out, nil
}
