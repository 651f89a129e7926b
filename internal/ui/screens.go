package ui

import (
	"strconv"
	"strings"

	"github.com/five82/steward/internal/backend"
	"github.com/five82/steward/internal/config"
	"github.com/five82/steward/internal/prefs"
	"github.com/five82/steward/internal/table"
)

func departmentsDef() screenDef[backend.Department] {
	return screenDef[backend.Department]{
		Resource: backend.ResourceDepartments,
		Title:    "Departments",
		Columns: []column[backend.Department]{
			{ID: "id", Title: "ID", Width: 6, Value: func(d backend.Department) any { return d.ID }},
			{ID: "name", Title: "Name", Width: 24, Searchable: true, Value: func(d backend.Department) any { return d.Name }},
			{ID: "code", Title: "Code", Width: 8, Searchable: true, Value: func(d backend.Department) any { return d.Code }},
			{ID: "head", Title: "Head", Width: 20, Searchable: true, Value: func(d backend.Department) any { return d.Head }},
			{ID: "employees", Title: "Staff", Width: 6, Value: func(d backend.Department) any { return d.Employees }},
			{
				ID: "active", Title: "Status", Width: 10, Status: true,
				Value:  func(d backend.Department) any { return d.Active },
				Format: func(d backend.Department) string { return ternary(d.Active, "active", "inactive") },
			},
		},
		DefaultSort: []table.Sort{{ColumnID: "name"}},
		Filter: &statusFilter{Column: "active", Options: []filterOption{
			{Label: "Active", Value: true},
			{Label: "Inactive", Value: false},
		}},
	}
}

func rolesDef() screenDef[backend.Role] {
	return screenDef[backend.Role]{
		Resource: backend.ResourceRoles,
		Title:    "Roles",
		Columns: []column[backend.Role]{
			{ID: "id", Title: "ID", Width: 6, Value: func(r backend.Role) any { return r.ID }},
			{ID: "name", Title: "Name", Width: 20, Searchable: true, Value: func(r backend.Role) any { return r.Name }},
			{ID: "description", Title: "Description", Width: 32, Searchable: true, Value: func(r backend.Role) any { return r.Description }},
			{
				ID: "permissions", Title: "Perms", Width: 6,
				Value: func(r backend.Role) any { return len(r.Permissions) },
			},
			{ID: "users", Title: "Users", Width: 6, Value: func(r backend.Role) any { return r.Users }},
		},
		DefaultSort: []table.Sort{{ColumnID: "name"}},
	}
}

func applicationsDef() screenDef[backend.Application] {
	return screenDef[backend.Application]{
		Resource:    backend.ResourceApplications,
		Title:       "Applications",
		ServerPaged: true,
		Columns: []column[backend.Application]{
			{ID: "id", Title: "ID", Width: 6, Value: func(a backend.Application) any { return a.ID }},
			{ID: "applicant", Title: "Applicant", Width: 22, Searchable: true, Value: func(a backend.Application) any { return a.Applicant }},
			{ID: "department", Title: "Department", Width: 18, Searchable: true, Value: func(a backend.Application) any { return a.Department }},
			{ID: "type", Title: "Type", Width: 12, Value: func(a backend.Application) any { return a.Type }},
			{ID: "status", Title: "Status", Width: 10, Status: true, Value: func(a backend.Application) any { return a.Status }},
			{
				ID: "submitted", Title: "Submitted", Width: 11, Param: "submittedAt",
				Value:  func(a backend.Application) any { return a.SubmittedAt },
				Format: func(a backend.Application) string { return formatDate(a.SubmittedAt) },
			},
		},
		DefaultSort: []table.Sort{{ColumnID: "submitted", Desc: true}},
		Filter:      statusOptions("status", "pending", "approved", "rejected"),
	}
}

func loanColumns() []column[backend.Loan] {
	return []column[backend.Loan]{
		{ID: "id", Title: "ID", Width: 6, Value: func(l backend.Loan) any { return l.ID }},
		{ID: "employee", Title: "Employee", Width: 22, Searchable: true, Value: func(l backend.Loan) any { return l.Employee }},
		{ID: "department", Title: "Department", Width: 18, Searchable: true, Value: func(l backend.Loan) any { return l.Department }},
		{
			ID: "amount", Title: "Amount", Width: 12,
			Value:  func(l backend.Loan) any { return l.Amount },
			Format: func(l backend.Loan) string { return formatMoney(l.Amount) },
		},
		{
			ID: "balance", Title: "Balance", Width: 12,
			Value:  func(l backend.Loan) any { return l.Balance },
			Format: func(l backend.Loan) string { return formatMoney(l.Balance) },
		},
		{ID: "status", Title: "Status", Width: 9, Status: true, Value: func(l backend.Loan) any { return l.Status }},
		{
			ID: "due", Title: "Due", Width: 11, Param: "dueAt",
			Value:  func(l backend.Loan) any { return l.DueAt },
			Format: func(l backend.Loan) string { return formatDate(l.DueAt) },
		},
	}
}

func loansDef() screenDef[backend.Loan] {
	return screenDef[backend.Loan]{
		Resource:    backend.ResourceLoans,
		Title:       "Loans",
		ServerPaged: true,
		Columns:     loanColumns(),
		DefaultSort: []table.Sort{{ColumnID: "id", Desc: true}},
		Filter:      statusOptions("status", "active", "overdue", "closed"),
	}
}

func activeLoansDef() screenDef[backend.Loan] {
	return screenDef[backend.Loan]{
		Resource:    backend.ResourceActiveLoans,
		Title:       "Active loans",
		Columns:     loanColumns(),
		DefaultSort: []table.Sort{{ColumnID: "due"}},
		Filter:      statusOptions("status", "active", "overdue"),
	}
}

func payrollDef() screenDef[backend.PayrollRun] {
	return screenDef[backend.PayrollRun]{
		Resource:    backend.ResourcePayrollRuns,
		Title:       "Payroll",
		ServerPaged: true,
		Columns: []column[backend.PayrollRun]{
			{ID: "id", Title: "ID", Width: 6, Value: func(p backend.PayrollRun) any { return p.ID }},
			{ID: "period", Title: "Period", Width: 9, Searchable: true, Value: func(p backend.PayrollRun) any { return p.Period }},
			{ID: "department", Title: "Department", Width: 18, Searchable: true, Value: func(p backend.PayrollRun) any { return p.Department }},
			{
				ID: "gross", Title: "Gross", Width: 14,
				Value:  func(p backend.PayrollRun) any { return p.Gross },
				Format: func(p backend.PayrollRun) string { return formatMoney(p.Gross) },
			},
			{
				ID: "net", Title: "Net", Width: 14,
				Value:  func(p backend.PayrollRun) any { return p.Net },
				Format: func(p backend.PayrollRun) string { return formatMoney(p.Net) },
			},
			{ID: "status", Title: "Status", Width: 11, Status: true, Value: func(p backend.PayrollRun) any { return p.Status }},
			{
				ID: "paid", Title: "Paid", Width: 11, Param: "paidAt",
				Value:  func(p backend.PayrollRun) any { return p.PaidAt },
				Format: func(p backend.PayrollRun) string { return formatDate(p.PaidAt) },
			},
		},
		DefaultSort: []table.Sort{{ColumnID: "period", Desc: true}},
		Filter:      statusOptions("status", "draft", "processing", "paid"),
	}
}

func statusOptions(columnID string, values ...string) *statusFilter {
	f := &statusFilter{Column: columnID}
	for _, v := range values {
		f.Options = append(f.Options, filterOption{Label: titleCase(v), Value: v})
	}
	return f
}

// buildScreens binds every screen to a controller in display order.
func buildScreens(cfg config.Config, p prefs.Prefs, deps screenDeps) []screen {
	return []screen{
		bind(departmentsDef(), cfg, p, deps),
		bind(rolesDef(), cfg, p, deps),
		bind(applicationsDef(), cfg, p, deps),
		bind(loansDef(), cfg, p, deps),
		bind(activeLoansDef(), cfg, p, deps),
		bind(payrollDef(), cfg, p, deps),
	}
}

func bind[R any](def screenDef[R], cfg config.Config, p prefs.Prefs, deps screenDeps) *tableScreen[R] {
	name := string(def.Resource)
	deps.pageSize = p.PageSize(name, cfg.PageSize)
	deps.maxPageSize = cfg.MaxPageSize
	return newTableScreen(def, cfg.ServerPagination(name, def.ServerPaged), deps)
}

// pageSizeSteps are the sizes "+" and "-" walk through.
var pageSizeSteps = []int{5, 10, 25, 50, 100}

// stepPageSize returns the next size up (dir > 0) or down from current,
// never beyond maxSize.
func stepPageSize(current, dir, maxSize int) int {
	if dir > 0 {
		for _, s := range pageSizeSteps {
			if s > current {
				if maxSize > 0 && s > maxSize {
					return current
				}
				return s
			}
		}
		return current
	}
	for i := len(pageSizeSteps) - 1; i >= 0; i-- {
		if pageSizeSteps[i] < current {
			return pageSizeSteps[i]
		}
	}
	return current
}

// sortKey maps the digit keys to a 1-based column number.
func sortKey(s string) (int, bool) {
	if len(s) != 1 || !strings.ContainsAny(s, "123456789") {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
