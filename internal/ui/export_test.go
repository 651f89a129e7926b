package ui

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/steward/internal/backend"
	"github.com/five82/steward/internal/table"
)

func exportAPI() *fakeAPI {
	api := newFakeAPI(applications(12))
	api.depts = []backend.Department{
		{ID: 1, Name: "Payroll", Code: "PAY", Head: "Grace", Employees: 4, Active: true},
		{ID: 2, Name: "Engineering", Code: "ENG", Head: "Linus", Employees: 40, Active: true},
		{ID: 3, Name: "Archive", Code: "ARC", Employees: 0, Active: false},
	}
	return api
}

func TestParseResource(t *testing.T) {
	tests := []struct {
		in   string
		want backend.Resource
	}{
		{"departments", backend.ResourceDepartments},
		{" Payroll ", backend.ResourcePayrollRuns},
		{"loans/active", backend.ResourceActiveLoans},
		{"active-loans", backend.ResourceActiveLoans},
	}
	for _, tt := range tests {
		got, err := ParseResource(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseResource("employees")
	assert.ErrorContains(t, err, "unknown resource")
}

func TestExport_AllRowsSortedAndFiltered(t *testing.T) {
	headers, rows, err := Export(context.Background(), exportAPI(), backend.ResourceDepartments, ExportOptions{
		Sort:    []table.Sort{{ColumnID: "employees", Desc: true}},
		Filters: map[string]string{"active": "true"},
		All:     true,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ID", "Name", "Code", "Head", "Staff", "Status"}, headers)
	assert.Equal(t, [][]string{
		{"2", "Engineering", "ENG", "Linus", "40", "active"},
		{"1", "Payroll", "PAY", "Grace", "4", "active"},
	}, rows)
}

func TestExport_SearchAndSinglePage(t *testing.T) {
	_, rows, err := Export(context.Background(), exportAPI(), backend.ResourceApplications, ExportOptions{
		Search:   "applicant-1",
		Sort:     []table.Sort{{ColumnID: "id"}},
		Page:     2,
		PageSize: 2,
	})
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "12", rows[0][0])
	assert.Equal(t, "applicant-12", rows[0][1])
}

func TestExport_UnknownColumns(t *testing.T) {
	api := exportAPI()

	_, _, err := Export(context.Background(), api, backend.ResourceRoles, ExportOptions{
		Sort: []table.Sort{{ColumnID: "salary"}},
	})
	assert.ErrorContains(t, err, `unknown sort column "salary"`)

	_, _, err = Export(context.Background(), api, backend.ResourceRoles, ExportOptions{
		Filters: map[string]string{"status": "x"},
	})
	assert.ErrorContains(t, err, `unknown filter column "status"`)
	assert.Zero(t, api.queryCount(backend.ResourceRoles))
}

func TestExport_FetchError(t *testing.T) {
	api := exportAPI()
	api.fail = &backend.StatusError{Status: 503, Path: "/api/departments"}

	_, _, err := Export(context.Background(), api, backend.ResourceDepartments, ExportOptions{All: true})
	var statusErr *backend.StatusError
	assert.ErrorAs(t, err, &statusErr)
}
