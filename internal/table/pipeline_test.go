package table

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type employee struct {
	ID     int
	Name   string
	Dept   string
	Salary decimal.Decimal
	Hired  time.Time
	Grade  *int
}

func intPtr(v int) *int { return &v }

func employeeColumns() []Column[employee] {
	return []Column[employee]{
		{ID: "id", Value: func(e employee) any { return e.ID }},
		{ID: "name", Searchable: true, Value: func(e employee) any { return e.Name }},
		{ID: "dept", Searchable: true, Param: "department", Value: func(e employee) any { return e.Dept }},
		{ID: "salary", Value: func(e employee) any { return e.Salary }},
		{ID: "hired", Value: func(e employee) any { return e.Hired }},
		{ID: "grade", Value: func(e employee) any { return e.Grade }},
	}
}

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func employees() []employee {
	return []employee{
		{ID: 1, Name: "Ann", Dept: "Engineering", Salary: decimal.RequireFromString("5200.50"), Hired: day(3), Grade: intPtr(3)},
		{ID: 2, Name: "Bob", Dept: "Sales", Salary: decimal.RequireFromString("4100"), Hired: day(1)},
		{ID: 3, Name: "Cid", Dept: "Engineering", Salary: decimal.RequireFromString("6100.10"), Grade: intPtr(5)},
		{ID: 4, Name: "Dee", Dept: "Finance", Salary: decimal.RequireFromString("4100"), Hired: day(2), Grade: intPtr(1)},
		{ID: 5, Name: "Eve", Dept: "engineering ops", Salary: decimal.RequireFromString("3900"), Hired: day(5)},
	}
}

func ids(rows []employee) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 3, TotalPages(25, 10))
	assert.Equal(t, 1, TotalPages(25, 0))
}

func TestRunPipeline_GlobalSearchOnlySearchableColumns(t *testing.T) {
	cols := newColumnSet(employeeColumns())
	st := State{Pagination: Pagination{PageSize: 10}, GlobalFilter: "  ENGINEERING "}

	res := runPipeline(cols, st, employees())

	assert.Equal(t, []int{1, 3, 5}, ids(res.visible))

	// ID is not searchable.
	st.GlobalFilter = "4"
	res = runPipeline(cols, st, employees())
	assert.Empty(t, res.visible)
	assert.Equal(t, Metadata{TotalItems: 0, TotalPages: 1, CurrentPage: 1}, res.meta)
}

func TestRunPipeline_ColumnFiltersAreANDed(t *testing.T) {
	cols := newColumnSet(employeeColumns())
	st := State{
		Pagination: Pagination{PageSize: 10},
		ColumnFilters: map[string]FilterValue{
			"dept":   []string{"engineering", "finance"},
			"salary": Range{Min: 4100, Max: decimal.RequireFromString("6000")},
		},
	}

	res := runPipeline(cols, st, employees())

	assert.Equal(t, []int{1, 4}, ids(res.visible))
}

func TestRunPipeline_AbsentCellsNeverMatchFilters(t *testing.T) {
	cols := newColumnSet(employeeColumns())
	st := State{
		Pagination:    Pagination{PageSize: 10},
		ColumnFilters: map[string]FilterValue{"grade": Range{Min: 0}},
	}

	res := runPipeline(cols, st, employees())

	assert.Equal(t, []int{1, 3, 4}, ids(res.visible))
}

func TestRunPipeline_CustomFilter(t *testing.T) {
	defs := employeeColumns()
	defs[2].Filter = func(e employee, v FilterValue) bool {
		prefix, _ := v.(string)
		return len(e.Dept) >= len(prefix) && e.Dept[:len(prefix)] == prefix
	}
	cols := newColumnSet(defs)
	st := State{
		Pagination:    Pagination{PageSize: 10},
		ColumnFilters: map[string]FilterValue{"dept": "Eng"},
	}

	res := runPipeline(cols, st, employees())

	assert.Equal(t, []int{1, 3}, ids(res.visible))
}

func TestRunPipeline_MultiKeyStableSort(t *testing.T) {
	cols := newColumnSet(employeeColumns())
	st := State{
		Pagination: Pagination{PageSize: 10},
		Sorting:    []Sort{{ColumnID: "salary", Desc: true}, {ColumnID: "name"}},
	}

	res := runPipeline(cols, st, employees())

	assert.Equal(t, []int{3, 1, 2, 4, 5}, ids(res.visible))
}

func TestRunPipeline_EqualKeysKeepSourceOrder(t *testing.T) {
	cols := newColumnSet(employeeColumns())
	st := State{Pagination: Pagination{PageSize: 10}, Sorting: []Sort{{ColumnID: "salary"}}}

	res := runPipeline(cols, st, employees())

	assert.Equal(t, []int{5, 2, 4, 1, 3}, ids(res.visible))
}

func TestRunPipeline_AbsentValuesSortLast(t *testing.T) {
	cols := newColumnSet(employeeColumns())
	for _, desc := range []bool{false, true} {
		st := State{Pagination: Pagination{PageSize: 10}, Sorting: []Sort{{ColumnID: "hired", Desc: desc}}}
		res := runPipeline(cols, st, employees())
		got := ids(res.visible)
		require.Len(t, got, 5)
		assert.Equal(t, 3, got[4], "desc=%v", desc)
	}

	st := State{Pagination: Pagination{PageSize: 10}, Sorting: []Sort{{ColumnID: "grade", Desc: true}}}
	res := runPipeline(cols, st, employees())
	assert.Equal(t, []int{3, 1, 4, 2, 5}, ids(res.visible))
}

func TestRunPipeline_SlicesAndClampsPage(t *testing.T) {
	cols := newColumnSet(employeeColumns())
	st := State{Pagination: Pagination{PageIndex: 1, PageSize: 2}}

	res := runPipeline(cols, st, employees())
	assert.Equal(t, []int{3, 4}, ids(res.visible))
	assert.Equal(t, Metadata{TotalItems: 5, TotalPages: 3, CurrentPage: 2}, res.meta)

	st.Pagination.PageIndex = 9
	res = runPipeline(cols, st, employees())
	assert.Equal(t, 2, res.pageIndex)
	assert.Equal(t, []int{5}, ids(res.visible))
	assert.Equal(t, 3, res.meta.CurrentPage)
}

func TestRunPipeline_DoesNotMutateSource(t *testing.T) {
	cols := newColumnSet(employeeColumns())
	rows := employees()
	st := State{Pagination: Pagination{PageSize: 10}, Sorting: []Sort{{ColumnID: "name", Desc: true}}}

	res := runPipeline(cols, st, rows)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(rows))
	assert.Equal(t, []int{5, 4, 3, 2, 1}, ids(res.visible))
}

func TestRunPipeline_EmptyData(t *testing.T) {
	cols := newColumnSet(employeeColumns())
	res := runPipeline(cols, State{Pagination: Pagination{PageIndex: 3, PageSize: 10}}, nil)

	assert.Empty(t, res.visible)
	assert.Equal(t, 0, res.pageIndex)
	assert.Equal(t, Metadata{TotalItems: 0, TotalPages: 1, CurrentPage: 1}, res.meta)
}

func TestNewColumnSet_SkipsBlankAndDuplicateIDs(t *testing.T) {
	cols := newColumnSet([]Column[employee]{{ID: " name "}, {ID: ""}, {ID: "name"}, {ID: "dept"}})

	assert.True(t, cols.has("name"))
	assert.True(t, cols.has("dept"))
	assert.Len(t, cols.cols, 2)
}
