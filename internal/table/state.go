package table

import (
	"reflect"
	"strings"
)

// Pagination is the zero-based page window of a table.
type Pagination struct {
	PageIndex int
	PageSize  int
}

// Sort is one entry of the ordered sort sequence. The first entry is primary.
type Sort struct {
	ColumnID string
	Desc     bool
}

// FilterValue is an opaque per-column filter: a string, enum tag, Range,
// []string, bool, number or fmt.Stringer. Columns interpret it through their
// Filter comparator.
type FilterValue = any

// Range bounds a column inclusively. A nil bound is open.
type Range struct {
	Min any
	Max any
}

// State is the canonical table state. Callers receive copies; the owning
// Controller mutates it only through its transition methods.
type State struct {
	Pagination    Pagination
	Sorting       []Sort
	ColumnFilters map[string]FilterValue
	GlobalFilter  string
}

// Filter returns the active filter for a column.
func (s State) Filter(columnID string) (FilterValue, bool) {
	v, ok := s.ColumnFilters[columnID]
	return v, ok
}

// SortFor reports the direction of a column in the sort sequence.
func (s State) SortFor(columnID string) (desc bool, position int, ok bool) {
	for i, entry := range s.Sorting {
		if entry.ColumnID == columnID {
			return entry.Desc, i, true
		}
	}
	return false, -1, false
}

func (s State) clone() State {
	out := State{
		Pagination:   s.Pagination,
		GlobalFilter: s.GlobalFilter,
	}
	if len(s.Sorting) > 0 {
		out.Sorting = append([]Sort(nil), s.Sorting...)
	}
	if len(s.ColumnFilters) > 0 {
		out.ColumnFilters = make(map[string]FilterValue, len(s.ColumnFilters))
		for k, v := range s.ColumnFilters {
			out.ColumnFilters[k] = v
		}
	}
	return out
}

// change records which dimensions a transition touched.
type change uint8

const (
	changePageIndex change = 1 << iota
	changePageSize
	changeSorting
	changeColumnFilter
	changeGlobalFilter
)

func (c change) has(flag change) bool { return c&flag != 0 }

func (c change) paginationOnly() bool {
	return c != 0 && c&^(changePageIndex|changePageSize) == 0
}

// store owns the TableState and its transitions. It never performs side
// effects; the Controller decides what a change means.
type store struct {
	state       State
	pageSize    int
	maxPageSize int
	defaultSort []Sort
}

func newStore(pageSize, maxPageSize int, defaultSort []Sort) store {
	s := store{maxPageSize: maxPageSize, defaultSort: dedupeSorting(defaultSort)}
	s.pageSize = s.clampPageSize(pageSize)
	s.state = s.defaults()
	return s
}

func (s *store) defaults() State {
	st := State{Pagination: Pagination{PageIndex: 0, PageSize: s.pageSize}}
	if len(s.defaultSort) > 0 {
		st.Sorting = append([]Sort(nil), s.defaultSort...)
	}
	return st
}

func (s *store) clampPageSize(size int) int {
	if size <= 0 {
		size = 1
	}
	if s.maxPageSize > 0 && size > s.maxPageSize {
		size = s.maxPageSize
	}
	return size
}

// setPagination replaces the page window, clamping invalid values.
func (s *store) setPagination(next Pagination) change {
	if next.PageIndex < 0 {
		next.PageIndex = 0
	}
	next.PageSize = s.clampPageSize(next.PageSize)

	var ch change
	if next.PageIndex != s.state.Pagination.PageIndex {
		ch |= changePageIndex
	}
	if next.PageSize != s.state.Pagination.PageSize {
		ch |= changePageSize
	}
	s.state.Pagination = next
	return ch
}

func (s *store) setSorting(next []Sort) change {
	next = dedupeSorting(next)
	if sortingEqual(next, s.state.Sorting) {
		return 0
	}
	s.state.Sorting = next
	return changeSorting | s.resetPageIndex()
}

// toggleSort applies the header-click policy: the head column flips
// direction, any other column becomes the single ascending sort.
func (s *store) toggleSort(columnID string) change {
	if len(s.state.Sorting) > 0 && s.state.Sorting[0].ColumnID == columnID {
		next := []Sort{{ColumnID: columnID, Desc: !s.state.Sorting[0].Desc}}
		return s.setSorting(next)
	}
	return s.setSorting([]Sort{{ColumnID: columnID}})
}

// setColumnFilter canonicalizes an empty value to an absent key.
func (s *store) setColumnFilter(columnID string, value FilterValue) change {
	current, exists := s.state.ColumnFilters[columnID]
	if isEmptyFilter(value) {
		if !exists {
			return 0
		}
		delete(s.state.ColumnFilters, columnID)
		if len(s.state.ColumnFilters) == 0 {
			s.state.ColumnFilters = nil
		}
		return changeColumnFilter | s.resetPageIndex()
	}
	if exists && reflect.DeepEqual(current, value) {
		return 0
	}
	if s.state.ColumnFilters == nil {
		s.state.ColumnFilters = make(map[string]FilterValue)
	}
	s.state.ColumnFilters[columnID] = value
	return changeColumnFilter | s.resetPageIndex()
}

func (s *store) setGlobalFilter(value string) change {
	if value == s.state.GlobalFilter {
		return 0
	}
	s.state.GlobalFilter = value
	return changeGlobalFilter | s.resetPageIndex()
}

func (s *store) reset() change {
	next := s.defaults()
	var ch change
	if next.Pagination.PageIndex != s.state.Pagination.PageIndex {
		ch |= changePageIndex
	}
	if next.Pagination.PageSize != s.state.Pagination.PageSize {
		ch |= changePageSize
	}
	if !sortingEqual(next.Sorting, s.state.Sorting) {
		ch |= changeSorting
	}
	if len(s.state.ColumnFilters) > 0 {
		ch |= changeColumnFilter
	}
	if s.state.GlobalFilter != "" {
		ch |= changeGlobalFilter
	}
	s.state = next
	return ch
}

func (s *store) resetPageIndex() change {
	if s.state.Pagination.PageIndex == 0 {
		return 0
	}
	s.state.Pagination.PageIndex = 0
	return changePageIndex
}

func dedupeSorting(in []Sort) []Sort {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]Sort, 0, len(in))
	for _, entry := range in {
		id := strings.TrimSpace(entry.ColumnID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, Sort{ColumnID: id, Desc: entry.Desc})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sortingEqual(a, b []Sort) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isEmptyFilter(v FilterValue) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []string:
		for _, item := range val {
			if strings.TrimSpace(item) != "" {
				return false
			}
		}
		return true
	case Range:
		return isAbsent(val.Min) && isAbsent(val.Max)
	case *Range:
		return val == nil || (isAbsent(val.Min) && isAbsent(val.Max))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map:
		return rv.IsNil()
	case reflect.Slice:
		return rv.IsNil() || rv.Len() == 0
	}
	return false
}
