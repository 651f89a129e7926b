package table

import (
	"slices"
	"strings"
)

// Metadata describes the full result set behind the visible page.
type Metadata struct {
	TotalItems  int
	TotalPages  int
	CurrentPage int // 1-based
}

// TotalPages returns max(1, ceil(totalItems/pageSize)).
func TotalPages(totalItems, pageSize int) int {
	if pageSize <= 0 || totalItems <= 0 {
		return 1
	}
	return (totalItems + pageSize - 1) / pageSize
}

// result is the output of one client-mode pipeline run.
type result[R any] struct {
	visible   []R
	filtered  []R
	pageIndex int
	meta      Metadata
}

// runPipeline filters, sorts and slices rows for st. It never mutates rows
// and clamps the page index into range when the result set shrank.
func runPipeline[R any](cols *columnSet[R], st State, rows []R) result[R] {
	filtered := filterRows(cols, st, rows)
	sortRows(cols, st.Sorting, filtered)

	size := st.Pagination.PageSize
	if size <= 0 {
		size = 1
	}
	total := len(filtered)
	pages := TotalPages(total, size)
	index := st.Pagination.PageIndex
	if index > pages-1 {
		index = pages - 1
	}
	if index < 0 {
		index = 0
	}

	start := index * size
	end := min(start+size, total)
	var visible []R
	if start < end {
		visible = filtered[start:end:end]
	}
	return result[R]{
		visible:   visible,
		filtered:  filtered,
		pageIndex: index,
		meta:      Metadata{TotalItems: total, TotalPages: pages, CurrentPage: index + 1},
	}
}

func filterRows[R any](cols *columnSet[R], st State, rows []R) []R {
	needle := strings.ToLower(strings.TrimSpace(st.GlobalFilter))

	type activeFilter struct {
		col   Column[R]
		value FilterValue
	}
	var filters []activeFilter
	for id, value := range st.ColumnFilters {
		col, ok := cols.get(id)
		if !ok {
			continue
		}
		filters = append(filters, activeFilter{col: col, value: value})
	}

	out := make([]R, 0, len(rows))
	for _, row := range rows {
		if needle != "" && !cols.search(row, needle) {
			continue
		}
		keep := true
		for _, f := range filters {
			if !f.col.matches(row, f.value) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

type sortKey struct {
	value any
	kind  valueKind
}

// sortRows is a stable multi-key sort. Absent values go last whatever the
// direction.
func sortRows[R any](cols *columnSet[R], sorting []Sort, rows []R) {
	if len(sorting) == 0 || len(rows) < 2 {
		return
	}
	var keys []Column[R]
	var desc []bool
	for _, s := range sorting {
		col, ok := cols.get(s.ColumnID)
		if !ok {
			continue
		}
		keys = append(keys, col)
		desc = append(desc, s.Desc)
	}
	if len(keys) == 0 {
		return
	}

	type keyed struct {
		row  R
		keys []sortKey
	}
	items := make([]keyed, len(rows))
	for i, row := range rows {
		k := make([]sortKey, len(keys))
		for j, col := range keys {
			v, kind := normalize(col.value(row))
			k[j] = sortKey{value: v, kind: kind}
		}
		items[i] = keyed{row: row, keys: k}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		for j := range keys {
			ka, kb := a.keys[j], b.keys[j]
			aAbsent, bAbsent := ka.kind == kindAbsent, kb.kind == kindAbsent
			switch {
			case aAbsent && bAbsent:
				continue
			case aAbsent:
				return 1
			case bAbsent:
				return -1
			}
			c := compareValues(ka.value, ka.kind, kb.value, kb.kind)
			if c == 0 {
				continue
			}
			if desc[j] {
				return -c
			}
			return c
		}
		return 0
	})

	for i := range items {
		rows[i] = items[i].row
	}
}

// columnSet indexes column declarations by ID.
type columnSet[R any] struct {
	cols  []Column[R]
	index map[string]int
}

func newColumnSet[R any](cols []Column[R]) *columnSet[R] {
	set := &columnSet[R]{index: make(map[string]int, len(cols))}
	for _, col := range cols {
		id := strings.TrimSpace(col.ID)
		if id == "" {
			continue
		}
		if _, dup := set.index[id]; dup {
			continue
		}
		col.ID = id
		set.index[id] = len(set.cols)
		set.cols = append(set.cols, col)
	}
	return set
}

func (s *columnSet[R]) get(id string) (Column[R], bool) {
	i, ok := s.index[id]
	if !ok {
		return Column[R]{}, false
	}
	return s.cols[i], true
}

func (s *columnSet[R]) has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *columnSet[R]) search(row R, needle string) bool {
	for _, col := range s.cols {
		if !col.Searchable {
			continue
		}
		if strings.Contains(strings.ToLower(stringOf(col.value(row))), needle) {
			return true
		}
	}
	return false
}
