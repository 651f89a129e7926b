package table

import "strings"

// Column declares how the controller reads one column of R.
type Column[R any] struct {
	// ID names the column in Sort and ColumnFilters.
	ID string
	// Searchable opts the column into global free-text matching.
	Searchable bool
	// Value extracts the cell used for search, sort and default filtering.
	Value func(R) any
	// Filter overrides the default comparator for this column.
	Filter func(row R, value FilterValue) bool
	// Param is the query parameter name in server mode. Defaults to ID.
	Param string
}

func (c Column[R]) param() string {
	if p := strings.TrimSpace(c.Param); p != "" {
		return p
	}
	return c.ID
}

func (c Column[R]) value(row R) any {
	if c.Value == nil {
		return nil
	}
	return c.Value(row)
}

func (c Column[R]) matches(row R, filter FilterValue) bool {
	if c.Filter != nil {
		return c.Filter(row, filter)
	}
	return defaultMatch(c.value(row), filter)
}

// defaultMatch is the comparator for columns without a Filter: inclusive
// bounds for Range, membership for []string, equality otherwise. Absent cells
// never match an active filter.
func defaultMatch(cell any, filter FilterValue) bool {
	cv, ck := normalize(cell)
	if ck == kindAbsent {
		return false
	}
	switch f := filter.(type) {
	case Range:
		return inRange(cv, ck, f)
	case *Range:
		return inRange(cv, ck, *f)
	case []string:
		text := stringOf(cv)
		for _, option := range f {
			if strings.EqualFold(strings.TrimSpace(option), text) {
				return true
			}
		}
		return false
	}

	fv, fk := normalize(filter)
	if isNumeric(ck) && isNumeric(fk) {
		return compareNumbers(cv, ck, fv, fk) == 0
	}
	if ck == kindBool && fk == kindBool {
		return cv.(bool) == fv.(bool)
	}
	return strings.EqualFold(stringOf(cv), strings.TrimSpace(stringOf(fv)))
}

func inRange(cv any, ck valueKind, r Range) bool {
	if minV, minK := normalize(r.Min); minK != kindAbsent {
		if compareValues(cv, ck, minV, minK) < 0 {
			return false
		}
	}
	if maxV, maxK := normalize(r.Max); maxK != kindAbsent {
		if compareValues(cv, ck, maxV, maxK) > 0 {
			return false
		}
	}
	return true
}
