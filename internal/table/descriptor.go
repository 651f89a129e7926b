package table

import (
	"net/url"
	"strconv"
	"strings"
)

// Sort orders sent to the server.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// FetchDescriptor is the query a server-mode table asks its feature to run.
type FetchDescriptor struct {
	Page      int // 1-based
	Limit     int
	SortBy    string
	SortOrder string
	Filters   url.Values
	Search    string
}

// FetchRequest pairs a descriptor with the sequence token that must be handed
// back to Complete.
type FetchRequest struct {
	Seq        uint64
	Descriptor FetchDescriptor
}

// Query encodes the descriptor as URL query parameters.
func (d FetchDescriptor) Query() url.Values {
	values := url.Values{}
	for key, vals := range d.Filters {
		for _, v := range vals {
			values.Add(key, v)
		}
	}
	values.Set("page", strconv.Itoa(d.Page))
	values.Set("limit", strconv.Itoa(d.Limit))
	if d.SortBy != "" {
		values.Set("sortBy", d.SortBy)
		order := d.SortOrder
		if order == "" {
			order = SortAsc
		}
		values.Set("sortOrder", order)
	}
	if d.Search != "" {
		values.Set("search", d.Search)
	}
	return values
}

func buildDescriptor[R any](cols *columnSet[R], st State) FetchDescriptor {
	desc := FetchDescriptor{
		Page:  st.Pagination.PageIndex + 1,
		Limit: st.Pagination.PageSize,
	}
	if len(st.Sorting) > 0 {
		head := st.Sorting[0]
		desc.SortBy = head.ColumnID
		if col, ok := cols.get(head.ColumnID); ok {
			desc.SortBy = col.param()
		}
		desc.SortOrder = SortAsc
		if head.Desc {
			desc.SortOrder = SortDesc
		}
	}
	if len(st.ColumnFilters) > 0 {
		desc.Filters = url.Values{}
		for id, value := range st.ColumnFilters {
			param := id
			if col, ok := cols.get(id); ok {
				param = col.param()
			}
			flattenFilter(desc.Filters, param, value)
		}
		if len(desc.Filters) == 0 {
			desc.Filters = nil
		}
	}
	if search := strings.TrimSpace(st.GlobalFilter); search != "" {
		desc.Search = search
	}
	return desc
}

// flattenFilter writes one column filter into query values. Ranges become
// <param>From / <param>To; lists repeat the parameter.
func flattenFilter(values url.Values, param string, value FilterValue) {
	switch v := value.(type) {
	case Range:
		flattenRange(values, param, v)
	case *Range:
		if v != nil {
			flattenRange(values, param, *v)
		}
	case []string:
		for _, item := range v {
			if item = strings.TrimSpace(item); item != "" {
				values.Add(param, item)
			}
		}
	default:
		if text := strings.TrimSpace(stringOf(v)); text != "" {
			values.Set(param, text)
		}
	}
}

func flattenRange(values url.Values, param string, r Range) {
	if !isAbsent(r.Min) {
		values.Set(param+"From", stringOf(r.Min))
	}
	if !isAbsent(r.Max) {
		values.Set(param+"To", stringOf(r.Max))
	}
}
