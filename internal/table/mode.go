package table

// Mode selects where paging, sorting and filtering happen.
type Mode int

const (
	// ModeClient slices an in-memory dataset locally.
	ModeClient Mode = iota
	// ModeServer asks the owning feature to refetch on every change.
	ModeServer
)

// ResolveMode maps the caller-declared serverPagination flag to a Mode. The
// mode is never inferred from data: only the caller knows whether the full
// dataset was fetched.
func ResolveMode(serverPagination bool) Mode {
	if serverPagination {
		return ModeServer
	}
	return ModeClient
}

func (m Mode) String() string {
	switch m {
	case ModeServer:
		return "server"
	default:
		return "client"
	}
}
