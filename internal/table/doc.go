// Package table keeps the interactive state of a data table (page window,
// sort sequence, column filters and free-text search) consistent with the
// rows being shown.
//
// # Modes
//
// A Controller runs in one of two modes, fixed when it is built:
//
//   - ModeClient: the owning screen hands over the complete dataset with
//     SetData. Search, filters, sort and slicing run locally on every change.
//   - ModeServer: every committed change produces a FetchRequest through
//     Callbacks.OnFetch. The screen runs the request and hands the outcome
//     back with Complete, quoting the request's Seq.
//
// # Ordering
//
// Each fetch carries a sequence token. Complete discards any response whose
// token is not the latest, so a slow answer for an old query never overwrites
// a newer one. Loading is true only while the latest request is outstanding.
//
// # Search input
//
// SetGlobalFilter is coalesced until the input has been quiet for the
// debounce window. In client mode rows and OnStateChange follow every
// keystroke and only OnGlobalFilterChange waits. In server mode the whole
// emission waits, including OnFetch, and the in-flight request is superseded
// at the first keystroke so its response cannot restore the old page. Any
// other transition flushes a pending search into its own emission.
//
// # Page reconciliation
//
// A page index past the end of the result is clamped. In client mode this
// happens synchronously. In server mode the server's currentPage wins; if it
// reports a page past totalPages the controller clamps and issues one
// corrective fetch.
package table
