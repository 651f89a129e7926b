// Package ui is steward's bubbletea front end: one list screen per admin
// resource, each driven by a table.Controller.
//
// # Screens
//
// Departments, roles and active loans page in memory. The poller keeps their
// rows in state.Store and the model feeds each new version to the screen's
// controller with SetData. Applications, loans and payroll page on the
// server. Their controllers emit fetch requests which the model turns into
// commands; the response comes back as a fetchResultMsg and is handed to
// Complete, which drops it if a newer request has been issued since.
//
// # Event flow
//
//  1. A key press calls a controller transition on the active screen.
//  2. The controller queues a fetch request through its OnFetch callback.
//  3. Update drains every screen's queue after each message and returns the
//     fetch commands.
//  4. Search debouncing fires on a timer goroutine. Its callbacks post a
//     wake message to the program so Update runs and drains the queue.
//
// # Key bindings
//
//   - tab / shift+tab: next / previous screen
//   - j/k, g/G: move the selection
//   - n/p or arrows: next / previous page
//   - + / -: page size, remembered per screen in prefs
//   - 1-9: toggle sort on that column
//   - /: search, applied while typing; enter keeps it, esc clears it
//   - f: cycle the screen's status filter
//   - r: reset the table, R: refresh
//   - L: activity log, T: theme, ?: help
//   - e or ctrl+c: quit
package ui
