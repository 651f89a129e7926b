// Package app is steward's composition root.
//
// Run loads the configuration, opens the log file, builds the backend client
// and the UI model, then starts the poller for every screen that pages in
// memory before handing the terminal to bubbletea:
//
//	config.Load -> logging.Open -> backend.NewClient -> ui.New
//	            -> StartPoller(store, model.PollSources())
//	            -> ui.Run (blocks)
//
// The poller refreshes each source immediately and then on the configured
// interval. A failed round doubles the wait, up to maxBackoff or the interval
// itself when that is longer, and the store keeps the last good rows so the
// screens stay usable while the backend is away.
package app
