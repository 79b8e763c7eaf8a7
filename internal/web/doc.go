// Package web serves the movie pages as server-rendered HTML with HTMX fragments.
//
// # Routes
//
//	GET  /, /all, /watchlist           → mount a fresh page for the session and render the layout
//	GET  /pages/{slug}/grid            → grid fragment of the session's page
//	GET  /pages/{slug}/view            → full layout for the session's page without re-mounting
//	POST /pages/{slug}/select/{index}  → toggle a card (fragment for HTMX, 303 to view otherwise)
//	GET  /posters/{id}                 → poster bytes behind a registered handle
//	GET  /health                       → liveness
//
// # Sessions
//
// A reelpick_session cookie identifies the browser. Each session owns at most one [pages.Page];
// navigating closes the previous page, which cancels its fetches and releases its poster handles.
// Idle sessions are swept by [Handler.Janitor].
//
// # Polling
//
// While a page is loading or any card image is pending, the grid fragment carries hx-trigger
// "every <interval>" and replaces itself until everything has settled.
package web
