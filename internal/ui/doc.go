// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The [Model] shows one [pages.Page] at a time as a list of bordered poster cards. The cursor moves
// with j/k, enter or space toggles the selection on the card under the cursor, and tab moves to the
// next page variant (closing the previous page). The selected card shows its playback hint below the list.
//
// Redraws are driven by [pages.Page.Updates]: a command blocks on the channel and every update
// re-snapshots the page, so missed notifications never leave the screen stale.
//
// Each card reports its poster status as pending, "WxH type" once resolved, or unavailable.
package ui
