// Package pages implements the page container shared by the web and terminal viewers.
//
// A [Page] is one of three variants ([KindRoot], [KindAll], [KindWatchlist]) that differ only in which
// backend operation supplies movies. Mounting a page issues exactly one fetch; the resulting list is
// rendered as [Card] values whose posters resolve independently. Selection is a single optional index
// ([Selection]), so at most one card is ever selected.
//
// Pages are safe for concurrent use. Viewers read immutable [View] snapshots and may subscribe to
// [Page.Updates] to redraw when a fetch or poster resolution finishes. [Page.Close] cancels in-flight
// work and releases every poster handle; results that arrive afterwards are discarded.
package pages
