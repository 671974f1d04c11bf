// Package collector reads every saved item out of favorite folders.
//
// Folder listings are paginated. Pages exposes them as a lazy, restartable
// sequence so the termination rules can be exercised against canned page
// sources, and Collector applies those rules while de-duplicating items whose
// identifiers repeat across overlapping pages. CollectAll fans the reads out
// across folders concurrently and merges the results in request order.
package collector
