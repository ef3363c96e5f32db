// Package drive lists and searches files in Google Drive.
//
// The client is read-only and narrow on purpose: it serves the listing
// tools, which need mime-filtered, name-filtered, recency-ordered
// results with a small fixed field set. Queries are assembled from the
// options with proper escaping; trashed files never appear.
package drive
