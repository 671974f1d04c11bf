// Package bilibili implements the favorite folder operations of the platform web
// API: listing owned folders, paging through folder contents, creating folders and
// moving resources between folders.
package bilibili
