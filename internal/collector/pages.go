package collector

import (
	"context"
	"fmt"
	"iter"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/favorites"
)

const (
	// DefaultPageSize is the number of items requested per page.
	DefaultPageSize = 20
	// DefaultMaxPages bounds the page index to guard against runaway pagination.
	DefaultMaxPages = 1000

	paginationOverrunTemplateConstant = "folder %s exceeded the pagination ceiling of %d pages"
)

// PageSource fetches a single 1-indexed page of a folder listing.
type PageSource interface {
	FetchPage(executionContext context.Context, collection favorites.SourceCollection, pageIndex int, pageSize int) (favorites.ItemPage, error)
}

// Settings configures page size and the page index ceiling.
type Settings struct {
	PageSize int
	MaxPages int
}

// DefaultSettings returns the standard pagination settings.
func DefaultSettings() Settings {
	return Settings{PageSize: DefaultPageSize, MaxPages: DefaultMaxPages}
}

// Sanitize replaces non-positive values with defaults.
func (settings Settings) Sanitize() Settings {
	sanitized := settings
	if sanitized.PageSize <= 0 {
		sanitized.PageSize = DefaultPageSize
	}
	if sanitized.MaxPages <= 0 {
		sanitized.MaxPages = DefaultMaxPages
	}
	return sanitized
}

// PaginationOverrunError reports that a folder still had pages after the ceiling.
type PaginationOverrunError struct {
	Collection favorites.SourceCollection
	MaxPages   int
}

// Error describes the overrun.
func (overrunError PaginationOverrunError) Error() string {
	return fmt.Sprintf(paginationOverrunTemplateConstant, overrunError.Collection.Label(), overrunError.MaxPages)
}

// Pages yields successive pages of a folder starting at page 1. The sequence ends
// when the consumer stops, when a fetch fails, or after the page ceiling, in which
// case a final PaginationOverrunError is yielded.
func Pages(executionContext context.Context, source PageSource, collection favorites.SourceCollection, settings Settings) iter.Seq2[favorites.ItemPage, error] {
	sanitizedSettings := settings.Sanitize()
	return func(yield func(favorites.ItemPage, error) bool) {
		for pageIndex := 1; pageIndex <= sanitizedSettings.MaxPages; pageIndex++ {
			page, fetchError := source.FetchPage(executionContext, collection, pageIndex, sanitizedSettings.PageSize)
			if fetchError != nil {
				yield(favorites.ItemPage{}, fetchError)
				return
			}
			if !yield(page, nil) {
				return
			}
		}
		yield(favorites.ItemPage{}, PaginationOverrunError{Collection: collection, MaxPages: sanitizedSettings.MaxPages})
	}
}

// hasFurtherPages applies the termination rule after a page has been merged.
func hasFurtherPages(page favorites.ItemPage, collectedCount int) bool {
	if len(page.Items) == 0 {
		return false
	}
	if page.HasMore {
		return true
	}
	return page.DeclaredTotalKnown && collectedCount < page.DeclaredTotal
}
