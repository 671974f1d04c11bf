package collector

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/favorites"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/retry"
)

const (
	pageSourceMissingMessageConstant = "page source not configured"
	readFolderLabelTemplateConstant  = "read folder %s"
)

// ErrPageSourceMissing indicates the collector was constructed without a page source.
var ErrPageSourceMissing = errors.New(pageSourceMissingMessageConstant)

// Observer receives read progress and shortfall warnings.
type Observer interface {
	CollectionRead(collection favorites.SourceCollection, collectedCount int, expectedCount int, expectedKnown bool)
	CollectionShortfall(collection favorites.SourceCollection, collectedCount int, expectedCount int)
}

// Result holds the de-duplicated items of one folder.
type Result struct {
	Collection         favorites.SourceCollection
	Items              []favorites.Item
	ExpectedCount      int
	ExpectedCountKnown bool
}

// Collector materializes folder contents from a PageSource.
type Collector struct {
	source        PageSource
	settings      Settings
	retryExecutor *retry.Executor
	observer      Observer
}

// NewCollector constructs a Collector. The retry executor and observer are optional.
func NewCollector(source PageSource, settings Settings, retryExecutor *retry.Executor, observer Observer) (*Collector, error) {
	if source == nil {
		return nil, ErrPageSourceMissing
	}
	return &Collector{
		source:        source,
		settings:      settings.Sanitize(),
		retryExecutor: retryExecutor,
		observer:      observer,
	}, nil
}

// Collect reads every page of the folder once.
func (collector *Collector) Collect(executionContext context.Context, collection favorites.SourceCollection) (Result, error) {
	result := Result{Collection: collection}
	seenIdentifiers := make(map[int64]struct{})

	for page, pageError := range Pages(executionContext, collector.source, collection, collector.settings) {
		if pageError != nil {
			return Result{}, pageError
		}

		if page.DeclaredTotalKnown {
			result.ExpectedCount = page.DeclaredTotal
			result.ExpectedCountKnown = true
		}

		for _, item := range page.Items {
			if item.Identifier == 0 {
				continue
			}
			if _, seen := seenIdentifiers[item.Identifier]; seen {
				continue
			}
			seenIdentifiers[item.Identifier] = struct{}{}

			normalizedItem := item.Normalize()
			normalizedItem.SourceCollectionID = collection.Identifier
			normalizedItem.SourceCollectionTitle = collection.Title
			result.Items = append(result.Items, normalizedItem)
		}

		if !hasFurtherPages(page, len(result.Items)) {
			break
		}
	}

	if result.ExpectedCountKnown && result.ExpectedCount > len(result.Items) && collector.observer != nil {
		collector.observer.CollectionShortfall(collection, len(result.Items), result.ExpectedCount)
	}

	return result, nil
}

// CollectAll reads every folder concurrently, retrying each whole read, and returns
// the results in the order of the requested folders.
func (collector *Collector) CollectAll(executionContext context.Context, collections []favorites.SourceCollection) ([]Result, error) {
	results := make([]Result, len(collections))
	group, groupContext := errgroup.WithContext(executionContext)

	for collectionIndex, collection := range collections {
		group.Go(func() error {
			label := fmt.Sprintf(readFolderLabelTemplateConstant, collection.Title)
			result, collectError := retry.Run(groupContext, collector.retryExecutor, label, func(attemptContext context.Context) (Result, error) {
				collected, attemptError := collector.Collect(attemptContext, collection)
				var overrunError PaginationOverrunError
				if errors.As(attemptError, &overrunError) {
					return Result{}, retry.Permanent(attemptError)
				}
				return collected, attemptError
			})
			if collectError != nil {
				return collectError
			}

			results[collectionIndex] = result
			if collector.observer != nil {
				collector.observer.CollectionRead(collection, len(result.Items), result.ExpectedCount, result.ExpectedCountKnown)
			}
			return nil
		})
	}

	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}

	return results, nil
}

// MergeItems flattens results in order.
func MergeItems(results []Result) []favorites.Item {
	totalCount := 0
	for _, result := range results {
		totalCount += len(result.Items)
	}
	merged := make([]favorites.Item, 0, totalCount)
	for _, result := range results {
		merged = append(merged, result.Items...)
	}
	return merged
}
