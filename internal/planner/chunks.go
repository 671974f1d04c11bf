package planner

import (
	"errors"
	"fmt"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/favorites"
)

const (
	oversizedGroupTemplateConstant = "creator %s alone has %d items which exceeds the folder capacity of %d; the group cannot be kept whole"
	invalidCapacityMessageConstant = "capacity must be at least 1"
)

// ErrInvalidCapacity is returned when chunking is requested with a capacity below one.
var ErrInvalidCapacity = errors.New(invalidCapacityMessageConstant)

// OversizedGroupError reports a creator group larger than the folder capacity.
type OversizedGroupError struct {
	CreatorIdentifier string
	CreatorName       string
	Count             int
	Capacity          int
}

// Error describes the oversized group.
func (oversizedError OversizedGroupError) Error() string {
	return fmt.Sprintf(oversizedGroupTemplateConstant, oversizedError.CreatorName, oversizedError.Count, oversizedError.Capacity)
}

// Chunk is the set of whole creator groups destined for one new folder.
type Chunk struct {
	Groups []CreatorGroup
	Total  int
}

// DisplayOrderItems returns the chunk items group by group, most recent first.
func (chunk Chunk) DisplayOrderItems() []favorites.Item {
	items := make([]favorites.Item, 0, chunk.Total)
	for _, group := range chunk.Groups {
		items = append(items, group.Items...)
	}
	return items
}

// MoveOrderItems returns the items in reverse display order. The remote lists a
// folder by move time, so moving the last displayed item first reproduces the
// display order in the destination.
func (chunk Chunk) MoveOrderItems() []favorites.Item {
	displayItems := chunk.DisplayOrderItems()
	moveItems := make([]favorites.Item, len(displayItems))
	for itemIndex, item := range displayItems {
		moveItems[len(displayItems)-1-itemIndex] = item
	}
	return moveItems
}

// FirstCreatorName returns the name of the first creator group in the chunk.
func (chunk Chunk) FirstCreatorName() string {
	if len(chunk.Groups) == 0 {
		return ""
	}
	return chunk.Groups[0].CreatorName
}

// LastCreatorName returns the name of the last creator group in the chunk.
func (chunk Chunk) LastCreatorName() string {
	if len(chunk.Groups) == 0 {
		return ""
	}
	return chunk.Groups[len(chunk.Groups)-1].CreatorName
}

// BuildChunks packs groups greedily in order. A chunk is closed when the next group
// would push it over capacity. No chunk is returned when any group exceeds capacity.
func BuildChunks(groups []CreatorGroup, capacity int) ([]Chunk, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	for _, group := range groups {
		if group.Count > capacity {
			return nil, OversizedGroupError{
				CreatorIdentifier: group.CreatorIdentifier,
				CreatorName:       group.CreatorName,
				Count:             group.Count,
				Capacity:          capacity,
			}
		}
	}

	chunks := make([]Chunk, 0)
	current := Chunk{}
	for _, group := range groups {
		if current.Total > 0 && current.Total+group.Count > capacity {
			chunks = append(chunks, current)
			current = Chunk{}
		}
		current.Groups = append(current.Groups, group)
		current.Total += group.Count
	}
	if current.Total > 0 {
		chunks = append(chunks, current)
	}

	return chunks, nil
}
