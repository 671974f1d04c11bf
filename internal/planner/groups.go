package planner

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/favorites"
)

const creatorNameCollationLocaleConstant = "zh-Hans-CN"

// CreatorGroup holds every item saved from one creator, most recently saved first.
type CreatorGroup struct {
	CreatorIdentifier string
	CreatorName       string
	Items             []favorites.Item
	Count             int
}

// BuildCreatorGroups partitions items by creator. Groups are ordered by descending
// item count, then by creator name under zh-Hans-CN collation, then by creator identifier.
func BuildCreatorGroups(items []favorites.Item) []CreatorGroup {
	groupIndexByCreator := make(map[string]int)
	groups := make([]CreatorGroup, 0)

	for _, item := range items {
		normalizedItem := item.Normalize()
		groupIndex, exists := groupIndexByCreator[normalizedItem.CreatorIdentifier]
		if !exists {
			groupIndex = len(groups)
			groupIndexByCreator[normalizedItem.CreatorIdentifier] = groupIndex
			groups = append(groups, CreatorGroup{CreatorIdentifier: normalizedItem.CreatorIdentifier})
		}
		groups[groupIndex].Items = append(groups[groupIndex].Items, normalizedItem)
	}

	for groupIndex := range groups {
		slices.SortStableFunc(groups[groupIndex].Items, compareItemsBySavedTimestamp)
		groups[groupIndex].Count = len(groups[groupIndex].Items)
		groups[groupIndex].CreatorName = groups[groupIndex].Items[0].CreatorName
	}

	collator := collate.New(language.Make(creatorNameCollationLocaleConstant))
	slices.SortStableFunc(groups, func(left CreatorGroup, right CreatorGroup) int {
		if countOrder := cmp.Compare(right.Count, left.Count); countOrder != 0 {
			return countOrder
		}
		if nameOrder := collator.CompareString(left.CreatorName, right.CreatorName); nameOrder != 0 {
			return nameOrder
		}
		return cmp.Compare(left.CreatorIdentifier, right.CreatorIdentifier)
	})

	return groups
}

func compareItemsBySavedTimestamp(left favorites.Item, right favorites.Item) int {
	if timestampOrder := cmp.Compare(right.SavedTimestamp, left.SavedTimestamp); timestampOrder != 0 {
		return timestampOrder
	}
	if identifierOrder := cmp.Compare(left.Identifier, right.Identifier); identifierOrder != 0 {
		return identifierOrder
	}
	return cmp.Compare(left.SourceCollectionID, right.SourceCollectionID)
}
