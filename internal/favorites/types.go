package favorites

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// UnknownCreatorIdentifier is assigned to items whose creator is not reported by the remote.
	UnknownCreatorIdentifier = "0"
	// VideoResourceType identifies video resources in favorite folders.
	VideoResourceType = 2

	itemTitleFallbackTemplateConstant = "id=%d"
	folderLabelTemplateConstant       = "%s(%d)"
)

// SourceCollection identifies an existing favorite folder owned by the user.
type SourceCollection struct {
	Identifier int64
	Title      string
	MediaCount int
}

// Label renders the folder as "title(id)".
func (collection SourceCollection) Label() string {
	return fmt.Sprintf(folderLabelTemplateConstant, collection.Title, collection.Identifier)
}

// Item is a single saved resource together with the folder it was read from.
type Item struct {
	Identifier            int64
	ResourceType          int
	Title                 string
	CreatorIdentifier     string
	CreatorName           string
	SavedTimestamp        int64
	SourceCollectionID    int64
	SourceCollectionTitle string
}

// DisplayTitle returns the item title, falling back to its identifier.
func (item Item) DisplayTitle() string {
	trimmedTitle := strings.TrimSpace(item.Title)
	if len(trimmedTitle) == 0 {
		return fmt.Sprintf(itemTitleFallbackTemplateConstant, item.Identifier)
	}
	return trimmedTitle
}

// Normalize applies the creator and resource type defaults.
func (item Item) Normalize() Item {
	normalized := item
	normalized.CreatorIdentifier = strings.TrimSpace(item.CreatorIdentifier)
	if len(normalized.CreatorIdentifier) == 0 {
		normalized.CreatorIdentifier = UnknownCreatorIdentifier
	}
	normalized.CreatorName = strings.TrimSpace(item.CreatorName)
	if len(normalized.CreatorName) == 0 {
		normalized.CreatorName = normalized.CreatorIdentifier
	}
	if normalized.ResourceType == 0 {
		normalized.ResourceType = VideoResourceType
	}
	return normalized
}

// ResourceReference formats the "id:type" token used by move requests.
func (item Item) ResourceReference() string {
	resourceType := item.ResourceType
	if resourceType == 0 {
		resourceType = VideoResourceType
	}
	return strconv.FormatInt(item.Identifier, 10) + ":" + strconv.Itoa(resourceType)
}

// ItemPage is one page of a folder listing.
type ItemPage struct {
	Items              []Item
	HasMore            bool
	DeclaredTotal      int
	DeclaredTotalKnown bool
}
