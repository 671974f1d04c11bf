package migration

import (
	"fmt"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/favorites"
)

const moveLabelTemplateConstant = "chunk %d/%d item %d/%d | [%s] %s | creator=%s"

// CreatedFolder records a destination folder created during execution.
type CreatedFolder struct {
	Name         string
	Identifier   int64
	PlannedTotal int
}

// MoveFailure records an item whose move was abandoned after every retry.
type MoveFailure struct {
	Item            favorites.Item
	Reason          string
	DestinationName string
}

// ExecutionResult accumulates the observable outcome of a run.
type ExecutionResult struct {
	TotalCount     int
	SuccessCount   int
	AttemptedCount int
	Failures       []MoveFailure
	CreatedFolders []CreatedFolder
	Completed      bool
}

// FailureCount returns the number of abandoned moves.
func (result ExecutionResult) FailureCount() int {
	return len(result.Failures)
}

// MoveProgress locates one move within the run.
type MoveProgress struct {
	ChunkIndex      int
	ChunkCount      int
	Position        int
	ChunkSize       int
	Item            favorites.Item
	DestinationName string
}

// Label renders the progress as "chunk i/n item j/m | [source] title | creator=name".
func (progress MoveProgress) Label() string {
	return fmt.Sprintf(
		moveLabelTemplateConstant,
		progress.ChunkIndex+1,
		progress.ChunkCount,
		progress.Position+1,
		progress.ChunkSize,
		progress.Item.SourceCollectionTitle,
		progress.Item.DisplayTitle(),
		progress.Item.CreatorName,
	)
}
