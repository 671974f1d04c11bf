package migration

import (
	"github.com/agonielv/agonielv-bilibili-Sort/internal/collector"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/favorites"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/planner"
)

const missingCreatorPlaceholderConstant = "-"

// Plan is the immutable outcome of the planning phase.
type Plan struct {
	Sources          []favorites.SourceCollection
	SourceResults    []collector.Result
	Items            []favorites.Item
	Groups           []planner.CreatorGroup
	Chunks           []planner.Chunk
	DestinationNames []string
	Capacity         int
	BaseName         string
}

// ChunkSummary describes one planned destination folder.
type ChunkSummary struct {
	Index           int
	DestinationName string
	ItemCount       int
	CreatorCount    int
	FirstCreator    string
	LastCreator     string
}

// PlanSummary is the overview shown before confirmation.
type PlanSummary struct {
	ItemCount    int
	ChunkCount   int
	Capacity     int
	SourceCount  int
	CreatorCount int
	Chunks       []ChunkSummary
}

// Summary condenses the plan for display.
func (plan Plan) Summary() PlanSummary {
	summary := PlanSummary{
		ItemCount:    len(plan.Items),
		ChunkCount:   len(plan.Chunks),
		Capacity:     plan.Capacity,
		SourceCount:  len(plan.Sources),
		CreatorCount: len(plan.Groups),
		Chunks:       make([]ChunkSummary, 0, len(plan.Chunks)),
	}
	for chunkIndex, chunk := range plan.Chunks {
		chunkSummary := ChunkSummary{
			Index:        chunkIndex + 1,
			ItemCount:    chunk.Total,
			CreatorCount: len(chunk.Groups),
			FirstCreator: placeholderIfEmpty(chunk.FirstCreatorName()),
			LastCreator:  placeholderIfEmpty(chunk.LastCreatorName()),
		}
		if chunkIndex < len(plan.DestinationNames) {
			chunkSummary.DestinationName = plan.DestinationNames[chunkIndex]
		}
		summary.Chunks = append(summary.Chunks, chunkSummary)
	}
	return summary
}

func placeholderIfEmpty(value string) string {
	if len(value) == 0 {
		return missingCreatorPlaceholderConstant
	}
	return value
}
