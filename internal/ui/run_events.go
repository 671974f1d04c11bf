package ui

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/favorites"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/migration"
)

const (
	attemptFailedMessageTemplateConstant       = "%s failed, attempt %d/%d: %s"
	collectionReadMessageTemplateConstant      = "folder %s read: %d items"
	collectionReadExpectedTemplateConstant     = "folder %s read: %d/%d items"
	collectionShortfallMessageTemplateConstant = "folder %s declares %d items but only %d were read"
	foldersMatchedMessageTemplateConstant      = "matched folders: %s"
	folderCreatedMessageTemplateConstant       = "created folder %s (%d), planned %d items"
	itemMovedMessageTemplateConstant           = "moved %s"
	itemMoveFailedMessageTemplateConstant      = "failed to move %s: %s"
	runCompletedMessageTemplateConstant        = "done: succeeded %d/%d, failed %d. new folders: %s"
	createdFolderSummaryTemplateConstant       = "%s(id=%d, %d items)"
	folderListSeparatorConstant                = ", "
	createdFolderSeparatorConstant             = "; "
	noCreatedFoldersPlaceholderConstant        = "none"
	unknownFailureMessageConstant              = "unknown error"
	labelFieldNameConstant                     = "label"
	attemptFieldNameConstant                   = "attempt"
	folderFieldNameConstant                    = "folder"
	chunkFieldNameConstant                     = "chunk"
	positionFieldNameConstant                  = "position"
	sourceFieldNameConstant                    = "source"
	creatorFieldNameConstant                   = "creator"
	itemFieldNameConstant                      = "item"
)

// RunEventFormatter builds human-readable messages for run events.
type RunEventFormatter struct{}

// BuildAttemptFailedMessage formats a failed retry attempt.
func (formatter RunEventFormatter) BuildAttemptFailedMessage(label string, attempt int, maxAttempts int, failure error) string {
	return fmt.Sprintf(attemptFailedMessageTemplateConstant, label, attempt, maxAttempts, failureMessage(failure))
}

// BuildCollectionReadMessage formats the completion of a folder read.
func (formatter RunEventFormatter) BuildCollectionReadMessage(collection favorites.SourceCollection, collectedCount int, expectedCount int, expectedKnown bool) string {
	if expectedKnown {
		return fmt.Sprintf(collectionReadExpectedTemplateConstant, collection.Title, collectedCount, expectedCount)
	}
	return fmt.Sprintf(collectionReadMessageTemplateConstant, collection.Title, collectedCount)
}

// BuildCollectionShortfallMessage formats a declared-total mismatch warning.
func (formatter RunEventFormatter) BuildCollectionShortfallMessage(collection favorites.SourceCollection, collectedCount int, expectedCount int) string {
	return fmt.Sprintf(collectionShortfallMessageTemplateConstant, collection.Label(), expectedCount, collectedCount)
}

// BuildFoldersMatchedMessage lists the folders selected as sources.
func (formatter RunEventFormatter) BuildFoldersMatchedMessage(folders []favorites.SourceCollection) string {
	labels := make([]string, 0, len(folders))
	for _, folder := range folders {
		labels = append(labels, folder.Label())
	}
	return fmt.Sprintf(foldersMatchedMessageTemplateConstant, strings.Join(labels, folderListSeparatorConstant))
}

// BuildFolderCreatedMessage formats a created destination folder.
func (formatter RunEventFormatter) BuildFolderCreatedMessage(folder migration.CreatedFolder) string {
	return fmt.Sprintf(folderCreatedMessageTemplateConstant, folder.Name, folder.Identifier, folder.PlannedTotal)
}

// BuildItemMovedMessage formats a successful move.
func (formatter RunEventFormatter) BuildItemMovedMessage(progress migration.MoveProgress) string {
	return fmt.Sprintf(itemMovedMessageTemplateConstant, progress.Label())
}

// BuildItemMoveFailedMessage formats an abandoned move.
func (formatter RunEventFormatter) BuildItemMoveFailedMessage(progress migration.MoveProgress, failure error) string {
	return fmt.Sprintf(itemMoveFailedMessageTemplateConstant, progress.Label(), failureMessage(failure))
}

// BuildRunCompletedMessage formats the final report line.
func (formatter RunEventFormatter) BuildRunCompletedMessage(result migration.ExecutionResult) string {
	folderSummaries := make([]string, 0, len(result.CreatedFolders))
	for _, folder := range result.CreatedFolders {
		folderSummaries = append(folderSummaries, fmt.Sprintf(createdFolderSummaryTemplateConstant, folder.Name, folder.Identifier, folder.PlannedTotal))
	}
	folderText := noCreatedFoldersPlaceholderConstant
	if len(folderSummaries) > 0 {
		folderText = strings.Join(folderSummaries, createdFolderSeparatorConstant)
	}
	return fmt.Sprintf(runCompletedMessageTemplateConstant, result.SuccessCount, result.TotalCount, result.FailureCount(), folderText)
}

func failureMessage(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

// ConsoleEventLogger renders run events using a zap logger configured for human-readable output.
type ConsoleEventLogger struct {
	logger    *zap.Logger
	formatter RunEventFormatter
}

// NewConsoleEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleEventLogger(logger *zap.Logger) *ConsoleEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleEventLogger{logger: logger, formatter: RunEventFormatter{}}
}

// AttemptFailed implements retry.AttemptObserver.
func (eventLogger *ConsoleEventLogger) AttemptFailed(label string, attempt int, maxAttempts int, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Warn(
		eventLogger.formatter.BuildAttemptFailedMessage(label, attempt, maxAttempts, failure),
		zap.String(labelFieldNameConstant, label),
		zap.Int(attemptFieldNameConstant, attempt),
	)
}

// CollectionRead implements collector.Observer.
func (eventLogger *ConsoleEventLogger) CollectionRead(collection favorites.SourceCollection, collectedCount int, expectedCount int, expectedKnown bool) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(
		eventLogger.formatter.BuildCollectionReadMessage(collection, collectedCount, expectedCount, expectedKnown),
		zap.Int64(folderFieldNameConstant, collection.Identifier),
	)
}

// CollectionShortfall implements collector.Observer.
func (eventLogger *ConsoleEventLogger) CollectionShortfall(collection favorites.SourceCollection, collectedCount int, expectedCount int) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Warn(
		eventLogger.formatter.BuildCollectionShortfallMessage(collection, collectedCount, expectedCount),
		zap.Int64(folderFieldNameConstant, collection.Identifier),
	)
}

// FoldersMatched implements migration.EventObserver.
func (eventLogger *ConsoleEventLogger) FoldersMatched(folders []favorites.SourceCollection) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildFoldersMatchedMessage(folders))
}

// FolderCreated implements migration.EventObserver.
func (eventLogger *ConsoleEventLogger) FolderCreated(folder migration.CreatedFolder, chunkIndex int, _ int) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(
		eventLogger.formatter.BuildFolderCreatedMessage(folder),
		zap.Int(chunkFieldNameConstant, chunkIndex+1),
		zap.Int64(folderFieldNameConstant, folder.Identifier),
	)
}

// ItemMoved implements migration.EventObserver.
func (eventLogger *ConsoleEventLogger) ItemMoved(progress migration.MoveProgress) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildItemMovedMessage(progress), progressFields(progress)...)
}

// ItemMoveFailed implements migration.EventObserver.
func (eventLogger *ConsoleEventLogger) ItemMoveFailed(progress migration.MoveProgress, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildItemMoveFailedMessage(progress, failure), progressFields(progress)...)
}

// RunCompleted implements migration.EventObserver.
func (eventLogger *ConsoleEventLogger) RunCompleted(result migration.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildRunCompletedMessage(result))
}

func progressFields(progress migration.MoveProgress) []zap.Field {
	return []zap.Field{
		zap.Int(chunkFieldNameConstant, progress.ChunkIndex+1),
		zap.Int(positionFieldNameConstant, progress.Position+1),
		zap.String(sourceFieldNameConstant, progress.Item.SourceCollectionTitle),
		zap.String(creatorFieldNameConstant, progress.Item.CreatorName),
		zap.Int64(itemFieldNameConstant, progress.Item.Identifier),
	}
}
