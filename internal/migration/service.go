package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/bilibili"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/collector"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/favorites"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/planner"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/retry"
)

const (
	remoteClientMissingMessageConstant    = "remote client not configured"
	itemCollectorMissingMessageConstant   = "item collector not configured"
	folderNamesMissingMessageConstant     = "at least one source folder name is required"
	ownerIdentifierMissingMessageConstant = "owner identifier is required"
	capacityOutOfRangeTemplateConstant    = "capacity must be an integer between 1 and %d, got %d"
	missingFoldersTemplateConstant        = "folders not found or names do not match: %s"
	noFoldersMatchedMessageConstant       = "no folders matched"
	noMovableItemsMessageConstant         = "the selected folders contain no movable items"
	groupingFailedMessageConstant         = "unable to keep every creator in a single folder"
	planWithoutChunksMessageConstant      = "plan contains no chunks"
	missingFolderNameSeparatorConstant    = ", "
	listFoldersLabelConstant              = "list folders"
	createFolderLabelTemplateConstant     = "create folder %s"
	moveItemLabelTemplateConstant         = "move item %s"
	logFieldOwnerConstant                 = "owner"
	logFieldSourceCountConstant           = "source_count"
	logFieldItemCountConstant             = "item_count"
	logFieldChunkCountConstant            = "chunk_count"
	logFieldCapacityConstant              = "capacity"
	planBuiltMessageConstant              = "plan built"
	executionAbortedMessageConstant       = "execution aborted"
	logFieldSuccessCountConstant          = "success_count"
	logFieldFailureCountConstant          = "failure_count"
)

var (
	errRemoteClientMissing  = errors.New(remoteClientMissingMessageConstant)
	errItemCollectorMissing = errors.New(itemCollectorMissingMessageConstant)
	errPlanWithoutChunks    = errors.New(planWithoutChunksMessageConstant)
)

// RemoteClient is the subset of remote operations used by a run.
type RemoteClient interface {
	ListOwnedFolders(executionContext context.Context, ownerIdentifier string) ([]favorites.SourceCollection, error)
	CreateFolder(executionContext context.Context, options bilibili.FolderCreationOptions) (int64, error)
	MoveResource(executionContext context.Context, request bilibili.MoveRequest) error
}

// ItemCollector reads the contents of several folders.
type ItemCollector interface {
	CollectAll(executionContext context.Context, collections []favorites.SourceCollection) ([]collector.Result, error)
}

// EventObserver receives run progress.
type EventObserver interface {
	FoldersMatched(folders []favorites.SourceCollection)
	FolderCreated(folder CreatedFolder, chunkIndex int, chunkCount int)
	ItemMoved(progress MoveProgress)
	ItemMoveFailed(progress MoveProgress, failure error)
	RunCompleted(result ExecutionResult)
}

// Request describes what the user asked to reorganize.
type Request struct {
	OwnerIdentifier string
	FolderNames     []string
	BaseName        string
	Capacity        int
}

// ServiceDependencies describes required collaborators for a run.
type ServiceDependencies struct {
	Logger        *zap.Logger
	RemoteClient  RemoteClient
	ItemCollector ItemCollector
	RetryExecutor *retry.Executor
	Observer      EventObserver
	Sleeper       retry.Sleeper
	Settings      Settings
}

// Service orchestrates planning and execution.
type Service struct {
	logger        *zap.Logger
	remoteClient  RemoteClient
	itemCollector ItemCollector
	retryExecutor *retry.Executor
	observer      EventObserver
	sleeper       retry.Sleeper
	settings      Settings
	namingPolicy  planner.NamingPolicy
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.RemoteClient == nil {
		return nil, errRemoteClientMissing
	}
	if dependencies.ItemCollector == nil {
		return nil, errItemCollectorMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	retryExecutor := dependencies.RetryExecutor
	if retryExecutor == nil {
		retryExecutor = retry.NewExecutor(retry.DefaultPolicy(), nil, nil)
	}

	sleeper := dependencies.Sleeper
	if sleeper == nil {
		sleeper = retry.SleepWithContext
	}

	settings := dependencies.Settings.Sanitize()

	return &Service{
		logger:        logger,
		remoteClient:  dependencies.RemoteClient,
		itemCollector: dependencies.ItemCollector,
		retryExecutor: retryExecutor,
		observer:      dependencies.Observer,
		sleeper:       sleeper,
		settings:      settings,
		namingPolicy:  planner.NewNamingPolicy(settings.MaxFolderNameLength, settings.DefaultBaseName),
	}, nil
}

// Settings returns the sanitized settings in effect.
func (service *Service) Settings() Settings {
	return service.settings
}

// Plan validates the request, reads every matched folder and groups the items.
// It performs no remote mutation.
func (service *Service) Plan(executionContext context.Context, request Request) (Plan, error) {
	folderNames := NormalizeFolderNames(request.FolderNames)
	if len(folderNames) == 0 {
		return Plan{}, ValidationError{Message: folderNamesMissingMessageConstant}
	}
	if request.Capacity < 1 || request.Capacity > service.settings.MaxFolderSize {
		return Plan{}, ValidationError{Message: fmt.Sprintf(capacityOutOfRangeTemplateConstant, service.settings.MaxFolderSize, request.Capacity)}
	}
	ownerIdentifier := strings.TrimSpace(request.OwnerIdentifier)
	if len(ownerIdentifier) == 0 {
		return Plan{}, ValidationError{Message: ownerIdentifierMissingMessageConstant}
	}

	ownedFolders, listError := retry.Run(executionContext, service.retryExecutor, listFoldersLabelConstant, func(attemptContext context.Context) ([]favorites.SourceCollection, error) {
		return service.remoteClient.ListOwnedFolders(attemptContext, ownerIdentifier)
	})
	if listError != nil {
		return Plan{}, listError
	}

	selectedFolders, missingNames := SelectFolders(ownedFolders, folderNames)
	if len(missingNames) > 0 {
		return Plan{}, ValidationError{Message: fmt.Sprintf(missingFoldersTemplateConstant, strings.Join(missingNames, missingFolderNameSeparatorConstant))}
	}
	if len(selectedFolders) == 0 {
		return Plan{}, ValidationError{Message: noFoldersMatchedMessageConstant}
	}
	if service.observer != nil {
		service.observer.FoldersMatched(selectedFolders)
	}

	sourceResults, collectError := service.itemCollector.CollectAll(executionContext, selectedFolders)
	if collectError != nil {
		return Plan{}, collectError
	}

	items := collector.MergeItems(sourceResults)
	if len(items) == 0 {
		return Plan{}, ValidationError{Message: noMovableItemsMessageConstant}
	}

	groups := planner.BuildCreatorGroups(items)
	chunks, chunkError := planner.BuildChunks(groups, request.Capacity)
	if chunkError != nil {
		return Plan{}, ValidationError{Message: groupingFailedMessageConstant, Cause: chunkError}
	}

	baseName := NormalizeBaseName(request.BaseName, service.settings.MaxBaseNameLength, service.settings.DefaultBaseName)
	destinationNames := make([]string, 0, len(chunks))
	for chunkIndex := range chunks {
		destinationNames = append(destinationNames, service.namingPolicy(baseName, chunkIndex, len(chunks)))
	}

	service.logger.Debug(
		planBuiltMessageConstant,
		zap.String(logFieldOwnerConstant, ownerIdentifier),
		zap.Int(logFieldSourceCountConstant, len(selectedFolders)),
		zap.Int(logFieldItemCountConstant, len(items)),
		zap.Int(logFieldChunkCountConstant, len(chunks)),
		zap.Int(logFieldCapacityConstant, request.Capacity),
	)

	return Plan{
		Sources:          selectedFolders,
		SourceResults:    sourceResults,
		Items:            items,
		Groups:           groups,
		Chunks:           chunks,
		DestinationNames: destinationNames,
		Capacity:         request.Capacity,
		BaseName:         baseName,
	}, nil
}

// Execute creates one folder per chunk and moves every item into it. A folder
// creation failure or cancellation aborts the run and returns the partial result.
// Individual move failures are recorded and the run continues.
func (service *Service) Execute(executionContext context.Context, plan Plan) (ExecutionResult, error) {
	result := ExecutionResult{TotalCount: len(plan.Items)}
	if len(plan.Chunks) == 0 {
		return result, errPlanWithoutChunks
	}

	chunkCount := len(plan.Chunks)
	for chunkIndex, chunk := range plan.Chunks {
		if contextError := executionContext.Err(); contextError != nil {
			return service.abort(result, contextError)
		}

		destinationName := service.destinationName(plan, chunkIndex)
		folderOptions := bilibili.FolderCreationOptions{
			Title:   destinationName,
			Intro:   service.settings.FolderIntro,
			Private: service.settings.PrivateFolders,
		}
		destinationIdentifier, createError := retry.Run(executionContext, service.retryExecutor, fmt.Sprintf(createFolderLabelTemplateConstant, destinationName), func(attemptContext context.Context) (int64, error) {
			return service.remoteClient.CreateFolder(attemptContext, folderOptions)
		})
		if createError != nil {
			return service.abort(result, createError)
		}

		createdFolder := CreatedFolder{Name: destinationName, Identifier: destinationIdentifier, PlannedTotal: chunk.Total}
		result.CreatedFolders = append(result.CreatedFolders, createdFolder)
		if service.observer != nil {
			service.observer.FolderCreated(createdFolder, chunkIndex, chunkCount)
		}

		moveItems := chunk.MoveOrderItems()
		for position, item := range moveItems {
			progress := MoveProgress{
				ChunkIndex:      chunkIndex,
				ChunkCount:      chunkCount,
				Position:        position,
				ChunkSize:       len(moveItems),
				Item:            item,
				DestinationName: destinationName,
			}
			moveRequest := bilibili.MoveRequest{
				SourceCollectionID:      item.SourceCollectionID,
				DestinationCollectionID: destinationIdentifier,
				Item:                    item,
			}

			result.AttemptedCount++
			moveError := service.retryExecutor.Do(executionContext, fmt.Sprintf(moveItemLabelTemplateConstant, progress.Label()), func(attemptContext context.Context) error {
				return service.remoteClient.MoveResource(attemptContext, moveRequest)
			})
			if moveError != nil {
				if contextError := executionContext.Err(); contextError != nil {
					return service.abort(result, contextError)
				}
				result.Failures = append(result.Failures, MoveFailure{Item: item, Reason: moveError.Error(), DestinationName: destinationName})
				if service.observer != nil {
					service.observer.ItemMoveFailed(progress, moveError)
				}
			} else {
				result.SuccessCount++
				if service.observer != nil {
					service.observer.ItemMoved(progress)
				}
			}

			if sleepError := service.sleeper(executionContext, service.settings.MoveDelay); sleepError != nil {
				return service.abort(result, sleepError)
			}
		}
	}

	result.Completed = true
	if service.observer != nil {
		service.observer.RunCompleted(result)
	}
	return result, nil
}

func (service *Service) destinationName(plan Plan, chunkIndex int) string {
	if chunkIndex < len(plan.DestinationNames) && len(plan.DestinationNames[chunkIndex]) > 0 {
		return plan.DestinationNames[chunkIndex]
	}
	return service.namingPolicy(plan.BaseName, chunkIndex, len(plan.Chunks))
}

func (service *Service) abort(result ExecutionResult, cause error) (ExecutionResult, error) {
	service.logger.Debug(
		executionAbortedMessageConstant,
		zap.Int(logFieldSuccessCountConstant, result.SuccessCount),
		zap.Int(logFieldFailureCountConstant, len(result.Failures)),
		zap.Error(cause),
	)
	return result, cause
}
