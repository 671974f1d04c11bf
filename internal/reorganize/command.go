package reorganize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/bilibili"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/credentials"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/migration"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/retry"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/ui"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/utils"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/utils/flags"
	pathutils "github.com/agonielv/agonielv-bilibili-Sort/internal/utils/path"
)

const (
	sortCommandUseConstant                     = "sort"
	sortCommandShortDescriptionConstant        = "Regroup favorites folders by creator"
	sortCommandLongDescriptionConstant         = "sort reads the named favorites folders, groups their items by creator and moves them into new folders that never split a creator."
	unexpectedArgumentsErrorMessageConstant    = "sort does not accept positional arguments; use --folders"
	commandExecutionErrorTemplateConstant      = "sort failed: %w"
	credentialSourceParseErrorTemplateConstant = "invalid credential source: %w"
	lockErrorTemplateConstant                  = "sort could not start: %w"
	nonInteractiveConfirmationMessageConstant  = "confirmation requires an interactive terminal; pass --yes to proceed"
	confirmationPromptTemplateConstant         = "Move %d items into %d new folders? [y/N] "
	confirmationDeclinedOutputConstant         = "Aborted. No folders were created and no items were moved.\n"
	foldersFlagNameConstant                    = "folders"
	foldersFlagDescriptionConstant             = "Source folder names separated by , ， ; ； or newlines (repeatable)"
	baseNameFlagNameConstant                   = "base-name"
	baseNameFlagDescriptionConstant            = "Base name for the new folders (at most 10 characters)"
	capacityFlagNameConstant                   = "capacity"
	capacityFlagDescriptionConstant            = "Maximum number of items per new folder"
	credentialsFlagNameConstant                = "credentials"
	credentialsFlagDescriptionConstant         = "Credential source (env, file:/path/.env or cookie:/path)"
	reportFlagNameConstant                     = "report"
	reportFlagDescriptionConstant              = "Write a YAML report of the run to this path"
	logFieldRunIdentifierConstant              = "run_id"
	logFieldConfigurationFileConstant          = "config_file"
	logFieldLockFileConstant                   = "lock_file"
	logFieldReportConstant                     = "report"
	logFieldOwnerIdentifierConstant            = "owner"
	runStartedMessageConstant                  = "sort started"
	dryRunCompletedMessageConstant             = "dry run finished; nothing was changed"
	confirmationDeclinedMessageConstant        = "sort cancelled before any change"
	reportWrittenMessageConstant               = "report written"
	reportWriteFailedMessageConstant           = "unable to write report"
	lockReleaseFailedMessageConstant           = "unable to release run lock"
	reportAfterExecutionErrorTemplateConstant  = "sort finished but the report could not be written: %w"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current sort configuration.
type ConfigurationProvider func() Configuration

// SortOptions captures the resolved inputs of one sort invocation.
type SortOptions struct {
	FolderNames      []string
	BaseName         string
	Capacity         int
	DryRun           bool
	AssumeYes        bool
	CredentialSource credentials.SourceConfiguration
	ReportPath       string
	LockFilePath     string
	Configuration    Configuration
}

// CommandBuilder assembles the sort command.
type CommandBuilder struct {
	LoggerProvider         LoggerProvider
	ConfigurationProvider  ConfigurationProvider
	ServiceResolver        ServiceResolver
	HTTPClient             bilibili.HTTPDoer
	EnvironmentProvider    credentials.EnvironmentProvider
	FileReader             credentials.FileReader
	Sleeper                retry.Sleeper
	Prompter               ConfirmationPrompter
	TerminalDetector       TerminalDetector
	CacheDirectoryProvider pathutils.DirectoryProvider
	RunIdentifierProvider  func() string
	Clock                  func() time.Time
}

// Build constructs the sort command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	sortCommand := &cobra.Command{
		Use:   sortCommandUseConstant,
		Short: sortCommandShortDescriptionConstant,
		Long:  sortCommandLongDescriptionConstant,
		RunE:  builder.runSort,
	}

	sortCommand.Flags().StringArray(foldersFlagNameConstant, nil, foldersFlagDescriptionConstant)
	sortCommand.Flags().String(baseNameFlagNameConstant, "", baseNameFlagDescriptionConstant)
	sortCommand.Flags().Int(capacityFlagNameConstant, 0, capacityFlagDescriptionConstant)
	sortCommand.Flags().String(credentialsFlagNameConstant, "", credentialsFlagDescriptionConstant)
	sortCommand.Flags().String(reportFlagNameConstant, "", reportFlagDescriptionConstant)
	flags.BindExecutionFlags(sortCommand, flags.ExecutionFlagValues{}, flags.ExecutionFlagDefinitions{DryRunEnabled: true, AssumeYesEnabled: true})

	return sortCommand, nil
}

func (builder *CommandBuilder) runSort(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	sortOptions, optionsError := builder.parseSortOptions(command)
	if optionsError != nil {
		return optionsError
	}

	contextAccessor := utils.NewCommandContextAccessor()
	runIdentifier := builder.resolveRunIdentifier()
	executionContext := contextAccessor.WithRunIdentifier(commandContext(command), runIdentifier)
	logger := builder.resolveLogger().With(zap.String(logFieldRunIdentifierConstant, runIdentifier))

	startFields := []zap.Field{zap.Strings(foldersFlagNameConstant, sortOptions.FolderNames), zap.String(logFieldLockFileConstant, sortOptions.LockFilePath)}
	if configurationFilePath, configurationFileKnown := contextAccessor.ConfigurationFilePath(executionContext); configurationFileKnown {
		startFields = append(startFields, zap.String(logFieldConfigurationFileConstant, configurationFilePath))
	}
	logger.Debug(runStartedMessageConstant, startFields...)

	runLock, lockError := AcquireRunLock(sortOptions.LockFilePath)
	if lockError != nil {
		return fmt.Errorf(lockErrorTemplateConstant, lockError)
	}
	defer func() {
		if releaseError := runLock.Release(); releaseError != nil {
			logger.Warn(lockReleaseFailedMessageConstant, zap.Error(releaseError))
		}
	}()

	resolvedService, resolveError := builder.resolveService(executionContext, logger, sortOptions)
	if resolveError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, resolveError)
	}
	logger = logger.With(zap.String(logFieldOwnerIdentifierConstant, resolvedService.OwnerIdentifier))

	plan, planError := resolvedService.Runner.Plan(executionContext, migration.Request{
		OwnerIdentifier: resolvedService.OwnerIdentifier,
		FolderNames:     sortOptions.FolderNames,
		BaseName:        sortOptions.BaseName,
		Capacity:        sortOptions.Capacity,
	})
	if planError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, planError)
	}

	output := command.OutOrStdout()
	if _, writeError := fmt.Fprint(output, ui.RenderPlanSummary(plan.Summary())); writeError != nil {
		return writeError
	}

	if sortOptions.DryRun {
		logger.Info(dryRunCompletedMessageConstant)
		return nil
	}

	confirmed, confirmationError := builder.confirm(command, sortOptions, plan)
	if confirmationError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, confirmationError)
	}
	if !confirmed {
		logger.Info(confirmationDeclinedMessageConstant)
		_, writeError := io.WriteString(output, confirmationDeclinedOutputConstant)
		return writeError
	}

	result, executionError := resolvedService.Runner.Execute(executionContext, plan)
	if _, writeError := fmt.Fprint(output, ui.RenderExecutionReport(result)); writeError != nil && executionError == nil {
		return writeError
	}

	if len(sortOptions.ReportPath) > 0 {
		report := NewReport(runIdentifier, builder.now(), plan, result, executionError)
		if writeError := WriteReport(sortOptions.ReportPath, report); writeError != nil {
			if executionError == nil {
				return fmt.Errorf(reportAfterExecutionErrorTemplateConstant, writeError)
			}
			logger.Error(reportWriteFailedMessageConstant, zap.Error(writeError))
		} else {
			logger.Info(reportWrittenMessageConstant, zap.String(logFieldReportConstant, sortOptions.ReportPath))
		}
	}

	if executionError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, executionError)
	}
	return nil
}

func (builder *CommandBuilder) parseSortOptions(command *cobra.Command) (SortOptions, error) {
	configuration := builder.resolveConfiguration()

	folderNames := configuration.Folders
	if command.Flags().Changed(foldersFlagNameConstant) {
		folderFlagValues, folderFlagError := command.Flags().GetStringArray(foldersFlagNameConstant)
		if folderFlagError != nil {
			return SortOptions{}, folderFlagError
		}
		folderNames = nil
		for _, folderFlagValue := range folderFlagValues {
			folderNames = append(folderNames, migration.ParseFolderNames(folderFlagValue)...)
		}
	}

	baseNameFlagValue, baseNameFlagError := command.Flags().GetString(baseNameFlagNameConstant)
	if baseNameFlagError != nil {
		return SortOptions{}, baseNameFlagError
	}
	baseNameValue := selectStringValue(baseNameFlagValue, configuration.BaseName)

	capacityValue := configuration.Capacity
	if command.Flags().Changed(capacityFlagNameConstant) {
		flagCapacityValue, capacityFlagError := command.Flags().GetInt(capacityFlagNameConstant)
		if capacityFlagError != nil {
			return SortOptions{}, capacityFlagError
		}
		capacityValue = flagCapacityValue
	}

	credentialsFlagValue, credentialsFlagError := command.Flags().GetString(credentialsFlagNameConstant)
	if credentialsFlagError != nil {
		return SortOptions{}, credentialsFlagError
	}
	credentialSource, credentialSourceError := credentials.ParseSource(selectStringValue(credentialsFlagValue, configuration.Credentials))
	if credentialSourceError != nil {
		return SortOptions{}, fmt.Errorf(credentialSourceParseErrorTemplateConstant, credentialSourceError)
	}
	credentialSource.Reference = reorganizeConfigurationHomeDirectoryExpander.Expand(credentialSource.Reference)

	reportFlagValue, reportFlagError := command.Flags().GetString(reportFlagNameConstant)
	if reportFlagError != nil {
		return SortOptions{}, reportFlagError
	}
	reportPath := reorganizeConfigurationHomeDirectoryExpander.Expand(selectStringValue(reportFlagValue, configuration.ReportPath))

	executionValues, executionFlagsError := flags.ResolveExecutionFlags(command, flags.ExecutionFlagValues{
		DryRun:    configuration.DryRun,
		AssumeYes: configuration.AssumeYes,
	})
	if executionFlagsError != nil {
		return SortOptions{}, executionFlagsError
	}

	return SortOptions{
		FolderNames:      folderNames,
		BaseName:         baseNameValue,
		Capacity:         capacityValue,
		DryRun:           executionValues.DryRun,
		AssumeYes:        executionValues.AssumeYes,
		CredentialSource: credentialSource,
		ReportPath:       reportPath,
		LockFilePath:     configuration.ResolvedLockFilePath(builder.resolveCacheDirectoryProvider()),
		Configuration:    configuration,
	}, nil
}

func (builder *CommandBuilder) confirm(command *cobra.Command, sortOptions SortOptions, plan migration.Plan) (bool, error) {
	if sortOptions.AssumeYes {
		return true, nil
	}

	input := command.InOrStdin()
	terminalDetector := builder.TerminalDetector
	if terminalDetector == nil {
		terminalDetector = IsInteractiveTerminal
	}
	if !terminalDetector(input) {
		return false, migration.ValidationError{Message: nonInteractiveConfirmationMessageConstant}
	}

	prompter := builder.Prompter
	if prompter == nil {
		prompter = NewIOConfirmationPrompter(input, command.OutOrStdout())
	}
	return prompter.Confirm(fmt.Sprintf(confirmationPromptTemplateConstant, len(plan.Items), len(plan.Chunks)))
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	return configuration.Sanitize()
}

func (builder *CommandBuilder) resolveService(executionContext context.Context, logger *zap.Logger, sortOptions SortOptions) (ResolvedService, error) {
	if builder.ServiceResolver != nil {
		return builder.ServiceResolver.Resolve(executionContext, logger, sortOptions)
	}

	defaultResolver := &DefaultServiceResolver{
		HTTPClient:          builder.HTTPClient,
		EnvironmentProvider: builder.EnvironmentProvider,
		FileReader:          builder.FileReader,
		Sleeper:             builder.Sleeper,
	}

	return defaultResolver.Resolve(executionContext, logger, sortOptions)
}

func (builder *CommandBuilder) resolveRunIdentifier() string {
	if builder.RunIdentifierProvider != nil {
		if runIdentifier := strings.TrimSpace(builder.RunIdentifierProvider()); len(runIdentifier) > 0 {
			return runIdentifier
		}
	}
	return uuid.NewString()
}

func (builder *CommandBuilder) resolveCacheDirectoryProvider() pathutils.DirectoryProvider {
	if builder.CacheDirectoryProvider != nil {
		return builder.CacheDirectoryProvider
	}
	return os.UserCacheDir
}

func (builder *CommandBuilder) now() time.Time {
	if builder.Clock != nil {
		return builder.Clock()
	}
	return time.Now()
}

func commandContext(command *cobra.Command) context.Context {
	if executionContext := command.Context(); executionContext != nil {
		return executionContext
	}
	return context.Background()
}

func selectStringValue(flagValue string, configurationValue string) string {
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}

	return strings.TrimSpace(configurationValue)
}
