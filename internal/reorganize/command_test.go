package reorganize_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/credentials"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/favorites"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/migration"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/planner"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/reorganize"
)

const (
	testRunIdentifierConstant      = "run-0001"
	testPlanHeadlineConstant       = "About to move 3 items into 2 new folders"
	testDeclinedOutputConstant     = "Aborted."
	testReportFileNameConstant     = "report.yaml"
	testLockFileNameConstant       = "run.lock"
	testConfiguredFolderConstant   = "Music"
	testConfiguredBaseNameConstant = "Mix"
)

type stubRunner struct {
	plan           migration.Plan
	planError      error
	result         migration.ExecutionResult
	executionError error
	planRequests   []migration.Request
	executeCalls   int
}

func (runner *stubRunner) Plan(_ context.Context, request migration.Request) (migration.Plan, error) {
	runner.planRequests = append(runner.planRequests, request)
	if runner.planError != nil {
		return migration.Plan{}, runner.planError
	}
	return runner.plan, nil
}

func (runner *stubRunner) Execute(_ context.Context, _ migration.Plan) (migration.ExecutionResult, error) {
	runner.executeCalls++
	return runner.result, runner.executionError
}

type stubServiceResolver struct {
	runner          *stubRunner
	resolvedOptions []reorganize.SortOptions
}

func (resolver *stubServiceResolver) Resolve(_ context.Context, _ *zap.Logger, options reorganize.SortOptions) (reorganize.ResolvedService, error) {
	resolver.resolvedOptions = append(resolver.resolvedOptions, options)
	return reorganize.ResolvedService{Runner: resolver.runner, OwnerIdentifier: testOwnerIdentifierConstant}, nil
}

type stubPrompter struct {
	response bool
	prompts  []string
}

func (prompter *stubPrompter) Confirm(prompt string) (bool, error) {
	prompter.prompts = append(prompter.prompts, prompt)
	return prompter.response, nil
}

func fixturePlan(testInstance *testing.T) migration.Plan {
	testInstance.Helper()
	source := favorites.SourceCollection{Identifier: testMusicFolderIDConstant, Title: testConfiguredFolderConstant, MediaCount: 3}
	items := []favorites.Item{
		{Identifier: 1, ResourceType: favorites.VideoResourceType, Title: "Song A", CreatorIdentifier: "7", CreatorName: "Alice", SavedTimestamp: 300, SourceCollectionID: source.Identifier, SourceCollectionTitle: source.Title},
		{Identifier: 2, ResourceType: favorites.VideoResourceType, Title: "Song B", CreatorIdentifier: "8", CreatorName: "Bob", SavedTimestamp: 200, SourceCollectionID: source.Identifier, SourceCollectionTitle: source.Title},
		{Identifier: 3, ResourceType: favorites.VideoResourceType, Title: "Song C", CreatorIdentifier: "7", CreatorName: "Alice", SavedTimestamp: 100, SourceCollectionID: source.Identifier, SourceCollectionTitle: source.Title},
	}
	groups := planner.BuildCreatorGroups(items)
	chunks, chunkError := planner.BuildChunks(groups, 2)
	require.NoError(testInstance, chunkError)
	return migration.Plan{
		Sources:          []favorites.SourceCollection{source},
		Items:            items,
		Groups:           groups,
		Chunks:           chunks,
		DestinationNames: []string{"Mix-1", "Mix-2"},
		Capacity:         2,
		BaseName:         testConfiguredBaseNameConstant,
	}
}

func testConfiguration(testInstance *testing.T) reorganize.Configuration {
	testInstance.Helper()
	configuration := reorganize.DefaultConfiguration()
	configuration.Folders = []string{testConfiguredFolderConstant}
	configuration.BaseName = testConfiguredBaseNameConstant
	configuration.Capacity = 2
	configuration.LockFilePath = filepath.Join(testInstance.TempDir(), testLockFileNameConstant)
	return configuration
}

func executeSortCommand(testInstance *testing.T, builder *reorganize.CommandBuilder, arguments []string) (string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	var output bytes.Buffer
	command.SetOut(&output)
	command.SetErr(&output)
	command.SetIn(strings.NewReader(""))
	command.SetArgs(arguments)
	command.SetContext(context.Background())
	command.SilenceUsage = true
	command.SilenceErrors = true

	executionError := command.Execute()
	return output.String(), executionError
}

func TestCommandBuilderResolvesOptions(testInstance *testing.T) {
	testCases := []struct {
		name                     string
		arguments                []string
		expectedFolderNames      []string
		expectedBaseName         string
		expectedCapacity         int
		expectedCredentialSource credentials.SourceConfiguration
		expectedReportPath       string
	}{
		{
			name:                     "configuration_defaults",
			arguments:                []string{"--dry-run"},
			expectedFolderNames:      []string{testConfiguredFolderConstant},
			expectedBaseName:         testConfiguredBaseNameConstant,
			expectedCapacity:         2,
			expectedCredentialSource: credentials.SourceConfiguration{Type: credentials.SourceTypeEnvironment},
		},
		{
			name: "flag_overrides_configuration",
			arguments: []string{
				"--dry-run",
				"--folders", "音乐，游戏",
				"--folders", "Misc;Notes",
				"--base-name", " Pile ",
				"--capacity", "500",
				"--credentials", "cookie:/secrets/cookie.txt",
				"--report", "/tmp/favsort/report.yaml",
			},
			expectedFolderNames:      []string{"音乐", "游戏", "Misc", "Notes"},
			expectedBaseName:         "Pile",
			expectedCapacity:         500,
			expectedCredentialSource: credentials.SourceConfiguration{Type: credentials.SourceTypeCookieFile, Reference: "/secrets/cookie.txt"},
			expectedReportPath:       "/tmp/favsort/report.yaml",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			runner := &stubRunner{plan: fixturePlan(testInstance)}
			resolver := &stubServiceResolver{runner: runner}
			configuration := testConfiguration(testInstance)
			builder := &reorganize.CommandBuilder{
				ConfigurationProvider: func() reorganize.Configuration { return configuration },
				ServiceResolver:       resolver,
			}

			_, executionError := executeSortCommand(testInstance, builder, testCase.arguments)
			require.NoError(testInstance, executionError)

			require.Len(testInstance, resolver.resolvedOptions, 1)
			resolvedOptions := resolver.resolvedOptions[0]
			require.Equal(testInstance, testCase.expectedFolderNames, resolvedOptions.FolderNames)
			require.Equal(testInstance, testCase.expectedBaseName, resolvedOptions.BaseName)
			require.Equal(testInstance, testCase.expectedCapacity, resolvedOptions.Capacity)
			require.Equal(testInstance, testCase.expectedCredentialSource, resolvedOptions.CredentialSource)
			require.Equal(testInstance, testCase.expectedReportPath, resolvedOptions.ReportPath)
			require.True(testInstance, resolvedOptions.DryRun)

			require.Len(testInstance, runner.planRequests, 1)
			require.Equal(testInstance, migration.Request{
				OwnerIdentifier: testOwnerIdentifierConstant,
				FolderNames:     testCase.expectedFolderNames,
				BaseName:        testCase.expectedBaseName,
				Capacity:        testCase.expectedCapacity,
			}, runner.planRequests[0])
		})
	}
}

func TestCommandBuilderDryRunStopsAfterSummary(testInstance *testing.T) {
	runner := &stubRunner{plan: fixturePlan(testInstance)}
	configuration := testConfiguration(testInstance)
	configuration.DryRun = true
	builder := &reorganize.CommandBuilder{
		ConfigurationProvider: func() reorganize.Configuration { return configuration },
		ServiceResolver:       &stubServiceResolver{runner: runner},
	}

	output, executionError := executeSortCommand(testInstance, builder, nil)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, testPlanHeadlineConstant)
	require.Contains(testInstance, output, "Mix-1")
	require.Zero(testInstance, runner.executeCalls)
}

func TestCommandBuilderConfirmationGate(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		arguments            []string
		terminal             bool
		promptResponse       bool
		expectedExecuteCalls int
		expectedPromptCount  int
		expectValidation     bool
		expectedOutput       string
	}{
		{
			name:                 "declined_prompt_aborts",
			terminal:             true,
			promptResponse:       false,
			expectedExecuteCalls: 0,
			expectedPromptCount:  1,
			expectedOutput:       testDeclinedOutputConstant,
		},
		{
			name:                 "accepted_prompt_executes",
			terminal:             true,
			promptResponse:       true,
			expectedExecuteCalls: 1,
			expectedPromptCount:  1,
			expectedOutput:       "Succeeded 3/3",
		},
		{
			name:                 "assume_yes_skips_prompt",
			arguments:            []string{"--yes"},
			terminal:             false,
			expectedExecuteCalls: 1,
			expectedPromptCount:  0,
			expectedOutput:       "Succeeded 3/3",
		},
		{
			name:                 "non_terminal_without_yes_fails",
			terminal:             false,
			expectedExecuteCalls: 0,
			expectedPromptCount:  0,
			expectValidation:     true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			runner := &stubRunner{
				plan:   fixturePlan(testInstance),
				result: migration.ExecutionResult{TotalCount: 3, AttemptedCount: 3, SuccessCount: 3, Completed: true},
			}
			prompter := &stubPrompter{response: testCase.promptResponse}
			configuration := testConfiguration(testInstance)
			terminal := testCase.terminal
			builder := &reorganize.CommandBuilder{
				ConfigurationProvider: func() reorganize.Configuration { return configuration },
				ServiceResolver:       &stubServiceResolver{runner: runner},
				Prompter:              prompter,
				TerminalDetector:      func(_ io.Reader) bool { return terminal },
			}

			output, executionError := executeSortCommand(testInstance, builder, testCase.arguments)
			if testCase.expectValidation {
				require.Error(testInstance, executionError)
				require.True(testInstance, migration.IsValidationError(executionError))
			} else {
				require.NoError(testInstance, executionError)
				require.Contains(testInstance, output, testCase.expectedOutput)
			}
			require.Equal(testInstance, testCase.expectedExecuteCalls, runner.executeCalls)
			require.Len(testInstance, prompter.prompts, testCase.expectedPromptCount)
		})
	}
}

func TestCommandBuilderWritesReportForPartialRun(testInstance *testing.T) {
	plan := fixturePlan(testInstance)
	abortError := errors.New("create folder Mix-2 failed")
	runner := &stubRunner{
		plan: plan,
		result: migration.ExecutionResult{
			TotalCount:     3,
			AttemptedCount: 2,
			SuccessCount:   1,
			Failures:       []migration.MoveFailure{{Item: plan.Items[0], Reason: "remote refused", DestinationName: "Mix-1"}},
			CreatedFolders: []migration.CreatedFolder{{Name: "Mix-1", Identifier: 901, PlannedTotal: 2}},
		},
		executionError: abortError,
	}
	reportPath := filepath.Join(testInstance.TempDir(), "nested", testReportFileNameConstant)
	configuration := testConfiguration(testInstance)
	builder := &reorganize.CommandBuilder{
		ConfigurationProvider: func() reorganize.Configuration { return configuration },
		ServiceResolver:       &stubServiceResolver{runner: runner},
		RunIdentifierProvider: func() string { return testRunIdentifierConstant },
		Clock:                 func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) },
	}

	_, executionError := executeSortCommand(testInstance, builder, []string{"--yes", "--report", reportPath})
	require.ErrorIs(testInstance, executionError, abortError)

	reportContent, readError := os.ReadFile(reportPath)
	require.NoError(testInstance, readError)

	var report reorganize.Report
	require.NoError(testInstance, yaml.Unmarshal(reportContent, &report))
	require.Equal(testInstance, testRunIdentifierConstant, report.RunIdentifier)
	require.Equal(testInstance, "2026-10-19T08:30:00Z", report.GeneratedAt)
	require.False(testInstance, report.Completed)
	require.Equal(testInstance, abortError.Error(), report.Error)
	require.Equal(testInstance, reorganize.ReportTotals{Items: 3, Attempted: 2, Succeeded: 1, Failed: 1}, report.Totals)
	require.Equal(testInstance, []reorganize.ReportFolder{{Name: "Mix-1", Identifier: 901, PlannedItems: 2}}, report.Folders)
	require.Len(testInstance, report.Failures, 1)
	require.Equal(testInstance, int64(1), report.Failures[0].ItemIdentifier)
	require.Equal(testInstance, "Alice", report.Failures[0].CreatorName)
	require.Equal(testInstance, testConfiguredFolderConstant, report.Failures[0].SourceFolder)
	require.Equal(testInstance, "remote refused", report.Failures[0].Reason)
}

func TestCommandBuilderPropagatesPlanValidation(testInstance *testing.T) {
	runner := &stubRunner{planError: migration.ValidationError{Message: "folders not found or names do not match: Music"}}
	configuration := testConfiguration(testInstance)
	builder := &reorganize.CommandBuilder{
		ConfigurationProvider: func() reorganize.Configuration { return configuration },
		ServiceResolver:       &stubServiceResolver{runner: runner},
	}

	_, executionError := executeSortCommand(testInstance, builder, []string{"--yes"})
	require.Error(testInstance, executionError)
	require.True(testInstance, migration.IsValidationError(executionError))
	require.Contains(testInstance, executionError.Error(), "folders not found or names do not match: Music")
	require.Zero(testInstance, runner.executeCalls)
}

func TestCommandBuilderRejectsPositionalArguments(testInstance *testing.T) {
	builder := &reorganize.CommandBuilder{ServiceResolver: &stubServiceResolver{runner: &stubRunner{}}}

	_, executionError := executeSortCommand(testInstance, builder, []string{"Music"})
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "does not accept positional arguments")
}

func TestCommandBuilderRejectsUnknownCredentialSource(testInstance *testing.T) {
	configuration := testConfiguration(testInstance)
	builder := &reorganize.CommandBuilder{
		ConfigurationProvider: func() reorganize.Configuration { return configuration },
		ServiceResolver:       &stubServiceResolver{runner: &stubRunner{}},
	}

	_, executionError := executeSortCommand(testInstance, builder, []string{"--credentials", "vault:secret"})
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "invalid credential source")
}

func TestCommandBuilderRefusesConcurrentRun(testInstance *testing.T) {
	configuration := testConfiguration(testInstance)
	heldLock, lockError := reorganize.AcquireRunLock(configuration.LockFilePath)
	require.NoError(testInstance, lockError)
	testInstance.Cleanup(func() { require.NoError(testInstance, heldLock.Release()) })

	runner := &stubRunner{plan: fixturePlan(testInstance)}
	builder := &reorganize.CommandBuilder{
		ConfigurationProvider: func() reorganize.Configuration { return configuration },
		ServiceResolver:       &stubServiceResolver{runner: runner},
	}

	_, executionError := executeSortCommand(testInstance, builder, []string{"--yes"})
	var runInProgressError reorganize.RunInProgressError
	require.ErrorAs(testInstance, executionError, &runInProgressError)
	require.Equal(testInstance, configuration.LockFilePath, runInProgressError.Path)
	require.Empty(testInstance, runner.planRequests)
}

func TestCommandBuilderUsesCacheDirectoryForDefaultLock(testInstance *testing.T) {
	cacheDirectory := testInstance.TempDir()
	configuration := testConfiguration(testInstance)
	configuration.LockFilePath = ""
	builder := &reorganize.CommandBuilder{
		ConfigurationProvider:  func() reorganize.Configuration { return configuration },
		ServiceResolver:        &stubServiceResolver{runner: &stubRunner{plan: fixturePlan(testInstance)}},
		CacheDirectoryProvider: func() (string, error) { return cacheDirectory, nil },
	}

	_, executionError := executeSortCommand(testInstance, builder, []string{"--dry-run"})
	require.NoError(testInstance, executionError)
	require.FileExists(testInstance, filepath.Join(cacheDirectory, "favsort", testLockFileNameConstant))
}

func TestCommandBuilderEndToEndWithDefaultResolver(testInstance *testing.T) {
	api := newFakeFavoritesAPI(testInstance)
	configuration := testConfiguration(testInstance)
	configuration.BaseName = ""
	configuration.BaseURL = api.server.URL
	configuration.MoveDelay = 0
	builder := &reorganize.CommandBuilder{
		ConfigurationProvider: func() reorganize.Configuration { return configuration },
		HTTPClient:            api.server.Client(),
		EnvironmentProvider:   api.environment,
		Sleeper:               noDelaySleeper,
	}

	output, executionError := executeSortCommand(testInstance, builder, []string{"--yes", "--folders", "music"})
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "Succeeded 3/3")

	createdTitles, movedResources := api.snapshot()
	require.Equal(testInstance, []string{"UP聚合-1", "UP聚合-2"}, createdTitles)
	require.Len(testInstance, movedResources, 3)
}
