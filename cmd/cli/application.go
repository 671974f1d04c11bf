package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/reorganize"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/utils"
	pathutils "github.com/agonielv/agonielv-bilibili-Sort/internal/utils/path"
)

const (
	applicationNameConstant                    = "favsort"
	applicationShortDescriptionConstant        = "Regroup Bilibili favorites folders by creator"
	applicationLongDescriptionConstant         = "favsort collects the items of selected favorites folders, groups them by creator and moves them into new capacity-bounded folders."
	configFileFlagNameConstant                 = "config"
	configFileFlagUsageConstant                = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                   = "log-level"
	logLevelFlagUsageConstant                  = "Override the configured log level (debug, info, warn, error)."
	logFormatFlagNameConstant                  = "log-format"
	logFormatFlagUsageConstant                 = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant             = "common"
	commonLogLevelConfigKeyConstant            = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant           = commonConfigurationKeyConstant + ".log_format"
	toolsConfigurationKeyConstant              = "tools"
	sortConfigurationKeyConstant               = toolsConfigurationKeyConstant + ".sort"
	environmentPrefixConstant                  = "FAVSORT"
	configurationSearchPathEnvironmentConstant = "FAVSORT_CONFIG_SEARCH_PATH"
	configurationNameConstant                  = "config"
	configurationTypeConstant                  = "yaml"
	configurationDirectoryNameConstant         = "favsort"
	configurationInitializedMessageConstant    = "configuration initialized"
	configurationLogLevelFieldConstant         = "log_level"
	configurationLogFormatFieldConstant        = "log_format"
	configurationFileFieldConstant             = "config_file"
	configurationLoadErrorTemplateConstant     = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant        = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant            = "unable to flush logger: %w"
	sortCommandBuildErrorTemplateConstant      = "unable to build sort command: %w"
	rootCommandDebugMessageConstant            = "favsort invoked without a subcommand"
	logFieldCommandNameConstant                = "command_name"
	logFieldArgumentsConstant                  = "arguments"
	loggerNotInitializedMessageConstant        = "logger not initialized"
	defaultConfigurationSearchPathConstant     = "."
	logLevelEnvironmentSuffixConstant          = "LOG_LEVEL"
	logFormatEnvironmentSuffixConstant         = "LOG_FORMAT"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands.
type ApplicationToolsConfiguration struct {
	Sort reorganize.Configuration `mapstructure:"sort"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	sortCommandBuilder     *reorganize.CommandBuilder
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())
	configurationLoader.SetEnvironmentAliases(environmentAliases())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	application.sortCommandBuilder = &reorganize.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() reorganize.Configuration {
			return application.configuration.Tools.Sort
		},
	}
	sortCommand, sortBuildError := application.sortCommandBuilder.Build()
	if sortBuildError == nil {
		cobraCommand.AddCommand(sortCommand)
	} else {
		fmt.Fprintln(os.Stderr, fmt.Errorf(sortCommandBuildErrorTemplateConstant, sortBuildError))
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy until completion or an interrupt, then flushes the logger.
func (application *Application) Execute() error {
	signalContext, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	return application.ExecuteContext(signalContext)
}

// ExecuteContext runs the command hierarchy bound to executionContext.
func (application *Application) ExecuteContext(executionContext context.Context) error {
	executionError := application.rootCommand.ExecuteContext(executionContext)
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func configurationSearchPaths() []string {
	searchPaths := make([]string, 0, 3)
	if overridePath := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentConstant)); len(overridePath) > 0 {
		searchPaths = append(searchPaths, filepath.Clean(overridePath))
	}
	searchPaths = append(searchPaths, defaultConfigurationSearchPathConstant)
	if userConfigurationPath := pathutils.UserScopedPath(os.UserConfigDir, configurationDirectoryNameConstant); len(userConfigurationPath) > 0 {
		searchPaths = append(searchPaths, userConfigurationPath)
	}
	return searchPaths
}

func environmentAliases() map[string]string {
	aliases := reorganize.EnvironmentAliases(sortConfigurationKeyConstant)
	aliases[commonLogLevelConfigKeyConstant] = logLevelEnvironmentSuffixConstant
	aliases[commonLogFormatConfigKeyConstant] = logFormatEnvironmentSuffixConstant
	return aliases
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range reorganize.DefaultConfigurationValues(sortConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logLevel, logLevelError := utils.ParseLogLevel(application.configuration.Common.LogLevel)
	if logLevelError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, logLevelError)
	}

	logFormat, logFormatError := utils.ParseLogFormat(application.configuration.Common.LogFormat)
	if logFormatError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, logFormatError)
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(logLevel, logFormat)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, string(logLevel)),
		zap.String(configurationLogFormatFieldConstant, string(logFormat)),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		command.SetContext(updatedContext)
	}

	return nil
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	logger := application.logger
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
