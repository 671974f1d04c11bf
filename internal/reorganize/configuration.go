package reorganize

import (
	"strings"
	"time"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/bilibili"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/collector"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/migration"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/planner"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/retry"
	pathutils "github.com/agonielv/agonielv-bilibili-Sort/internal/utils/path"
)

var reorganizeConfigurationHomeDirectoryExpander = pathutils.NewHomeExpander()

const (
	defaultCredentialSourceConstant             = "env"
	configurationFoldersKeyConstant             = "folders"
	configurationBaseNameKeyConstant            = "base_name"
	configurationCapacityKeyConstant            = "capacity"
	configurationAssumeYesKeyConstant           = "assume_yes"
	configurationDryRunKeyConstant              = "dry_run"
	configurationCredentialsKeyConstant         = "credentials"
	configurationReportKeyConstant              = "report"
	configurationLockFileKeyConstant            = "lock_file"
	configurationBaseURLKeyConstant             = "base_url"
	configurationPageSizeKeyConstant            = "page_size"
	configurationMaxPagesKeyConstant            = "max_pages"
	configurationMaxFolderSizeKeyConstant       = "max_folder_size"
	configurationMaxFolderNameLengthKeyConstant = "max_folder_name_length"
	configurationMoveDelayKeyConstant           = "move_delay"
	configurationMaxAttemptsKeyConstant         = "max_attempts"
	configurationRetryBaseDelayKeyConstant      = "retry_base_delay"
	configurationRequestTimeoutKeyConstant      = "request_timeout"
	configurationFolderIntroKeyConstant         = "folder_intro"
	configurationPrivateKeyConstant             = "private"
	configurationKeySeparatorConstant           = "."
	lockDirectoryNameConstant                   = "favsort"
	lockFileNameConstant                        = "run.lock"
	defaultCapacityConstant                     = migration.DefaultMaxFolderSize
)

// Configuration describes the persisted options of the sort command.
type Configuration struct {
	Folders             []string      `mapstructure:"folders"`
	BaseName            string        `mapstructure:"base_name"`
	Capacity            int           `mapstructure:"capacity"`
	AssumeYes           bool          `mapstructure:"assume_yes"`
	DryRun              bool          `mapstructure:"dry_run"`
	Credentials         string        `mapstructure:"credentials"`
	ReportPath          string        `mapstructure:"report"`
	LockFilePath        string        `mapstructure:"lock_file"`
	BaseURL             string        `mapstructure:"base_url"`
	PageSize            int           `mapstructure:"page_size"`
	MaxPages            int           `mapstructure:"max_pages"`
	MaxFolderSize       int           `mapstructure:"max_folder_size"`
	MaxFolderNameLength int           `mapstructure:"max_folder_name_length"`
	MoveDelay           time.Duration `mapstructure:"move_delay"`
	MaxAttempts         int           `mapstructure:"max_attempts"`
	RetryBaseDelay      time.Duration `mapstructure:"retry_base_delay"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	FolderIntro         string        `mapstructure:"folder_intro"`
	PrivateFolders      bool          `mapstructure:"private"`
}

// DefaultConfiguration supplies baseline values for the sort command.
func DefaultConfiguration() Configuration {
	return Configuration{
		BaseName:            planner.DefaultBaseName,
		Capacity:            defaultCapacityConstant,
		Credentials:         defaultCredentialSourceConstant,
		BaseURL:             bilibili.DefaultBaseURL,
		PageSize:            collector.DefaultPageSize,
		MaxPages:            collector.DefaultMaxPages,
		MaxFolderSize:       migration.DefaultMaxFolderSize,
		MaxFolderNameLength: planner.DefaultMaxNameLength,
		MoveDelay:           migration.DefaultMoveDelay,
		MaxAttempts:         retry.DefaultMaxAttempts,
		RetryBaseDelay:      retry.DefaultBaseDelay,
		RequestTimeout:      bilibili.DefaultRequestTimeout,
		FolderIntro:         migration.DefaultFolderIntro,
	}
}

// DefaultConfigurationValues produces Viper defaults for the sort command rooted at rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationFoldersKeyConstant:             []string{},
		prefix + configurationBaseNameKeyConstant:            defaults.BaseName,
		prefix + configurationCapacityKeyConstant:            defaults.Capacity,
		prefix + configurationAssumeYesKeyConstant:           defaults.AssumeYes,
		prefix + configurationDryRunKeyConstant:              defaults.DryRun,
		prefix + configurationCredentialsKeyConstant:         defaults.Credentials,
		prefix + configurationReportKeyConstant:              defaults.ReportPath,
		prefix + configurationLockFileKeyConstant:            defaults.LockFilePath,
		prefix + configurationBaseURLKeyConstant:             defaults.BaseURL,
		prefix + configurationPageSizeKeyConstant:            defaults.PageSize,
		prefix + configurationMaxPagesKeyConstant:            defaults.MaxPages,
		prefix + configurationMaxFolderSizeKeyConstant:       defaults.MaxFolderSize,
		prefix + configurationMaxFolderNameLengthKeyConstant: defaults.MaxFolderNameLength,
		prefix + configurationMoveDelayKeyConstant:           defaults.MoveDelay,
		prefix + configurationMaxAttemptsKeyConstant:         defaults.MaxAttempts,
		prefix + configurationRetryBaseDelayKeyConstant:      defaults.RetryBaseDelay,
		prefix + configurationRequestTimeoutKeyConstant:      defaults.RequestTimeout,
		prefix + configurationFolderIntroKeyConstant:         defaults.FolderIntro,
		prefix + configurationPrivateKeyConstant:             defaults.PrivateFolders,
	}
}

// EnvironmentAliases maps the everyday sort options rooted at rootKey to short environment
// suffixes, so FAVSORT_FOLDERS can stand in for FAVSORT_TOOLS_SORT_FOLDERS.
func EnvironmentAliases(rootKey string) map[string]string {
	prefix := rootKey + configurationKeySeparatorConstant
	aliases := make(map[string]string, 7)
	for _, optionKey := range []string{
		configurationFoldersKeyConstant,
		configurationBaseNameKeyConstant,
		configurationCapacityKeyConstant,
		configurationCredentialsKeyConstant,
		configurationReportKeyConstant,
		configurationDryRunKeyConstant,
		configurationAssumeYesKeyConstant,
	} {
		aliases[prefix+optionKey] = strings.ToUpper(optionKey)
	}
	return aliases
}

// Sanitize trims configured values, expands home-relative paths and restores defaults for unset limits.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.Folders = sanitizeFolderEntries(configuration.Folders)
	sanitized.BaseName = strings.TrimSpace(configuration.BaseName)
	sanitized.Credentials = strings.TrimSpace(configuration.Credentials)
	if len(sanitized.Credentials) == 0 {
		sanitized.Credentials = defaults.Credentials
	}
	sanitized.ReportPath = reorganizeConfigurationHomeDirectoryExpander.Expand(configuration.ReportPath)
	sanitized.LockFilePath = reorganizeConfigurationHomeDirectoryExpander.Expand(configuration.LockFilePath)
	sanitized.BaseURL = strings.TrimSpace(configuration.BaseURL)
	if len(sanitized.BaseURL) == 0 {
		sanitized.BaseURL = defaults.BaseURL
	}
	sanitized.FolderIntro = strings.TrimSpace(configuration.FolderIntro)

	if sanitized.MaxFolderSize <= 0 {
		sanitized.MaxFolderSize = defaults.MaxFolderSize
	}
	if sanitized.MaxFolderNameLength <= 0 {
		sanitized.MaxFolderNameLength = defaults.MaxFolderNameLength
	}
	if sanitized.RequestTimeout <= 0 {
		sanitized.RequestTimeout = defaults.RequestTimeout
	}

	return sanitized
}

// MigrationSettings derives the orchestrator limits from the configuration.
func (configuration Configuration) MigrationSettings() migration.Settings {
	settings := migration.DefaultSettings()
	settings.MaxFolderSize = configuration.MaxFolderSize
	settings.MaxFolderNameLength = configuration.MaxFolderNameLength
	settings.MoveDelay = configuration.MoveDelay
	settings.FolderIntro = configuration.FolderIntro
	settings.PrivateFolders = configuration.PrivateFolders
	return settings.Sanitize()
}

// CollectorSettings derives pagination limits from the configuration.
func (configuration Configuration) CollectorSettings() collector.Settings {
	return collector.Settings{PageSize: configuration.PageSize, MaxPages: configuration.MaxPages}.Sanitize()
}

// RetryPolicy derives the retry policy from the configuration.
func (configuration Configuration) RetryPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: configuration.MaxAttempts, BaseDelay: configuration.RetryBaseDelay}.Sanitize()
}

// ResolvedLockFilePath returns the configured lock path or the per-user cache default.
func (configuration Configuration) ResolvedLockFilePath(cacheDirectoryProvider pathutils.DirectoryProvider) string {
	if len(configuration.LockFilePath) > 0 {
		return configuration.LockFilePath
	}
	return pathutils.UserScopedPath(cacheDirectoryProvider, lockDirectoryNameConstant, lockFileNameConstant)
}

func sanitizeFolderEntries(entries []string) []string {
	sanitized := make([]string, 0, len(entries))
	for _, entry := range entries {
		sanitized = append(sanitized, migration.ParseFolderNames(entry)...)
	}
	if len(sanitized) == 0 {
		return nil
	}
	return sanitized
}
