// Package utils exposes reusable helpers consumed by the CLI commands.
//
// It houses the ConfigurationLoader and LoggerFactory abstractions that
// integrate Viper, environment variables, and zap logging, plus the
// CommandContextAccessor used to pass run metadata through cobra contexts.
package utils
