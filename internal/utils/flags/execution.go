package flags

import "github.com/spf13/cobra"

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Plan and summarize without creating folders or moving items"
	// AssumeYesFlagName exposes the shared assume-yes flag name.
	AssumeYesFlagName = "yes"
	// AssumeYesFlagShorthand provides the shorthand for the assume-yes flag.
	AssumeYesFlagShorthand = "y"
	// AssumeYesFlagUsage describes the shared assume-yes flag purpose.
	AssumeYesFlagUsage = "Automatically confirm prompts"
)

// ExecutionFlagValues stores the execution mode requested on the command line.
type ExecutionFlagValues struct {
	DryRun    bool
	AssumeYes bool
}

// ExecutionFlagDefinitions toggles which execution flags a command exposes.
type ExecutionFlagDefinitions struct {
	DryRunEnabled    bool
	AssumeYesEnabled bool
}

// BindExecutionFlags attaches the dry-run and assume-yes flags to the provided command.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionFlagValues, definitions ExecutionFlagDefinitions) *ExecutionFlagValues {
	values := defaults
	if command == nil {
		return &values
	}

	flagSet := command.Flags()
	if definitions.DryRunEnabled && flagSet.Lookup(DryRunFlagName) == nil {
		flagSet.BoolVar(&values.DryRun, DryRunFlagName, defaults.DryRun, DryRunFlagUsage)
	}
	if definitions.AssumeYesEnabled && flagSet.Lookup(AssumeYesFlagName) == nil {
		flagSet.BoolVarP(&values.AssumeYes, AssumeYesFlagName, AssumeYesFlagShorthand, defaults.AssumeYes, AssumeYesFlagUsage)
	}

	return &values
}

// ResolveExecutionFlags merges configured execution values with flags explicitly set on the command line.
func ResolveExecutionFlags(command *cobra.Command, configured ExecutionFlagValues) (ExecutionFlagValues, error) {
	resolved := configured
	if command == nil {
		return resolved, nil
	}

	flagSet := command.Flags()
	if flagSet.Changed(DryRunFlagName) {
		dryRunValue, dryRunError := flagSet.GetBool(DryRunFlagName)
		if dryRunError != nil {
			return ExecutionFlagValues{}, dryRunError
		}
		resolved.DryRun = dryRunValue
	}

	if flagSet.Changed(AssumeYesFlagName) {
		assumeYesValue, assumeYesError := flagSet.GetBool(AssumeYesFlagName)
		if assumeYesError != nil {
			return ExecutionFlagValues{}, assumeYesError
		}
		resolved.AssumeYes = assumeYesValue
	}

	return resolved, nil
}
