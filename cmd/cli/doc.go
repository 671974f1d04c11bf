// Package cli constructs the favsort command-line interface. It wires the
// Cobra root command to the layered configuration loader (embedded defaults,
// configuration file, FAVSORT_* environment variables and flags) and to the
// zap logger shared by every subcommand.
package cli
