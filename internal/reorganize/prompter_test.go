package reorganize_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/reorganize"
)

func TestIOConfirmationPrompterInterpretsResponses(testInstance *testing.T) {
	testCases := []struct {
		name      string
		input     string
		confirmed bool
	}{
		{name: "short_yes", input: "y\n", confirmed: true},
		{name: "long_yes_mixed_case", input: " YES \n", confirmed: true},
		{name: "no", input: "n\n", confirmed: false},
		{name: "empty_line", input: "\n", confirmed: false},
		{name: "end_of_input", input: "", confirmed: false},
		{name: "yes_without_newline", input: "yes", confirmed: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var output bytes.Buffer
			prompter := reorganize.NewIOConfirmationPrompter(strings.NewReader(testCase.input), &output)

			confirmed, confirmError := prompter.Confirm("Proceed? ")
			require.NoError(testInstance, confirmError)
			require.Equal(testInstance, testCase.confirmed, confirmed)
			require.Equal(testInstance, "Proceed? ", output.String())
		})
	}
}

func TestIsInteractiveTerminalRejectsNonTerminals(testInstance *testing.T) {
	require.False(testInstance, reorganize.IsInteractiveTerminal(strings.NewReader("y\n")))

	regularFile, createError := os.CreateTemp(testInstance.TempDir(), "stdin")
	require.NoError(testInstance, createError)
	testInstance.Cleanup(func() { _ = regularFile.Close() })
	require.False(testInstance, reorganize.IsInteractiveTerminal(regularFile))
}
