package reorganize

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-isatty"
)

// ConfirmationPrompter asks the operator to approve the planned moves.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
}

// TerminalDetector reports whether the reader is attached to an interactive terminal.
type TerminalDetector func(input io.Reader) bool

type fileDescriptorProvider interface {
	Fd() uintptr
}

// IsInteractiveTerminal reports whether input is a terminal, including Cygwin and MSYS pseudo terminals.
func IsInteractiveTerminal(input io.Reader) bool {
	descriptorProvider, providesDescriptor := input.(fileDescriptorProvider)
	if !providesDescriptor {
		return false
	}
	descriptor := descriptorProvider.Fd()
	return isatty.IsTerminal(descriptor) || isatty.IsCygwinTerminal(descriptor)
}

// IOConfirmationPrompter reads confirmation responses from an io.Reader.
type IOConfirmationPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOConfirmationPrompter constructs a prompter from the provided reader and writer.
func NewIOConfirmationPrompter(input io.Reader, output io.Writer) *IOConfirmationPrompter {
	return &IOConfirmationPrompter{reader: bufio.NewReader(input), writer: output}
}

// Confirm writes the prompt and interprets affirmative responses (y/yes).
func (prompter *IOConfirmationPrompter) Confirm(prompt string) (bool, error) {
	if prompter.writer != nil {
		if _, writeError := io.WriteString(prompter.writer, prompt); writeError != nil {
			return false, writeError
		}
	}

	response, readError := prompter.reader.ReadString('\n')
	if readError != nil && readError != io.EOF {
		return false, readError
	}

	trimmedResponse := strings.TrimSpace(strings.ToLower(response))
	switch trimmedResponse {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
