// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/thoreinstein/nsm/internal/errors"
)

// Sentinel errors for selection prompts.
var (
	ErrNoChoices = errors.New("nothing to select from")

	// ErrInputClosed indicates stdin reached EOF (e.g., Ctrl+D).
	ErrInputClosed = errors.Mark(errors.New("input closed"), errors.ErrUserCancelled)
)

// ChoiceKind classifies a validated menu answer.
type ChoiceKind int

const (
	// ChoiceInvalid means the answer cannot be used; Reason says why.
	ChoiceInvalid ChoiceKind = iota

	// ChoiceValid means Index holds a zero-based selection.
	ChoiceValid

	// ChoiceExit means the user typed x to back out.
	ChoiceExit
)

// Choice is the result of ValidateChoice.
type Choice struct {
	Kind   ChoiceKind
	Index  int
	Reason string
}

// ValidateChoice interprets input as a 1-based pick among n items, or "x"
// (either case) to exit.
func ValidateChoice(input string, n int) Choice {
	input = strings.TrimSpace(input)
	if strings.EqualFold(input, "x") {
		return Choice{Kind: ChoiceExit}
	}

	selection, err := strconv.Atoi(input)
	if err != nil {
		return Choice{Kind: ChoiceInvalid, Reason: fmt.Sprintf("%q is not a number", input)}
	}
	if selection < 1 || selection > n {
		return Choice{Kind: ChoiceInvalid, Reason: fmt.Sprintf("%d is out of range [1-%d]", selection, n)}
	}
	return Choice{Kind: ChoiceValid, Index: selection - 1}
}

// Prompter reads answers line by line.
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewPrompter creates a new Prompter using stdin and stdout.
func NewPrompter() *Prompter {
	return NewPrompterWithIO(os.Stdin, os.Stdout)
}

// NewPrompterWithIO creates a Prompter with custom reader and writer for testing.
func NewPrompterWithIO(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// Writer returns the prompt output.
func (p *Prompter) Writer() io.Writer {
	return p.writer
}

// Ask prints question and returns the trimmed answer. A final line without
// a newline is still returned; EOF with no input is ErrInputClosed.
func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprint(p.writer, question)

	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", ErrInputClosed
			}
			return strings.TrimSpace(line), nil
		}
		return "", errors.Wrap(err, "reading input")
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question until the answer is y or n.
func (p *Prompter) Confirm(question string) (bool, error) {
	for {
		answer, err := p.Ask(question)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		fmt.Fprintln(p.writer, "Invalid choice, please try again.")
	}
}

// Select lists items numbered from 1 and asks until the answer is a valid
// number or x. Exiting returns errors.ErrUserCancelled.
func (p *Prompter) Select(question string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, ErrNoChoices
	}

	for i, item := range items {
		fmt.Fprintf(p.writer, "%d. %s\n", i+1, item)
	}
	for {
		answer, err := p.Ask(question)
		if err != nil {
			return -1, err
		}
		c := ValidateChoice(answer, len(items))
		switch c.Kind {
		case ChoiceValid:
			return c.Index, nil
		case ChoiceExit:
			return -1, errors.ErrUserCancelled
		}
		fmt.Fprintln(p.writer, "Invalid choice, please try again.")
	}
}

// WaitForEnter blocks until the user presses Enter. EOF counts as Enter.
func (p *Prompter) WaitForEnter() {
	_, _ = p.Ask("Press Enter to continue...")
}
