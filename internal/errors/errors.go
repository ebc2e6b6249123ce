package errors

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	bulletStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// DefaultMaxShown caps how many errors Format prints
const DefaultMaxShown = 10

// List collects every failure of one operation so they can be reported at once
type List struct {
	Title  string
	Errors []error
}

// NewList creates an empty error list with a report title
func NewList(title string) *List {
	return &List{
		Title:  title,
		Errors: make([]error, 0),
	}
}

// Add appends err to the list, flattening nested lists. nil is ignored.
func (el *List) Add(err error) {
	if err == nil {
		return
	}
	if nested, ok := err.(*List); ok && nested != el {
		el.Errors = append(el.Errors, nested.Errors...)
		return
	}
	el.Errors = append(el.Errors, err)
}

// Addf appends a formatted error
func (el *List) Addf(format string, args ...any) {
	el.Add(fmt.Errorf(format, args...))
}

// Len returns the number of collected errors
func (el *List) Len() int {
	if el == nil {
		return 0
	}
	return len(el.Errors)
}

// HasErrors returns true if there are any errors
func (el *List) HasErrors() bool {
	return el.Len() > 0
}

// ErrorOrNil returns the list as an error when it holds anything, nil otherwise
func (el *List) ErrorOrNil() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// Error implements the error interface
func (el *List) Error() string {
	if len(el.Errors) == 0 {
		return "no errors"
	}

	if len(el.Errors) == 1 {
		return el.Errors[0].Error()
	}

	messages := make([]string, 0, len(el.Errors))
	for _, err := range el.Errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Unwrap exposes the collected errors to errors.Is and errors.As
func (el *List) Unwrap() []error {
	return el.Errors
}

// Format renders a styled report, showing at most DefaultMaxShown errors
func (el *List) Format() string {
	return el.FormatN(DefaultMaxShown)
}

// FormatN renders a styled report, showing at most maxErrors errors
func (el *List) FormatN(maxErrors int) string {
	if len(el.Errors) == 0 {
		return ""
	}

	var result strings.Builder

	title := el.Title
	if title == "" {
		title = "Errors"
	}

	errorsToShow := el.Errors
	if maxErrors > 0 && len(errorsToShow) > maxErrors {
		errorsToShow = errorsToShow[:maxErrors]
	}

	switch {
	case len(el.Errors) == 1:
		result.WriteString(headerStyle.Render(title+":") + "\n")
	case len(errorsToShow) == len(el.Errors):
		result.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d):", title, len(el.Errors))) + "\n")
	default:
		result.WriteString(headerStyle.Render(fmt.Sprintf("%s (showing first %d of %d):", title, len(errorsToShow), len(el.Errors))) + "\n")
	}

	for _, err := range errorsToShow {
		result.WriteString(fmt.Sprintf("  %s %s\n", bulletStyle.Render("✗"), err.Error()))
	}

	if hidden := len(el.Errors) - len(errorsToShow); hidden > 0 {
		result.WriteString("\n" + noteStyle.Render("Note:") + fmt.Sprintf(" %d additional errors not shown.\n", hidden))
	}

	return result.String()
}
