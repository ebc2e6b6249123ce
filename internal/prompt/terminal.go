package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	labelStyle  = lipgloss.NewStyle().Bold(true)
	reasonStyle = lipgloss.NewStyle().Faint(true).Italic(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	groupStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	choiceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Terminal prompts on a line-oriented terminal. Secret values are read
// without echo when the input is a tty.
type Terminal struct {
	in        io.Reader
	out       io.Writer
	reader    *bufio.Reader
	lastGroup string
}

// NewTerminal creates a terminal adapter reading from in and writing to out
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:     in,
		out:    out,
		reader: bufio.NewReader(in),
	}
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Prompt implements Adapter. It keeps asking until the answer passes the
// request's Check hook, the user declines by entering nothing, or input ends.
func (t *Terminal) Prompt(ctx context.Context, req *Request) (Answer, error) {
	if req.Group != "" && req.Group != t.lastGroup {
		fmt.Fprintln(t.out, groupStyle.Render("── "+req.Group))
		t.lastGroup = req.Group
	}

	lastError := req.LastError
	for {
		if err := ctx.Err(); err != nil {
			return Answer{}, err
		}

		t.render(req, lastError)

		line, err := t.readLine(req.Secret)
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				return Answer{Declined: true}, nil
			}
			return Answer{}, err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			if req.HasDefault || !req.Required {
				return Answer{Declined: true}, nil
			}
			lastError = "a value is required"
			continue
		}

		raw, convErr := t.convert(req, line)
		if convErr == nil {
			convErr = req.Validate(raw)
		}
		if convErr != nil {
			lastError = convErr.Error()
			continue
		}
		return Answer{Value: raw}, nil
	}
}

func (t *Terminal) render(req *Request, lastError string) {
	if lastError != "" {
		fmt.Fprintln(t.out, errorStyle.Render("✗ "+lastError))
	}
	if req.Reason != "" {
		fmt.Fprintln(t.out, reasonStyle.Render("  "+req.Reason))
	}
	if req.Shape == SingleChoice || req.Shape == MultiSelect {
		for i, c := range req.Choices {
			fmt.Fprintf(t.out, "  %s %s\n", choiceStyle.Render(strconv.Itoa(i+1)+")"), c)
		}
	}

	prompt := labelStyle.Render(req.Label)
	if hint := req.Hint(); hint != "" {
		prompt += " " + hintStyle.Render(hint)
	}
	fmt.Fprint(t.out, prompt+": ")
}

func (t *Terminal) readLine(secret bool) (string, error) {
	if f, ok := t.in.(*os.File); ok && secret && IsTerminal(f) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(t.out)
		return string(b), err
	}
	return t.reader.ReadString('\n')
}

// convert maps numbered picks to choice values
func (t *Terminal) convert(req *Request, line string) (string, error) {
	switch req.Shape {
	case SingleChoice:
		return pick(req.Choices, line)
	case MultiSelect:
		var picked []string
		for _, part := range strings.Split(line, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := pick(req.Choices, part)
			if err != nil {
				return "", err
			}
			picked = append(picked, v)
		}
		return strings.Join(picked, ","), nil
	default:
		return line, nil
	}
}

func pick(choices []string, s string) (string, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > len(choices) {
			return "", fmt.Errorf("pick a number between 1 and %d", len(choices))
		}
		return choices[n-1], nil
	}
	return s, nil
}
