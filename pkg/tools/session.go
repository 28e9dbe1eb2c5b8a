package tools

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Session is the set of environment variables an operation works against.
// Operations never touch the process environment; they return a new Session
// and the caller decides whether to apply it.
type Session struct {
	vars map[string]string
}

// NewSession builds a Session from KEY=VALUE pairs such as os.Environ().
func NewSession(environ []string) Session {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = v
	}
	return Session{vars: vars}
}

func (s Session) Get(name string) (string, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Value returns the variable or "" when unset.
func (s Session) Value(name string) string {
	return s.vars[name]
}

// With returns a copy of s with name set to value.
func (s Session) With(name, value string) Session {
	vars := make(map[string]string, len(s.vars)+1)
	for k, v := range s.vars {
		vars[k] = v
	}
	vars[name] = value
	return Session{vars: vars}
}

// Diff lists the variables whose value in s differs from base.
func (s Session) Diff(base Session) map[string]string {
	changed := make(map[string]string)
	for k, v := range s.vars {
		if old, ok := base.vars[k]; !ok || old != v {
			changed[k] = v
		}
	}
	return changed
}

// Prompter asks the user a question and returns the raw answer.
type Prompter interface {
	Prompt(question string) (string, error)
}

// PromptFunc adapts a function to Prompter.
type PromptFunc func(question string) (string, error)

func (f PromptFunc) Prompt(question string) (string, error) {
	return f(question)
}

// LinePrompter writes the question to Out and reads one line from In.
type LinePrompter struct {
	Out io.Writer
	in  *bufio.Reader
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{Out: out, in: bufio.NewReader(in)}
}

func (p *LinePrompter) Prompt(question string) (string, error) {
	if p.Out != nil {
		fmt.Fprint(p.Out, question)
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		// 最后一行可能没有换行符
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func isConfirmed(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y":
		return true
	}
	return false
}
