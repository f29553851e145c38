package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PasswordEnv is read by login and register when --password is not given.
const PasswordEnv = "TASKTRACK_PASSWORD"

// Stdin is where passwords are prompted from. Replaced in tests.
var Stdin io.Reader = os.Stdin

// prompter reads answers line by line from Stdin, printing prompts to errOut.
type prompter struct {
	in     io.Reader
	r      *bufio.Reader
	errOut io.Writer
}

func newPrompter(errOut io.Writer) *prompter {
	return &prompter{in: Stdin, r: bufio.NewReader(Stdin), errOut: errOut}
}

// line prompts for one line. An empty answer is an error naming what.
func (p *prompter) line(label, what string) (string, error) {
	fmt.Fprintf(p.errOut, "%s: ", label)
	s, err := p.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	s = strings.TrimRight(s, "\r\n")
	if s == "" {
		return "", fmt.Errorf("%s required", what)
	}
	return s, nil
}

// secret prompts without echo when the input is a terminal and falls back
// to line otherwise.
func (p *prompter) secret(label, what string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.line(label, what)
	}

	fmt.Fprintf(p.errOut, "%s: ", label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.errOut)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", what, err)
	}
	if len(b) == 0 {
		return "", fmt.Errorf("%s required", what)
	}
	return string(b), nil
}

// password resolves a password from the flag, then PasswordEnv, then a prompt.
func (p *prompter) password(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv(PasswordEnv); env != "" {
		return env, nil
	}
	return p.secret("Password", "password")
}

// optionalString is a string flag that remembers whether it was set, so an
// explicit empty value can be told apart from an absent flag.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// ptr returns the value when the flag was given, nil otherwise.
func (o *optionalString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}
