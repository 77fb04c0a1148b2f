package shell

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	platformerrors "github.com/jmgilman/go/errors"
	"go.uber.org/zap"
)

// Version is reported by the VERSION builtin and the banner.
var Version = "1.0.0"

// UnrecognizedMessage is printed for any non-empty line that names no command.
const UnrecognizedMessage = "Unrecognized command. Type HELP to see the available commands."

// DefaultMaxLineBytes caps one input line, newline included.
const DefaultMaxLineBytes = 8192

// DefaultConfirmTokens are the answers that let a pending FORMAT go ahead.
var DefaultConfirmTokens = []string{"Y", "YES"}

// type Builtin
type Builtin func(cmd Command, s *Shell) error

// type Shell
type Shell struct {
	in            *bufio.Reader
	Out           io.Writer
	state         *State
	store         FileStore
	env           EnvironmentInfo
	patcher       *Patcher
	parser        Parser
	builtins      map[string]Builtin
	custom        *CommandRegistry
	logger        *zap.Logger
	lock          sync.Locker
	prompt        string
	banner        bool
	confirmTokens []string
	maxLine       int
}

type Option func(*Shell)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Shell) { s.logger = logger }
}

func WithEnvironment(env EnvironmentInfo) Option {
	return func(s *Shell) { s.env = env }
}

func WithPatcher(p *Patcher) Option {
	return func(s *Shell) { s.patcher = p }
}

func WithPrompt(prompt string) Option {
	return func(s *Shell) { s.prompt = prompt }
}

func WithBanner(enabled bool) Option {
	return func(s *Shell) { s.banner = enabled }
}

// WithConfirmTokens replaces the accepted answers to a FORMAT prompt.
// Matching is case-insensitive.
func WithConfirmTokens(tokens []string) Option {
	return func(s *Shell) {
		s.confirmTokens = s.confirmTokens[:0]
		for _, t := range tokens {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t != "" && !slices.Contains(s.confirmTokens, t) {
				s.confirmTokens = append(s.confirmTokens, t)
			}
		}
	}
}

// WithMaxLineBytes caps the length of an input line. Longer lines are
// discarded without being run.
func WithMaxLineBytes(n int) Option {
	return func(s *Shell) {
		if n > 0 {
			s.maxLine = n
		}
	}
}

// WithLock serializes Execute calls across shells that share a store.
func WithLock(l sync.Locker) Option {
	return func(s *Shell) { s.lock = l }
}

// func New
func New(reader io.Reader, out io.Writer, store FileStore, opts ...Option) *Shell {
	s := &Shell{
		in:       bufio.NewReader(reader),
		Out:      out,
		state:    NewState(),
		store:    store,
		parser:   NewDefaultParser(),
		builtins: make(map[string]Builtin),
		custom:   NewCommandRegistry(),
		logger:   zap.NewNop(),
		prompt:   "> ",
		maxLine:  DefaultMaxLineBytes,
	}
	WithConfirmTokens(DefaultConfirmTokens)(s)

	for _, opt := range opts {
		opt(s)
	}

	if s.patcher == nil {
		s.patcher = NewPatcher(store, DefaultMaxDocumentBytes)
	}

	s.registerBuiltins()
	return s
}

func (s *Shell) State() *State {
	return s.state
}

// AddCommand registers an extra command. Names are case-insensitive and may
// not shadow a builtin.
func (s *Shell) AddCommand(name string, fn CustomCommand) error {
	return s.custom.Register(name, fn)
}

//func Run

// Run reads lines until the input ends. Operation failures are printed and
// the loop continues; only a read error stops it.
func (s *Shell) Run() error {
	if s.banner {
		s.printBanner()
	}

	for {
		s.printPrompt()

		line, tooLong, err := s.readLine()
		switch {
		case tooLong:
			s.rejectLine()
		case line != "":
			_ = s.Execute(line)
		}

		if err == io.EOF {
			return nil
		}

		if err != nil {
			return err
		}
	}
}

// Execute handles one input line and writes its result to Out. The returned
// error has already been printed; it is returned for callers that want the
// error kind.
func (s *Shell) Execute(line string) error {
	if s.lock != nil {
		s.lock.Lock()
		defer s.lock.Unlock()
	}

	if action, ok := s.state.TakePending(); ok {
		return s.confirm(action, line)
	}

	cmd := s.parser.Parse(line)

	switch cmd.Name {
	case CmdNone:
		return nil

	case CmdUnrecognized:
		err := s.custom.Execute(cmd.Word, cmd.Raw, s.Out)
		if !errors.Is(err, ErrNotFound) {
			s.logger.Debug("dispatch custom", zap.String("command", cmd.Word))
			if err != nil {
				return s.fail(cmd, err)
			}
			return nil
		}

		s.logger.Debug("unrecognized command", zap.String("word", cmd.Word))
		fmt.Fprintln(s.Out, UnrecognizedMessage)
		return ErrUnrecognized
	}

	s.logger.Debug("dispatch",
		zap.String("command", cmd.Name),
		zap.Strings("args", cmd.Args),
		zap.String("cwd", s.state.Cwd()))

	if cmd.Err != nil {
		return s.fail(cmd, cmd.Err)
	}

	fn, ok := s.builtins[cmd.Name]
	if !ok {
		return s.fail(cmd, platformerrors.Newf(CodeInvalidInput, "%s is not available.", cmd.Name))
	}

	if err := fn(cmd, s); err != nil {
		return s.fail(cmd, err)
	}

	return nil
}

func (s *Shell) fail(cmd Command, err error) error {
	s.logger.Warn("command failed",
		zap.String("command", cmd.Word),
		zap.String("code", string(platformerrors.GetCode(err))),
		zap.Error(err))

	fmt.Fprintln(s.Out, describe(err))
	return err
}

// confirm consumes the line following a confirmation request. The pending
// action runs only for an accepted token; any other line cancels it.
func (s *Shell) confirm(action, line string) error {
	answer := strings.ToUpper(strings.TrimSpace(line))
	if !slices.Contains(s.confirmTokens, answer) {
		s.logger.Info("confirmation declined", zap.String("action", action))
		fmt.Fprintln(s.Out, "Operation cancelled.")
		return nil
	}

	switch action {
	case CmdFormat:
		s.logger.Info("formatting file system")
		if err := s.store.Format(); err != nil {
			return s.fail(Command{Name: CmdFormat, Word: CmdFormat},
				platformerrors.Wrap(err, CodeWriteFailed, "Format failed."))
		}
		s.state.cwd = "/"
		fmt.Fprintln(s.Out, "File system formatted.")
	}

	return nil
}

// readLine returns the next line with its newline. The line ending does not
// count toward maxLine. Bytes past maxLine are dropped up to the newline and
// reported through tooLong, so a line that never ends costs at most one buffer.
func (s *Shell) readLine() (line string, tooLong bool, err error) {
	var buf []byte

	for {
		var chunk []byte
		chunk, err = s.in.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(bytes.TrimRight(chunk, "\r\n")) > s.maxLine {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}

		if err == bufio.ErrBufferFull {
			continue
		}
		return string(buf), tooLong, err
	}
}

// rejectLine reports an over-long line. Like any other line it answers a
// pending confirmation, which it declines.
func (s *Shell) rejectLine() {
	if s.lock != nil {
		s.lock.Lock()
		defer s.lock.Unlock()
	}

	if action, ok := s.state.TakePending(); ok {
		s.logger.Info("confirmation declined", zap.String("action", action))
		fmt.Fprintln(s.Out, "Operation cancelled.")
	}

	_ = s.fail(Command{Word: "(line)"},
		platformerrors.Newf(CodeInvalidInput, "Line too long, the limit is %d bytes.", s.maxLine))
}

func (s *Shell) printPrompt() {
	if s.prompt != "" {
		fmt.Fprint(s.Out, s.prompt)
	}
}

func (s *Shell) printBanner() {
	fmt.Fprintf(s.Out, "flashshell v%s\n", Version)
	fmt.Fprintln(s.Out, "Interactive file console. Type HELP to see the available commands.")
	fmt.Fprintln(s.Out)
}
