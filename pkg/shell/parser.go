package shell

import (
	"strings"
	"unicode"
)

// Canonical command names. Aliases map onto these in the command table.
const (
	CmdNone         = ""
	CmdUnrecognized = "?"

	CmdDir      = "DIR"
	CmdType     = "TYPE"
	CmdDel      = "DEL"
	CmdRen      = "REN"
	CmdMv       = "MV"
	CmdMkdir    = "MKDIR"
	CmdRmdir    = "RMDIR"
	CmdCd       = "CD"
	CmdPwd      = "PWD"
	CmdJSONSet  = "JSONSET"
	CmdFormat   = "FORMAT"
	CmdCls      = "CLS"
	CmdHelp     = "HELP"
	CmdVersion  = "VERSION"
	CmdUptime   = "UPTIME"
	CmdFree     = "FREE"
	CmdChipInfo = "CHIPINFO"
)

// argShape describes how the text after the command word is split.
type argShape int

const (
	argsNone argShape = iota
	argsOptionalPath
	argsPath
	argsTwoPaths
	argsPathKeyValue
)

type commandDef struct {
	name    string
	aliases []string
	shape   argShape
	usage   string
	desc    string
}

var commandTable = []commandDef{
	{name: CmdDir, aliases: []string{"LS"}, shape: argsOptionalPath, usage: "DIR [path]", desc: "List a directory and the space in use."},
	{name: CmdType, aliases: []string{"CAT"}, shape: argsPath, usage: "TYPE <path>", desc: "Print a file."},
	{name: CmdDel, aliases: []string{"RM"}, shape: argsPath, usage: "DEL <path>", desc: "Delete a file."},
	{name: CmdRen, shape: argsTwoPaths, usage: "REN <old> <new>", desc: "Rename a file."},
	{name: CmdMv, shape: argsTwoPaths, usage: "MV <src> <dst>", desc: "Move a file, into <dst> if it is a directory."},
	{name: CmdMkdir, shape: argsPath, usage: "MKDIR <path>", desc: "Create a directory."},
	{name: CmdRmdir, shape: argsPath, usage: "RMDIR <path>", desc: "Remove an empty directory."},
	{name: CmdCd, shape: argsPath, usage: "CD <path|..|/>", desc: "Change the working directory."},
	{name: CmdPwd, shape: argsNone, usage: "PWD", desc: "Print the working directory."},
	{name: CmdJSONSet, shape: argsPathKeyValue, usage: `JSONSET <path> <key> "<value>"`, desc: "Set a field in a JSON file."},
	{name: CmdFormat, shape: argsNone, usage: "FORMAT", desc: "Erase the whole file system (asks first)."},
	{name: CmdCls, aliases: []string{"CLEAR"}, shape: argsNone, usage: "CLS", desc: "Clear the terminal."},
	{name: CmdHelp, aliases: []string{"MAN"}, shape: argsNone, usage: "HELP", desc: "Show this list."},
	{name: CmdVersion, shape: argsNone, usage: "VERSION", desc: "Show the shell version."},
	{name: CmdUptime, shape: argsNone, usage: "UPTIME", desc: "Show how long the system has been running."},
	{name: CmdFree, shape: argsNone, usage: "FREE", desc: "Show free memory."},
	{name: CmdChipInfo, shape: argsNone, usage: "CHIPINFO", desc: "Show host and processor details."},
}

// lookupCommand finds a builtin by canonical name or alias.
func lookupCommand(name string) (*commandDef, bool) {
	for i := range commandTable {
		def := &commandTable[i]
		if def.name == name {
			return def, true
		}
		for _, alias := range def.aliases {
			if alias == name {
				return def, true
			}
		}
	}
	return nil, false
}

// Command is one tokenized input line.
type Command struct {
	// Name is the canonical command name, CmdNone for a blank line or
	// CmdUnrecognized when the first word matched nothing.
	Name string
	// Word is the upper-cased first word as typed.
	Word string
	Args []string
	// Raw is everything after the command word, as typed, trimmed.
	Raw string
	// Err is set when the argument count does not fit the command.
	Err error
}

type DefaultParser struct {
	defs map[string]*commandDef
}

func NewDefaultParser() *DefaultParser {
	p := &DefaultParser{
		defs: make(map[string]*commandDef),
	}

	for i := range commandTable {
		def := &commandTable[i]
		p.defs[def.name] = def
		for _, alias := range def.aliases {
			p.defs[alias] = def
		}
	}

	return p
}

// Parse splits one line into a Command. Names match case-insensitively;
// arguments keep the case they were typed in.
func (p *DefaultParser) Parse(line string) Command {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{Name: CmdNone}
	}

	word, rest := nextField(line)
	upper := strings.ToUpper(word)

	def, ok := p.defs[upper]
	if !ok {
		return Command{Name: CmdUnrecognized, Word: upper, Raw: rest}
	}

	cmd := Command{Name: def.name, Word: upper, Raw: rest}
	cmd.Args, cmd.Err = splitArgs(def, rest)

	return cmd
}

func splitArgs(def *commandDef, rest string) ([]string, error) {
	switch def.shape {
	case argsNone:
		if rest != "" {
			return nil, usageError(def)
		}
		return nil, nil

	case argsOptionalPath:
		if rest == "" {
			return nil, nil
		}
		return []string{rest}, nil

	case argsPath:
		if rest == "" {
			return nil, usageError(def)
		}
		return []string{rest}, nil

	case argsTwoPaths:
		first, second := nextField(rest)
		if first == "" || second == "" {
			return nil, usageError(def)
		}
		return []string{first, second}, nil

	case argsPathKeyValue:
		path, tail := nextField(rest)
		key, value := nextField(tail)
		if path == "" || key == "" || value == "" {
			return nil, usageError(def)
		}
		return []string{path, key, unquote(value)}, nil
	}

	return nil, usageError(def)
}

// nextField returns the text up to the first whitespace and the trimmed
// remainder.
func nextField(s string) (string, string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}

	return s[:i], strings.TrimSpace(s[i:])
}

// unquote strips one pair of double quotes wrapping the whole value. Anything
// else, including unbalanced or nested quotes, is returned as typed.
func unquote(v string) string {
	if len(v) < 2 || v[0] != '"' || v[len(v)-1] != '"' {
		return v
	}

	inner := v[1 : len(v)-1]
	if strings.ContainsRune(inner, '"') {
		return v
	}

	return inner
}
