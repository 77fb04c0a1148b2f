package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Parse(t *testing.T) {

	// Table-driven test: each test case has a name, input, expected command, and expected error kind.
	tests := []struct {
		name        string
		input       string
		expected    Command
		expectedErr func(error) bool
	}{
		{
			name:     "empty input",
			input:    "",
			expected: Command{Name: CmdNone},
		},
		{
			name:     "only whitespace",
			input:    "   \t  \r\n",
			expected: Command{Name: CmdNone},
		},
		{
			name:     "no argument command",
			input:    "HELP",
			expected: Command{Name: CmdHelp, Word: "HELP"},
		},
		{
			name:     "command word is case insensitive",
			input:    "dir",
			expected: Command{Name: CmdDir, Word: "DIR"},
		},
		{
			name:     "alias maps to canonical name",
			input:    "ls /logs",
			expected: Command{Name: CmdDir, Word: "LS", Args: []string{"/logs"}, Raw: "/logs"},
		},
		{
			name:     "argument keeps its case",
			input:    "cat /Data/Config.JSON",
			expected: Command{Name: CmdType, Word: "CAT", Args: []string{"/Data/Config.JSON"}, Raw: "/Data/Config.JSON"},
		},
		{
			name:     "trailing newline is ignored",
			input:    "CD ..\r\n",
			expected: Command{Name: CmdCd, Word: "CD", Args: []string{".."}, Raw: ".."},
		},
		{
			name:     "two paths",
			input:    "MV a.txt   logs/",
			expected: Command{Name: CmdMv, Word: "MV", Args: []string{"a.txt", "logs/"}, Raw: "a.txt   logs/"},
		},
		{
			name:  "jsonset strips wrapping quotes",
			input: `JSONSET /cfg.json ssid "Home Network"`,
			expected: Command{
				Name: CmdJSONSet,
				Word: "JSONSET",
				Args: []string{"/cfg.json", "ssid", "Home Network"},
				Raw:  `/cfg.json ssid "Home Network"`,
			},
		},
		{
			name:  "jsonset unquoted value keeps inner spaces",
			input: "jsonset cfg.json mode fast  and  loose",
			expected: Command{
				Name: CmdJSONSet,
				Word: "JSONSET",
				Args: []string{"cfg.json", "mode", "fast  and  loose"},
				Raw:  "cfg.json mode fast  and  loose",
			},
		},
		{
			name:  "jsonset nested quotes are kept",
			input: `JSONSET a.json k "say "hi""`,
			expected: Command{
				Name: CmdJSONSet,
				Word: "JSONSET",
				Args: []string{"a.json", "k", `"say "hi""`},
				Raw:  `a.json k "say "hi""`,
			},
		},
		{
			name:     "unrecognized command",
			input:    "reboot now",
			expected: Command{Name: CmdUnrecognized, Word: "REBOOT", Raw: "now"},
		},
		{
			name:        "missing path",
			input:       "DEL",
			expected:    Command{Name: CmdDel, Word: "DEL"},
			expectedErr: IsInvalidInput,
		},
		{
			name:        "missing second path",
			input:       "REN old.txt",
			expected:    Command{Name: CmdRen, Word: "REN", Raw: "old.txt"},
			expectedErr: IsInvalidInput,
		},
		{
			name:        "jsonset without value",
			input:       "JSONSET cfg.json key",
			expected:    Command{Name: CmdJSONSet, Word: "JSONSET", Raw: "cfg.json key"},
			expectedErr: IsInvalidInput,
		},
		{
			name:        "extra text after no argument command",
			input:       "FORMAT now",
			expected:    Command{Name: CmdFormat, Word: "FORMAT", Raw: "now"},
			expectedErr: IsInvalidInput,
		},
	}

	for _, tt := range tests {

		t.Run(tt.name, func(t *testing.T) {

			parser := NewDefaultParser()
			res := parser.Parse(tt.input)

			if tt.expectedErr != nil {
				require.Error(t, res.Err)
				assert.True(t, tt.expectedErr(res.Err), "unexpected error kind: %v", res.Err)
			} else {
				require.NoError(t, res.Err)
			}

			res.Err = nil
			assert.Equal(t, tt.expected, res)
		})

	}

}

func TestUnquote(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"value"`, "value"},
		{`""`, ""},
		{`"`, `"`},
		{`"open`, `"open`},
		{`close"`, `close"`},
		{`plain`, "plain"},
		{`"a"b"`, `"a"b"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, unquote(tt.input))
		})
	}
}

func TestLookupCommand(t *testing.T) {
	for _, def := range commandTable {
		got, ok := lookupCommand(def.name)
		require.True(t, ok, def.name)
		assert.Equal(t, def.name, got.name)

		for _, alias := range def.aliases {
			got, ok := lookupCommand(alias)
			require.True(t, ok, alias)
			assert.Equal(t, def.name, got.name)
		}
	}

	_, ok := lookupCommand("REBOOT")
	assert.False(t, ok)
}
