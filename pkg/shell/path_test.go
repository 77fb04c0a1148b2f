package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		cwd             string
		expectDirectory bool
		expected        string
	}{
		{"absolute path ignores cwd", "/a/b.txt", "/x/", false, "/a/b.txt"},
		{"relative path joins cwd", "b.txt", "/a/", false, "/a/b.txt"},
		{"relative path at root", "b.txt", "/", false, "/b.txt"},
		{"directory gets trailing slash", "logs", "/", true, "/logs/"},
		{"existing trailing slash is kept", "logs/", "/a/", true, "/a/logs/"},
		{"surrounding whitespace trimmed", "  c.json \n", "/", false, "/c.json"},
		{"dot segments are not collapsed", "../x", "/a/", false, "/a/../x"},
		{"root as directory", "/", "/a/", true, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.input, tt.cwd, tt.expectDirectory))
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	for _, p := range []string{"/a/b", "/a/b/", "/"} {
		once := Resolve(p, "/cwd/", true)
		assert.Equal(t, once, Resolve(once, "/other/", true), p)
	}
}

func TestParentDir(t *testing.T) {
	tests := []struct {
		dir      string
		expected string
	}{
		{"/", "/"},
		{"/a/", "/"},
		{"/a/b/", "/a/"},
		{"/a/b/c/", "/a/b/"},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			assert.Equal(t, tt.expected, parentDir(tt.dir))
		})
	}
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "c.txt", baseName("/a/b/c.txt"))
	assert.Equal(t, "c.txt", baseName("c.txt"))
	assert.Equal(t, "", baseName("/a/"))
}

func TestCleanDir(t *testing.T) {
	tests := []struct {
		dir      string
		expected string
	}{
		{"/", "/"},
		{"//a", "/a/"},
		{"/a/../b/", "/b/"},
		{"/a/./b", "/a/b/"},
		{"/../..", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanDir(tt.dir))
		})
	}
}

func TestWithin(t *testing.T) {
	tests := []struct {
		p, dir   string
		expected bool
	}{
		{"/logs", "/logs", true},
		{"/logs/", "/logs", true},
		{"/logs/logs", "/logs", true},
		{"/logs/a/b", "/logs/", true},
		{"/logs2", "/logs", false},
		{"/other/logs", "/logs", false},
		{"/anything", "/", true},
	}

	for _, tt := range tests {
		t.Run(tt.p+" in "+tt.dir, func(t *testing.T) {
			assert.Equal(t, tt.expected, within(tt.p, tt.dir))
		})
	}
}
