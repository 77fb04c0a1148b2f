package shell

import (
	"path"
	"strings"
)

// Resolve turns a user supplied path into an absolute one. Relative input is
// joined onto cwd verbatim; ".." and "." segments are left for the store to
// interpret. Only the CD builtin collapses "..".
func Resolve(input, cwd string, expectDirectory bool) string {
	p := strings.TrimSpace(input)

	if !strings.HasPrefix(p, "/") {
		p = cwd + p
	}

	if expectDirectory && !strings.HasSuffix(p, "/") {
		p += "/"
	}

	return p
}

// parentDir strips the last segment of a directory path, keeping the trailing
// slash. The root is its own parent.
func parentDir(dir string) string {
	if dir == "/" {
		return "/"
	}

	trimmed := strings.TrimSuffix(dir, "/")
	i := strings.LastIndex(trimmed, "/")
	if i <= 0 {
		return "/"
	}

	return trimmed[:i+1]
}

// baseName returns the last "/"-delimited segment of p.
func baseName(p string) string {
	return p[strings.LastIndex(p, "/")+1:]
}

// cleanDir collapses ".", ".." and repeated slashes in an absolute directory
// path and keeps the trailing slash. ".." never climbs above the root.
func cleanDir(dir string) string {
	cleaned := path.Clean("/" + dir)
	if cleaned == "/" {
		return "/"
	}
	return cleaned + "/"
}

// within reports whether p is dir itself or lies below it.
func within(p, dir string) bool {
	p, dir = path.Clean("/"+p), path.Clean("/"+dir)
	if p == dir || dir == "/" {
		return true
	}
	return strings.HasPrefix(p, dir+"/")
}
