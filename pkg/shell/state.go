package shell

import (
	"strings"

	platformerrors "github.com/jmgilman/go/errors"
)

type confirmState int

const (
	stateIdle confirmState = iota
	stateAwaitingConfirmation
)

// State is the per-session part of the shell: the working directory and the
// destructive action, if any, waiting for the next line to confirm it.
type State struct {
	cwd     string
	confirm confirmState
	pending string
}

func NewState() *State {
	return &State{cwd: "/", confirm: stateIdle}
}

func (st *State) Cwd() string {
	return st.cwd
}

// Navigate moves the working directory. "/" and ".." never touch the store;
// anything else must resolve to an existing directory or the state is left
// unchanged. The stored directory is always clean.
func (st *State) Navigate(target string, store FileStore) error {
	target = strings.TrimSpace(target)

	switch target {
	case "/":
		st.cwd = "/"
		return nil

	case "..":
		st.cwd = parentDir(st.cwd)
		return nil
	}

	dir := cleanDir(Resolve(target, st.cwd, true))
	if !store.IsDir(dir) {
		return platformerrors.Newf(CodeInvalidTarget, "Directory not found: %s", dir)
	}

	st.cwd = dir
	return nil
}

// RequestConfirmation arms action for the next line. A request made while
// another is pending replaces it.
func (st *State) RequestConfirmation(action string) {
	st.confirm = stateAwaitingConfirmation
	st.pending = action
}

func (st *State) AwaitingConfirmation() bool {
	return st.confirm == stateAwaitingConfirmation
}

// TakePending returns the armed action and returns the state to idle.
func (st *State) TakePending() (string, bool) {
	if st.confirm != stateAwaitingConfirmation {
		return "", false
	}

	action := st.pending
	st.confirm = stateIdle
	st.pending = ""
	return action, true
}
