package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	platformerrors "github.com/jmgilman/go/errors"
)

const clearLines = 50

func (s *Shell) registerBuiltins() {

	s.builtins[CmdDir] = func(cmd Command, s *Shell) error {
		dir := s.state.Cwd()
		if len(cmd.Args) > 0 {
			dir = Resolve(cmd.Args[0], dir, true)
		}

		if !s.store.IsDir(dir) {
			return platformerrors.Newf(CodeNotFound, "Unable to open directory: %s", dir)
		}

		entries, err := s.store.List(dir)
		if err != nil {
			return platformerrors.Wrapf(err, CodeNotFound, "Unable to open directory: %s", dir)
		}

		for _, e := range entries {
			if e.IsDir {
				fmt.Fprintf(s.Out, "     <dir>  %s\n", e.Name)
			} else {
				fmt.Fprintf(s.Out, "%10d  %s\n", e.Size, e.Name)
			}
		}

		if len(entries) == 0 {
			fmt.Fprintln(s.Out, "(No files in the file system)")
		}

		used := s.store.UsedBytes()
		total := s.store.TotalBytes()
		free := total - used
		if free < 0 {
			free = 0
		}

		fmt.Fprintln(s.Out)
		fmt.Fprintf(s.Out, "Used space: %d bytes (%s)\n", used, humanize.IBytes(uint64(used)))
		fmt.Fprintf(s.Out, "Free space: %d bytes (%s)\n", free, humanize.IBytes(uint64(free)))
		fmt.Fprintf(s.Out, "Total space: %d bytes (%s)\n", total, humanize.IBytes(uint64(total)))
		fmt.Fprintln(s.Out)
		return nil
	}

	s.builtins[CmdType] = func(cmd Command, s *Shell) error {
		path := Resolve(cmd.Args[0], s.state.Cwd(), false)
		fmt.Fprintf(s.Out, "Opening file: [%s]\n", path)

		if s.store.IsDir(path) {
			return platformerrors.Newf(CodeNotFound, "%s is a directory.", path)
		}

		f, err := s.store.Open(path)
		if err != nil {
			return platformerrors.Wrap(err, CodeNotFound, "File not found.")
		}
		defer func() { _ = f.Close() }()

		if _, err := io.Copy(s.Out, f); err != nil {
			return platformerrors.Wrap(err, CodeNotFound, "Failed to read file.")
		}

		fmt.Fprintln(s.Out)
		return nil
	}

	s.builtins[CmdDel] = func(cmd Command, s *Shell) error {
		path := Resolve(cmd.Args[0], s.state.Cwd(), false)

		if !s.store.Exists(path) {
			return platformerrors.Newf(CodeNotFound, "File not found: %s", path)
		}
		if s.store.IsDir(path) {
			return platformerrors.Newf(CodeInvalidInput, "%s is a directory, use RMDIR.", path)
		}

		if err := s.store.Remove(path); err != nil {
			return platformerrors.Wrap(err, CodeWriteFailed, "Failed to delete file.")
		}

		fmt.Fprintln(s.Out, "File deleted.")
		return nil
	}

	s.builtins[CmdRen] = func(cmd Command, s *Shell) error {
		from := Resolve(cmd.Args[0], s.state.Cwd(), false)
		to := Resolve(cmd.Args[1], s.state.Cwd(), false)

		if !s.store.Exists(from) {
			return platformerrors.Newf(CodeNotFound, "File not found: %s", from)
		}
		if within(to, from) {
			return platformerrors.Newf(CodeInvalidInput, "Failed to rename file: %s cannot be renamed onto itself.", from)
		}

		if err := s.store.Rename(from, to); err != nil {
			return platformerrors.Wrap(err, CodeWriteFailed, "Failed to rename file.")
		}

		fmt.Fprintln(s.Out, "File renamed successfully.")
		return nil
	}

	s.builtins[CmdMv] = func(cmd Command, s *Shell) error {
		from := Resolve(cmd.Args[0], s.state.Cwd(), false)
		to := Resolve(cmd.Args[1], s.state.Cwd(), false)

		if !s.store.Exists(from) {
			return platformerrors.Newf(CodeNotFound, "File not found: %s", from)
		}

		if strings.HasSuffix(to, "/") || s.store.IsDir(to) {
			if !strings.HasSuffix(to, "/") {
				to += "/"
			}
			to += baseName(strings.TrimSuffix(from, "/"))
		}

		if within(to, from) {
			return platformerrors.Newf(CodeInvalidInput, "Failed to move file: %s cannot be moved into itself.", from)
		}

		if err := s.store.Rename(from, to); err != nil {
			return platformerrors.Wrap(err, CodeWriteFailed, "Failed to move file.")
		}

		fmt.Fprintln(s.Out, "File moved successfully.")
		return nil
	}

	s.builtins[CmdMkdir] = func(cmd Command, s *Shell) error {
		path := Resolve(cmd.Args[0], s.state.Cwd(), false)

		if err := s.store.Mkdir(path); err != nil {
			return platformerrors.Wrap(err, CodeWriteFailed, "Failed to create directory.")
		}

		fmt.Fprintln(s.Out, "Directory created successfully.")
		return nil
	}

	s.builtins[CmdRmdir] = func(cmd Command, s *Shell) error {
		path := Resolve(cmd.Args[0], s.state.Cwd(), false)

		if !s.store.IsDir(path) {
			return platformerrors.Newf(CodeNotFound, "Directory not found: %s", path)
		}

		if err := s.store.Rmdir(path); err != nil {
			return platformerrors.Wrap(err, CodeWriteFailed, "Failed to remove directory (must be empty).")
		}

		fmt.Fprintln(s.Out, "Directory removed successfully.")
		return nil
	}

	s.builtins[CmdCd] = func(cmd Command, s *Shell) error {
		if err := s.state.Navigate(cmd.Args[0], s.store); err != nil {
			return err
		}

		fmt.Fprintf(s.Out, "Current directory: %s\n", s.state.Cwd())
		return nil
	}

	s.builtins[CmdPwd] = func(cmd Command, s *Shell) error {
		fmt.Fprintln(s.Out, s.state.Cwd())
		return nil
	}

	s.builtins[CmdJSONSet] = func(cmd Command, s *Shell) error {
		path := Resolve(cmd.Args[0], s.state.Cwd(), false)
		key, value := cmd.Args[1], cmd.Args[2]

		fmt.Fprintf(s.Out, "Attempting to update field '%s' in file: [%s]\n", key, path)

		if err := s.patcher.SetField(path, key, value); err != nil {
			return err
		}

		fmt.Fprintf(s.Out, "Field '%s' updated to: '%s'\n", key, value)
		fmt.Fprintln(s.Out, "JSON file successfully updated.")
		return nil
	}

	s.builtins[CmdFormat] = func(cmd Command, s *Shell) error {
		s.state.RequestConfirmation(CmdFormat)
		fmt.Fprintf(s.Out, "WARNING: this erases every file. Type %s to confirm, anything else cancels.\n",
			strings.Join(s.confirmTokens, " or "))
		return nil
	}

	s.builtins[CmdCls] = func(cmd Command, s *Shell) error {
		fmt.Fprint(s.Out, "\x1b[2J\x1b[H")
		fmt.Fprint(s.Out, strings.Repeat("\n", clearLines))
		return nil
	}

	s.builtins[CmdHelp] = func(cmd Command, s *Shell) error {
		fmt.Fprintln(s.Out, "Available commands:")
		for _, def := range commandTable {
			name := def.usage
			if len(def.aliases) > 0 {
				name += " (" + strings.Join(def.aliases, ", ") + ")"
			}
			fmt.Fprintf(s.Out, "  %-40s %s\n", name, def.desc)
		}

		if custom := s.custom.Names(); len(custom) > 0 {
			fmt.Fprintln(s.Out, "Extra commands:")
			for _, name := range custom {
				fmt.Fprintf(s.Out, "  %s\n", name)
			}
		}
		return nil
	}

	s.builtins[CmdVersion] = func(cmd Command, s *Shell) error {
		fmt.Fprintf(s.Out, "flashshell v%s\n", Version)
		return nil
	}

	s.builtins[CmdUptime] = environmentBuiltin(func(env EnvironmentInfo) string { return env.Uptime() })
	s.builtins[CmdFree] = environmentBuiltin(func(env EnvironmentInfo) string { return env.Free() })
	s.builtins[CmdChipInfo] = environmentBuiltin(func(env EnvironmentInfo) string { return env.ChipInfo() })
}

func environmentBuiltin(query func(EnvironmentInfo) string) Builtin {
	return func(cmd Command, s *Shell) error {
		if s.env == nil {
			return platformerrors.Newf(CodeNotFound, "%s is not available on this system.", cmd.Name)
		}

		fmt.Fprintln(s.Out, strings.TrimRight(query(s.env), "\n"))
		return nil
	}
}
