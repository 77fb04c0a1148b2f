package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Neev4n/flashshell/internal/config"
	"github.com/Neev4n/flashshell/internal/logging"
	"github.com/Neev4n/flashshell/internal/server"
	"github.com/Neev4n/flashshell/internal/store"
	"github.com/Neev4n/flashshell/internal/sysinfo"
	"github.com/Neev4n/flashshell/pkg/shell"
)

var (
	// Global flags
	configPath string
	rootDir    string
	inMemory   bool
	listenAddr string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "flashshell",
	Short: "Interactive console over a small file store",
	Long: `flashshell reads one command per line and answers on the same stream.

It manages files and directories in its store, edits fields of JSON files
and reports on the host it runs on. Type HELP inside a session for the list
of commands.`,
	Version:       shell.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "flashshell.yaml", "path to the YAML config file")
	rootCmd.Flags().StringVar(&rootDir, "root", "", "directory served by the local store")
	rootCmd.Flags().BoolVar(&inMemory, "memory", false, "use an empty in-memory store")
	rootCmd.Flags().StringVar(&listenAddr, "listen", "", "serve sessions over TCP on this address instead of stdin")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "flashshell:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger, closeLogger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = closeLogger() }()

	st, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	logger.Info("store ready",
		zap.Stringer("backend", st.Type()),
		zap.Int64("capacity", st.TotalBytes()))

	env := sysinfo.New(time.Now())
	patcher := shell.NewPatcher(st, cfg.Document.MaxBytes,
		shell.WithAtomicWrites(cfg.Document.AtomicWrites))

	interactive := cfg.Server.Listen == "" && term.IsTerminal(int(os.Stdin.Fd()))

	srv := server.New(func(sess server.Session) *shell.Shell {
		prompt := cfg.Shell.Prompt
		if cfg.Server.Listen == "" && !interactive {
			// piped input gets answers only
			prompt = ""
		}

		return shell.New(sess.In, sess.Out, st,
			shell.WithLogger(sess.Logger),
			shell.WithLock(sess.Lock),
			shell.WithEnvironment(env),
			shell.WithPatcher(patcher),
			shell.WithPrompt(prompt),
			shell.WithBanner(cfg.Shell.Banner && (interactive || cfg.Server.Listen != "")),
			shell.WithConfirmTokens(cfg.Shell.ConfirmTokens),
			shell.WithMaxLineBytes(cfg.Shell.MaxLineBytes),
		)
	}, logger)

	if cfg.Server.Listen == "" {
		return srv.ServeStdio(os.Stdin, os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx, cfg.Server.Listen)
}

// applyFlags lets explicitly set flags win over the file and environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("root") {
		cfg.Store.Root = rootDir
		cfg.Store.Backend = config.BackendLocal
	}
	if flags.Changed("memory") && inMemory {
		cfg.Store.Backend = config.BackendMemory
	}
	if flags.Changed("listen") {
		cfg.Server.Listen = listenAddr
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
}

func openStore(cfg config.StoreConfig) (*store.Store, error) {
	if cfg.Backend == config.BackendMemory {
		return store.NewMemory(cfg.CapacityBytes), nil
	}

	return store.NewLocal(cfg.Root, cfg.CapacityBytes)
}
