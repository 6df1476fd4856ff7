// Package cli implements the commentary command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/commentary/internal/logger"
	"github.com/mesh-intelligence/commentary/internal/paths"
	"github.com/mesh-intelligence/commentary/internal/sqlite"
	"github.com/mesh-intelligence/commentary/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errUsage marks errors caused by bad input rather than by the system.
var errUsage = errors.New("usage error")

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// app holds global flag values and state shared by all subcommands.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool

	cfg types.Config
	log zerolog.Logger
}

// NewRootCmd creates the top-level "commentary" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "commentary",
		Short: "Threaded comments stored in SQLite",
		Long: "Commentary stores threaded comments for pages, sanitizes every field on\n" +
			"write, and derives reply trees from the flat comment list.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.log = logger.New(cmd.ErrOrStderr())
			if cmd.Name() == "version" {
				return nil
			}
			return a.loadConfig()
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newPageCmd(a))
	root.AddCommand(newFieldCmd(a))
	root.AddCommand(newUserCmd(a))
	root.AddCommand(newCommentCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newImportCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	err := root.Execute()
	if err == nil {
		os.Exit(exitSuccess)
	}
	fmt.Fprintln(os.Stderr, "commentary:", err)
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errUsage),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidScope),
		errors.Is(err, types.ErrNameEmpty):
		return exitUserError
	default:
		return exitSysError
	}
}

// loadConfig resolves the config directory, reads config.yaml and
// resolves the data directory.
func (a *app) loadConfig() error {
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	a.configDir = configDir

	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}

	dataDir, err := paths.ResolveDataDir(a.dataDir, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDir
	a.cfg = cfg
	return nil
}

// attachBackend creates a SQLite backend and attaches it to the loaded
// config. The caller must defer backend.Detach().
func (a *app) attachBackend() (*sqlite.Backend, error) {
	backend := sqlite.NewBackend(a.log)
	if err := backend.Attach(a.cfg); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}
	return backend, nil
}
