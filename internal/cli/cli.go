package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sectorlock/internal/config"
	"github.com/matzehuels/sectorlock/pkg/buildinfo"
	"github.com/matzehuels/sectorlock/pkg/cache"
	"github.com/matzehuels/sectorlock/pkg/selection"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "sectorlock"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is replaced by the loaded configuration before a command runs.
	Config     config.Config
	configPath string
}

// New creates a new CLI instance with a default logger and the built-in
// configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "SectorLock keeps a placement inside the unlocked ring of a frame",
		Long: `SectorLock is a placement widget engine. A selection rectangle moves inside a
square frame whose center is locked; moves into the lock are snapped back onto
the free ring or refused.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "",
		"config file (default $SECTORLOCK_CONFIG or ~/.config/sectorlock/config.toml)")

	root.AddCommand(c.playCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.sectorsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("config loaded", "path", c.configFile())
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// configFile returns the config location in effect.
func (c *CLI) configFile() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.Path()
}

// =============================================================================
// Factories
// =============================================================================

// newController creates a controller from the engine settings, with extra
// options applied last.
func (c *CLI) newController(extra ...selection.Option) *selection.Controller {
	return selection.New(append(c.Config.ControllerOptions(), extra...)...)
}

// newCache opens the frame cache, falling back to a null cache when the
// directory cannot be used.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(c.Config.Cache.Dir)
	if err != nil {
		c.Logger.Warn("frame cache disabled", "dir", c.Config.Cache.Dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}
