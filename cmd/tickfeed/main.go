package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/tickfeed/internal/adapters/tcp"
	"github.com/bft-labs/tickfeed/internal/cliconfig"
	"github.com/bft-labs/tickfeed/pkg/log"
)

const helpDescription = `
Subscribe to and publish tables on ticker-plant style tick-data processes.

Highlights:
  - Replays the subscription snapshot, then streams updates as JSON lines.
  - Reconnects and resubscribes on its own when the connection drops.
  - Publishes JSON-line rows to any number of targets, in order per target.
  - Configure via file, env, or flags; the publisher list reloads live.
`

var exampleUsage = strings.TrimSpace(`
  tickfeed subscribe --host tp1 --port 5010 --tables trade,quote --print
  tickfeed publish --publisher rdb1:5011 --publisher rdb2:5011 < rows.jsonl
  tickfeed subscribe --config $HOME/.tickfeed/config.toml
  tickfeed query --host hdb1 --port 5012 "select count i by sym from trade"
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries the configuration shared by all subcommands.
type cli struct {
	cfg        cliconfig.Config
	cfgPath    string
	publishers []string
	logger     *log.ZerologAdapter
	stdout     io.Writer
	stdin      io.Reader
}

func main() {
	c := &cli{
		cfg:    cliconfig.DefaultConfig(),
		stdout: os.Stdout,
		stdin:  os.Stdin,
	}

	root := &cobra.Command{
		Use:          "tickfeed",
		Short:        "Resilient pub/sub client for tick-data processes",
		Long:         strings.TrimSpace(helpDescription),
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage: true,
	}
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.load(cmd)
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.tickfeed/config.toml)")
	flags.StringVar(&c.cfg.Host, "host", c.cfg.Host, "subscriber target host")
	flags.IntVar(&c.cfg.Port, "port", c.cfg.Port, "subscriber target port")
	flags.StringVar(&c.cfg.Username, "username", c.cfg.Username, "username passed through to the target")
	flags.StringVar(&c.cfg.Password, "password", c.cfg.Password, "password passed through to the target")
	flags.DurationVar(&c.cfg.ReconnectInterval, "reconnect-interval", c.cfg.ReconnectInterval, "pause between reconnect attempts")
	flags.DurationVar(&c.cfg.DialTimeout, "dial-timeout", c.cfg.DialTimeout, "timeout for connect and login")
	flags.IntVar(&c.cfg.MaxMessageSize, "max-message-size", c.cfg.MaxMessageSize, "largest accepted message in bytes")
	flags.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(newSubscribeCmd(c), newPublishCmd(c), newQueryCmd(c))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// load applies file, env and flag settings in that order of precedence
// (flags win) and sets up logging.
func (c *cli) load(cmd *cobra.Command) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	c.cfgPath = cfgFile

	// Build set of changed flags
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}

	if changed["publisher"] {
		targets, err := cliconfig.ParseTargets(c.publishers)
		if err != nil {
			return err
		}
		c.cfg.Publishers = targets
	}

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	c.logger = log.NewZerologAdapter(os.Stderr, log.ParseLevel(c.cfg.LogLevel))
	c.logger.Info("configuration", log.Any("config", c.cfg.Masked()))
	return nil
}

func (c *cli) dialer() *tcp.Dialer {
	return tcp.NewDialer(
		tcp.WithDialTimeout(c.cfg.DialTimeout),
		tcp.WithMaxMessageSize(uint32(c.cfg.MaxMessageSize)),
		tcp.WithLogger(c.logger),
	)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func (c *cli) signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			c.logger.Info("received signal, stopping...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
