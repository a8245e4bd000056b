package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/atdevs/atrng/internal/cliconfig"
	"github.com/atdevs/atrng/pkg/atrng"
	"github.com/atdevs/atrng/pkg/log"
	"github.com/atdevs/atrng/plugins/configwatcher"
)

const longHelp = `Stream randomness to the atdevs collection endpoint.

"atrng run" keeps a connection open, sends a block of fresh random bytes
every keepalive interval and, every discard interval, the SHA-512 digest of
whatever arrived on stdin since the last flush.

"atrng text" and "atrng number" print SHA-512 hashed randomness from the
entropy API.`

var exampleUsage = strings.TrimSpace(`
  atrng run --keepalive-interval 30s < /dev/input/mice
  atrng text
  atrng send "some entropy"
  atrng --config $HOME/.atrng/config.yaml run --watch-config
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries flag-bound configuration shared by every command.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	changed map[string]bool
	logger  zerolog.Logger
}

// load layers the config file and environment under the flags, validates
// the result and builds the logger.
func (c *cli) load(cmd *cobra.Command) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	c.cfgPath = cfgFile

	c.changed = map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { c.changed[f.Name] = true })

	cfg, err := cliconfig.Load(c.cfg, cfgFile, c.changed)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = cliconfig.Logger(cfg.LogLevel)
	c.logger.Debug().Interface("config", cfg).Msg("configuration")
	return nil
}

func (c *cli) client(opts ...atrng.Option) (*atrng.Client, error) {
	libCfg := atrng.Config{
		Endpoint:          c.cfg.Endpoint,
		EntropyURL:        c.cfg.EntropyURL,
		KeepaliveInterval: c.cfg.KeepaliveInterval,
		DiscardInterval:   c.cfg.DiscardInterval,
		KeepaliveSize:     c.cfg.KeepaliveSize,
		DialTimeout:       c.cfg.DialTimeout,
		HTTPTimeout:       c.cfg.HTTPTimeout,
		MaxEntropyBytes:   int64(c.cfg.MaxEntropyBytes),
		DisableKeepalive:  !c.cfg.Keepalive,
		DisableDiscard:    !c.cfg.Discard,
	}
	opts = append([]atrng.Option{atrng.WithLogger(log.NewZerologAdapterWithLogger(c.logger))}, opts...)
	return atrng.New(libCfg, opts...)
}

func main() {
	c := &cli{cfg: cliconfig.DefaultConfig(), logger: cliconfig.Logger("info")}

	root := &cobra.Command{
		Use:           "atrng",
		Short:         "Stream randomness to the atdevs collection endpoint",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgPath, "config", "", "path to config file, .toml or .yaml (default: $HOME/.atrng/config.toml)")
	flags.StringVar(&c.cfg.Endpoint, "endpoint", c.cfg.Endpoint, "Socket.IO collection endpoint")
	flags.StringVar(&c.cfg.EntropyURL, "entropy-url", c.cfg.EntropyURL, "entropy API URL")
	flags.DurationVar(&c.cfg.KeepaliveInterval, "keepalive-interval", c.cfg.KeepaliveInterval, "keepalive period")
	flags.DurationVar(&c.cfg.DiscardInterval, "discard-interval", c.cfg.DiscardInterval, "discard flush period")
	flags.IntVar(&c.cfg.KeepaliveSize, "keepalive-size", c.cfg.KeepaliveSize, "random bytes per keepalive")
	flags.DurationVar(&c.cfg.DialTimeout, "dial-timeout", c.cfg.DialTimeout, "connection attempt timeout")
	flags.DurationVar(&c.cfg.HTTPTimeout, "timeout", c.cfg.HTTPTimeout, "entropy request timeout")
	flags.IntVar(&c.cfg.MaxEntropyBytes, "max-entropy-bytes", c.cfg.MaxEntropyBytes, "maximum entropy response size")
	flags.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(runCommand(c), textCommand(c), numberCommand(c), sendCommand(c))

	if err := root.Execute(); err != nil {
		c.logger.Error().Err(err).Msg("atrng")
		os.Exit(1)
	}
}

func runCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Keep the connection open and stream keepalives and stdin digests",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd); err != nil {
				return err
			}

			var opts []atrng.Option
			if c.cfg.WatchConfig {
				opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{
					Path:    c.cfgPath,
					Base:    c.cfg,
					Changed: c.changed,
				}))
			}

			client, err := c.client(opts...)
			if err != nil {
				return fmt.Errorf("create client: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := client.Start(ctx); err != nil {
				return fmt.Errorf("start: %w", err)
			}

			go discardInput(cmd.InOrStdin(), client, c.logger)

			<-sigCh
			c.logger.Info().Msg("received signal, stopping...")

			if err := client.Stop(); err != nil {
				return fmt.Errorf("stop: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&c.cfg.Keepalive, "keepalive", c.cfg.Keepalive, "run the keepalive scheduler")
	cmd.Flags().BoolVar(&c.cfg.Discard, "discard", c.cfg.Discard, "run the discard scheduler")
	cmd.Flags().BoolVar(&c.cfg.WatchConfig, "watch-config", c.cfg.WatchConfig, "reload intervals when the config file changes")
	return cmd
}

// stdinChunk is the read size for discardInput.
const stdinChunk = 32 * 1024

// discardInput feeds everything read from r to the discard buffer until
// EOF. Bytes are passed through unchanged, newlines included.
func discardInput(r io.Reader, client *atrng.Client, logger zerolog.Logger) {
	buf := make([]byte, stdinChunk)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if derr := client.Discard(atrng.Raw(buf[:n])); derr != nil {
				logger.Warn().Err(derr).Msg("discard")
			}
		}
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			logger.Warn().Err(err).Msg("read stdin")
			return
		}
	}
}

func textCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "text",
		Short: "Print 128 hex characters of hashed randomness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd); err != nil {
				return err
			}
			client, err := c.client()
			if err != nil {
				return err
			}
			text, err := client.RandomnessAsText(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func numberCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "number",
		Short: "Print hashed randomness as a 512-bit decimal integer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd); err != nil {
				return err
			}
			client, err := c.client()
			if err != nil {
				return err
			}
			n, err := client.RandomnessAsNumber(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n.String())
			return nil
		},
	}
}

func sendCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "send <data>",
		Short: "Send the SHA-512 digest of data once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd); err != nil {
				return err
			}
			client, err := c.client()
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.SendDataToServer(cmd.Context(), atrng.Text(args[0])); err != nil {
				return err
			}
			c.logger.Info().Int("bytes", len(args[0])).Msg("sent digest")
			return nil
		},
	}
}
