package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	logAdapter "github.com/nide-gg/mapsync/internal/adapters/log"
	"github.com/nide-gg/mapsync/internal/catalog"
	"github.com/nide-gg/mapsync/internal/cliconfig"
	"github.com/nide-gg/mapsync/pkg/mapsync"
)

const helpDescription = `
Download the maps a FastDL server offers that your game's maps directory is
missing.

The server's directory listing is compared with the local *.bsp files
(case-insensitively); every missing map is downloaded as .bsp.bz2,
extracted in place and the archive removed. A map that fails is skipped.
Press Ctrl-C once to stop after the current map, twice to abort it.
`

var exampleUsage = strings.TrimSpace(`
  mapsync --fastdl-url https://fastdl.example.com/cstrike/maps/ --maps-dir ~/cstrike/maps
  mapsync --server "NiDE ZE"
  mapsync watch --server "NiDE ZE" --metrics-addr :9109
  mapsync servers
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// app carries state shared by every command.
type app struct {
	cfg     cliconfig.Config
	cfgPath string
	log     zerolog.Logger
	stdout  io.Writer
}

func main() {
	a := &app{
		cfg:    cliconfig.DefaultConfig(),
		log:    logAdapter.NewConsoleLogger(os.Stderr, zerolog.InfoLevel),
		stdout: os.Stdout,
	}

	root := &cobra.Command{
		Use:           "mapsync",
		Short:         "Sync missing maps from a FastDL server",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			return a.runSync(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.mapsync/config.toml)")
	flags.StringVar(&a.cfg.MapsDir, "maps-dir", a.cfg.MapsDir, "local maps directory")
	flags.StringVar(&a.cfg.FastDLURL, "fastdl-url", a.cfg.FastDLURL, "FastDL maps directory URL")
	flags.StringVar(&a.cfg.Server, "server", a.cfg.Server, "server name from the catalog (fills fastdl-url and maps-dir)")
	flags.StringVar(&a.cfg.CatalogURL, "catalog-url", a.cfg.CatalogURL, "server catalog URL")
	flags.StringVar(&a.cfg.SteamDir, "steam-dir", a.cfg.SteamDir, "Steam installation directory used to find maps-dir")
	flags.DurationVar(&a.cfg.HTTPTimeout, "timeout", a.cfg.HTTPTimeout, "HTTP response header timeout")
	flags.IntVar(&a.cfg.Retries, "retries", a.cfg.Retries, "extra attempts for a map download that failed temporarily")
	flags.DurationVar(&a.cfg.RetryBackoff, "retry-backoff", a.cfg.RetryBackoff, "initial delay between download attempts")
	flags.BoolVar(&a.cfg.Verify, "verify", a.cfg.Verify, "reject extracted files without a BSP header")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "diagnostic log level (debug, info, warn, error)")

	root.AddCommand(newWatchCommand(a), newServersCommand(a))

	if err := root.Execute(); err != nil {
		a.log.Error().Err(err).Msg("mapsync")
		os.Exit(1)
	}
}

// changedFlags returns the names of flags set on the command line.
func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	return changed
}

// loadSources layers the config file and MAPSYNC_* variables under the
// flags and sets up the logger. Nothing is validated.
func (a *app) loadSources(cmd *cobra.Command) error {
	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := changedFlags(cmd)

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}

	log, err := cliconfig.NewLogger(os.Stderr, a.cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

// load builds the full run configuration, resolving a catalog server name
// into a FastDL URL and maps directory.
func (a *app) load(cmd *cobra.Command) error {
	if err := a.loadSources(cmd); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := cliconfig.Resolve(ctx, &a.cfg, a.catalogClient()); err != nil {
		return err
	}

	a.log.Debug().Interface("config", a.cfg).Msg("configuration")
	return nil
}

func (a *app) catalogClient() *catalog.Client {
	return catalog.NewClient(&http.Client{Timeout: a.cfg.HTTPTimeout}, a.cfg.CatalogURL)
}

func (a *app) newSyncer(handler mapsync.EventHandler) (*mapsync.Syncer, error) {
	return mapsync.New(mapsync.Config{
		HTTPTimeout:      a.cfg.HTTPTimeout,
		Retries:          a.cfg.Retries,
		RetryBackoff:     a.cfg.RetryBackoff,
		Verify:           a.cfg.Verify,
		UserAgentVersion: getVersion(),
	},
		mapsync.WithLogger(logAdapter.NewZerologAdapter(a.log)),
		mapsync.WithEventHandler(handler),
	)
}

// runSync performs a single run. The first signal stops after the current
// map; a second one cancels it.
func (a *app) runSync(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := a.newSyncer(&linePrinter{out: a.stdout})
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := s.Start(runCtx, a.cfg.FastDLURL, a.cfg.MapsDir); err != nil {
		return fmt.Errorf("start sync: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go a.handleSignals(sigCh, done, s, cancel)

	sum, err := s.Wait(ctx)
	if err != nil {
		return err
	}
	a.logSummary(sum)
	return sum.Err
}

func (a *app) handleSignals(sigCh <-chan os.Signal, done <-chan struct{}, s *mapsync.Syncer, cancel context.CancelFunc) {
	stopped := false
	for {
		select {
		case <-done:
			return
		case <-sigCh:
			if stopped {
				a.log.Warn().Msg("received second signal, aborting current map")
				cancel()
				return
			}
			stopped = true
			a.log.Info().Msg("received signal, stopping...")
			if err := s.Stop(); err != nil && !errors.Is(err, mapsync.ErrNotRunning) {
				a.log.Warn().Err(err).Msg("stop failed")
			}
		}
	}
}

func (a *app) logSummary(sum mapsync.Summary) {
	a.log.Info().
		Str("run_id", sum.RunID).
		Int("total", sum.Total).
		Int("attempted", sum.Attempted).
		Int("processed", sum.Processed).
		Int("failed", sum.Failed).
		Bool("stopped", sum.Stopped).
		Dur("duration", sum.Duration).
		Msg("sync finished")
}

// linePrinter writes the progress log, one line per event.
type linePrinter struct {
	mapsync.BaseEventHandler
	out io.Writer
}

func (p *linePrinter) OnLog(event mapsync.LogEvent) {
	fmt.Fprintln(p.out, event.Line)
}
