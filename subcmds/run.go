// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/bvk/coinmonitor/api"
	"github.com/bvk/coinmonitor/ctxutil"
	"github.com/bvk/coinmonitor/daemonize"
	"github.com/bvk/coinmonitor/httputil"
	"github.com/bvk/coinmonitor/pair"
	"github.com/bvk/coinmonitor/policy"
	"github.com/bvk/coinmonitor/server"
	"github.com/bvk/coinmonitor/store"
	"github.com/bvk/coinmonitor/store/mongostore"
	"github.com/bvk/coinmonitor/subcmds/cmdutil"
	"github.com/bvkgo/kv/kvhttp"
	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/nightlyone/lockfile"
	"github.com/shopspring/decimal"
	"github.com/visvasity/cli"
	"github.com/visvasity/sglog"
)

type Run struct {
	cmdutil.ServerFlags

	background bool

	restart         bool
	shutdownTimeout time.Duration

	debug   bool
	noPprof bool

	secretsPath string
	dataDir     string
	envFile     string

	mongoURI      string
	mongoDatabase string

	refreshInterval time.Duration
	callTimeout     time.Duration
	defaultPairs    string

	buyBelow  float64
	sellAbove float64
	alternate bool

	summaryInterval time.Duration
	backupInterval  time.Duration
}

func (c *Run) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("run", flag.ContinueOnError)
	c.ServerFlags.SetFlags(fset)
	fset.BoolVar(&c.background, "background", false, "runs the daemon in background")
	fset.BoolVar(&c.restart, "restart", false, "when true, kills any old instance")
	fset.DurationVar(&c.shutdownTimeout, "shutdown-timeout", 30*time.Second, "max timeout for shutdown when restarting")
	fset.BoolVar(&c.debug, "debug", false, "when true, debug messages are also logged")
	fset.BoolVar(&c.noPprof, "no-pprof", false, "when true net/http/pprof handler is not registered")
	fset.StringVar(&c.secretsPath, "secrets-file", "", "path to credentials file")
	fset.StringVar(&c.dataDir, "data-dir", "", "path to the data directory")
	fset.StringVar(&c.envFile, "env-file", "", "path to a .env file with default settings (default .env in the data directory)")
	fset.StringVar(&c.mongoURI, "mongo-uri", "", "MongoDB connection string for pairs and orders (default from "+cmdutil.MongoURIEnv+")")
	fset.StringVar(&c.mongoDatabase, "mongo-database", "", "MongoDB database name")
	fset.DurationVar(&c.refreshInterval, "refresh-interval", 0, "delay between monitoring cycles (default 30s or COINMONITOR_REFRESH_INTERVAL value)")
	fset.DurationVar(&c.callTimeout, "call-timeout", 0, "when non-zero, limits every exchange api call")
	fset.StringVar(&c.defaultPairs, "default-pairs", "paper:BTC-USD", "comma separated exchange:COIN-BASE[:amount] pairs monitored when none are saved")
	fset.Float64Var(&c.buyBelow, "buy-below", -5, "buys when the percent change is at or below this value")
	fset.Float64Var(&c.sellAbove, "sell-above", 5, "sells when the percent change is at or above this value")
	fset.BoolVar(&c.alternate, "alternate", true, "when true, buy and sell orders alternate for a pair")
	fset.DurationVar(&c.summaryInterval, "summary-interval", 24*time.Hour, "interval for summary alerts; zero disables them")
	fset.DurationVar(&c.backupInterval, "backup-interval", 24*time.Hour, "interval for database backups; zero disables them")
	return "run", fset, cli.CmdFunc(c.run)
}

func (c *Run) Purpose() string {
	return "Runs coinmonitor in foreground or background"
}

func (c *Run) Description() string {
	return `
Command "run" starts the coinmonitor daemon. Daemon loads the saved pairs (or
the default pairs), fetches their prices periodically and places market
orders when the percent change from the reference price crosses the buy or
sell thresholds.

SECRETS FILE

Exchanges and alert services need API keys, which are kept in a JSON secrets
file. Use the "setup" commands to create it. An example secrets file is given
below:

    {
        "coinex":{
            "key":"111111111",
            "secret":"2222222222"
        }
    }

The paper exchange simulates orders with live prices and needs no keys.
`
}

func (c *Run) run(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataDir, err := cmdutil.DataDir(c.dataDir)
	if err != nil {
		return err
	}

	if len(c.envFile) == 0 {
		c.envFile = filepath.Join(dataDir, ".env")
	}
	if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not load env file %q: %w", c.envFile, err)
	}

	if len(c.secretsPath) == 0 {
		c.secretsPath = filepath.Join(dataDir, "secrets.json")
	}
	secrets, err := server.SecretsFromFile(c.secretsPath)
	if err != nil {
		return err
	}

	opts, err := c.serverOptions(dataDir)
	if err != nil {
		return err
	}

	addr, err := c.ServerFlags.TCPAddr()
	if err != nil {
		return err
	}

	// Health checker for the background process initialization. We need to
	// verify that responding http server is really our child and not an older
	// instance.
	check := func(ctx context.Context, child *os.Process) (bool, error) {
		client := http.Client{Timeout: time.Second}
		resp, err := client.Get(fmt.Sprintf("http://%s%s", addr.String(), api.PidPath))
		if err != nil {
			return true, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return true, fmt.Errorf("http status: %d", resp.StatusCode)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return true, err
		}
		if pid := string(data); pid != strconv.Itoa(child.Pid) {
			return c.restart, fmt.Errorf("is another instance already running? pid mismatch: want %d got %s", child.Pid, pid)
		}
		return false, nil
	}

	if c.background {
		if err := daemonize.Daemonize(ctx, "COINMONITOR_DAEMONIZE", check); err != nil {
			return err
		}
	}

	backend := sglog.NewBackend(&sglog.Options{
		LogDirs: []string{filepath.Join(dataDir, "logs")},
	})
	defer backend.Close()
	if c.debug {
		backend.SetLevel(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(backend.Handler()))

	slog.Info("using data directory and secrets file", "data-dir", dataDir, "secrets", c.secretsPath)

	lockPath := filepath.Join(dataDir, "coinmonitor.lock")
	flock, err := lockfile.New(lockPath)
	if err != nil {
		return fmt.Errorf("could not create lock file %q: %w", lockPath, err)
	}
	if err := flock.TryLock(); err != nil {
		if !c.restart {
			return fmt.Errorf("could not get lock on file %q: %w", lockPath, err)
		}
		owner, err := flock.GetOwner()
		if err != nil {
			return fmt.Errorf("could not get current owner of the lock file: %w", err)
		}
		if err := owner.Signal(os.Interrupt); err == nil {
			slog.Info("waiting for the previous instance to shutdown", "pid", owner.Pid)
			if err := ctxutil.RetryTimeout(ctx, time.Second, c.shutdownTimeout, flock.TryLock); err != nil {
				if err := owner.Signal(os.Kill); err != nil {
					return fmt.Errorf("could not kill current owner of the lock file: %w", err)
				}
				ctxutil.Sleep(ctx, time.Millisecond)
			}
		}
		if err := flock.TryLock(); err != nil {
			return fmt.Errorf("could not get lock on file %q after killing previous instance: %w", lockPath, err)
		}
	}
	defer flock.Unlock()

	// Start HTTP server.
	s, err := httputil.New(nil /* opts */)
	if err != nil {
		return err
	}
	defer s.Close()

	tcpServer, err := s.StartTCP(ctx, addr)
	if err != nil {
		return fmt.Errorf("could not start http server on %s: %w", addr, err)
	}
	defer s.Stop(tcpServer)

	if !c.noPprof {
		s.AddHandler("/debug/pprof/heap", pprof.Handler("heap"))
		s.AddHandler("/debug/pprof/goroutine", pprof.Handler("goroutine"))
		s.AddHandler("/debug/pprof/allocs", pprof.Handler("allocs"))
		s.AddHandler("/debug/pprof/block", pprof.Handler("block"))
		s.AddHandler("/debug/pprof/mutex", pprof.Handler("mutex"))
	}

	// Open the database.
	bopts := badger.DefaultOptions(filepath.Join(dataDir, "db"))
	bopts.Logger = nil
	bdb, err := badger.Open(bopts)
	if err != nil {
		return fmt.Errorf("could not open the database: %w", err)
	}
	defer bdb.Close()
	db := kvbadger.New(bdb, cmdutil.IsGoodKey)

	s.AddHandler(api.DBPath+"/", http.StripPrefix(api.DBPath, kvhttp.Handler(db)))

	var st store.Store
	if uri := c.mongoURIValue(); len(uri) != 0 {
		mstore, err := mongostore.New(ctx, &mongostore.Options{URI: uri, Database: c.mongoDatabase})
		if err != nil {
			return err
		}
		defer mstore.Close()
		st = mstore
	}

	// Start the monitor.
	monitor, err := server.New(ctx, secrets, db, st, opts)
	if err != nil {
		return err
	}
	defer monitor.Close()

	monitorAPIs := monitor.HandlerMap()
	for k, v := range monitorAPIs {
		s.AddHandler(k, v)
	}
	defer func() {
		for k := range monitorAPIs {
			s.RemoveHandler(k)
		}
	}()

	if err := monitor.Start(ctx); err != nil {
		return err
	}

	slog.Info("started coinmonitor server", "addr", addr)
	<-ctx.Done()
	slog.Info("coinmonitor server is shutting down", "cause", context.Cause(ctx))
	return nil
}

func (c *Run) mongoURIValue() string {
	if len(c.mongoURI) != 0 {
		return c.mongoURI
	}
	return os.Getenv(cmdutil.MongoURIEnv)
}

func (c *Run) serverOptions(dataDir string) (*server.Options, error) {
	refresh := c.refreshInterval
	if refresh == 0 {
		if v := os.Getenv("COINMONITOR_REFRESH_INTERVAL"); len(v) != 0 {
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("could not parse COINMONITOR_REFRESH_INTERVAL value %q: %w", v, err)
			}
			refresh = d
		}
	}

	defaults, err := pair.ParseList(c.defaultPairs)
	if err != nil {
		return nil, fmt.Errorf("could not parse default pairs: %w", err)
	}

	opts := &server.Options{
		RefreshInterval: refresh,
		CallTimeout:     c.callTimeout,
		DefaultPairs:    defaults,
		Thresholds: policy.ThresholdOptions{
			Default: policy.Limits{
				BuyBelow:  decimal.NewFromFloat(c.buyBelow),
				SellAbove: decimal.NewFromFloat(c.sellAbove),
			},
			Alternate: c.alternate,
		},
		SummaryInterval: c.summaryInterval,
		BackupInterval:  c.backupInterval,
		BackupDir:       filepath.Join(dataDir, "backups"),
	}
	if c.backupInterval > 0 {
		if err := os.MkdirAll(opts.BackupDir, 0700); err != nil {
			return nil, fmt.Errorf("could not create backup directory: %w", err)
		}
	}
	return opts, nil
}
