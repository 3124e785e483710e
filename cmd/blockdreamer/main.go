// Command blockdreamer runs the block-production fingerprinting harness
// described by the blockprint client-diversity project: each slot it
// asks a configured set of candidate nodes to dream the block they
// would have proposed, compares the results against each other and
// against the canonical block, and reports which implementation most
// likely authored it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	runtimeDebug "runtime/debug"
	"syscall"
	"time"

	"github.com/blockprint-collective/blockdreamer/canonical"
	"github.com/blockprint-collective/blockdreamer/config"
	"github.com/blockprint-collective/blockdreamer/dreamnode"
	"github.com/blockprint-collective/blockdreamer/metrics"
	"github.com/blockprint-collective/blockdreamer/orchestrator"
	"github.com/blockprint-collective/blockdreamer/shared/cmd"
	"github.com/blockprint-collective/blockdreamer/shared/logutil"
	"github.com/blockprint-collective/blockdreamer/shared/slotclock"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var log = logrus.WithField("prefix", "main")

var appFlags = []cli.Flag{
	cmd.ConfigFileFlag,
	cmd.GenesisStateTimeoutFlag,
	cmd.VerbosityFlag,
	cmd.LogFormat,
	cmd.LogFileName,
	cmd.MonitoringHostFlag,
	cmd.MonitoringPortFlag,
	cmd.DisableMonitoringFlag,
}

func run(cliCtx *cli.Context) error {
	level, err := logrus.ParseLevel(cliCtx.String(cmd.VerbosityFlag.Name))
	if err != nil {
		return fmt.Errorf("unknown verbosity level %q", cliCtx.String(cmd.VerbosityFlag.Name))
	}
	logrus.SetLevel(level)

	switch format := cliCtx.String(cmd.LogFormat.Name); format {
	case "text":
		// Every package tags its entries with WithField("prefix", ...);
		// the prefixed formatter is what actually renders that field up
		// front (e.g. "INFO[...] orchestrator: ...") instead of folding
		// it in as an ordinary key=value pair.
		formatter := new(prefixed.TextFormatter)
		formatter.TimestampFormat = "2006-01-02 15:04:05"
		formatter.FullTimestamp = true
		// ANSI color codes are gibberish once a log file mirrors stdout.
		formatter.DisableColors = cliCtx.String(cmd.LogFileName.Name) != ""
		logrus.SetFormatter(formatter)
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %s", format)
	}

	if logFileName := cliCtx.String(cmd.LogFileName.Name); logFileName != "" {
		if err := logutil.ConfigurePersistentLogging(logFileName); err != nil {
			log.WithError(err).Error("Failed to configure logging to disk")
		}
	}

	cfg, err := config.Load(cliCtx.String(cmd.ConfigFileFlag.Name))
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if !cliCtx.Bool(cmd.DisableMonitoringFlag.Name) {
		addr := fmt.Sprintf("%s:%d", cliCtx.String(cmd.MonitoringHostFlag.Name), cliCtx.Uint64(cmd.MonitoringPortFlag.Name))
		metricsService := metrics.NewService(addr)
		metricsService.Start()
		defer func() {
			if err := metricsService.Stop(); err != nil {
				log.WithError(err).Warn("metrics server did not shut down cleanly")
			}
		}()
	}

	canonicalSource := canonical.NewHTTPSource(cfg.CanonicalBN)
	genesisCtx, genesisCancel := context.WithTimeout(cliCtx.Context, time.Duration(cliCtx.Uint64(cmd.GenesisStateTimeoutFlag.Name))*time.Second)
	genesisTime, err := canonicalSource.GetGenesisTime(genesisCtx)
	genesisCancel()
	if err != nil {
		return fmt.Errorf("could not determine genesis time: %w", err)
	}
	if now := time.Now(); genesisTime.After(now) {
		go logutil.CountdownToGenesis(genesisTime, 60)
		time.Sleep(genesisTime.Sub(now))
	}

	// Chain spec (slot duration, in particular) is loaded from the
	// network's config, an external collaborator the core does not
	// implement (§1 Non-goals: "network-parameter loading").
	const slotDuration = 12 * time.Second
	clock := slotclock.New(0, genesisTime, slotDuration)

	producers := make(map[string]dreamnode.Producer, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		if n.IsEnabled() {
			producers[n.Name] = dreamnode.NewHTTPProducer(n)
		}
	}
	orch := orchestrator.New(clock, cfg.Nodes, producers, canonicalSource, cfg.PostEndpoints)

	ctx, cancel := context.WithCancel(cliCtx.Context)
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Info("Got interrupt, shutting down...")
		orch.RequestShutdown()
		<-sigc
		log.Fatal("Already shutting down, received another interrupt")
	}()

	return orch.Run(ctx)
}

func main() {
	app := cli.App{}
	app.Name = "blockdreamer"
	app.Usage = "real-time block-production fingerprinting harness for client-diversity analytics"
	app.Action = run
	app.Flags = appFlags

	defer func() {
		if x := recover(); x != nil {
			log.Errorf("Runtime panic: %v\n%v", x, string(runtimeDebug.Stack()))
			os.Exit(1)
		}
	}()

	if err := app.Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
