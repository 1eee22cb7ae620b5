package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"prepaid-accounting/internal/billing"
	"prepaid-accounting/internal/config"
	"prepaid-accounting/internal/directory"
	"prepaid-accounting/internal/engine"
	"prepaid-accounting/internal/ledger"
	"prepaid-accounting/internal/phone"
	"prepaid-accounting/pkg/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "accountingd",
	Short: "Prepaid call accounting engine",
	Long: `
accountingd runs the prepaid telephone accounting engine: subscriber
registry, call admission, per-call billing and credit-exhaustion cutoff,
with a management HTTP API.

Examples:
  accountingd serve                 # defaults, API on :8080
  accountingd serve -c config.yaml  # explicit configuration
`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the engine and the management API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := logging.Setup(cfg.Log); err != nil {
			return err
		}
		return serve(cfg)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("accountingd", engine.Version)
	},
}

func serve(cfg *config.Config) error {
	log := logging.Component("main")

	led := ledger.New()
	dir := directory.New(led)
	bill := billing.NewTable()
	coord := engine.NewCoordinator(dir, led, bill, engine.Options{
		RingWorkers: cfg.Engine.RingWorkers,
		RingQueue:   cfg.Engine.RingQueue,
		RingTimeout: cfg.Engine.RingTimeout,
		ExpiryTick:  cfg.Engine.ExpiryTick,
	})
	defer coord.Close()

	if cfg.SeedDemo {
		seedDemoData(coord)
	}

	admin := engine.NewAdminAPI(coord)
	go func() {
		log.Infof("management API starting on %s", cfg.Admin.Addr)
		if err := admin.Start(cfg.Admin.Addr); err != nil {
			log.Errorf("management API stopped: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")
	return nil
}

// seedDemoData registers a pair of auto-accepting subscribers with starting
// credit so the API is exercisable out of the box.
func seedDemoData(coord *engine.Coordinator) {
	for _, number := range []string{"100", "200"} {
		coord.Register(number, phone.NewScriptedPhone(true))
		if _, err := coord.Purchase(number, 60_000); err != nil {
			logrus.Warnf("seeding %s: %v", number, err)
		}
	}
}

func main() {
	rootCmd.AddCommand(serveCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file")
}
