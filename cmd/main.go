package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/epos"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/log"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/services"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/storage"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/utils"
)

const (
	appName    = "Kiosk Ticket Printer"
	appVersion = "1.0.0"
	appAuthor  = "Riboost Studio"
)

// --- Main ---

func main() {
	app := &cli.App{
		Name:    "kiosk-ticket-printer",
		Usage:   "Print kiosk tickets on Epson ePOS printers",
		Version: appVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: utils.DefaultConfigFile, Usage: "JSON configuration file"},
			&cli.StringFlag{Name: "env-file", Value: utils.DefaultEnvFile, Usage: "dotenv file loaded before environment overrides"},
			&cli.StringFlag{Name: "log-level", Usage: "overrides LOG_LEVEL"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			printTestCommand(),
			printTicketCommand(),
			previewCommand(),
			discoverCommand(),
			setupCommand(),
			doctorCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

// agentRuntime holds everything a command needs to print.
type agentRuntime struct {
	app       model.AppInfo
	config    model.Config
	configs   storage.ConfigStore
	logs      storage.LogStore
	orders    storage.OrderStore
	printer   *services.PrintService
	previewer *services.Previewer
	location  *time.Location
	close     func()
}

func loadConfig(c *cli.Context) (model.Config, error) {
	config, err := utils.LoadConfig(c.String("config"), c.String("env-file"), appVersion)
	if err != nil {
		return config, fmt.Errorf("config error: %w", err)
	}

	level := config.LogLevel
	if c.String("log-level") != "" {
		level = c.String("log-level")
	}
	log.Init(log.ParseLevel(level))

	return config, nil
}

func bootstrap(c *cli.Context) (*agentRuntime, error) {
	config, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	ctx := c.Context
	logger := log.FromContext(ctx)

	location, err := time.LoadLocation(config.Ticket.TimeZone)
	if err != nil {
		logger.WithError(err).Warnf("Unknown time zone %q, using local time", config.Ticket.TimeZone)
		location = time.Local
	}

	rt := &agentRuntime{
		app:      model.AppInfo{Name: appName, Version: appVersion, Author: appAuthor},
		config:   config,
		location: location,
		close:    func() {},
	}

	if config.DatabaseURL != "" {
		if config.RunMigrations {
			if err := storage.RunMigrations(config.DatabaseURL, logger); err != nil {
				return nil, err
			}
		}
		pool, err := storage.NewPool(ctx, config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		store := storage.NewPostgresStore(pool)
		rt.configs, rt.logs, rt.orders = store, store, store
		rt.close = pool.Close
		logger.Info("Using Postgres storage")
	} else {
		store, err := storage.NewFileStore(config.DataDir)
		if err != nil {
			return nil, err
		}
		rt.configs, rt.logs = store, store
		logger.WithField("dir", config.DataDir).Info("Using file storage")
	}

	if err := seedPrinterConfig(ctx, rt.configs, config.Printer); err != nil {
		rt.close()
		return nil, err
	}

	formatter := epos.NewFormatter(location)
	rt.printer = services.NewPrintService(epos.NewClient(&http.Client{}), formatter, rt.logs, config.Ticket, config.SerializePrints)

	_, chromePath := utils.CheckChrome(config.ChromePath)
	rt.previewer = services.NewPreviewer(rt.printer, chromePath)

	return rt, nil
}

// seedPrinterConfig stores the printer from the config file or environment
// when the store has none yet.
func seedPrinterConfig(ctx context.Context, configs storage.ConfigStore, printer model.PrinterConfig) error {
	if printer.Host == "" {
		return nil
	}

	stored, err := configs.GetPrinterConfig(ctx)
	if err != nil {
		return fmt.Errorf("load printer config: %w", err)
	}
	if stored.Host != "" {
		return nil
	}

	if printer.AgentKey == "" {
		printer.AgentKey = stored.AgentKey
	}
	_, err = configs.SavePrinterConfig(ctx, printer)
	return err
}
