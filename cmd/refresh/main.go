package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"tda-observer/src/config"
	datasource "tda-observer/src/data_source"
	"tda-observer/src/data_source/yahoo"
	"tda-observer/src/interfaces"
	"tda-observer/src/logger"
	"tda-observer/src/network"
	"tda-observer/src/storage"
)

// -----------------------------------------------------------------------------
// One-shot refresh job for scheduled (cron/CI) execution: fetch from the
// store cursor through today and merge into the persisted table.
//
// Exit code 0 means the table changed and the surrounding job should
// commit it; exit code 1 means no new data or a fetch error, and the job
// should skip the commit. Either way the previous table stays intact.
// -----------------------------------------------------------------------------

func main() {

	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewLogger(config.LogLevel, config.Name+"-refresh")

	var store interfaces.IPriceStore

	switch config.Storage.StoreType {
	case "sqlite":
		store, err = storage.NewSQLiteStore(config.MConfig, appLogger)
	case "postgres":
		store, err = storage.NewPostgresStore(config.MConfig, appLogger)
	default:
		store, err = storage.NewCSVStore(config.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init store: %v", err)
	}
	if err := store.Initialize(); err != nil {
		appLogger.Critical("Failed to initialize store: %v", err)
	}
	defer store.Close()

	var netMgr interfaces.INetworkManager = network.NewNetworkManager(config.MConfig, logger.NewLogger(config.LogLevel, "NetworkManager"))
	var source interfaces.IDataSource = yahoo.NewYahooFinanceSource(config.MConfig, netMgr)
	refresher := datasource.NewRefresher(config.MConfig, source, store, appLogger)

	changed, err := refresher.Refresh(time.Now())
	if err != nil {
		appLogger.Error("Refresh failed: %v", err)
		os.Exit(1)
	}
	if !changed {
		appLogger.Info("No new data, skipping commit")
		os.Exit(1)
	}

	appLogger.Info("Price table updated")
}
