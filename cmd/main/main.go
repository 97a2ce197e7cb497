package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tda-observer/src/analysis"
	"tda-observer/src/analysis/core"
	"tda-observer/src/config"
	datasource "tda-observer/src/data_source"
	"tda-observer/src/data_source/yahoo"
	"tda-observer/src/interfaces"
	"tda-observer/src/logger"
	"tda-observer/src/models"
	"tda-observer/src/network"
	"tda-observer/src/server"
	"tda-observer/src/storage"
	"tda-observer/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)

	// 2. Setup Store
	var store interfaces.IPriceStore

	switch config.Storage.StoreType {
	case "sqlite":
		store, err = storage.NewSQLiteStore(config.MConfig, appLogger)
	case "postgres":
		store, err = storage.NewPostgresStore(config.MConfig, appLogger)
	default:
		// Default to the flat CSV table
		store, err = storage.NewCSVStore(config.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init store: %v", err)
	}
	if err := store.Initialize(); err != nil {
		appLogger.Critical("Failed to initialize store: %v", err)
	}
	defer store.Close()

	// 3. Setup Components
	var netMgr interfaces.INetworkManager = network.NewNetworkManager(config.MConfig, logger.NewLogger(config.LogLevel, "NetworkManager"))
	var source interfaces.IDataSource = yahoo.NewYahooFinanceSource(config.MConfig, netMgr)
	refresher := datasource.NewRefresher(config.MConfig, source, store, appLogger)

	var computer interfaces.IPersistenceComputer = core.NewRipsPersistence()
	pipeline := analysis.NewPipeline(config.MConfig, computer, appLogger)

	var srv interfaces.IDataExchanger = server.NewDashboardServer(config.MConfig, logger.NewLogger(config.LogLevel, "DashboardServer"))

	// 4. Initial Data Load
	cursor, err := store.LastDate()
	if err != nil {
		appLogger.Critical("Failed to read store cursor: %v", err)
	}
	if cursor == "" {
		appLogger.Info("Empty store, fetching full history...")
		if _, err := refresher.Refresh(time.Now()); err != nil {
			appLogger.Critical("Initial fetch failed: %v", err)
		}
	}

	// 5. Initial Pipeline Run
	state, err := buildState(store, pipeline, appLogger)
	if err != nil {
		appLogger.Critical("Initial pipeline run failed: %v", err)
	}
	srv.UpdateAllDatas(state)
	appLogger.Info("Initialization complete.")

	// 6. Start Server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 7. Daily Refresh Loop
	calendars := utils.CalendarsForSymbols(config.DataSource.Symbols)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	appLogger.Info("Starting daily refresh loop (refresh hour %02d:00 UTC)...", config.DataSource.RefreshHourUTC)

	for {
		next := utils.NextRefreshTime(time.Now().UTC(), config.DataSource.RefreshHourUTC)
		appLogger.Info("Next refresh at %s", next.Format(time.RFC3339))

		select {
		case <-time.After(time.Until(next)):
			if !utils.ShouldRefresh(next, calendars) {
				appLogger.Info("No tracked exchange had a session, skipping refresh")
				continue
			}

			changed, err := refresher.Refresh(time.Now())
			if err != nil {
				// Leave the persisted table untouched; the next scheduled
				// run retries from the same cursor.
				appLogger.Error("Refresh failed: %v", err)
				continue
			}
			if !changed {
				appLogger.Info("Refresh produced no new data")
				continue
			}

			state, err := buildState(store, pipeline, appLogger)
			if err != nil {
				appLogger.Error("Pipeline run failed: %v", err)
				continue
			}
			srv.Broadcast(state)

		case <-quit:
			appLogger.Info("Shutting down...")
			srv.Stop()
			return
		}
	}
}

// -----------------------------------------------------------------------------

// buildState recomputes the full dashboard snapshot from the persisted
// table: align the indices on common dates, derive log returns, run the
// sliding-window landscape pipeline once per index.
func buildState(store interfaces.IPriceStore, pipeline *analysis.Pipeline, appLogger *logger.Logger) (*models.MLatestData, error) {
	data, err := store.LoadAll()
	if err != nil {
		return nil, err
	}

	aligned := core.AlignOnCommonDates(data)

	prices := make(map[string][]models.MSeriesPoint, len(aligned))
	returns := make(map[string][]models.MReturnPoint, len(aligned))

	for symbol, records := range aligned {
		series := make([]models.MSeriesPoint, 0, len(records))
		for _, r := range records {
			series = append(series, models.MSeriesPoint{Date: r.Date, Value: r.Close})
		}
		prices[symbol] = series

		rts, err := core.LogReturns(records)
		if err != nil {
			return nil, err
		}
		returns[symbol] = rts
		appLogger.Debug("%s: %d prices, %d returns", symbol, len(records), len(rts))
	}

	landscapes, metrics, err := pipeline.BuildAll(returns)
	if err != nil {
		return nil, err
	}

	norms := make(map[string][]models.MSeriesPoint, len(landscapes))
	for symbol, series := range landscapes {
		l1 := make([]models.MSeriesPoint, 0, len(series.Points))
		for _, pt := range series.Points {
			l1 = append(l1, models.MSeriesPoint{Date: pt.EndDate, Value: pt.NormL1})
		}
		norms[symbol] = l1
	}

	return &models.MLatestData{
		Type:       "INITIAL",
		Prices:     prices,
		Returns:    returns,
		Landscapes: landscapes,
		Norms:      norms,
		Timestamp:  time.Now().Unix(),
		Metrics:    metrics,
	}, nil
}
