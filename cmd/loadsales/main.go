package main

import (
	"context"
	"flag"
	"os"

	"github.com/truestate/sales-backend/internal/config"
	"github.com/truestate/sales-backend/internal/ingest"
	"github.com/truestate/sales-backend/internal/migration"
	"github.com/truestate/sales-backend/internal/observability"
	"github.com/truestate/sales-backend/internal/observability/logger"
	"github.com/truestate/sales-backend/pkg/db"
	"go.uber.org/zap"
)

// loadsales is the offline bulk loader: it maps a CSV export onto the
// sales_transactions table in batches. It never runs in the request path.
func main() {
	var path string
	flag.StringVar(&path, "file", "sales_data.csv", "path to the CSV export")
	flag.Parse()

	cfg := config.Load()
	obsCfg := observability.LoadConfig(cfg)

	log, err := logger.New(nil, logger.Config{
		ServiceName:   obsCfg.ServiceName + "-loader",
		Environment:   obsCfg.Environment,
		Version:       obsCfg.Version,
		Level:         obsCfg.LogLevel,
		Format:        obsCfg.LogFormat,
		IncludeCaller: true,
	})
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	conn, err := db.Open(nil, cfg, log)
	if err != nil {
		log.Fatal("connect store", zap.Error(err))
	}
	if err := migration.Run(conn); err != nil {
		log.Fatal("migrate schema", zap.Error(err))
	}

	loader := ingest.NewLoader(conn, log, nil, cfg.LoadBatchSize)
	result, err := loader.LoadFile(context.Background(), path)
	if err != nil {
		log.Fatal("load data", zap.Error(err),
			zap.Int64("loaded_before_failure", result.Loaded))
	}

	log.Info("data loaded",
		zap.String("file", path),
		zap.Int64("rows", result.Loaded),
		zap.Int64("skipped_bad_date", result.SkippedBadDate),
		zap.Int64("skipped_bad_id", result.SkippedBadID),
		zap.Int64("skipped_duplicates", result.SkippedDuplicates),
	)
}
