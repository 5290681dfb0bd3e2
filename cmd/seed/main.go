package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"natours/internal/config"
	"natours/internal/db"
	"natours/internal/logger"
	"natours/internal/model"
	"natours/internal/repository"
)

const fetchTimeout = 30 * time.Second

func main() {
	importFrom := flag.String("import", "", "JSON file or http(s) URL with an array of tours to upsert")
	deleteAll := flag.Bool("delete", false, "remove every booking, review and tour")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.Init(logger.Config{Level: cfg.LogLevel, Dev: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if *importFrom == "" && !*deleteAll {
		flag.Usage()
		os.Exit(2)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer func() { _ = db.Close(gormDB) }()

	if err := db.Migrate(gormDB); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	ctx := context.Background()
	tours := repository.NewTourRepository(gormDB)

	if *deleteAll {
		if err := repository.NewBookingRepository(gormDB).DeleteAll(ctx); err != nil {
			log.Fatal("delete bookings", zap.Error(err))
		}
		if err := repository.NewReviewRepository(gormDB).DeleteAll(ctx); err != nil {
			log.Fatal("delete reviews", zap.Error(err))
		}
		if err := tours.DeleteAll(ctx); err != nil {
			log.Fatal("delete tours", zap.Error(err))
		}
		log.Info("data deleted")
	}

	if *importFrom != "" {
		data, err := loadTours(ctx, *importFrom)
		if err != nil {
			log.Fatal("load tours", zap.String("source", *importFrom), zap.Error(err))
		}
		valid := make([]model.Tour, 0, len(data))
		for i := range data {
			if err := data[i].Validate(); err != nil {
				log.Warn("skipping invalid tour", zap.String("name", data[i].Name), zap.Error(err))
				continue
			}
			valid = append(valid, data[i])
		}
		if err := tours.Upsert(ctx, valid); err != nil {
			log.Fatal("upsert tours", zap.Error(err))
		}
		log.Info("tours imported",
			zap.Int("imported", len(valid)),
			zap.Int("skipped", len(data)-len(valid)),
		)
	}
}

// loadTours reads a JSON array of tours from a local file or a URL.
func loadTours(ctx context.Context, source string) ([]model.Tour, error) {
	body, err := read(ctx, source)
	if err != nil {
		return nil, err
	}
	var tours []model.Tour
	if err := json.Unmarshal(body, &tours); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return tours, nil
}

func read(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.ReadFile(source)
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
