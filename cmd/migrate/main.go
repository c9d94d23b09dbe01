package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	"github.com/johnquangdev/acta-generator/internal/infrastructure/database"
	"github.com/johnquangdev/acta-generator/pkg/config"
	"github.com/johnquangdev/acta-generator/pkg/logger"
)

func main() {
	maxFlag := flag.Int("max", 0, "maximum number of migrations to apply (0 = all for up, 1 for down)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-max N] up|down|status\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.NewPostgresDB(cfg, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	switch command {
	case "up":
		n, err := database.Migrate(db, migrate.Up, *maxFlag)
		if err != nil {
			zl.Fatal("migrate up failed", zap.Error(err))
		}
		zl.Info("migrations applied", zap.Int("count", n))

	case "down":
		limit := *maxFlag
		if limit == 0 {
			limit = 1
		}
		n, err := database.Migrate(db, migrate.Down, limit)
		if err != nil {
			zl.Fatal("migrate down failed", zap.Error(err))
		}
		zl.Info("migrations rolled back", zap.Int("count", n))

	case "status":
		sqlDB, err := db.DB()
		if err != nil {
			zl.Fatal("failed to get database object", zap.Error(err))
		}
		ms := migrate.MigrationSet{TableName: database.MigrationTable}
		records, err := ms.GetMigrationRecords(sqlDB, "postgres")
		if err != nil {
			zl.Fatal("failed to read migration records", zap.Error(err))
		}
		for _, r := range records {
			fmt.Printf("%s\tapplied %s\n", r.Id, r.AppliedAt.Format("2006-01-02 15:04:05"))
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
}
