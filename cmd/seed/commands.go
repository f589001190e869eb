package main

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/cache"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/config"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/drive"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/importer"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/ledger"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/service"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/storage"
	"github.com/andresuchdata/uniform-ledger/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

func migrateCommand() *cli.Command {
	run := func(up bool) cli.ActionFunc {
		return func(c *cli.Context) error {
			m, err := postgres.NewMigrator(sqlDB(c))
			if err != nil {
				return err
			}
			if up {
				return m.Up()
			}
			return m.Down()
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply or roll back the schema migrations",
		Flags: []cli.Flag{newDBURLFlag()},
		Subcommands: []*cli.Command{
			{Name: "up", Usage: "Apply pending migrations", Before: initDB, After: closeDB, Action: run(true)},
			{Name: "down", Usage: "Roll back every migration", Before: initDB, After: closeDB, Action: run(false)},
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import legacy item exports into the variant table",
		Flags: []cli.Flag{
			newDBURLFlag(),
			&cli.StringFlag{
				Name:  "source",
				Usage: "Where the legacy CSV files live: file, s3 or drive",
				Value: "file",
			},
			&cli.StringFlag{
				Name:    "path",
				Usage:   "File or directory (file source), or object prefix (s3 source)",
				Value:   "./data/legacy",
				EnvVars: []string{"LEGACY_IMPORT_PATH"},
			},
			&cli.StringFlag{
				Name:    "folder-id",
				Usage:   "Google Drive folder id (drive source)",
				EnvVars: []string{"GOOGLE_DRIVE_FOLDER_ID"},
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Files imported in parallel",
				Value: 4,
			},
		},
		Before: initDB,
		After:  closeDB,
		Action: func(c *cli.Context) error {
			src, err := importSource(c, config.Load())
			if err != nil {
				return err
			}

			im := importer.New(postgres.NewInventoryRepository(ledgerDB(c)), nil, c.Int("concurrency"))
			summary, err := im.Run(c.Context, src)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "imported %d items (%d variants) from %d files, %d warnings\n",
				summary.Items, summary.Variants, summary.Files, len(summary.Warnings))
			for _, w := range summary.Warnings {
				fmt.Fprintln(c.App.Writer, "  warning:", w)
			}
			return nil
		},
	}
}

func importSource(c *cli.Context, cfg *config.Config) (importer.Source, error) {
	switch strings.ToLower(c.String("source")) {
	case "file":
		return importer.FileSource{Path: c.String("path")}, nil
	case "s3":
		store, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			return nil, err
		}
		return importer.StorageSource{Store: store, Prefix: c.String("path")}, nil
	case "drive":
		if cfg.Drive.CredentialsJSON == "" {
			return nil, fmt.Errorf("GOOGLE_DRIVE_CREDENTIALS_JSON is required for the drive source")
		}
		svc, err := drive.NewService(c.Context, cfg.Drive.CredentialsJSON)
		if err != nil {
			return nil, err
		}
		folderID := c.String("folder-id")
		if folderID == "" {
			folderID = cfg.Drive.FolderID
		}
		return drive.NewFolderSource(svc, folderID), nil
	default:
		return nil, fmt.Errorf("unknown import source %q (want file, s3 or drive)", c.String("source"))
	}
}

func inventoryService(c *cli.Context, cfg *config.Config) (*service.InventoryService, error) {
	classifier, err := ledger.NewClassifier(cfg.Ledger.CriticalRatio, cfg.Ledger.ReorderBandRatio)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Ledger.Location()
	if err != nil {
		return nil, err
	}

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("report cache unavailable, writes will not invalidate it")
		reportCache = cache.NewNoopReportCache()
	}

	return service.NewInventoryService(postgres.NewInventoryRepository(ledgerDB(c)), reportCache, classifier, loc, nil), nil
}

func closePeriodCommand() *cli.Command {
	return &cli.Command{
		Name:  "close-period",
		Usage: "Roll ending inventory into the next period's beginning inventory",
		Flags: []cli.Flag{
			newDBURLFlag(),
			&cli.Int64Flag{Name: "item-id", Usage: "Item to close", Required: true},
			&cli.StringFlag{Name: "size", Usage: "Single size to close; all sizes when empty"},
		},
		Before: initDB,
		After:  closeDB,
		Action: func(c *cli.Context) error {
			svc, err := inventoryService(c, config.Load())
			if err != nil {
				return err
			}

			states, err := svc.ResetBeginningInventory(c.Context, domain.ResetInput{
				ItemID: c.Int64("item-id"),
				Size:   c.String("size"),
			})
			if err != nil {
				return err
			}

			for _, s := range states {
				outcome := "no movement, unchanged"
				if s.RolledOver {
					outcome = fmt.Sprintf("closed, period %d opened", s.Period)
				}
				fmt.Fprintf(c.App.Writer, "%s [%s] beginning=%d status=%s: %s\n",
					s.Name, s.Size, s.BeginningInventory, s.Status.Label(), outcome)
			}
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the inventory report as CSV to object storage",
		Flags: []cli.Flag{
			newDBURLFlag(),
			&cli.StringFlag{Name: "education-level", Usage: "Restrict to one education level"},
			&cli.StringFlag{Name: "search", Usage: "Item name search"},
			&cli.StringFlag{Name: "start-date", Usage: "YYYY-MM-DD, inclusive"},
			&cli.StringFlag{Name: "end-date", Usage: "YYYY-MM-DD, inclusive"},
			&cli.StringFlag{Name: "key", Usage: "Object key; a timestamped key when empty"},
		},
		Before: initDB,
		After:  closeDB,
		Action: func(c *cli.Context) error {
			cfg := config.Load()

			filter := domain.ReportFilter{
				Search:    c.String("search"),
				StartDate: c.String("start-date"),
				EndDate:   c.String("end-date"),
			}
			if raw := c.String("education-level"); raw != "" {
				level, ok := domain.ParseEducationLevel(raw)
				if !ok {
					return fmt.Errorf("unknown education level %q", raw)
				}
				filter.EducationLevel = level
			}

			svc, err := inventoryService(c, cfg)
			if err != nil {
				return err
			}
			store, err := storage.NewMinioClient(cfg.Storage)
			if err != nil {
				return err
			}

			key, err := service.NewExportService(svc, store).ExportReport(c.Context, filter, c.String("key"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "report written to %s/%s\n", cfg.Storage.Bucket, key)
			return nil
		},
	}
}
