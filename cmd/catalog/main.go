// Command catalog maintains the calculator catalog stored in the database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Simplici0/posadzki/internal/cache"
	"github.com/Simplici0/posadzki/internal/catalog"
	"github.com/Simplici0/posadzki/internal/config"
	"github.com/Simplici0/posadzki/internal/db"
	"github.com/Simplici0/posadzki/internal/logger"
	"github.com/Simplici0/posadzki/internal/migrations"
	"github.com/Simplici0/posadzki/internal/store"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		printUsage(os.Stderr)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "catalog usage:")
	fmt.Fprintln(w, "  catalog validate <file.json>")
	fmt.Fprintln(w, "  catalog import [-overwrite] <file.json>")
	fmt.Fprintln(w, "  catalog dump")
	fmt.Fprintln(w, "  catalog migrate")
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "validate":
		if len(args) != 2 {
			return errUsage
		}
		return validateFile(args[1], stdout)
	case "import":
		fs := flag.NewFlagSet("import", flag.ContinueOnError)
		overwrite := fs.Bool("overwrite", false, "update records that already exist")
		if err := fs.Parse(args[1:]); err != nil || fs.NArg() != 1 {
			return errUsage
		}
		return withDatabase(ctx, func(env *environment) error {
			if err := importFile(ctx, env.db, fs.Arg(0), *overwrite, stdout); err != nil {
				return err
			}
			env.invalidateCache(ctx)
			return nil
		})
	case "dump":
		return withDatabase(ctx, func(env *environment) error {
			return dumpCatalog(ctx, store.New(env.db, env.logger), env.logger, stdout)
		})
	case "migrate":
		return withDatabase(ctx, func(env *environment) error {
			if err := migrations.Up(env.db.DB, env.db.DriverName()); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "migrations applied")
			return nil
		})
	default:
		return errUsage
	}
}

type environment struct {
	cfg    config.Config
	db     *sqlx.DB
	logger *zap.Logger
}

func withDatabase(ctx context.Context, fn func(env *environment) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	zapLogger, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	database, err := db.Open(ctx, cfg.DBDSN, db.Options{
		MaxOpenConns:   cfg.DBMaxOpenConns,
		ConnectTimeout: cfg.DBConnectTimeout,
	}, zapLogger)
	if err != nil {
		return err
	}
	defer database.Close()

	return fn(&environment{cfg: cfg, db: database, logger: zapLogger})
}

// invalidateCache drops cached records so the server picks up the import.
func (env *environment) invalidateCache(ctx context.Context) {
	if env.cfg.Redis.Addr == "" {
		return
	}
	client, err := cache.Dial(ctx, env.cfg.Redis.Addr, env.cfg.Redis.Password, env.cfg.Redis.DB)
	if err != nil {
		env.logger.Warn("redis unavailable, cached catalog expires on its own", zap.Error(err))
		return
	}
	defer client.Close()
	if err := cache.New(client, env.cfg.Redis.CatalogTTL).Invalidate(ctx); err != nil {
		env.logger.Warn("invalidate catalog cache", zap.Error(err))
	}
}

func readImport(path string) (catalog.Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog.Raw{}, fmt.Errorf("read %s: %w", path, err)
	}
	raw, err := catalog.ParseImport(data)
	if err != nil {
		return catalog.Raw{}, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}

func validateFile(path string, stdout io.Writer) error {
	raw, err := readImport(path)
	if err != nil {
		return err
	}
	for _, kind := range catalog.Kinds {
		fmt.Fprintf(stdout, "%-20s %d\n", kind, len(raw.Records(kind)))
	}
	fmt.Fprintf(stdout, "%s is valid\n", path)
	return nil
}

func importFile(ctx context.Context, database *sqlx.DB, path string, overwrite bool, stdout io.Writer) error {
	raw, err := readImport(path)
	if err != nil {
		return err
	}

	tx, err := database.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import transaction: %w", err)
	}
	stats, err := store.InsertRecords(ctx, tx, raw, overwrite)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import transaction: %w", err)
	}

	fmt.Fprintf(stdout, "imported %s: %d inserted, %d updated, %d skipped\n", path, stats.Inserts, stats.Updates, stats.Skipped)
	return nil
}

// dumpCatalog prints the catalog exactly as the calculator would see it.
func dumpCatalog(ctx context.Context, source catalog.Source, zapLogger *zap.Logger, stdout io.Writer) error {
	raw, err := source.LoadRaw(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(catalog.Normalize(raw, zapLogger))
}
