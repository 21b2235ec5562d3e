package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/riskibarqy/wato-stats/db/migrations"
	"github.com/riskibarqy/wato-stats/internal/config"
	"github.com/riskibarqy/wato-stats/internal/platform/logging"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewJSON(cfg.LogLevel).Named("migration")
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	if cfg.DBURL == "" {
		fatal(logger, "DB_URL or DB_HOST is required")
	}

	m, sourceName, err := newMigrator(cfg.DBURL)
	if err != nil {
		fatal(logger, "create migrator", "error", err)
	}
	defer closeMigrator(logger, m)

	cmd := strings.ToLower(strings.TrimSpace(os.Args[1]))
	switch cmd {
	case "up":
		handleMigrationErr(logger, m.Up())
		logger.Info("migrations applied", "source", sourceName)
	case "down":
		steps, parseErr := parseSteps(os.Args[2:])
		if parseErr != nil {
			fatal(logger, "parse down steps", "error", parseErr)
		}
		handleMigrationErr(logger, m.Steps(-steps))
		logger.Info("migrations rolled back", "steps", steps)
	case "version":
		version, dirty, versionErr := m.Version()
		if errors.Is(versionErr, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			fmt.Println("dirty: false")
			return
		}
		if versionErr != nil {
			fatal(logger, "read version", "error", versionErr)
		}
		fmt.Printf("version: %d\n", version)
		fmt.Printf("dirty: %t\n", dirty)
	case "force":
		if len(os.Args) < 3 {
			fatal(logger, "force requires a version argument")
		}
		version, parseErr := parseVersion(os.Args[2])
		if parseErr != nil {
			fatal(logger, "parse version", "error", parseErr)
		}
		if err := m.Force(version); err != nil {
			fatal(logger, "force version", "version", version, "error", err)
		}
		logger.Info("forced migration version", "version", version)
	case "goto", "migrate":
		if len(os.Args) < 3 {
			fatal(logger, "goto requires a target version argument")
		}
		target, parseErr := parseTarget(os.Args[2])
		if parseErr != nil {
			fatal(logger, "parse target version", "error", parseErr)
		}
		handleMigrationErr(logger, m.Migrate(target))
		logger.Info("migrated to version", "version", target)
	default:
		printUsage()
		os.Exit(2)
	}
}

// newMigrator reads migrations from MIGRATIONS_DIR when set and from the
// embedded set otherwise.
func newMigrator(dbURL string) (*migrate.Migrate, string, error) {
	if dir := strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, "", fmt.Errorf("resolve MIGRATIONS_DIR: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return nil, "", fmt.Errorf("migration directory %q not found", abs)
		}
		sourceURL := "file://" + filepath.ToSlash(abs)
		m, err := migrate.New(sourceURL, dbURL)
		return m, sourceURL, err
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, "", fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	return m, "embedded", err
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}

	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	if value > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("version is too large for this platform")
	}

	return int(value), nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func handleMigrationErr(logger *logging.Logger, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return
	}
	fatal(logger, "migration failed", "error", err)
}

func closeMigrator(logger *logging.Logger, m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("close migration source", "error", srcErr)
	}
	if dbErr != nil {
		logger.Warn("close migration db", "error", dbErr)
	}
}

func fatal(logger *logging.Logger, msg string, args ...any) {
	logger.Error(msg, args...)
	_ = logger.Sync()
	os.Exit(1)
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down|version|force|goto> [args]\n", name)
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s up\n", name)
	fmt.Fprintf(os.Stderr, "  %s down 1\n", name)
	fmt.Fprintf(os.Stderr, "  %s version\n", name)
	fmt.Fprintf(os.Stderr, "  %s force 4\n", name)
	fmt.Fprintf(os.Stderr, "  %s goto 3\n", name)
}
