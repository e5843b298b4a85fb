package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
)

func main() {
	var (
		cmd     = flag.String("cmd", "up", "up|down|status|version|create|validate")
		dir     = flag.String("dir", "", "migrations directory (default: migrations embedded in the binary)")
		name    = flag.String("name", "", "migration name for -cmd=create")
		version = flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	)
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	// create and validate work on files only.
	switch *cmd {
	case "create":
		target := *dir
		if target == "" {
			target = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(target, *name)
		exitOn(err, "create migration")
		fmt.Println("created", path)
		return
	case "validate":
		source, err := migrate.Source(*dir)
		exitOn(err, "open migrations")
		exitOn(migrate.Validate(source), "validate migrations")
		fmt.Println("migrations valid")
		return
	}

	cfg, err := config.Load()
	exitOn(err, "load config")
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.ConsoleLogs(),
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": *cmd})

	client, err := db.New(ctx, cfg.DB, logg)
	exitOn(err, "connect database")
	defer client.Close()

	sqlDB, err := client.DB().DB()
	exitOn(err, "extract sql.DB")
	source, err := migrate.Source(*dir)
	exitOn(err, "open migrations")
	runner, err := migrate.NewRunner(sqlDB, source, logg)
	exitOn(err, "init migrations")

	switch *cmd {
	case "up":
		err = runner.Up(ctx)
	case "down":
		err = runner.Down(ctx)
	case "version":
		if *version == "" {
			err = fmt.Errorf("-version is required")
			break
		}
		err = runner.To(ctx, *version)
	case "status":
		err = printStatus(ctx, runner)
	default:
		err = fmt.Errorf("unknown -cmd %q", *cmd)
	}
	if err != nil {
		logg.Error(ctx, "migrate.failed", err)
		client.Close()
		os.Exit(1)
	}
}

func printStatus(ctx context.Context, runner *migrate.Runner) error {
	rows, err := runner.Status(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tAPPLIED\tFILE")
	for _, row := range rows {
		fmt.Fprintf(w, "%d\t%t\t%s\n", row.Version, row.Applied, row.Path)
	}
	return w.Flush()
}

func exitOn(err error, step string) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", step, err)
	os.Exit(1)
}
