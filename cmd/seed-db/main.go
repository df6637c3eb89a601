// Command seed-db loads the demo marketplace dataset (users and restaurant
// menus) into PostgreSQL. It is idempotent: rerunning upserts the same rows.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/courier-market/internal/repository"
)

type seedFile struct {
	Users []userJSON        `json:"users"`
	Menus []repository.Menu `json:"menus"`
}

type userJSON struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	Name string `json:"name"`
	Zone string `json:"zone"`
}

const upsertUserSQL = `INSERT INTO users (id, role, name, zone)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE
	SET role = EXCLUDED.role, name = EXCLUDED.name, zone = EXCLUDED.zone`

func main() {
	var (
		databaseURL string
		seedPath    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/marketplace.json", "path to marketplace seed JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath string) error {
	slog.Info("reading seed file", slog.String("path", seedPath))

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed JSON")
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("upserting users", slog.Int("count", len(seed.Users)))

	for _, u := range seed.Users {
		if _, err := pool.Exec(ctx, upsertUserSQL, u.ID, u.Role, u.Name, u.Zone); err != nil {
			return errors.Wrapf(err, "upsert user %s", u.ID)
		}

		slog.Info("upserted user", slog.String("id", u.ID), slog.String("role", u.Role))
	}

	menus := repository.NewMenuRepository(pool)

	slog.Info("upserting menus", slog.Int("count", len(seed.Menus)))

	for _, m := range seed.Menus {
		if err := menus.Upsert(ctx, m); err != nil {
			return errors.Wrapf(err, "upsert menu %s", m.RestaurantID)
		}

		slog.Info("upserted menu",
			slog.String("restaurant", m.RestaurantID),
			slog.Int("items", len(m.Items)))
	}

	return nil
}
