package main

import (
	"errors"
	"flag"

	config "github.com/Ghazanfar1991/syncrio/configs"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	var (
		dir   = flag.String("path", "migrations", "directory holding the SQL migrations")
		down  = flag.Bool("down", false, "roll back instead of applying")
		steps = flag.Int("steps", 0, "number of migrations to apply or roll back, 0 for all")
		force = flag.Int("force", -1, "mark a dirty database as clean at this version and exit")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.LoadConfig()
	if err := logger.Init(cfg.AppEnv); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Log

	m, err := migrate.New("file://"+*dir, cfg.PostgresURI)
	if err != nil {
		log.Fatal("open migrations", zap.Error(err))
	}
	defer m.Close()

	if *force >= 0 {
		if err := m.Force(*force); err != nil {
			log.Fatal("force version", zap.Int("version", *force), zap.Error(err))
		}
		log.Info("forced version", zap.Int("version", *force))
		return
	}

	switch {
	case *steps != 0 && *down:
		err = m.Steps(-*steps)
	case *steps != 0:
		err = m.Steps(*steps)
	case *down:
		err = m.Down()
	default:
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			log.Fatal("database is dirty, fix it and rerun with -force", zap.Int("version", dirty.Version))
		}
		log.Fatal("migrate", zap.Error(err))
	}

	version, isDirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatal("read version", zap.Error(err))
	}
	log.Info("migration successful", zap.Uint("version", version), zap.Bool("dirty", isDirty))
}
