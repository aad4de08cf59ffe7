package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/aw-admin-api/internal/repository"
	"github.com/noah-isme/aw-admin-api/internal/service"
	"github.com/noah-isme/aw-admin-api/pkg/config"
	"github.com/noah-isme/aw-admin-api/pkg/database"
	"github.com/noah-isme/aw-admin-api/pkg/logger"
)

func main() {
	seed := flag.Bool("seed", true, "create default roles and the bootstrap admin")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.New(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	err = database.Migrate(ctx, db, func(m database.Migration) {
		logr.Info("migration applied", zap.Int("index", m.Index), zap.String("description", m.Description))
	})
	if err != nil {
		logr.Fatal("migration failed", zap.Error(err))
	}

	if !*seed {
		return
	}

	seeder := service.NewSeeder(
		repository.NewRoleRepository(db),
		repository.NewUserRepository(db),
		database.NewTxManager(db),
		service.NewPasswordHasher(cfg.JWT.BcryptCost),
		logr,
	)
	report, err := seeder.Run(ctx, cfg.Bootstrap)
	if err != nil {
		logr.Fatal("seeding failed", zap.Error(err))
	}
	logr.Info("seeding finished",
		zap.Strings("roles_created", report.RolesCreated),
		zap.Bool("admin_created", report.AdminCreated),
		zap.String("admin_emp_id", report.AdminEmpID),
	)
}
