package main

import (
	"context"
	"io"

	"github.com/noah-isme/youth-camp-api/internal/app"
	"github.com/noah-isme/youth-camp-api/internal/models"
	"github.com/noah-isme/youth-camp-api/internal/service"
	"github.com/noah-isme/youth-camp-api/pkg/config"
	"github.com/noah-isme/youth-camp-api/pkg/database"
	"github.com/noah-isme/youth-camp-api/pkg/logger"
)

type editionAdmin interface {
	List(ctx context.Context) ([]models.Edition, error)
	Activate(ctx context.Context, id int64) (*models.Edition, error)
	Deactivate(ctx context.Context, id int64) (*models.Edition, error)
	DefaultSelection(ctx context.Context) (models.EditionSelection, error)
}

type registrationAdmin interface {
	List(ctx context.Context, sel models.EditionSelection) ([]models.Registration, error)
	UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) (*models.Registration, error)
}

type statementReconciler interface {
	ReconcileCSV(ctx context.Context, statement io.Reader, sel models.EditionSelection) (*service.ReconciliationResult, error)
}

type userAdmin interface {
	CreateUser(ctx context.Context, req service.CreateUserRequest) (*models.User, error)
}

// backend is what the subcommands operate on.
type backend struct {
	Editions      editionAdmin
	Registrations registrationAdmin
	Reconciler    statementReconciler
	Users         userAdmin
	Migrate       func(ctx context.Context) error
}

// opener builds a backend and returns a release func.
type opener func() (*backend, func(), error)

func openBackend() (*backend, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	cfg.Log.Format = "console"
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	c, err := app.New(cfg, logr)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		_ = c.Close()
		_ = logr.Sync()
	}
	return &backend{
		Editions:      c.Editions,
		Registrations: c.Registrations,
		Reconciler:    c.Reconciler,
		Users:         c.Auth,
		Migrate:       func(ctx context.Context) error { return database.ApplySchema(ctx, c.DB) },
	}, release, nil
}
