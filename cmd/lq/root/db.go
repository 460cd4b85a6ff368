package root

import (
	"context"
	"database/sql"

	"lifequest/internal/engine"
	"lifequest/internal/storage"
)

func openDB(ctx context.Context) (*sql.DB, func(), error) {
	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

func catalogSource() engine.CatalogSource {
	if cfg.CatalogPath != "" {
		return engine.FileCatalog{Path: cfg.CatalogPath}
	}
	return engine.StaticCatalog(engine.DefaultCatalog())
}

func openService(ctx context.Context) (*engine.Service, *storage.Store, func(), error) {
	db, cleanup, err := openDB(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	store := storage.NewStore(db, logger.Named("store"))
	return engine.NewService(store, catalogSource(), logger), store, cleanup, nil
}
