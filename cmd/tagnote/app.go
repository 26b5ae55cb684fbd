package main

import (
	"log/slog"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/totegamma/tagnote/internal/config"
	"github.com/totegamma/tagnote/internal/infra/database"
	"github.com/totegamma/tagnote/internal/infra/repository"
	"github.com/totegamma/tagnote/internal/service"
	"github.com/totegamma/tagnote/internal/usecase"
)

type app struct {
	db     *gorm.DB
	note   *usecase.NoteUsecase
	signal *service.SignalService
	close  func()
}

func newApp(conf config.Config) (*app, error) {
	db, err := database.Open(conf.Database)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	err = database.Migrate(db)
	if err != nil {
		return nil, errors.Wrap(err, "migrate database")
	}

	return wire(conf, db), nil
}

func wire(conf config.Config, db *gorm.DB) *app {
	closers := []func(){}

	tagRepo := repository.NewTagRepository(db)
	var noteRepo usecase.NoteRepository = repository.NewNoteRepository(db, tagRepo)

	if conf.Server.MemcachedAddr != "" {
		mc := database.NewMemcached(conf.Server.MemcachedAddr)
		noteRepo = repository.NewCachedNoteRepository(noteRepo, mc)
		closers = append(closers, func() { mc.Close() })
		slog.Info("memcached enabled", slog.String("addr", conf.Server.MemcachedAddr), slog.String("module", "main"))
	}

	var (
		signal    *service.SignalService
		publisher usecase.EventPublisher
	)
	if conf.Redis.Addr != "" {
		rdb := database.NewRedis(conf.Redis)
		signal = service.NewSignalService(rdb)
		publisher = signal
		closers = append(closers, func() { rdb.Close() })
		slog.Info("redis enabled", slog.String("addr", conf.Redis.Addr), slog.String("module", "main"))
	}

	if sqlDB, err := db.DB(); err == nil {
		closers = append(closers, func() { sqlDB.Close() })
	}

	return &app{
		db:     db,
		note:   usecase.NewNoteUsecase(noteRepo, tagRepo, publisher),
		signal: signal,
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}
}
