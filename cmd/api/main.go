package main

import (
	"context"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/skillbridge/learnmatch/internal/config"
	httpapi "github.com/skillbridge/learnmatch/internal/http"
	"github.com/skillbridge/learnmatch/internal/recommend"
	"github.com/skillbridge/learnmatch/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := storage.OpenSQLite(cfg.Storage.SQLitePath)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer store.Close()

	if err := store.EnsureSchema(); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}
	seed(logger, store, cfg)

	rec, err := recommend.NewRecommender(store, store, recommend.SystemClock{}, cfg.Weights, recommend.Tuning{
		FetchCap:        cfg.Ranking.FetchCap,
		InternshipLimit: cfg.Ranking.DefaultLimit,
		CourseLimit:     cfg.Ranking.CourseRecommendations,
	}, logger)
	if err != nil {
		logger.Fatal("build recommender", zap.Error(err))
	}

	srv := httpapi.NewServer(store, rec, logger)

	logger.Info("API listening", zap.String("address", cfg.Server.Address))
	if err := http.ListenAndServe(cfg.Server.Address, srv.Routes()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// seed loads the JSON datasets on first start. Missing seed files are not
// fatal; the API simply starts empty.
func seed(logger *zap.Logger, store *storage.SQLiteStore, cfg *config.Config) {
	ctx := context.Background()

	if courses, err := storage.LoadCoursesFromFile(cfg.Seed.CoursesPath); err != nil {
		logger.Warn("skip course seed", zap.Error(err))
	} else if err := store.UpsertCourses(ctx, courses); err != nil {
		logger.Warn("seed courses", zap.Error(err))
	}

	if internships, err := storage.LoadInternshipsFromFile(cfg.Seed.InternshipsPath); err != nil {
		logger.Warn("skip internship seed", zap.Error(err))
	} else if err := store.UpsertInternships(ctx, internships); err != nil {
		logger.Warn("seed internships", zap.Error(err))
	}

	if learners, err := storage.LoadLearnersFromFile(cfg.Seed.LearnersPath); err != nil {
		logger.Warn("skip learner seed", zap.Error(err))
	} else if err := store.UpsertLearners(ctx, learners); err != nil {
		logger.Warn("seed learners", zap.Error(err))
	}
}
