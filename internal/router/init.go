package router

import (
	"github.com/bloodlink/bloodlink-api/internal/application"
	"github.com/bloodlink/bloodlink-api/internal/container"
	pginfra "github.com/bloodlink/bloodlink-api/internal/infrastructure/postgres"
	handlers "github.com/bloodlink/bloodlink-api/internal/interface/http"
	"github.com/bloodlink/bloodlink-api/internal/router/modules"
)

// InitModules builds the repositories, services, and handlers from the
// container singletons and registers every feature module. Called once during
// startup after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	requestRepo := pginfra.NewDonationRequestRepository(pool)
	userRepo := pginfra.NewUserRepository(pool)
	blogRepo := pginfra.NewBlogRepository(pool)
	fundRepo := pginfra.NewFundRepository(pool)

	var events application.EventPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		events = pub
	}

	requestSvc := application.NewRequestService(requestRepo, events, logger)
	userSvc := application.NewUserService(userRepo, logger, container.GetES(), cfg.ESDonorsIndex, container.GetResolver())
	blogSvc := application.NewBlogService(blogRepo)
	fundSvc := application.NewFundService(fundRepo)
	statsSvc := application.NewStatsService(userRepo, requestRepo, fundRepo)

	r.Add(modules.NewRequestModule(handlers.NewRequestHandler(requestSvc, logger)))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, logger)))
	r.Add(modules.NewBlogModule(handlers.NewBlogHandler(blogSvc)))
	r.Add(modules.NewFundModule(handlers.NewFundHandler(fundSvc)))
	r.Add(modules.NewStatsModule(handlers.NewStatsHandler(statsSvc)))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
