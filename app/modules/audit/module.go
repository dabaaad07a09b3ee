package audit

import (
	"context"
	"fmt"
	"log/slog"

	auditservice "github.com/Black-And-White-Club/stage-console/app/modules/audit/application"
	audithandlers "github.com/Black-And-White-Club/stage-console/app/modules/audit/infrastructure/handlers"
	auditdb "github.com/Black-And-White-Club/stage-console/app/modules/audit/infrastructure/repositories"
	auditrouter "github.com/Black-And-White-Club/stage-console/app/modules/audit/infrastructure/router"
	"github.com/Black-And-White-Club/stage-console/pkg/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Module represents the audit module.
type Module struct {
	AuditService auditservice.Service
	AuditRouter  *auditrouter.AuditRouter
	Handlers     audithandlers.Handlers
	logger       *slog.Logger
}

// NewAuditModule creates the activity log and registers its consumers on router.
func NewAuditModule(
	ctx context.Context,
	logger *slog.Logger,
	tracer trace.Tracer,
	m metrics.ConsoleMetrics,
	db *bun.DB,
	router *message.Router,
	subscriber message.Subscriber,
	registry prometheus.Registerer,
) (*Module, error) {
	logger.InfoContext(ctx, "audit.NewAuditModule initializing")

	// 1. Initialize Repository
	repo := auditdb.NewRepository(db)

	// 2. Initialize Service
	service := auditservice.NewAuditService(repo, logger, m, tracer)

	// 3. Initialize Handlers
	handlers := audithandlers.NewAuditHandlers(service, logger, tracer)

	// 4. Initialize Router
	auditRouter := auditrouter.NewAuditRouter(logger, router, subscriber, registry)
	if err := auditRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure audit router: %w", err)
	}

	return &Module{
		AuditService: service,
		AuditRouter:  auditRouter,
		Handlers:     handlers,
		logger:       logger,
	}, nil
}

// Close shuts down the audit router.
func (m *Module) Close() error {
	m.logger.Info("Stopping audit module")

	if m.AuditRouter != nil {
		if err := m.AuditRouter.Close(); err != nil {
			m.logger.Error("Error closing AuditRouter from module", "error", err)
			return fmt.Errorf("error closing AuditRouter: %w", err)
		}
	}

	m.logger.Info("Audit module stopped")
	return nil
}
