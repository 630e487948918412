// Package wire provides dependency injection for the blueprint application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	cliadapter "github.com/example/blueprint/internal/adapters/cli"
	"github.com/example/blueprint/internal/adapters/markdown"
	"github.com/example/blueprint/internal/adapters/sqlite"
	"github.com/example/blueprint/internal/app"
	"github.com/example/blueprint/internal/core/gate"
	"github.com/example/blueprint/internal/ctxutil"
	"github.com/example/blueprint/internal/db"
	"github.com/example/blueprint/internal/logging"
	"github.com/example/blueprint/internal/ports/primary"
	"github.com/example/blueprint/internal/projectctx"
	"github.com/example/blueprint/internal/telemetry"
	"github.com/example/blueprint/internal/version"
)

var (
	projectDir = "."
	actorFlag  string

	project          *projectctx.ProjectContext
	artifactService  primary.ArtifactService
	sprintService    primary.SprintService
	knowledgeService primary.KnowledgeService
	exchangeService  primary.ExchangeService
	initErr          error
	once             sync.Once
)

// SetProjectDir sets where project detection starts. Must be called before
// any service is requested.
func SetProjectDir(dir string) {
	if dir != "" {
		projectDir = dir
	}
}

// SetActor overrides the configured actor for this process.
func SetActor(actor string) {
	actorFlag = actor
}

// Ready initializes the services and reports any failure, typically
// ErrNoProject outside a project.
func Ready() error {
	once.Do(initServices)
	return initErr
}

// Project returns the detected project.
func Project() *projectctx.ProjectContext {
	once.Do(initServices)
	return project
}

// Context attaches the acting identity to ctx.
func Context(ctx context.Context) context.Context {
	once.Do(initServices)
	actor := actorFlag
	if actor == "" && project != nil {
		actor = projectctx.ResolveActor(project.Config)
	}
	return ctxutil.WithActorID(ctx, actor)
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	pc, err := projectctx.Detect(projectDir)
	if err != nil {
		initErr = err
		return
	}
	project = pc
	cfg := pc.Config

	logger := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	if err := telemetry.Init(context.Background(), telemetry.Options{
		Enabled:     cfg.Telemetry.Enabled,
		Stdout:      cfg.Telemetry.Stdout,
		ServiceName: "blueprint",
		Version:     version.Version,
	}); err != nil {
		logger.Warn("telemetry disabled", "error", err)
	}
	metrics, err := telemetry.NewInstruments(telemetry.Meter("app"))
	if err != nil {
		logger.Warn("metrics unavailable", "error", err)
	}

	database, err := db.GetDB(pc.DatabasePath())
	if err != nil {
		initErr = fmt.Errorf("failed to initialize database: %w", err)
		return
	}

	// Create the store (secondary port) and the shared engine
	store := sqlite.NewStore(database)
	validator := gate.NewValidator(gate.Options{ResearchPendingSatisfies: cfg.Gates.ResearchPendingSatisfies})
	engine := app.NewEngine(store, validator, logger, metrics)

	// Create services (primary ports implementation)
	artifactService = app.NewArtifactService(engine)
	sprintService = app.NewSprintService(engine)
	knowledgeService = app.NewKnowledgeService(engine)
	exchangeService = app.NewExchangeService(engine, markdown.NewStore())

	logger.Debug("services ready", "root", pc.Root, "database", pc.DatabasePath())
}

// ArtifactService returns the singleton ArtifactService instance.
func ArtifactService() primary.ArtifactService {
	once.Do(initServices)
	return artifactService
}

// Shutdown flushes telemetry and closes the database.
func Shutdown(ctx context.Context) {
	telemetry.Shutdown(ctx)
	if err := db.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}

// ArtifactAdapter returns a new ArtifactAdapter writing to out.
// Each call creates a new adapter (adapters are stateless translators).
func ArtifactAdapter(out io.Writer) *cliadapter.ArtifactAdapter {
	once.Do(initServices)
	return cliadapter.NewArtifactAdapter(artifactService, out)
}

// SprintAdapter returns a new SprintAdapter writing to out.
func SprintAdapter(out io.Writer) *cliadapter.SprintAdapter {
	once.Do(initServices)
	return cliadapter.NewSprintAdapter(sprintService, out)
}

// KnowledgeAdapter returns a new KnowledgeAdapter writing to out.
func KnowledgeAdapter(out io.Writer) *cliadapter.KnowledgeAdapter {
	once.Do(initServices)
	return cliadapter.NewKnowledgeAdapter(knowledgeService, out)
}

// ExchangeAdapter returns a new ExchangeAdapter writing to out.
func ExchangeAdapter(out io.Writer) *cliadapter.ExchangeAdapter {
	once.Do(initServices)
	return cliadapter.NewExchangeAdapter(exchangeService, out)
}
