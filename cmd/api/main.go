// @title           Oil & Gas Compliance Triage API
// @version         1.0
// @description     Asynchronous document triage against Oil & Gas regulations: relevance classification, regulation retrieval and compliance gap reports.

// @contact.name    akolanti
// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "github.com/akolanti/ogtriage/cmd/api/docs"
	"github.com/akolanti/ogtriage/internal/app"
	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/data/store"
	"github.com/akolanti/ogtriage/internal/domain/jobModel"
	"github.com/akolanti/ogtriage/internal/handlers"
	"github.com/akolanti/ogtriage/internal/job"
	"github.com/akolanti/ogtriage/internal/mcpserver"
	"github.com/akolanti/ogtriage/internal/middleware"
	"github.com/akolanti/ogtriage/internal/server"
	"github.com/akolanti/ogtriage/internal/worker"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		println("config:", err.Error())
		os.Exit(1)
	}
	logger_i.Init(settings.IsProd, settings.LogLevel)
	logger := logger_i.NewLogger("main")

	listenAddr := flag.String("listen-addr", settings.ListenAddr, "server listen address")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clients, err := app.Open(ctx, settings, true)
	if err != nil {
		logger.Error("Could not initialise external services", "error", err)
		os.Exit(1)
	}
	assembly, err := clients.Triage()
	if err != nil {
		logger.Error("Could not assemble triage pipeline", "error", err)
		os.Exit(1)
	}

	ensureCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	if err := clients.Store.EnsureCollection(ensureCtx); err != nil {
		// upserts retry the collection, so a cold vector store is not fatal
		logger.Warn("Could not ensure collection", "collection", settings.Collection, "error", err)
	}
	cancel()

	stores, err := store.Open(ctx, settings.RedisAddr, settings.RedisPassword, config.FALLBACK_REDIS_TO_INTERNALSTORE)
	if err != nil {
		logger.Error("Redis stores are offline", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting job service", "redis", stores.Redis)
	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, config.BufferLimit),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          stores.Jobs,
		ReportStore:       stores.Reports,
	})

	executor := worker.NewDocumentExecutor(assembly.Pipeline, clients.Chunker, clients.Store, stores.Jobs, stores.Reports, true)
	pool := worker.NewPool(service, executor)
	pool.Start()

	root, err := os.Getwd()
	if err != nil {
		logger.Error("Could not resolve working directory", "error", err)
		os.Exit(1)
	}
	jobHandler, err := handlers.NewJobHandler(service, filepath.Join(root, config.UploadDir))
	if err != nil {
		logger.Error("Could not prepare uploads", "error", err)
		os.Exit(1)
	}

	mcp, err := mcpserver.NewServer(&mcpserver.Ports{
		Search:     assembly.Search,
		Classifier: assembly.Classifier,
		Triager:    assembly.Pipeline,
	})
	if err != nil {
		logger.Error("Could not create MCP server", "error", err)
		os.Exit(1)
	}

	router := server.NewRouter(server.Routes{
		Jobs: jobHandler,
		MCP:  mcp.Handler(),
		Middleware: middleware.New(middleware.Options{
			AuthToken:    settings.AuthToken,
			NoAuthBypass: settings.NoAuthBypass,
		}),
	})

	srv := server.New(*listenAddr, router, pool, stores.Close, clients.Close)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
