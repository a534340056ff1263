package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"workguard/api/handler"
	"workguard/api/router"
	"workguard/job"
	"workguard/logic/analysis/extract"
	"workguard/service"
	"workguard/storage/es"
	"workguard/storage/postgres"
	"workguard/vars"
)

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func main() {
	log, err := newLogger(vars.LOG_LEVEL, vars.LOG_FORMAT)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	for key, value := range vars.InvalidEnv() {
		log.Warn("invalid environment value, using default", zap.String("key", key), zap.String("value", value))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. 指标
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(registry)

	// 2. 模型懒加载，首次分析时才连接
	cfg := service.ModelConfigFromEnv()
	models := service.NewModels(cfg.EmbedderFactory(log), cfg.SummarizerFactory(log), log)
	defer func() {
		if err := models.Close(); err != nil {
			log.Warn("close models", zap.Error(err))
		}
	}()

	extractor, err := extract.NewExtractor(ctx)
	if err != nil {
		log.Fatal("init pdf extractor", zap.Error(err))
	}
	analysisSvc := service.NewAnalysisService(extractor, models, metrics, log)

	// 3. 存储可选：PG 不可用时只提供分析，不落库
	var reports handler.Reports
	dsn := postgres.DSN(vars.PGHOST, vars.PGUSER, vars.PGPWD, vars.PGDB, vars.PGPORT)
	if db, err := postgres.InitDB(dsn, log); err != nil {
		log.Warn("postgres unavailable, results will not be persisted", zap.Error(err))
	} else {
		var findings service.FindingIndex
		if idx, err := es.NewESIndexer(ctx, []string{vars.ESADDR}, vars.ES_INDEX, log); err != nil {
			log.Warn("elasticsearch unavailable, risk search disabled", zap.Error(err))
		} else {
			findings = idx
		}
		reportSvc := service.NewReportService(postgres.NewContractRepo(db), findings, log)
		reports = reportSvc

		// 启动定时任务
		c, err := job.StartCronJob(reportSvc, vars.RETENTION_DAYS, log.Named("cron"))
		if err != nil {
			log.Fatal("start cron", zap.Error(err))
		}
		defer c.Stop()
	}

	if err := os.MkdirAll(vars.UPLOAD_DIR, 0o750); err != nil {
		log.Fatal("create upload dir", zap.Error(err))
	}
	contractHandler := handler.NewContractHandler(analysisSvc, reports, vars.UPLOAD_DIR, log)

	// 4. 启动 Web Server
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = handler.MaxUploadSize
	router.RegisterRoutes(r, contractHandler, registry)

	srv := &http.Server{Addr: vars.HTTP_ADDR, Handler: r}
	go func() {
		log.Info("server running", zap.String("addr", vars.HTTP_ADDR))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
}
