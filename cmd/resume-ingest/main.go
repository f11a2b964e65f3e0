package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-ingest-go/internal/agent"
	"resume-ingest-go/internal/api/handler"
	"resume-ingest-go/internal/api/router"
	"resume-ingest-go/internal/config"
	applogger "resume-ingest-go/internal/logger"
	"resume-ingest-go/internal/parser"
	"resume-ingest-go/internal/processor"
	"resume-ingest-go/internal/storage"
	"resume-ingest-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app/server"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

var (
	version     = "1.0.0"            //nolint:gochecknoglobals
	serviceName = "resume-ingest-go" //nolint:gochecknoglobals
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "internal/config/config.yaml", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	initLogger(cfg)
	glog.Infof("配置加载成功 (version=%s)", version)

	// 必需配置缺失时在任何管线运行之前快速失败
	if err := cfg.Validate(); err != nil {
		glog.Fatalf("配置校验失败: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 初始化OpenTelemetry追踪
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitProvider(ctx, serviceName, cfg.Tracing.Endpoint)
		if err != nil {
			glog.Fatalf("初始化追踪失败: %v", err)
		}
		defer func() {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			if err := shutdown(shutdownCtx); err != nil {
				glog.Warnf("关闭追踪提供者失败: %v", err)
			}
		}()
		glog.Info("OpenTelemetry追踪初始化成功")
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	// 初始化LLM客户端
	llmModel, err := agent.NewAliyunQwenChatModel(
		cfg.Aliyun.APIKey,
		cfg.Aliyun.Model,
		cfg.Aliyun.APIURL,
		agent.WithTemperature(cfg.Aliyun.Temperature),
		agent.WithMaxTokens(cfg.Aliyun.MaxTokens),
	)
	if err != nil {
		glog.Fatalf("初始化阿里云通义千问客户端失败: %v", err)
	}
	glog.Info("LLM客户端初始化成功")

	// debug级别时组件日志输出到stderr，否则丢弃
	var componentLogger *log.Logger
	if cfg.Logger.Level == "debug" {
		componentLogger = log.New(os.Stderr, "[IngestMain] ", log.LstdFlags|log.Lshortfile)
	} else {
		componentLogger = log.New(io.Discard, "", 0)
	}

	pdfExtractor, err := parser.NewEinoPDFTextExtractor(ctx, parser.WithEinoLogger(componentLogger))
	if err != nil {
		glog.Fatalf("创建Eino PDF提取器失败: %v", err)
	}
	glog.Info("Eino PDF提取器初始化成功")

	candidateExtractor := parser.NewCandidateExtractor(llmModel, componentLogger,
		parser.WithExtractionTimeout(config.GetDuration(cfg.Aliyun.ExtractionTimeout, 60*time.Second)))
	glog.Info("候选人信息提取器初始化成功")

	assembler := processor.NewDocumentAssembler(cfg.Ingest.PartitionKey)

	// Redis不可用时传入nil缓存，管线退化为每次调用模型
	var cache processor.ExtractionCache
	if storageManager.Redis != nil {
		cache = storageManager.Redis
	}

	ingestor := processor.NewResumeIngestor(pdfExtractor, candidateExtractor, assembler, storageManager.MySQL, cache)
	glog.Info("简历摄取管线初始化成功")

	ingestHandler := handler.NewIngestHandler(cfg, storageManager, ingestor)

	serverOpts := []hertzconfig.Option{
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	}

	var tracerCfg *hertztracing.Config
	if cfg.Tracing.Enabled {
		tracer, tCfg := hertztracing.NewServerTracer()
		serverOpts = append(serverOpts, tracer)
		tracerCfg = tCfg
	}

	h := server.New(serverOpts...)
	if tracerCfg != nil {
		h.Use(hertztracing.ServerMiddleware(tracerCfg))
	}

	router.RegisterRoutes(h, ingestHandler)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initLogger 初始化zerolog并桥接到Hertz的hlog
func initLogger(cfg *config.Config) {
	applogger.Init(applogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	hertzCompatibleLogger := hertzadapter.From(applogger.Logger)
	glog.SetLogger(hertzCompatibleLogger)
}
