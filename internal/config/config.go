package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigurationMissing 启动期配置缺失错误
// 与每个请求的业务错误区分开：配置缺失在服务启动前快速失败
var ErrConfigurationMissing = errors.New("缺少必需配置")

// AliyunConfig 阿里云通义千问模型配置
type AliyunConfig struct {
	APIKey string `yaml:"api_key"`
	APIURL string `yaml:"api_url"`
	Model  string `yaml:"model"`
	// Temperature 解码温度，结构化提取要求确定性解码，默认为0
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	// ExtractionTimeout 单次提取调用超时，例如 "60s"
	ExtractionTimeout string `yaml:"extraction_timeout"`
}

// MySQLConfig MySQL配置结构
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	// 连接池设置
	MaxIdleConns int `yaml:"max_idle_conns"` // 最大空闲连接数
	MaxOpenConns int `yaml:"max_open_conns"` // 最大打开连接数
	// 连接生命周期
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes"`  // 连接最大生命周期(分钟)
	ConnMaxIdleTimeMinutes int `yaml:"conn_max_idle_time_minutes"` // 空闲连接最大生命周期(分钟)
	// 超时设置
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds"` // 连接超时(秒)
	ReadTimeoutSeconds    int `yaml:"read_timeout_seconds"`    // 读取超时(秒)
	WriteTimeoutSeconds   int `yaml:"write_timeout_seconds"`   // 写入超时(秒)
	// 日志设置
	LogLevel int `yaml:"log_level"` // 日志级别(1-4)
}

// RedisConfig holds configuration for Redis
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`      // 连接池大小
	MinIdleConns int `yaml:"min_idle_conns"` // 最小空闲连接数
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`  // 连接超时(秒)
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`  // 读取超时(秒)
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"` // 写入超时(秒)
	// 提取缓存过期时间(小时)
	ExtractionCacheTTLHours int `yaml:"extraction_cache_ttl_hours"`
}

// ServerConfig 定义服务器配置
type ServerConfig struct {
	Address string `yaml:"address"` // 例如 ":8080" or "0.0.0.0:8080"
}

// IngestConfig 摄取管线配置
type IngestConfig struct {
	// PartitionKey 文档集合的固定分区键值
	// 单分区设计是已知的扩展性限制，保持与源行为一致
	PartitionKey string `yaml:"partition_key"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// TracingConfig OpenTelemetry追踪配置
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Endpoint OTLP gRPC collector地址，例如 "localhost:4317"
	Endpoint string `yaml:"endpoint"`
}

// Config 应用程序配置
type Config struct {
	Aliyun  AliyunConfig  `yaml:"aliyun"`
	MySQL   MySQLConfig   `yaml:"mysql"`
	Redis   RedisConfig   `yaml:"redis"`
	Server  ServerConfig  `yaml:"server"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Logger  LoggerConfig  `yaml:"logger"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoadConfig 从文件加载配置，并允许环境变量覆盖关键项
// configPath为空时只使用默认值和环境变量
func LoadConfig(configPath string) (*Config, error) {
	config := createDefaultConfig()

	if configPath != "" {
		// 检查文件是否存在
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("配置文件不存在: %s", configPath)
		}

		// 读取配置文件
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}

		// 解析配置文件
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	// 从环境变量覆盖配置（如果存在）
	applyEnvOverrides(config)

	// 设置默认值 (如果需要)
	if config.Server.Address == "" {
		config.Server.Address = ":8080" // 默认服务器地址
	}
	if config.Ingest.PartitionKey == "" {
		config.Ingest.PartitionKey = "active"
	}

	return config, nil
}

// applyEnvOverrides 环境变量优先于配置文件
func applyEnvOverrides(config *Config) {
	if envKey := os.Getenv("ALIYUN_API_KEY"); envKey != "" {
		config.Aliyun.APIKey = envKey
	}
	if envURL := os.Getenv("ALIYUN_API_URL"); envURL != "" {
		config.Aliyun.APIURL = envURL
	}
	if envModel := os.Getenv("ALIYUN_MODEL"); envModel != "" {
		config.Aliyun.Model = envModel
	}
	if envHost := os.Getenv("MYSQL_HOST"); envHost != "" {
		config.MySQL.Host = envHost
	}
	if envPassword := os.Getenv("MYSQL_PASSWORD"); envPassword != "" {
		config.MySQL.Password = envPassword
	}
	if envDatabase := os.Getenv("MYSQL_DATABASE"); envDatabase != "" {
		config.MySQL.Database = envDatabase
	}
	if envAddr := os.Getenv("REDIS_ADDRESS"); envAddr != "" {
		config.Redis.Address = envAddr
	}
	if envAddr := os.Getenv("SERVER_ADDRESS"); envAddr != "" {
		config.Server.Address = envAddr
	}
}

// Validate 校验必需配置项是否齐备
// 任何缺失都会在管线运行前返回 ErrConfigurationMissing，不会延迟到请求处理时
func (c *Config) Validate() error {
	var missing []string

	if strings.TrimSpace(c.Aliyun.APIKey) == "" {
		missing = append(missing, "aliyun.api_key")
	}
	if strings.TrimSpace(c.MySQL.Host) == "" {
		missing = append(missing, "mysql.host")
	}
	if strings.TrimSpace(c.MySQL.Database) == "" {
		missing = append(missing, "mysql.database")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigurationMissing, strings.Join(missing, ", "))
	}
	return nil
}

// createDefaultConfig 创建默认配置
func createDefaultConfig() *Config {
	config := &Config{}

	// Aliyun默认配置
	config.Aliyun.APIURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	config.Aliyun.Model = "qwen-plus"
	config.Aliyun.Temperature = 0 // 确定性解码
	config.Aliyun.MaxTokens = 2048
	config.Aliyun.ExtractionTimeout = "60s"

	// MySQL默认配置
	config.MySQL.Host = "localhost"
	config.MySQL.Port = 3306
	config.MySQL.Username = "root"
	config.MySQL.Database = "resume_ingest"
	config.MySQL.MaxIdleConns = 10
	config.MySQL.MaxOpenConns = 100
	config.MySQL.ConnMaxLifetimeMinutes = 60
	config.MySQL.ConnMaxIdleTimeMinutes = 30
	config.MySQL.ConnectTimeoutSeconds = 10
	config.MySQL.ReadTimeoutSeconds = 30
	config.MySQL.WriteTimeoutSeconds = 30
	config.MySQL.LogLevel = 4 // Info级别

	// Redis默认配置
	config.Redis.Address = "localhost:6379"
	config.Redis.DB = 0
	config.Redis.PoolSize = 10
	config.Redis.MinIdleConns = 2
	config.Redis.DialTimeoutSeconds = 5
	config.Redis.ReadTimeoutSeconds = 3
	config.Redis.WriteTimeoutSeconds = 3
	config.Redis.ExtractionCacheTTLHours = 24

	// 服务器默认配置
	config.Server.Address = ":8080"

	// 摄取默认配置
	config.Ingest.PartitionKey = "active"

	// 日志默认配置
	config.Logger.Level = "info"
	config.Logger.Format = "pretty" // 开发环境默认使用美化输出
	config.Logger.TimeFormat = "2006-01-02 15:04:05"
	config.Logger.ReportCaller = true

	// 追踪默认关闭
	config.Tracing.Enabled = false
	config.Tracing.Endpoint = "localhost:4317"

	return config
}

// GetDuration utility to parse duration strings from config
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
