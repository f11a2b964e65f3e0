package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigFromYAML 验证YAML配置文件能覆盖默认值
func TestLoadConfigFromYAML(t *testing.T) {
	yamlContent := `
aliyun:
  api_key: "sk-test-key"
  model: "qwen-max"
  extraction_timeout: "30s"
mysql:
  host: "db.internal"
  database: "resumes"
redis:
  address: "cache.internal:6379"
  extraction_cache_ttl_hours: 48
server:
  address: ":9090"
ingest:
  partition_key: "archived"
`
	tmpDir, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err, "无法创建临时目录")
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	err = os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err, "无法写入临时配置文件")

	config, err := LoadConfig(configPath)
	require.NoError(t, err, "加载合法配置不应返回错误")
	require.NotNil(t, config)

	assert.Equal(t, "sk-test-key", config.Aliyun.APIKey)
	assert.Equal(t, "qwen-max", config.Aliyun.Model)
	assert.Equal(t, "30s", config.Aliyun.ExtractionTimeout)
	assert.Equal(t, "db.internal", config.MySQL.Host)
	assert.Equal(t, "resumes", config.MySQL.Database)
	assert.Equal(t, "cache.internal:6379", config.Redis.Address)
	assert.Equal(t, 48, config.Redis.ExtractionCacheTTLHours)
	assert.Equal(t, ":9090", config.Server.Address)
	assert.Equal(t, "archived", config.Ingest.PartitionKey)

	// 未出现在文件中的字段保持默认值
	assert.Equal(t, 3306, config.MySQL.Port)
	assert.Equal(t, float64(0), config.Aliyun.Temperature)
}

// TestLoadConfigMissingFile 验证配置文件不存在时返回错误
func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	require.Error(t, err)
}

// TestLoadConfigEnvOverride 验证环境变量优先于配置文件
func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("ALIYUN_API_KEY", "sk-from-env")
	t.Setenv("MYSQL_HOST", "env-db-host")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "sk-from-env", config.Aliyun.APIKey)
	assert.Equal(t, "env-db-host", config.MySQL.Host)
}

// TestValidateMissingRequired 验证缺少必需配置时返回配置缺失错误
func TestValidateMissingRequired(t *testing.T) {
	config := createDefaultConfig()
	// 默认配置没有API密钥
	config.Aliyun.APIKey = ""

	err := config.Validate()
	require.Error(t, err, "缺少API密钥必须在启动期报错")
	assert.True(t, errors.Is(err, ErrConfigurationMissing))
	assert.Contains(t, err.Error(), "aliyun.api_key")
}

// TestValidateComplete 验证必需配置齐备时校验通过
func TestValidateComplete(t *testing.T) {
	config := createDefaultConfig()
	config.Aliyun.APIKey = "sk-test"

	assert.NoError(t, config.Validate())
}

// TestGetDuration 验证时长字符串解析及其回退
func TestGetDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, GetDuration("30s", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("不是时长", time.Minute))
}
