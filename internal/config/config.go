package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load 加载配置
//  1. 根据 APP_ENV 加载 .env.{env}（dev/test）
//  2. 加载 {env}.yaml
//  3. 环境变量覆盖，构建最终配置
func Load() (*Config, error) {
	env := parseEnv(getEnv("APP_ENV", "dev"))
	loadEnvFiles(env)

	yamlCfg, err := loadYAMLConfig(env)
	if err != nil {
		return nil, err
	}

	db := yamlCfg.Database
	db.Password = os.Getenv("DB_PASSWORD")

	databaseURL := os.Getenv("DATABASE_URL")
	driver := detectDatabaseDriver(db.Driver, databaseURL)
	db.Driver = driver
	if databaseURL == "" {
		databaseURL = buildDatabaseURL(db, db.Password)
	}

	redisCfg := yamlCfg.Redis
	redisCfg.Password = os.Getenv("REDIS_PASSWORD")
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" && redisCfg.Enabled {
		redisURL = buildRedisURL(redisCfg)
	}

	auth := yamlCfg.Auth
	auth.JWTSecret = os.Getenv("JWT_SECRET")

	logCfg := yamlCfg.Log
	logCfg.Level = getEnv("LOG_LEVEL", logCfg.Level)
	logCfg.Format = getEnv("LOG_FORMAT", logCfg.Format)

	cfg := &Config{
		Env:            env,
		DatabaseDriver: driver,
		DatabaseURL:    databaseURL,
		DatabaseDBName: db.Name,
		RedisURL:       redisURL,
		APIPort:        getEnv("API_PORT", yamlCfg.APIServer.Port),
		Auth:           auth,
		Log:            logCfg,
		Pagination:     yamlCfg.Pagination,
		OpenAPI:        yamlCfg.OpenAPI,
		ConfigFilePath: yamlCfg.loadedFrom,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultYAMLConfig 代码默认值
func defaultYAMLConfig() YAMLConfig {
	return YAMLConfig{
		APIServer: APIServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Driver:  "sqlite",
			Path:    "qa.db",
			Host:    "localhost",
			Port:    5432,
			User:    "qa",
			Name:    "qa",
			SSLMode: "disable",
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth: AuthConfig{
			TokenTTL:   168 * time.Hour,
			TokenStore: TokenStoreDatabase,
		},
		Log:        LogConfig{Level: "info", Format: "text"},
		Pagination: PaginationConfig{DefaultLimit: 20, MaxLimit: 100},
		OpenAPI:    OpenAPIConfig{Validate: true},
	}
}

// loadYAMLConfig 加载 YAML 配置文件，未找到文件时使用默认值
func loadYAMLConfig(env Environment) (*yamlConfigInternal, error) {
	cfg := &yamlConfigInternal{YAMLConfig: defaultYAMLConfig()}

	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range effectiveConfigPaths() {
		path := filepath.Join(base, filename)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg.YAMLConfig); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.loadedFrom = path
		break
	}
	return cfg, nil
}

// validate 校验并填充默认值
func (c *Config) validate() error {
	if c.APIPort == "" {
		c.APIPort = "8080"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 168 * time.Hour
	}
	switch strings.ToLower(c.Auth.TokenStore) {
	case "", TokenStoreDatabase:
		c.Auth.TokenStore = TokenStoreDatabase
	case TokenStoreRedis:
		c.Auth.TokenStore = TokenStoreRedis
		if c.RedisURL == "" {
			return fmt.Errorf("auth.token_store=redis requires redis.enabled or REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown auth.token_store %q", c.Auth.TokenStore)
	}
	if c.Pagination.DefaultLimit <= 0 {
		c.Pagination.DefaultLimit = 20
	}
	if c.Pagination.MaxLimit <= 0 {
		c.Pagination.MaxLimit = 100
	}
	if c.Pagination.DefaultLimit > c.Pagination.MaxLimit {
		c.Pagination.DefaultLimit = c.Pagination.MaxLimit
	}
	if c.Env == EnvProduction && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// IsProduction 是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// String 返回配置摘要（隐藏密码）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Driver: %s, DB: %s, Redis: %s, TokenStore: %s}",
		c.Env, c.DatabaseDriver, maskPassword(c.DatabaseURL), maskPassword(c.RedisURL), c.Auth.TokenStore)
}
