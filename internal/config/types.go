// Package config 统一配置管理
//
// 配置加载优先级（高→低）：
//  1. 环境变量（通过 .env 文件或 shell/systemd 注入）
//  2. YAML 配置文件（{env}.yaml，如 dev.yaml、test.yaml、prod.yaml）
//  3. 代码硬编码默认值
//
// 凭据单一数据源：
//
//	密码/密钥只存在环境变量或 .env 文件中（YAML 中不存储任何密码）。
//
// 配置路径确定策略：
//  1. --config 命令行参数（显式路径）
//  2. CONFIG_DIR 环境变量
//  3. 按 APP_ENV 选择默认路径：
//     - prod → /etc/qa-server/
//     - dev/test → ./configs/
//
// 环境：
//   - 开发: APP_ENV=dev → configs/dev.yaml + .env.dev
//   - 测试: APP_ENV=test → configs/test.yaml + .env.test
//   - 生产: APP_ENV=prod → /etc/qa-server/prod.yaml
package config

import "time"

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// 令牌登记表后端
const (
	TokenStoreDatabase = "database"
	TokenStoreRedis    = "redis"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	APIServer  APIServerConfig  `yaml:"api_server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	Log        LogConfig        `yaml:"log"`
	Pagination PaginationConfig `yaml:"pagination"`
	OpenAPI    OpenAPIConfig    `yaml:"openapi"`
}

// APIServerConfig API Server 配置
type APIServerConfig struct {
	Port string `yaml:"port"` // 监听端口
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "sqlite", "postgres" 或 "mongodb"（默认 sqlite）
	Path     string `yaml:"path"`   // SQLite 文件路径
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"` // 只从 DB_PASSWORD 环境变量读取
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	URI      string `yaml:"uri"` // MongoDB 连接 URI（优先于 host/port）
}

// RedisConfig Redis 配置（仅 auth.token_store=redis 时使用）
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"-"`   // 只从 REDIS_PASSWORD 环境变量读取
	URL      string `yaml:"url"` // 直接指定 URL（优先于 host/port/db）
}

// AuthConfig 认证配置
// JWTSecret 只从 JWT_SECRET 环境变量读取
type AuthConfig struct {
	JWTSecret  string        `yaml:"-"`
	TokenTTL   time.Duration `yaml:"token_ttl"`   // 登录令牌有效期，默认 168h
	TokenStore string        `yaml:"token_store"` // database | redis
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`  // debug/info/warn/error
	Format string `yaml:"format"` // text/json
}

// PaginationConfig 分页配置
type PaginationConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// OpenAPIConfig 请求体校验配置
type OpenAPIConfig struct {
	Validate bool `yaml:"validate"` // 按内嵌 OpenAPI 文档校验请求体
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env            Environment
	DatabaseDriver string // "sqlite", "postgres" 或 "mongodb"
	DatabaseURL    string
	DatabaseDBName string // MongoDB 数据库名称
	RedisURL       string // 为空表示未启用 Redis
	APIPort        string
	Auth           AuthConfig
	Log            LogConfig
	Pagination     PaginationConfig
	OpenAPI        OpenAPIConfig
	ConfigFilePath string // 实际加载的配置文件路径
}

// yamlConfigInternal 内部包装，记录配置文件来源（不参与 YAML 序列化）
type yamlConfigInternal struct {
	YAMLConfig `yaml:",inline"`
	loadedFrom string
}
