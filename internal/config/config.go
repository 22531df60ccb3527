// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找，敏感项可由环境变量覆盖
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
	"github.com/joho/godotenv"   // 加载 .env 文件到环境变量
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName     string   `toml:"appName"`     // 应用名称，用于日志标识等
	Host        string   `toml:"host"`        // 服务器监听地址，如 "0.0.0.0"
	Port        int      `toml:"port"`        // 服务器监听端口，如 8000
	Mode        string   `toml:"mode"`        // 运行模式：dev / release
	AllowOrigin []string `toml:"allowOrigin"` // CORS 允许的前端地址
	ForceTLS    bool     `toml:"forceTLS"`    // 是否将 HTTP 重定向到 HTTPS
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"`
	Db       int    `toml:"db"`
}

// AuthCodeConfig 短信验证码配置（阿里云 SMS）
type AuthCodeConfig struct {
	Mode            string `toml:"mode"`            // mock / aliyun，为空时根据 AK 自动判断
	AccessKeyID     string `toml:"accessKeyID"`     // 阿里云 AccessKey ID
	AccessKeySecret string `toml:"accessKeySecret"` // 阿里云 AccessKey Secret
	SignName        string `toml:"signName"`        // 短信签名名称
	TemplateCode    string `toml:"templateCode"`    // 短信模板 Code
	CodeExpiry      int    `toml:"codeExpiry"`      // 验证码有效期（分钟）
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`
	FileName   string `toml:"fileName"`
	MaxSize    int    `toml:"maxSize"`
	MaxBackups int    `toml:"maxBackups"`
	MaxAge     int    `toml:"maxAge"`
	Level      string `toml:"level"`
}

// KafkaConfig 实时事件投递配置
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode"` // none / channel / kafka
	HostPort    string        `toml:"hostPort"`    // Kafka 服务器地址，如 "localhost:9092"
	EventTopic  string        `toml:"eventTopic"`  // 领域事件主题
	GroupID     string        `toml:"groupId"`     // 消费者组
	Timeout     time.Duration `toml:"timeout"`     // 超时时间（秒）
}

// StorageConfig 图片存储配置
type StorageConfig struct {
	Mode          string `toml:"mode"`          // local / s3
	LocalPath     string `toml:"localPath"`     // local 模式下的存储目录
	PublicBaseURL string `toml:"publicBaseURL"` // 拼接图片访问地址的前缀
	Bucket        string `toml:"bucket"`
	Region        string `toml:"region"`
	Endpoint      string `toml:"endpoint"` // 兼容 S3 协议的自建存储地址，可为空
	AccessKey     string `toml:"accessKey"`
	SecretKey     string `toml:"secretKey"`
	Folder        string `toml:"folder"`       // 对象 key 前缀
	MaxFileSize   int64  `toml:"maxFileSize"`  // 上传大小上限（字节）
	MaxDimension  int    `toml:"maxDimension"` // 图片最长边上限（像素）
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret             string `toml:"secret"`             // JWT 签名密钥，建议 32 字符以上
	AccessTokenExpiry  int    `toml:"accessTokenExpiry"`  // Access Token 有效期（分钟）
	RefreshTokenExpiry int    `toml:"refreshTokenExpiry"` // Refresh Token 有效期（小时）
	AdminTokenExpiry   int    `toml:"adminTokenExpiry"`   // 后台 Token 有效期（小时）
}

// RateLimitConfig 按客户端 IP 的滑动窗口限流配置
type RateLimitConfig struct {
	Enabled          bool `toml:"enabled"`
	GeneralLimit     int  `toml:"generalLimit"`     // /api 全局请求上限
	GeneralWindow    int  `toml:"generalWindow"`    // 全局窗口（秒）
	SendCodeLimit    int  `toml:"sendCodeLimit"`    // 发送验证码上限
	SendCodeWindow   int  `toml:"sendCodeWindow"`   // 发送验证码窗口（秒）
	VerifyCodeLimit  int  `toml:"verifyCodeLimit"`  // 校验验证码上限
	VerifyCodeWindow int  `toml:"verifyCodeWindow"` // 校验验证码窗口（秒）
}

// SeedConfig 根管理员初始化配置
type SeedConfig struct {
	AdminPhone    string `toml:"adminPhone"`
	AdminUsername string `toml:"adminUsername"`
	AdminPassword string `toml:"adminPassword"`
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	MysqlConfig     `toml:"mysqlConfig"`
	RedisConfig     `toml:"redisConfig"`
	AuthCodeConfig  `toml:"authCodeConfig"`
	LogConfig       `toml:"logConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	StorageConfig   `toml:"storageConfig"`
	JWTConfig       `toml:"jwtConfig"`
	RateLimitConfig `toml:"rateLimitConfig"`
	SeedConfig      `toml:"seedConfig"`
}

// config 全局配置单例，延迟加载
var config *Config

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	paths := []string{
		"configs/config_local.toml",       // 本地开发配置（优先）
		"configs/config.toml",             // 默认配置
		"../../configs/config_local.toml", // 从子目录运行时的路径
		"../../configs/config.toml",
	}

	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件、.env 和环境变量覆盖项
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = godotenv.Load() // .env 不存在时忽略
		_ = LoadConfig()    // 忽略加载错误，使用默认值
		config.applyEnv()
		config.ApplyDefaults()
	}
	return config
}

// applyEnv 使用 VEDZEB_* 环境变量覆盖配置文件中的值
func (c *Config) applyEnv() {
	setString(&c.JWTConfig.Secret, "VEDZEB_JWT_SECRET")
	setString(&c.MysqlConfig.Host, "VEDZEB_MYSQL_HOST")
	setString(&c.MysqlConfig.User, "VEDZEB_MYSQL_USER")
	setString(&c.MysqlConfig.Password, "VEDZEB_MYSQL_PASSWORD")
	setString(&c.MysqlConfig.DatabaseName, "VEDZEB_MYSQL_DATABASE")
	setInt(&c.MysqlConfig.Port, "VEDZEB_MYSQL_PORT")
	setString(&c.RedisConfig.Host, "VEDZEB_REDIS_HOST")
	setString(&c.RedisConfig.Password, "VEDZEB_REDIS_PASSWORD")
	setInt(&c.RedisConfig.Port, "VEDZEB_REDIS_PORT")
	setString(&c.AuthCodeConfig.Mode, "VEDZEB_SMS_MODE")
	setString(&c.AuthCodeConfig.AccessKeyID, "VEDZEB_SMS_ACCESS_KEY_ID")
	setString(&c.AuthCodeConfig.AccessKeySecret, "VEDZEB_SMS_ACCESS_KEY_SECRET")
	setString(&c.StorageConfig.Mode, "VEDZEB_STORAGE_MODE")
	setString(&c.StorageConfig.AccessKey, "VEDZEB_S3_ACCESS_KEY")
	setString(&c.StorageConfig.SecretKey, "VEDZEB_S3_SECRET_KEY")
	setString(&c.KafkaConfig.MessageMode, "VEDZEB_MESSAGE_MODE")
	setString(&c.SeedConfig.AdminPassword, "VEDZEB_ADMIN_PASSWORD")
	setString(&c.MainConfig.Mode, "VEDZEB_MODE")
}

// ApplyDefaults 为缺失的配置项填充默认值
func (c *Config) ApplyDefaults() {
	defInt(&c.MainConfig.Port, 8000)
	defString(&c.MainConfig.Host, "0.0.0.0")
	defString(&c.MainConfig.Mode, "dev")
	defString(&c.MainConfig.AppName, "vedzeb")
	if len(c.MainConfig.AllowOrigin) == 0 {
		c.MainConfig.AllowOrigin = []string{"http://localhost:5173"}
	}

	defInt(&c.MysqlConfig.Port, 3306)
	defInt(&c.RedisConfig.Port, 6379)

	defInt(&c.AuthCodeConfig.CodeExpiry, 10)

	defString(&c.LogConfig.LogPath, "./logs")
	defString(&c.LogConfig.Level, "info")

	defString(&c.KafkaConfig.MessageMode, "channel")
	defString(&c.KafkaConfig.EventTopic, "vedzeb_events")
	defString(&c.KafkaConfig.GroupID, "vedzeb")
	if c.KafkaConfig.Timeout == 0 {
		c.KafkaConfig.Timeout = 5
	}

	defString(&c.StorageConfig.Mode, "local")
	defString(&c.StorageConfig.LocalPath, "./static/uploads")
	defString(&c.StorageConfig.PublicBaseURL, "/static/uploads")
	defString(&c.StorageConfig.Folder, "vedzeb/profiles")
	if c.StorageConfig.MaxFileSize == 0 {
		c.StorageConfig.MaxFileSize = 5 << 20
	}
	defInt(&c.StorageConfig.MaxDimension, 800)

	defInt(&c.JWTConfig.AccessTokenExpiry, 15)
	defInt(&c.JWTConfig.RefreshTokenExpiry, 7*24)
	defInt(&c.JWTConfig.AdminTokenExpiry, 8)

	defInt(&c.RateLimitConfig.GeneralLimit, 100)
	defInt(&c.RateLimitConfig.GeneralWindow, 15*60)
	defInt(&c.RateLimitConfig.SendCodeLimit, 3)
	defInt(&c.RateLimitConfig.SendCodeWindow, 60)
	defInt(&c.RateLimitConfig.VerifyCodeLimit, 10)
	defInt(&c.RateLimitConfig.VerifyCodeWindow, 15*60)

	defString(&c.SeedConfig.AdminPhone, "+000000000000")
	defString(&c.SeedConfig.AdminUsername, "Admin")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func defString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func defInt(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}
