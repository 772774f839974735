// Package config provides configuration loading from environment variables.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/xkong/wechatbackends/internal/logging"
	"github.com/xkong/wechatbackends/pkg/client"
)

// Config holds all configuration for the CLI and the MCP server.
type Config struct {
	BaseURL            string        // MP_BASE_URL, default "https://mp.weixin.qq.com"
	Email              string        // MP_EMAIL
	PasswordMD5        string        // MP_PASSWORD_MD5, or md5 of MP_PASSWORD
	WeixinID           string        // MP_WEIXIN_ID, seeds the upload ticket
	Ticket             string        // MP_TICKET
	SiteDomain         string        // MP_SITE_DOMAIN
	Lang               string        // MP_LANG, default "zh_CN"
	DebugProxy         string        // MP_DEBUG_PROXY
	StrictStatus       bool          // MP_STRICT_STATUS, default true
	AllowPublish       bool          // MP_ALLOW_PUBLISH, default false
	HTTPClientTimeout  time.Duration // HTTP_CLIENT_TIMEOUT_MS, default 30000ms (30s)
	MediaCacheMaxItems int           // MEDIA_CACHE_MAX_ITEMS, default 256
	QueryCacheMaxItems int           // QUERY_CACHE_MAX_ITEMS, default 64

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFormat     string // LOG_FORMAT, default "text"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogTee        bool   // LOG_TEE, default false; also log to stderr when LOG_FILE is set
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// ErrMissingCredentials is returned by Validate when login details are absent.
var ErrMissingCredentials = errors.New("MP_EMAIL and MP_PASSWORD_MD5 (or MP_PASSWORD) must be set")

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	pwdMD5 := getEnvString("MP_PASSWORD_MD5", "")
	if pwdMD5 == "" {
		if raw := os.Getenv("MP_PASSWORD"); raw != "" {
			pwdMD5 = client.HashPassword(raw)
		}
	}

	return &Config{
		BaseURL:            getEnvString("MP_BASE_URL", client.DefaultBaseURL),
		Email:              getEnvString("MP_EMAIL", ""),
		PasswordMD5:        pwdMD5,
		WeixinID:           getEnvString("MP_WEIXIN_ID", ""),
		Ticket:             getEnvString("MP_TICKET", ""),
		SiteDomain:         getEnvString("MP_SITE_DOMAIN", ""),
		Lang:               getEnvString("MP_LANG", client.DefaultLang),
		DebugProxy:         getEnvString("MP_DEBUG_PROXY", ""),
		StrictStatus:       getEnvBool("MP_STRICT_STATUS", true),
		AllowPublish:       getEnvBool("MP_ALLOW_PUBLISH", false),
		HTTPClientTimeout:  getEnvDurationMs("HTTP_CLIENT_TIMEOUT_MS", 30000),
		MediaCacheMaxItems: getEnvInt("MEDIA_CACHE_MAX_ITEMS", 256),
		QueryCacheMaxItems: getEnvInt("QUERY_CACHE_MAX_ITEMS", 64),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogTee:        getEnvBool("LOG_TEE", false),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// Validate reports missing credentials.
func (c *Config) Validate() error {
	if c.Email == "" || c.PasswordMD5 == "" {
		return ErrMissingCredentials
	}
	return nil
}

// ClientOptions translates the configuration into client options.
func (c *Config) ClientOptions() []client.Option {
	opts := []client.Option{
		client.WithBaseURL(c.BaseURL),
		client.WithLang(c.Lang),
		client.WithStrictStatus(c.StrictStatus),
		client.WithTimeout(c.HTTPClientTimeout),
	}
	if c.SiteDomain != "" {
		opts = append(opts, client.WithSiteDomain(c.SiteDomain))
	}
	if c.DebugProxy != "" {
		opts = append(opts, client.WithDebugProxy(c.DebugProxy))
	}
	if c.WeixinID != "" && c.Ticket != "" {
		opts = append(opts, client.WithTicket(c.WeixinID, c.Ticket))
	}
	return opts
}

// Logging returns the logging configuration.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		FilePath:   c.LogFile,
		Tee:        c.LogTee,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
		Compress:   c.LogCompress,
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
