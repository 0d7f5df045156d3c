package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided
// via config/config.json or the environment.
type AppConfig struct {
	AppPort string
	GinMode string
	GinPath string

	// Distinct secrets back the two credential schemes.
	JWTAdminSecret   string
	JWTUserSecret    string
	UserTokenTTLDays int

	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	RateLimitPerMinute int
	AllowedOrigins     []string

	// WeChat mini-program login. When unset the login endpoint derives a
	// mock openid from the code, for local development.
	WechatAppID  string
	WechatSecret string

	// Bootstrap admin credentials; the row is created on first login.
	AdminUsername string
	AdminPassword string

	// Image recognition proxy; endpoints degrade gracefully when unset.
	RecognitionAPIKey  string
	RecognitionBaseURL string
	RecognitionModel   string

	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during
// boot. Precedence: config/config.json -> defaults -> environment overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTAdminSecret == "" || cfg.JWTUserSecret == "" {
		log.Fatal("JWT_ADMIN_SECRET and JWT_USER_SECRET must be set")
	}
	if cfg.JWTAdminSecret == cfg.JWTUserSecret {
		log.Fatal("admin and user JWT secrets must differ")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// SetForTesting overrides the cached configuration. Tests only.
func SetForTesting(c AppConfig) {
	cfg = c
	loaded = true
}

// loadJSONConfig reads grouped JSON config into cfg if the file is present.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			if f, ok := v.(float64); ok {
				return int(f)
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.JWTAdminSecret = getString(app, "JWTAdminSecret")
		out.JWTUserSecret = getString(app, "JWTUserSecret")
		if v := getInt(app, "UserTokenTTLDays"); v != 0 {
			out.UserTokenTTLDays = v
		}
		if v := getInt(app, "RateLimitPerMinute"); v != 0 {
			out.RateLimitPerMinute = v
		}
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		if v := getInt(rds, "RedisPort"); v != 0 {
			out.RedisPort = v
		}
		if v := getInt(rds, "RedisDB"); v != 0 {
			out.RedisDB = v
		}
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if wx, ok := raw["wechat"].(map[string]any); ok {
		out.WechatAppID = getString(wx, "AppID")
		out.WechatSecret = getString(wx, "Secret")
	}

	if adm, ok := raw["admin"].(map[string]any); ok {
		out.AdminUsername = getString(adm, "Username")
		out.AdminPassword = getString(adm, "Password")
	}

	if rec, ok := raw["recognition"].(map[string]any); ok {
		out.RecognitionAPIKey = getString(rec, "APIKey")
		out.RecognitionBaseURL = getString(rec, "BaseURL")
		out.RecognitionModel = getString(rec, "Model")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		if v := getString(lg, "Level"); v != "" {
			out.LogLevel = v
		}
		if v := getString(lg, "Path"); v != "" {
			out.LogPath = v
		}
		if v := getString(lg, "GinMode"); v != "" {
			out.GinMode = v
		}
		if v := getString(lg, "GinPath"); v != "" {
			out.GinPath = v
		}
		if v := getInt(lg, "MaxSizeMB"); v != 0 {
			out.LogMaxSizeMB = v
		}
		if v := getInt(lg, "MaxBackups"); v != 0 {
			out.LogMaxBackups = v
		}
		if v := getInt(lg, "MaxAgeDays"); v != 0 {
			out.LogMaxAgeDays = v
		}
		out.LogCompress = getBool(lg, "Compress")
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.UserTokenTTLDays == 0 {
		c.UserTokenTTLDays = 30
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "campusfound"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.RecognitionModel == "" {
		c.RecognitionModel = "deepseek-ai/DeepSeek-OCR"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when
// present.
func applyEnvOverrides(c *AppConfig) {
	setStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			*dst = mustParseInt(v)
		}
	}

	setStr("APP_PORT", &c.AppPort)
	setStr("GIN_MODE", &c.GinMode)
	setStr("GIN_PATH", &c.GinPath)
	setStr("JWT_ADMIN_SECRET", &c.JWTAdminSecret)
	setStr("JWT_USER_SECRET", &c.JWTUserSecret)
	setInt("USER_TOKEN_TTL_DAYS", &c.UserTokenTTLDays)
	setStr("DATABASE_URI", &c.DatabaseURI)
	setStr("DB_HOST", &c.DBHost)
	setStr("DB_PORT", &c.DBPort)
	setStr("DB_USER", &c.DBUser)
	setStr("DB_PASSWORD", &c.DBPassword)
	setStr("DB_NAME", &c.DBName)
	setStr("REDIS_HOST", &c.RedisHost)
	setInt("REDIS_PORT", &c.RedisPort)
	setInt("REDIS_DB", &c.RedisDB)
	setStr("REDIS_PASSWORD", &c.RedisPassword)
	setInt("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	setStr("WECHAT_APPID", &c.WechatAppID)
	setStr("WECHAT_SECRET", &c.WechatSecret)
	setStr("ADMIN_USERNAME", &c.AdminUsername)
	setStr("ADMIN_PASSWORD", &c.AdminPassword)
	setStr("SILICONFLOW_API_KEY", &c.RecognitionAPIKey)
	setStr("SILICONFLOW_BASE_URL", &c.RecognitionBaseURL)
	setStr("SILICONFLOW_MODEL", &c.RecognitionModel)
	setStr("LOG_LEVEL", &c.LogLevel)
	setStr("LOG_PATH", &c.LogPath)
	setInt("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	setInt("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	setInt("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		c.LogCompress = v == "true"
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
