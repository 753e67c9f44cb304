package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yeremiapane/cashier-desk/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port    string
	GinMode string

	BackendURL   string
	BackendWSURL string
	AgentURL     string

	DBDriver string
	DBDSN    string

	RequestTimeout    time.Duration
	TickInterval      time.Duration
	PrintDedupeWindow time.Duration
	ReconnectDelay    time.Duration
	RabbitMQURL       string
	RabbitMQExchange  string
	CORSAllowedOrigin string
	PayRateLimit      float64
	PayRateBurst      int
	AllowedRoles      []string
}

// Load reads the environment; call godotenv.Load before it.
func Load() Config {
	backendURL := strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:5000"), "/")
	return Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		BackendURL:   backendURL,
		BackendWSURL: getEnv("BACKEND_WS_URL", WSURLFor(backendURL)),
		AgentURL:     getEnv("PRINT_AGENT_URL", "http://localhost:3847"),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBDSN:    getEnv("DB_DSN", "cashier-desk.db"),

		RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		TickInterval:      getEnvDuration("HOURLY_TICK_INTERVAL", time.Minute),
		PrintDedupeWindow: getEnvDuration("PRINT_DEDUPE_WINDOW", 30*time.Second),
		ReconnectDelay:    getEnvDuration("REALTIME_RECONNECT_DELAY", 3*time.Second),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange:  getEnv("RABBITMQ_EXCHANGE", "cashier.events"),
		CORSAllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:5173"),
		PayRateLimit:      getEnvFloat("PAY_RATE_LIMIT", 5),
		PayRateBurst:      int(getEnvInt64("PAY_RATE_BURST", 10)),
		AllowedRoles:      getEnvList("CASHIER_ROLES"),
	}
}

// WSURLFor -> http(s)://host -> ws(s)://host/ws
func WSURLFor(httpURL string) string {
	switch {
	case strings.HasPrefix(httpURL, "https://"):
		return "wss://" + strings.TrimPrefix(httpURL, "https://") + "/ws"
	case strings.HasPrefix(httpURL, "http://"):
		return "ws://" + strings.TrimPrefix(httpURL, "http://") + "/ws"
	}
	return httpURL + "/ws"
}

// InitDB opens the preference database: sqlite by default, mysql when driver is "mysql".
func InitDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.WithField("driver", driver).Info("Preference database connected")
	return db, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		utils.ErrorLogger.Warnf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		utils.ErrorLogger.Warnf("Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	utils.ErrorLogger.Warnf("Invalid %s=%q, using %s", key, v, fallback)
	return fallback
}

// getEnvList -> comma separated values, nil when unset
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
