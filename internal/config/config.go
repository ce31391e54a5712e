// Package config reads process settings from the environment (.env) and the
// engine/server tunables from an INI file.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/gas"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

const DefaultFile = "conf/engine.ini"

type Config struct {
	Addr        string
	TokenKey    string
	DatabaseURL string
	TLSCert     string
	TLSKey      string
	LogLevel    string
	LogFormat   string

	// requests per second and burst of the per-IP limiter
	RateLimit    float64
	RateBurst    int
	BatchWorkers int
	MaxUploadMB  int64

	Engine gas.Options
}

// Load reads .env (when present), then the INI file named by CONFIG_FILE or
// DefaultFile. Environment values override the [server] section.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.WithField("error", err).Warn("no .env file, using process environment")
	}
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = DefaultFile
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	if cfg.TokenKey == "" {
		return Config{}, errors.New("TOKEN_KEY environment variable is not set")
	}
	return cfg, nil
}

// LoadFile reads only the INI file. A missing file yields the defaults.
func LoadFile(path string) (Config, error) {
	file, err := ini.LooseLoad(path)
	if err != nil {
		return Config{}, err
	}
	return fromINI(file), nil
}

func fromINI(file *ini.File) Config {
	d := gas.DefaultOptions()
	engine := file.Section("engine")
	server := file.Section("server")
	return Config{
		Addr:         server.Key("addr").MustString(":8080"),
		LogLevel:     server.Key("log_level").MustString("info"),
		LogFormat:    server.Key("log_format").MustString("text"),
		RateLimit:    server.Key("rate_limit").MustFloat64(5),
		RateBurst:    server.Key("rate_burst").MustInt(10),
		BatchWorkers: server.Key("batch_workers").MustInt(4),
		MaxUploadMB:  server.Key("max_upload_mb").MustInt64(10),
		Engine: gas.Options{
			MarchSteps:     engine.Key("march_steps").MustInt(d.MarchSteps),
			MaxIterations:  engine.Key("max_iterations").MustInt(d.MaxIterations),
			Tolerance:      engine.Key("tolerance").MustFloat64(d.Tolerance),
			SonicTolerance: engine.Key("sonic_tolerance").MustFloat64(d.SonicTolerance),
			DefaultGamma:   engine.Key("default_gamma").MustFloat64(d.DefaultGamma),
		},
	}
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Addr, "ADDR")
	set(&cfg.TokenKey, "TOKEN_KEY")
	set(&cfg.DatabaseURL, "DATABASE_URL")
	set(&cfg.TLSCert, "TLS_CERT")
	set(&cfg.TLSKey, "TLS_KEY")
	set(&cfg.LogLevel, "LOG_LEVEL")
	set(&cfg.LogFormat, "LOG_FORMAT")
}

// SetupLogging configures the standard logrus logger.
func SetupLogging(level, format string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	if strings.EqualFold(format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stdout)
}
