package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug        bool
		TestMode     bool
		Env          string
		Build        string
		AppName      string
		RollbarToken string
		Server       ServerConfig
		Database     DatabaseConfig
	}

	ServerConfig struct {
		Address         string
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	DatabaseConfig struct {
		Engine         string // mongodb | memory
		URI            string
		Name           string
		ConnectTimeout time.Duration
	}
)

// NewConfig loads the app configuration from defaults, the optional config/.env.<env> file and the environment.
// Environment variables are prefixed with the upper-cased ENV value, eg. DEV_DATABASE_URI.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "CPEL")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.address", ":3000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("database.engine", "mongodb")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "CPEL")
	v.SetDefault("database.connectTimeout", 10*time.Second)

	env := strings.ToUpper(CleanString(os.Getenv("ENV"))) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(configDir(), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			Host:            v.GetString("server.host"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:         strings.ToLower(v.GetString("database.engine")),
			URI:            v.GetString("database.uri"),
			Name:           v.GetString("database.name"),
			ConnectTimeout: v.GetDuration("database.connectTimeout"),
		},
	}
}

// configDir returns the directory holding the .env files; CONFIG_DIR overrides the default "config".
func configDir() string {
	if dir := CleanString(os.Getenv("CONFIG_DIR")); dir != "" {
		return dir
	}
	return "config"
}
