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
		AppName      string
		Build        string
		Env          string // DEV (local; default), TEST, QA, PROD
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Redis    RedisConfig
		Content  ContentConfig
		Treasury TreasuryConfig
	}

	ServerConfig struct {
		Address            string
		DebugHost          string
		Host               string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
		TTL      time.Duration
	}

	ContentConfig struct {
		RelatedLimit    int // items shown in "Related Courses" / "Related Resources"
		HomepageFilters int // browse shortcuts shown on the homepage
		MaxTake         int
		XPPerCourse     int
	}

	TreasuryConfig struct {
		RPCURL   string
		Address  string
		Decimals int
		Timeout  time.Duration
	}
)

func (dbc DatabaseConfig) Address() string {
	return dbc.Host + ":" + dbc.Port
}

// NewConfig reads the configuration from the environment.
// `config/.env.<env>` is loaded first when it exists; variables are prefixed with the ENV name (ex: DEV_DATABASE_HOST).
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:            v.GetString("server.address"),
			DebugHost:          v.GetString("server.debugHost"),
			Host:               v.GetString("server.host"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		Content: ContentConfig{
			RelatedLimit:    v.GetInt("content.relatedLimit"),
			HomepageFilters: v.GetInt("content.homepageFilters"),
			MaxTake:         v.GetInt("content.maxTake"),
			XPPerCourse:     v.GetInt("content.xpPerCourse"),
		},
		Treasury: TreasuryConfig{
			RPCURL:   v.GetString("treasury.rpcURL"),
			Address:  v.GetString("treasury.address"),
			Decimals: v.GetInt("treasury.decimals"),
			Timeout:  v.GetDuration("treasury.timeout"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "The Lily Pad")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("secretKey", "7x!q2m$lilypad-dev-secret(k9#wz)u^f4r")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "lilypad")
	v.SetDefault("database.user", "lilypad")
	v.SetDefault("database.password", "lilypad")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("content.relatedLimit", 9)
	v.SetDefault("content.homepageFilters", 8)
	v.SetDefault("content.maxTake", 100)
	v.SetDefault("content.xpPerCourse", 100)

	v.SetDefault("treasury.rpcURL", "")
	v.SetDefault("treasury.address", "")
	v.SetDefault("treasury.decimals", 18)
	v.SetDefault("treasury.timeout", 10*time.Second)
}
