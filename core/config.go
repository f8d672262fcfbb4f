package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		Addr            string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		CSRF            bool
		DisableReqLogs  bool
	}

	SessionConfig struct {
		Store            string // memory (default), file, sql, redis
		CookieName       string
		CookieTTL        time.Duration
		InitWait         time.Duration // how long a request waits for a loading session
		InitTimeout      time.Duration // bound on the persisted-storage read
		IdleTimeout      time.Duration
		SweepInterval    time.Duration
		Dir              string // file store directory
		LegacyPrefix     bool   // startsWith namespace matching
		EnforceRoleScope bool
	}

	DatabaseConfig struct {
		Engine     string // postgres | sqlite
		Host       string
		Port       string
		Name       string
		User       string
		Password   string
		DisableTLS bool
		Path       string // sqlite file
	}

	RedisConfig struct {
		Addr      string
		Password  string
		DB        int
		KeyPrefix string
	}

	AuthAPIConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	Config struct {
		Env          string
		Build        string
		AppName      string
		SecretKey    string
		RollbarToken string
		Debug        bool
		TestMode     bool
		WorkDir      string

		Server   ServerConfig
		Session  SessionConfig
		Database DatabaseConfig
		Redis    RedisConfig
		AuthAPI  AuthAPIConfig
	}
)

func (db DatabaseConfig) Address() string {
	if db.Port == "" {
		return db.Host
	}
	return db.Host + ":" + db.Port
}

// NewConfig loads the configuration of the current ENV: DEV (local; default), TEST, QA, PROD.
// Values come from defaults, then config/.env.<env> (if it exists), then SERENE_* environment variables.
func NewConfig() (*Config, error) {
	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	v := viper.New()
	setDefaults(v, env == "TEST")
	v.SetEnvPrefix("serene")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		WorkDir:      wd,
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Addr:            v.GetString("server.addr"),
			DebugHost:       v.GetString("server.debugHost"),
			ReadTimeout:     v.GetDuration("server.readTimeout"),
			WriteTimeout:    v.GetDuration("server.writeTimeout"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			CSRF:            v.GetBool("server.csrf"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Session: SessionConfig{
			Store:            strings.ToLower(v.GetString("session.store")),
			CookieName:       v.GetString("session.cookieName"),
			CookieTTL:        v.GetDuration("session.cookieTTL"),
			InitWait:         v.GetDuration("session.initWait"),
			InitTimeout:      v.GetDuration("session.initTimeout"),
			IdleTimeout:      v.GetDuration("session.idleTimeout"),
			SweepInterval:    v.GetDuration("session.sweepInterval"),
			Dir:              v.GetString("session.dir"),
			LegacyPrefix:     v.GetBool("session.legacyPrefix"),
			EnforceRoleScope: v.GetBool("session.enforceRoleScope"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("database.engine"),
			Host:       v.GetString("database.host"),
			Port:       v.GetString("database.port"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			DisableTLS: v.GetBool("database.disableTLS"),
			Path:       v.GetString("database.path"),
		},
		Redis: RedisConfig{
			Addr:      v.GetString("redis.addr"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			KeyPrefix: v.GetString("redis.keyPrefix"),
		},
		AuthAPI: AuthAPIConfig{
			BaseURL: strings.TrimRight(v.GetString("authAPI.baseURL"), "/"),
			Timeout: v.GetDuration("authAPI.timeout"),
		},
	}

	if !conf.Debug && conf.SecretKey == defaultSecretKey {
		return nil, errors.New("secretKey must be set outside of debug mode")
	}
	return conf, nil
}

const defaultSecretKey = "k2v!q9-serene)minds$+0=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy"

func setDefaults(v *viper.Viper, testMode bool) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", testMode)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Serene Minds")
	v.SetDefault("secretKey", defaultSecretKey)
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.csrf", true)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.cookieName", "serene_session")
	v.SetDefault("session.cookieTTL", 7*24*time.Hour)
	v.SetDefault("session.initWait", 250*time.Millisecond)
	v.SetDefault("session.initTimeout", 3*time.Second)
	v.SetDefault("session.idleTimeout", 2*time.Hour)
	v.SetDefault("session.sweepInterval", 5*time.Minute)
	v.SetDefault("session.dir", filepath.Join(os.TempDir(), "serene-sessions"))
	v.SetDefault("session.legacyPrefix", false)
	v.SetDefault("session.enforceRoleScope", false)

	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "serene")
	v.SetDefault("database.user", "serene")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.path", "serene.db")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.keyPrefix", "serene:session:")

	v.SetDefault("authAPI.baseURL", "http://localhost:5000/api")
	v.SetDefault("authAPI.timeout", 10*time.Second)
}
