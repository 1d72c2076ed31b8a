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
	APIConfig struct {
		BaseURL     string
		Timeout     time.Duration
		UseMockData bool
		RateLimit   float64 // requests per second; 0 disables throttling
	}

	MockConfig struct {
		Address       string
		Delay         time.Duration
		SecretKey     string
		JWTExpiration time.Duration
	}

	StorageConfig struct {
		Path string // empty means in-memory
	}

	Config struct {
		Env          string
		Build        string
		AppName      string
		Debug        bool
		TestMode     bool
		RollbarToken string
		WorkDir      string

		DefaultFromEmail string

		API     APIConfig
		Mock    MockConfig
		Storage StorageConfig
	}
)

// NewConfig loads the configuration from defaults, an optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the current ENV, e.g. DEV_API_BASE_URL.
func NewConfig() (*Config, error) {
	conf := viper.New()

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", env == "DEV" || env == "TEST")
	conf.SetDefault("testMode", env == "TEST")
	conf.SetDefault("appName", "Gyaan Buddy")
	conf.SetDefault("build", "dev")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("defaultFromEmail", "no-reply@gyaanbuddy.in")
	conf.SetDefault("api.baseURL", "http://localhost:8000/api")
	conf.SetDefault("api.timeoutMs", 10000)
	conf.SetDefault("api.useMockData", false)
	conf.SetDefault("api.rateLimit", 0.0)
	conf.SetDefault("mock.address", ":8000")
	conf.SetDefault("mock.delayMs", 300)
	conf.SetDefault("mock.secretKey", "m2q$7v-hb+8x=gyaan(buddy)#dev&key")
	conf.SetDefault("mock.jwtExpiration", 24*time.Hour)
	conf.SetDefault("storage.path", defaultStoragePath())

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "getting working directory")
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	conf.AutomaticEnv()
	// the dashboard's historical variable names
	_ = conf.BindEnv("api.baseURL", "API_BASE_URL")
	_ = conf.BindEnv("api.timeoutMs", "API_TIMEOUT_MS")
	_ = conf.BindEnv("api.useMockData", "API_USE_MOCK_DATA")

	return &Config{
		Env:          env,
		Build:        conf.GetString("build"),
		AppName:      conf.GetString("appName"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		RollbarToken: conf.GetString("rollbarToken"),
		WorkDir:      wd,

		DefaultFromEmail: conf.GetString("defaultFromEmail"),
		API: APIConfig{
			BaseURL:     strings.TrimSuffix(conf.GetString("api.baseURL"), "/"),
			Timeout:     time.Duration(conf.GetInt("api.timeoutMs")) * time.Millisecond,
			UseMockData: conf.GetBool("api.useMockData"),
			RateLimit:   conf.GetFloat64("api.rateLimit"),
		},
		Mock: MockConfig{
			Address:       conf.GetString("mock.address"),
			Delay:         time.Duration(conf.GetInt("mock.delayMs")) * time.Millisecond,
			SecretKey:     conf.GetString("mock.secretKey"),
			JWTExpiration: conf.GetDuration("mock.jwtExpiration"),
		},
		Storage: StorageConfig{
			Path: conf.GetString("storage.path"),
		},
	}, nil
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gyaanbuddy", "localstorage.db")
}
