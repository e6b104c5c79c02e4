package core

import (
	"net"
	"net/mail"
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
		Host                      string
		Addr                      string
		DebugAddr                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// StorageConfig configures the object store where aula recordings land.
	// Backend is either "s3" (aws-sdk-go-v2, MinIO-compatible via Endpoint)
	// or "file" (local dir; dev & tests only).
	StorageConfig struct {
		Backend   string
		Bucket    string
		Scheme    string // locator scheme, e.g. "s3" -> s3://bucket/key
		Region    string
		Endpoint  string
		AccessKey string
		SecretKey string
		LocalDir  string
	}

	Config struct {
		Env             string
		AppName         string
		Build           string
		Debug           bool
		TestMode        bool
		SecretKey       []byte
		WorkDir         string
		FrontendBaseURL string

		DefaultFromEmailAddr      string
		SendgridApiKey            string
		RollbarToken              string
		PasswordResetTimeoutDelta time.Duration
		InvitationTimeoutDelta    time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		Storage  StorageConfig
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmailAddr}
}

// NewConfig loads the configuration once at startup and validates it.
// All components receive the resulting struct explicitly; nothing reads
// the environment ad hoc after this returns.
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "AulaViva")
	v.SetDefault("secretKey", "x#5qmd)e7a0c&+_8u2(hw!y4*vg$13nzk9@rp6tbosfjl-ic^m")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("invitationTimeoutDelta", 7*24*time.Hour)
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverDebugAddr", ":8001")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "aulaviva")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("storageBackend", "s3")
	v.SetDefault("storageScheme", "s3")
	v.SetDefault("storageRegion", "us-east-1")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:             env,
		AppName:         v.GetString("appName"),
		Build:           v.GetString("build"),
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		SecretKey:       []byte(v.GetString("secretKey")),
		WorkDir:         wd,
		FrontendBaseURL: v.GetString("frontendBaseURL"),

		DefaultFromEmailAddr:      v.GetString("defaultFromEmail"),
		SendgridApiKey:            v.GetString("sendgridApiKey"),
		RollbarToken:              v.GetString("rollbarToken"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		InvitationTimeoutDelta:    v.GetDuration("invitationTimeoutDelta"),

		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Addr:                      v.GetString("serverAddr"),
			DebugAddr:                 v.GetString("serverDebugAddr"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Name:          v.GetString("dbName"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Storage: StorageConfig{
			Backend:   v.GetString("storageBackend"),
			Bucket:    v.GetString("storageBucket"),
			Scheme:    v.GetString("storageScheme"),
			Region:    v.GetString("storageRegion"),
			Endpoint:  v.GetString("storageEndpoint"),
			AccessKey: v.GetString("storageAccessKey"),
			SecretKey: v.GetString("storageSecretKey"),
			LocalDir:  v.GetString("storageLocalDir"),
		},
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("config: storage bucket is required")
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return errors.New("config: storage credentials are required")
		}
	case "file":
		if c.Storage.LocalDir == "" {
			c.Storage.LocalDir = filepath.Join(c.WorkDir, "uploads")
		}
	default:
		return errors.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if !(c.Debug || c.TestMode) {
		if c.SendgridApiKey == "" {
			return errors.New("config: sendgrid API key is required")
		}
		if c.RollbarToken == "" {
			return errors.New("config: rollbar token is required")
		}
	}
	return nil
}

// Getwd tries to find the project root (the dir containing go.mod).
// go-test changes the working directory to the package being tested;
// see: https://stackoverflow.com/questions/23847003
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
