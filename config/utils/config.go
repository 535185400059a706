// Package config provides utilities to load environment variables & set config structs, it includes app, logger, db, redis cache, amqp broker, http server and scheduler variables.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// AppConfig contains environment variables for the application, database, cache, broker, http server & planner
type (
	AppConfig struct {
		App       *App       `mapstructure:"app"`
		Redis     *Redis     `mapstructure:"redis"`
		Logger    *Logger    `mapstructure:"logger"`
		DB        *DB        `mapstructure:"db"`
		AMQP      *AMQP      `mapstructure:"amqp"`
		HTTP      *HTTP      `mapstructure:"http"`
		Scheduler *Scheduler `mapstructure:"scheduler"`
	}

	// App contains all the environment variables for the application
	App struct {
		Name  string `mapstructure:"name"`
		Env   string `mapstructure:"env"`
		Owner string `mapstructure:"owner"`
	}

	// Redis contains all the environment variables for the cache service
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	}

	// DB contains all the environment variables for the database
	DB struct {
		Connection string `mapstructure:"connection"`
		Database   string `mapstructure:"database"`
		Host       string `mapstructure:"host"`
		Port       string `mapstructure:"port"`
		User       string `mapstructure:"user"`
		Password   string `mapstructure:"password"`
		Name       string `mapstructure:"name"`
		MaxConns   int32  `mapstructure:"maxConns"`
	}

	// AMQP contains all the environment variables for the report broker
	AMQP struct {
		URL        string `mapstructure:"url"`
		Exchange   string `mapstructure:"exchange"`
		Queue      string `mapstructure:"queue"`
		RoutingKey string `mapstructure:"routingKey"`
	}

	// HTTP contains the listen addresses of the board's read API & the planner's metrics server
	HTTP struct {
		Addr        string `mapstructure:"addr"`
		MetricsAddr string `mapstructure:"metricsAddr"`
	}

	// Scheduler contains the planner loop settings & the stage table
	Scheduler struct {
		Interval         time.Duration  `mapstructure:"interval"`
		ReferenceDate    string         `mapstructure:"referenceDate"`
		ReportTTL        time.Duration  `mapstructure:"reportTTL"`
		StaleAfter       time.Duration  `mapstructure:"staleAfter"`
		DueSoonDays      int            `mapstructure:"dueSoonDays"`
		DeadlinePageSize int            `mapstructure:"deadlinePageSize"`
		Stages           []domain.Stage `mapstructure:"stages"`
	}

	// Logger contains all the environment variables for the logger
	Logger struct {
		Level             string                `mapstructure:"level"`
		Development       bool                  `mapstructure:"development"`
		DisableStacktrace bool                  `mapstructure:"disableStacktrace"`
		Encoding          string                `mapstructure:"encoding"`
		EncoderConfig     zapcore.EncoderConfig `mapstructure:"encoderConfig"`
	}
)

// addZapEncoderConfig fills encoder config with zapcore types
func addZapEncoderConfig(cfg *zapcore.EncoderConfig) {
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.SecondsDurationEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.EncodeName = func(s string, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString("[" + s + "]")
	}
}

// setDefaults registers the fallback values used when config.yaml omits a key
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "production-scheduler")
	v.SetDefault("app.env", "development")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.encoderConfig.messageKey", "msg")
	v.SetDefault("logger.encoderConfig.levelKey", "level")
	v.SetDefault("logger.encoderConfig.timeKey", "ts")
	v.SetDefault("logger.encoderConfig.nameKey", "logger")
	v.SetDefault("logger.encoderConfig.callerKey", "caller")
	v.SetDefault("db.connection", "postgres")
	v.SetDefault("db.maxConns", 4)
	v.SetDefault("amqp.exchange", "schedule.reports")
	v.SetDefault("amqp.queue", "schedule.board")
	v.SetDefault("amqp.routingKey", "report.cycle")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.metricsAddr", ":9100")
	v.SetDefault("scheduler.interval", 5*time.Second)
	v.SetDefault("scheduler.reportTTL", 10*time.Minute)
	v.SetDefault("scheduler.staleAfter", 30*time.Second)
	v.SetDefault("scheduler.dueSoonDays", 7)
	v.SetDefault("scheduler.deadlinePageSize", 4)
}

// New creates a new AppConfig instance
func New() *AppConfig {
	// Set up viper to read the config.yaml file
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/secrets/")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("env")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(viper.GetViper())

	// Read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Fatalf("config file not found: %v", err)
		} else {
			log.Fatalf("error reading config file: %v", err)
		}
	}

	// Bind the app.name key to the APP_NAME environment variable
	if err := viper.BindEnv("app.name", "APP_NAME"); err != nil {
		log.Fatalf("error finding APP_NAME env variable")
	}

	// Bind DB variables
	viper.BindEnv("db.host", "PG_HOST")
	viper.BindEnv("db.port", "PG_PORT")
	viper.BindEnv("db.user", "PG_USER")
	viper.BindEnv("db.password", "PG_PASS")
	viper.BindEnv("db.name", "PG_DB")

	// Bind Redis variables
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Bind broker & planner variables
	viper.BindEnv("amqp.url", "AMQP_URL")
	viper.BindEnv("scheduler.referenceDate", "REFERENCE_DATE")

	// Bind listen addresses
	viper.BindEnv("http.addr", "HTTP_ADDR")
	viper.BindEnv("http.metricsAddr", "METRICS_ADDR")

	config, err := decode(viper.GetViper())
	if err != nil {
		log.Fatalf("unable to decode into struct: %v", err)
	}
	return config
}

// decode unmarshals viper state into AppConfig & fills the derived parts
func decode(v *viper.Viper) (*AppConfig, error) {
	var config *AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.Logger == nil {
		config.Logger = &Logger{Level: "info", Encoding: "json"}
	}
	addZapEncoderConfig(&config.Logger.EncoderConfig)

	if config.Scheduler == nil {
		config.Scheduler = &Scheduler{}
	}
	if len(config.Scheduler.Stages) == 0 {
		config.Scheduler.Stages = domain.DefaultStages()
	}
	if _, err := config.Scheduler.ReferenceTime(); err != nil {
		return nil, err
	}
	return config, nil
}

// ReferenceTime parses the simulated "today", zero when unset
func (s *Scheduler) ReferenceTime() (time.Time, error) {
	if strings.TrimSpace(s.ReferenceDate) == "" {
		return time.Time{}, nil
	}
	t, ok := domain.ParseDate(s.ReferenceDate)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid scheduler.referenceDate %q, use YYYY-MM-DD", s.ReferenceDate)
	}
	return t, nil
}

// StageTable validates the configured stages; an error here is fatal at startup
func (s *Scheduler) StageTable() (*domain.StageTable, error) {
	return domain.NewStageTable(s.Stages)
}
