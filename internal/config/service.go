package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// ServiceConfig holds delivery service configuration.
type ServiceConfig struct {
	RunAddress          string
	DatabaseURI         string
	RedisURL            string
	AMQPURL             string
	ServiceToken        string
	RequireDeliveryOTP  bool
	OTPTTL              time.Duration
	MaxDeliveryAttempts int
	EscalationInterval  time.Duration
	WorkerPoolSize      int
	EscalationBatchSize int
	ShutdownTimeout     time.Duration
}

const (
	defaultServiceRunAddress  = ":8081"
	defaultOTPTTL             = 15 * time.Minute
	defaultMaxAttempts        = 3
	defaultEscalationInterval = 30 * time.Second
	defaultWorkerPoolSize     = 4
	defaultEscalationBatch    = 32
)

// LoadService parses delivery service configuration from .env, flags and environment variables.
func LoadService() (*ServiceConfig, error) {
	_ = godotenv.Load()
	return loadService(os.Args[1:], os.LookupEnv)
}

func loadService(args []string, lookup envLookup) (*ServiceConfig, error) {
	cfg := &ServiceConfig{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultServiceRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		RedisURL:            getString(lookup, "REDIS_URL", ""),
		AMQPURL:             getString(lookup, "AMQP_URL", ""),
		ServiceToken:        getString(lookup, "SERVICE_TOKEN", ""),
		RequireDeliveryOTP:  getBool(lookup, "REQUIRE_DELIVERY_OTP", false),
		OTPTTL:              getDuration(lookup, "OTP_TTL", defaultOTPTTL),
		MaxDeliveryAttempts: getInt(lookup, "MAX_DELIVERY_ATTEMPTS", defaultMaxAttempts),
		EscalationInterval:  getDuration(lookup, "ESCALATION_INTERVAL", defaultEscalationInterval),
		WorkerPoolSize:      getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		EscalationBatchSize: getInt(lookup, "ESCALATION_BATCH_SIZE", defaultEscalationBatch),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("deliveryd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		otpTTLStr          = cfg.OTPTTL.String()
		intervalStr        = cfg.EscalationInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for OTP storage")
	fs.StringVar(&cfg.AMQPURL, "amqp", cfg.AMQPURL, "RabbitMQ URL for status events")
	fs.StringVar(&cfg.ServiceToken, "service-token", cfg.ServiceToken, "Token expected from console clients")
	fs.BoolVar(&cfg.RequireDeliveryOTP, "require-otp", cfg.RequireDeliveryOTP, "Require OTP when marking deliveries delivered")
	fs.StringVar(&otpTTLStr, "otp-ttl", otpTTLStr, "Lifetime of issued OTP codes")
	fs.IntVar(&cfg.MaxDeliveryAttempts, "max-attempts", cfg.MaxDeliveryAttempts, "Failed attempts before final failure")
	fs.StringVar(&intervalStr, "escalation-interval", intervalStr, "Interval between escalation polls")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent escalation workers")
	fs.IntVar(&cfg.EscalationBatchSize, "escalation-batch", cfg.EscalationBatchSize, "Maximum deliveries per escalation batch")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.OTPTTL, err = time.ParseDuration(otpTTLStr); err != nil {
		return nil, fmt.Errorf("invalid otp ttl: %w", err)
	}

	if cfg.EscalationInterval, err = time.ParseDuration(intervalStr); err != nil {
		return nil, fmt.Errorf("invalid escalation interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.ServiceToken, err = readSecretFile(lookup, "SERVICE_TOKEN_FILE", cfg.ServiceToken); err != nil {
		return nil, err
	}

	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = defaultOTPTTL
	}

	if cfg.MaxDeliveryAttempts <= 0 {
		cfg.MaxDeliveryAttempts = defaultMaxAttempts
	}

	if cfg.EscalationInterval <= 0 {
		cfg.EscalationInterval = defaultEscalationInterval
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.EscalationBatchSize <= 0 {
		cfg.EscalationBatchSize = defaultEscalationBatch
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}
