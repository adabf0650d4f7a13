package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress         string
	DatabaseURI        string
	ProcessorVerifyURL string
	MerchantReceiver   string
	AlertWebhookURL    string
	TaxRate            decimal.Decimal
	MinOrderTotal      decimal.Decimal
	VerifyTimeout      time.Duration
	QueueSize          int
	WorkerPoolSize     int
	ShutdownTimeout    time.Duration
}

const (
	defaultRunAddress      = ":8080"
	defaultTaxRate         = "0.0775"
	defaultMinOrderTotal   = "20"
	defaultVerifyTimeout   = 10 * time.Second
	defaultQueueSize       = 128
	defaultWorkerPoolSize  = 4
	defaultShutdownTimeout = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:         getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:        getString(lookup, "DATABASE_URI", ""),
		ProcessorVerifyURL: getString(lookup, "PROCESSOR_VERIFY_URL", ""),
		MerchantReceiver:   getString(lookup, "MERCHANT_RECEIVER", ""),
		AlertWebhookURL:    getString(lookup, "ALERT_WEBHOOK_URL", ""),
		VerifyTimeout:      getDuration(lookup, "VERIFY_TIMEOUT", defaultVerifyTimeout),
		QueueSize:          getInt(lookup, "IPN_QUEUE_SIZE", defaultQueueSize),
		WorkerPoolSize:     getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:    getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("caterpay", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		taxRateStr         = getString(lookup, "TAX_RATE", defaultTaxRate)
		minOrderStr        = getString(lookup, "MIN_ORDER_TOTAL", defaultMinOrderTotal)
		verifyTimeoutStr   = cfg.VerifyTimeout.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.ProcessorVerifyURL, "v", cfg.ProcessorVerifyURL, "Payment processor verification endpoint URL")
	fs.StringVar(&cfg.MerchantReceiver, "receiver", cfg.MerchantReceiver, "Merchant receiver identity expected on notifications")
	fs.StringVar(&cfg.AlertWebhookURL, "alert-webhook", cfg.AlertWebhookURL, "Webhook URL for reconciliation anomaly alerts")
	fs.StringVar(&taxRateStr, "tax-rate", taxRateStr, "Sales tax rate applied to subtotals")
	fs.StringVar(&minOrderStr, "min-order", minOrderStr, "Minimum pre-tax order total")
	fs.StringVar(&verifyTimeoutStr, "verify-timeout", verifyTimeoutStr, "Timeout for the processor verification handshake")
	fs.IntVar(&cfg.QueueSize, "ipn-queue", cfg.QueueSize, "Capacity of the notification dispatch queue")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent notification workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.TaxRate, err = decimal.NewFromString(taxRateStr); err != nil {
		return nil, fmt.Errorf("invalid tax rate: %w", err)
	}

	if cfg.MinOrderTotal, err = decimal.NewFromString(minOrderStr); err != nil {
		return nil, fmt.Errorf("invalid minimum order total: %w", err)
	}

	if cfg.VerifyTimeout, err = time.ParseDuration(verifyTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid verify timeout: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.TaxRate.IsNegative() {
		return nil, fmt.Errorf("tax rate must not be negative")
	}

	if cfg.MinOrderTotal.IsNegative() {
		return nil, fmt.Errorf("minimum order total must not be negative")
	}

	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = defaultVerifyTimeout
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.ProcessorVerifyURL == "" {
		return nil, fmt.Errorf("processor verification URL must be provided")
	}

	if cfg.MerchantReceiver == "" {
		return nil, fmt.Errorf("merchant receiver identity must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
