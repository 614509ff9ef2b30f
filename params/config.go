package params

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Venue holds the chain-level constants a client needs to produce valid
// transactions for a Strand deployment. ChainID is part of every signed
// payload, so pointing a client at the wrong deployment fails signature
// verification instead of executing orders.
type Venue struct {
	ChainID uint32
	BaseURL string

	// DefaultTxDeadline bounds how long a signed transaction stays valid.
	// Kept one second under the venue's 10 minute window to absorb
	// millisecond clock differences between client and venue.
	DefaultTxDeadline time.Duration

	// DefaultOrderExpiry is applied when a request uses the -1 expiry
	// sentinel: the order rests for 28 days.
	DefaultOrderExpiry time.Duration

	// MaxAuthTokenTTL caps auth token deadlines. The venue accepts up to
	// 8 hours; 7h55m leaves headroom for clock skew.
	MaxAuthTokenTTL time.Duration
}

// Submission controls the retry behaviour of the submission client.
// Only pre-send transport failures are ever retried.
type Submission struct {
	MaxAttempts    int
	BackoffBase    time.Duration
	RequestTimeout time.Duration
}

type Config struct {
	Venue      Venue
	Submission Submission
}

func Default() Config {
	return Config{
		Venue: Venue{
			ChainID:            300, // Strand testnet
			BaseURL:            "https://testnet.strand.exchange",
			DefaultTxDeadline:  time.Minute*10 - time.Second,
			DefaultOrderExpiry: 28 * 24 * time.Hour,
			MaxAuthTokenTTL:    7*time.Hour + 55*time.Minute,
		},
		Submission: Submission{
			MaxAttempts:    3,
			BackoffBase:    250 * time.Millisecond,
			RequestTimeout: 10 * time.Second,
		},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	// Try to load .env file (optional - won't fail if not exists)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load() // loads .env from current directory
	}

	if url := os.Getenv("STRAND_BASE_URL"); url != "" {
		cfg.Venue.BaseURL = url
	}
	if chain := os.Getenv("STRAND_CHAIN_ID"); chain != "" {
		if id, err := strconv.ParseUint(chain, 10, 32); err == nil {
			cfg.Venue.ChainID = uint32(id)
		}
	}
	if attempts := os.Getenv("STRAND_SUBMIT_MAX_ATTEMPTS"); attempts != "" {
		if n, err := strconv.Atoi(attempts); err == nil && n > 0 {
			cfg.Submission.MaxAttempts = n
		}
	}
	if backoff := os.Getenv("STRAND_SUBMIT_BACKOFF_MS"); backoff != "" {
		if ms, err := strconv.Atoi(backoff); err == nil {
			cfg.Submission.BackoffBase = time.Duration(ms) * time.Millisecond
		}
	}
	if timeout := os.Getenv("STRAND_REQUEST_TIMEOUT_MS"); timeout != "" {
		if ms, err := strconv.Atoi(timeout); err == nil {
			cfg.Submission.RequestTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	return cfg
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
