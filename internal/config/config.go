package config // package config loads application configuration from environment variables

import (
	"log" // log reports configuration errors before the structured logger exists
	"os"  // os provides access to environment variables
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/salon-booking/internal/model"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced with must(); the
// salon and logging sections fall back to defaults.
type Config struct {
	Env      string         // application environment (e.g. "dev", "prod")
	Port     string         // HTTP port to listen on
	Location *time.Location // salon time zone used for "today" and purchase dates
	DBUser   string         // database username
	DBPass   string         // database password (optional)
	DBHost   string         // database host address
	DBPort   string         // database port number
	DBName   string         // database name
	Salon    SalonConfig
	Log      LogConfig
}

// SalonConfig describes the physical salon: how many beds exist and how
// the booking grid is laid out.
type SalonConfig struct {
	Beds              int           // beds are numbered 1..Beds
	Open              model.Clock   // first grid slot
	Close             model.Clock   // grid end (exclusive)
	SlotMinutes       int           // grid cell size
	DefaultHourlyWage int           // used when staff has no wage
	DefaultTransport  int           // transport allowance when a shift omits it
	LedgerDir         string        // directory of the monthly visit workbooks
	TxRetries         int           // attempts for a booking transaction on deadlock
	RequestTimeout    time.Duration // upper bound for a request's database work
}

// LogConfig controls the slog handler and the rotating log file.
type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json or text
	File       string // empty disables file output
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load reads configuration values from the environment, after merging a
// .env file from the working directory when one exists.  Variables that
// are already set win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: ignoring .env: %v", err)
	}
	return Config{
		Env:      getenv("APP_ENV", "dev"),  // environment (dev/test/prod)
		Port:     must("APP_PORT"),          // port to bind the HTTP server
		Location: mustLocation("APP_TZ"),    // salon time zone
		DBUser:   must("DB_USER"),           // database user
		DBPass:   os.Getenv("DB_PASS"),      // database password (empty allowed)
		DBHost:   must("DB_HOST"),           // database host
		DBPort:   getenv("DB_PORT", "3306"), // database port
		DBName:   must("DB_NAME"),           // database name
		Salon:    LoadSalonConfig(),
		Log:      LoadLogConfig(),
	}
}

// LoadSalonConfig reads the SALON_* variables.
func LoadSalonConfig() SalonConfig {
	return SalonConfig{
		Beds:              envInt("SALON_BEDS", 2),
		Open:              envClock("SALON_OPEN", "10:00"),
		Close:             envClock("SALON_CLOSE", "23:00"),
		SlotMinutes:       envInt("SALON_SLOT_MINUTES", 30),
		DefaultHourlyWage: envInt("SALON_DEFAULT_HOURLY_WAGE", 1500),
		DefaultTransport:  envInt("SALON_DEFAULT_TRANSPORT", 900),
		LedgerDir:         envStr("LEDGER_DIR", "data/excel"),
		TxRetries:         envInt("BOOKING_TX_RETRIES", 3),
		RequestTimeout:    envDur("REQUEST_TIMEOUT", 10*time.Second),
	}
}

// LoadLogConfig reads the LOG_* variables.
func LoadLogConfig() LogConfig {
	return LogConfig{
		Level:      envStr("LOG_LEVEL", "info"),
		Format:     envStr("LOG_FORMAT", "json"),
		File:       os.Getenv("LOG_FILE"),
		MaxSizeMB:  envInt("LOG_MAX_SIZE_MB", 50),
		MaxBackups: envInt("LOG_MAX_BACKUPS", 5),
		MaxAgeDays: envInt("LOG_MAX_AGE_DAYS", 28),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustLocation loads an IANA zone, defaulting to Asia/Tokyo.
func mustLocation(key string) *time.Location {
	name := getenv(key, "Asia/Tokyo")
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid time zone for %s: %q", key, name)
	}
	return loc
}

func envClock(key, def string) model.Clock {
	c, err := model.ParseClock(getenv(key, def))
	if err != nil {
		log.Fatalf("invalid time of day for %s: %v", key, err)
	}
	return c
}
