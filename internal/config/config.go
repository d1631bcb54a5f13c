package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign session JWTs
    SessionTTLDays int    // session token time-to-live in days
    ResetTTLMin    int    // password reset token time-to-live in minutes
    BcryptCost     int    // bcrypt cost for password hashing
    AppPublicURL   string // public base URL used to build reset links
    ClientURL      string // front-end URL used for OAuth redirects

    // Google OAuth credentials.  When either value is empty the federated
    // login routes are not registered and the rest of the API is unaffected.
    GoogleClientID     string
    GoogleClientSecret string
    GoogleRedirectURL  string
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  TTLs and the bcrypt
// cost have defaults matching the production deployment.
func Load() Config {
    return Config{
        Env:            must("APP_ENV"),           // environment (dev/test/prod)
        Port:           must("APP_PORT"),          // port to bind the HTTP server
        DBUser:         must("DB_USER"),           // database user
        DBPass:         os.Getenv("DB_PASS"),      // database password (empty allowed)
        DBHost:         must("DB_HOST"),           // database host
        DBPort:         must("DB_PORT"),           // database port
        DBName:         must("DB_NAME"),           // database name
        JWTSecret:      must("JWT_SECRET"),        // secret used for signing JWTs
        SessionTTLDays: intOr("SESSION_TTL_DAYS", 7),
        ResetTTLMin:    intOr("RESET_TOKEN_TTL_MIN", 30),
        BcryptCost:     intOr("BCRYPT_COST", 12),
        AppPublicURL:   strOr("APP_PUBLIC_URL", "http://localhost:5173"),
        ClientURL:      strOr("CLIENT_URL", "http://localhost:3000"),

        GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
        GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
        GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
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

// strOr returns the value of an optional environment variable or a default.
func strOr(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// intOr reads an optional integer environment variable.  Invalid values are
// treated as fatal configuration errors rather than silently defaulted.
func intOr(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, v)
    }
    return n
}
