package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/theleywin/SkillShare/src/logging"
)

// Server holds the settings of the API server.
type Server struct {
	// Environment is "development" unless APP_ENV says otherwise.
	Environment  string
	Port         string
	MongoURI     string
	DatabaseName string
	JWTSecret    string
	CookieSecure bool
	AllowOrigins string
	FrontendURL  string
	PublicURL    string
	LogLevel     string

	UploadDir string
	S3Bucket  string
	S3Region  string
	S3BaseURL string

	GoogleClientID     string
	GoogleClientSecret string
	GithubClientID     string
	GithubClientSecret string
}

// Client holds the settings of the command line client.
type Client struct {
	APIURL       string
	DataDir      string
	Timeout      time.Duration
	PollInterval time.Duration
	LogLevel     string
}

// Load reads a .env file when present. Variables already set in the
// environment win over the file.
func Load(files ...string) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		logging.For("config").WithError(err).Warn("Could not read .env file")
	}
}

// LoadServer returns the server settings from the environment.
func LoadServer() Server {
	Load()

	publicURL := getEnv("PUBLIC_URL", "")
	port := getEnv("PORT", "8080")
	if publicURL == "" {
		publicURL = "http://localhost:" + port
	}

	return Server{
		Environment:  strings.ToLower(getEnv("APP_ENV", Development)),
		Port:         port,
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName: getEnv("MONGO_DB", "skillshare"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		CookieSecure: getBool("COOKIE_SECURE", false),
		AllowOrigins: getEnv("ALLOW_ORIGINS", "http://localhost:5173"),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:5173"),
		PublicURL:    strings.TrimRight(publicURL, "/"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		S3Bucket:  getEnv("S3_BUCKET", ""),
		S3Region:  getEnv("AWS_REGION", "us-west-1"),
		S3BaseURL: getEnv("S3_BASE_URL", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GithubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GithubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
	}
}

// Development is the environment where the server may sign tokens with
// the built-in fallback key.
const Development = "development"

// Validate rejects settings the server must not start with.
func (s Server) Validate() error {
	if s.JWTSecret == "" && s.Environment != Development {
		return errors.Errorf("JWT_SECRET must be set when APP_ENV is %q", s.Environment)
	}
	return nil
}

// LoadClient returns the client settings from the environment.
func LoadClient() Client {
	Load()

	dataDir := getEnv("SKILLSHARE_DATA_DIR", "")
	if dataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataDir = home + "/.skillshare"
		} else {
			dataDir = ".skillshare"
		}
	}

	return Client{
		APIURL:       strings.TrimRight(getEnv("SKILLSHARE_API_URL", "http://localhost:8080"), "/"),
		DataDir:      dataDir,
		Timeout:      getDuration("SKILLSHARE_TIMEOUT", 15*time.Second),
		PollInterval: getDuration("SKILLSHARE_POLL_INTERVAL", 60*time.Second),
		LogLevel:     getEnv("LOG_LEVEL", "warn"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
