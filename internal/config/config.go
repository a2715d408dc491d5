package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/yourorg/csv-loader/internal/storage"
)

const (
	BackendDynamo = "dynamodb"
	BackendBadger = "badger"
)

// Credentials are optional static AWS keys. When empty the default
// credential chain applies.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Config is passed to each driver at construction.
type Config struct {
	Bucket      string
	Key         string
	TableName   string
	Region      string
	Credentials Credentials

	S3Endpoint     string
	S3PathStyle    bool
	DynamoEndpoint string

	// Backend selects the table implementation: dynamodb or badger.
	Backend   string
	BadgerDir string
	// TableKey names the key attribute for the badger backend.
	TableKey string

	NumericColumns []string

	LogLevel    string
	MetricsAddr string
	// Port is the HTTP listen port for the API server.
	Port string

	TemporalHost      string
	TemporalNamespace string
	TemporalTaskQueue string
}

// EnvFile returns the dotenv path named by CSVLOAD_ENV_FILE, default env.env.
func EnvFile() string {
	return getEnv("CSVLOAD_ENV_FILE", "env.env")
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// FromEnv loads configuration from environment variables.
func FromEnv() Config {
	return Config{
		Bucket:    os.Getenv("BUCKET"),
		Key:       os.Getenv("FILENAME"),
		TableName: os.Getenv("TABLE_NAME"),
		Region:    getEnv("AWS_REGION", os.Getenv("AWS_DEFAULT_REGION")),
		Credentials: Credentials{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		},
		S3Endpoint:        os.Getenv("AWS_ENDPOINT_URL_S3"),
		S3PathStyle:       strings.EqualFold(os.Getenv("AWS_S3_FORCE_PATH_STYLE"), "true"),
		DynamoEndpoint:    os.Getenv("AWS_ENDPOINT_URL_DYNAMODB"),
		Backend:           strings.ToLower(getEnv("TABLE_BACKEND", BackendDynamo)),
		BadgerDir:         getEnv("BADGER_DIR", "./data/badger"),
		TableKey:          getEnv("TABLE_KEY", "id"),
		NumericColumns:    splitList(os.Getenv("NUMERIC_COLUMNS")),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		MetricsAddr:       os.Getenv("METRICS_ADDR"),
		Port:              getEnv("PORT", "8080"),
		TemporalHost:      getEnv("TEMPORAL_TARGET_HOST", getEnv("TEMPORAL_ADDRESS", "localhost:7233")),
		TemporalNamespace: getEnv("TEMPORAL_NAMESPACE", "default"),
		TemporalTaskQueue: getEnv("TEMPORAL_TASK_QUEUE", "csv-loader"),
	}
}

// Validate checks the fields every driver needs.
func (c Config) Validate() error {
	if c.TableName == "" {
		return errors.New("TABLE_NAME is not set")
	}
	switch c.Backend {
	case BackendDynamo:
	case BackendBadger:
		if c.TableKey == "" {
			return errors.New("TABLE_KEY is required for the badger backend")
		}
	default:
		return fmt.Errorf("unknown table backend %q", c.Backend)
	}
	return nil
}

// ValidateObject additionally requires a configured object location.
func (c Config) ValidateObject() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Bucket == "" || c.Key == "" {
		return errors.New("BUCKET and FILENAME must be set")
	}
	return nil
}

// S3Options returns SDK options for the object store client.
func (c Config) S3Options() storage.AWSOptions {
	o := c.awsOptions()
	o.Endpoint = c.S3Endpoint
	o.PathStyle = c.S3PathStyle
	return o
}

// DynamoOptions returns SDK options for the table client.
func (c Config) DynamoOptions() storage.AWSOptions {
	o := c.awsOptions()
	o.Endpoint = c.DynamoEndpoint
	return o
}

func (c Config) awsOptions() storage.AWSOptions {
	return storage.AWSOptions{
		Region:          c.Region,
		AccessKeyID:     c.Credentials.AccessKeyID,
		SecretAccessKey: c.Credentials.SecretAccessKey,
		SessionToken:    c.Credentials.SessionToken,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
