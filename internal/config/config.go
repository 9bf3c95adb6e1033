package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"

	"github.com/aasan/postgang/internal/domain"
)

const (
	// EnvAPIUID Bring API UID
	EnvAPIUID = "POSTGANG_API_UID"
	// EnvAPIKey Bring API key
	EnvAPIKey = "POSTGANG_API_KEY"
	// EnvPostalCode default postal code for the Lambda entry point
	EnvPostalCode = "POSTGANG_CODE"
	// EnvLogLevel DEBUG, INFO, WARN or ERROR
	EnvLogLevel = "LOG_LEVEL"

	defaultAPIUIDParam = "/postgang/api-uid"
	defaultAPIKeyParam = "/postgang/api-key"
)

// SSMParameterGetter subset of the SSM client used for Parameter Store lookups
type SSMParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Config application settings
type Config struct {
	// Bring API
	APIUID string
	APIKey domain.APIKey

	// PostalCode default code, may be empty
	PostalCode string

	LogLevel string

	// only set on AWS Lambda
	ssmClient SSMParameterGetter
}

// LoadDotEnv loads .env from the working directory when present
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env file not loaded", "error", err)
	}
}

// Load reads settings for the current environment
func Load(ctx context.Context) (*Config, error) {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return loadAWSConfig(ctx)
	}
	return loadLocalConfig(), nil
}

// loadLocalConfig settings from environment variables (.env included)
func loadLocalConfig() *Config {
	return &Config{
		APIUID:     getEnvOrDefault(EnvAPIUID, ""),
		APIKey:     domain.APIKey(getEnvOrDefault(EnvAPIKey, "")),
		PostalCode: getEnvOrDefault(EnvPostalCode, ""),
		LogLevel:   getEnvOrDefault(EnvLogLevel, "INFO"),
	}
}

// loadAWSConfig settings on AWS Lambda, secrets from Parameter Store
func loadAWSConfig(ctx context.Context) (*Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	cfg := &Config{
		PostalCode: getEnvOrDefault(EnvPostalCode, ""),
		LogLevel:   getEnvOrDefault(EnvLogLevel, "INFO"),
		ssmClient:  ssm.NewFromConfig(awsCfg),
	}

	if err := cfg.loadFromParameterStore(ctx); err != nil {
		return nil, fmt.Errorf("failed to load settings from Parameter Store: %w", err)
	}

	return cfg, nil
}

// loadFromParameterStore reads the Bring credentials from Parameter Store
func (c *Config) loadFromParameterStore(ctx context.Context) error {
	uidParam := getEnvOrDefault("POSTGANG_API_UID_PARAM", defaultAPIUIDParam)
	uid, err := c.getParameter(ctx, uidParam, false)
	if err != nil {
		return fmt.Errorf("failed to get API UID: %w", err)
	}
	c.APIUID = uid

	keyParam := getEnvOrDefault("POSTGANG_API_KEY_PARAM", defaultAPIKeyParam)
	key, err := c.getParameter(ctx, keyParam, true)
	if err != nil {
		return fmt.Errorf("failed to get API key: %w", err)
	}
	c.APIKey = domain.APIKey(key)

	return nil
}

// getParameter reads one parameter from Parameter Store
func (c *Config) getParameter(ctx context.Context, paramName string, withDecryption bool) (string, error) {
	input := &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(withDecryption),
	}

	result, err := c.ssmClient.GetParameter(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to get parameter %s: %w", paramName, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil || *result.Parameter.Value == "" {
		return "", fmt.Errorf("parameter %s is empty", paramName)
	}

	return *result.Parameter.Value, nil
}

// Credentials Bring credentials; call Validate before use
func (c *Config) Credentials() domain.Credentials {
	return domain.Credentials{APIUID: c.APIUID, APIKey: c.APIKey}
}

// getEnvOrDefault returns the trimmed variable, or defaultValue when unset or blank
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
