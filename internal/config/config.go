package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	MediaBackendMinIO = "minio"
	MediaBackendS3    = "s3"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Google   GoogleOAuthConfig `envPrefix:"GOOGLE_"`
	MinIO    MinIOConfig       `envPrefix:"MINIO_"`
	S3       S3Config          `envPrefix:"S3_"`
	Media    MediaConfig
	MongoDB  MongoDBConfig  `envPrefix:"MONGODB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	RabbitMQ RabbitMQConfig `envPrefix:"RABBITMQ_"`
	Consul   ConsulConfig   `envPrefix:"CONSUL_"`
	Log      LogConfig      `envPrefix:"LOG_"`
}

type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	Host         string        `env:"HOST" envDefault:"0.0.0.0"`
	ServiceName  string        `env:"SERVICE_NAME" envDefault:"album-service"`
	InstanceID   string        `env:"HOSTNAME" envDefault:"1"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	BodyLimit    int           `env:"BODY_LIMIT" envDefault:"10485760"`
	FrontendURL  string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
}

// ServiceID is the id registered with Consul.
func (s ServerConfig) ServiceID() string {
	return s.ServiceName + "-" + s.InstanceID
}

type AuthConfig struct {
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenExpiry time.Duration `env:"TOKEN_EXPIRY" envDefault:"24h"`
	Issuer      string        `env:"TOKEN_ISSUER" envDefault:"album-service"`
	AdminSecret string        `env:"ADMIN_SECRET"`
	AdminID     string        `env:"ADMIN_ID" envDefault:"test-admin-id"`
	AdminEmail  string        `env:"ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminName   string        `env:"ADMIN_NAME" envDefault:"Admin User"`
	StateTTL    time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
}

type GoogleOAuthConfig struct {
	ClientID     string   `env:"CLIENT_ID"`
	ClientSecret string   `env:"CLIENT_SECRET"`
	RedirectURL  string   `env:"REDIRECT_URI" envDefault:"http://localhost:8080/auth/google/callback"`
	Scopes       []string `env:"SCOPES" envSeparator:"," envDefault:"https://www.googleapis.com/auth/userinfo.email,https://www.googleapis.com/auth/userinfo.profile"`
}

type MinIOConfig struct {
	Endpoint        string `env:"ENDPOINT" envDefault:"minio:9000"`
	PublicEndpoint  string `env:"PUBLIC_ENDPOINT" envDefault:"http://localhost:9000"`
	AccessKeyID     string `env:"ACCESS_KEY" envDefault:"minioadmin"`
	SecretAccessKey string `env:"SECRET_KEY" envDefault:"minioadmin"`
	UseSSL          bool   `env:"USE_SSL" envDefault:"false"`
	BucketName      string `env:"BUCKET_NAME" envDefault:"albums"`
	Region          string `env:"REGION" envDefault:"us-east-1"`
}

type S3Config struct {
	Region          string `env:"REGION" envDefault:"us-east-1"`
	Endpoint        string `env:"ENDPOINT"`
	AccessKeyID     string `env:"ACCESS_KEY"`
	SecretAccessKey string `env:"SECRET_KEY"`
	BucketName      string `env:"BUCKET_NAME" envDefault:"albums"`
	PublicURL       string `env:"PUBLIC_URL"`
	UsePathStyle    bool   `env:"USE_PATH_STYLE" envDefault:"false"`
}

type MediaConfig struct {
	Backend            string        `env:"MEDIA_BACKEND" envDefault:"minio"`
	Timeout            time.Duration `env:"MEDIA_TIMEOUT" envDefault:"30s"`
	RetryDelay         time.Duration `env:"MEDIA_RETRY_DELAY" envDefault:"200ms"`
	SweepInterval      time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	SweepGrace         time.Duration `env:"SWEEP_GRACE" envDefault:"1m"`
	CascadeAlbumDelete bool          `env:"ALBUM_CASCADE_DELETE" envDefault:"true"`
}

type MongoDBConfig struct {
	URI      string        `env:"URI" envDefault:"mongodb://mongodb:27017"`
	Database string        `env:"DATABASE" envDefault:"albums"`
	PoolSize uint64        `env:"POOL_SIZE" envDefault:"100"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type RedisConfig struct {
	Address  string `env:"ADDR"`
	Password string `env:"PWD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type RabbitMQConfig struct {
	URI      string `env:"URI"`
	Exchange string `env:"EXCHANGE" envDefault:"album.events"`
	Queue    string `env:"QUEUE" envDefault:"album-service-cleanup"`
}

type ConsulConfig struct {
	Address string `env:"ADDRESS"`
}

type LogConfig struct {
	Level string `env:"LEVEL" envDefault:"info"`
	Dir   string `env:"DIR"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.TokenExpiry <= 0 {
		return errors.New("TOKEN_EXPIRY must be positive")
	}
	switch c.Media.Backend {
	case MediaBackendMinIO:
	case MediaBackendS3:
		if c.S3.PublicURL == "" {
			return errors.New("S3_PUBLIC_URL is required when MEDIA_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown MEDIA_BACKEND %q", c.Media.Backend)
	}
	return nil
}
