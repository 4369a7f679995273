package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the configuration of the credential service
type Config struct {
	Env    Env
	Server ServerConfig
	Minio  MinioConfig
	Upload UploadConfig
}

// CLIConfig is the configuration of the mask client
type CLIConfig struct {
	Client ClientConfig
	Brush  BrushConfig
}

// WorkerConfig is the configuration of the storage event worker
type WorkerConfig struct {
	Minio    MinioConfig
	Upload   UploadConfig
	NATS     NATSConfig
	Database DatabaseConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"localhost"`
	Port string `envconfig:"SERVER_PORT" default:"8080"`
	// browsers call the credential endpoint cross-origin
	AllowedOrigins []string `envconfig:"SERVER_ALLOWED_ORIGINS" default:"*"`
}

type MinioConfig struct {
	Endpoint   string `envconfig:"MINIO_ENDPOINT" required:"true"`
	BucketName string `envconfig:"MINIO_BUCKET_NAME" required:"true"`
	AccessKey  string `envconfig:"MINIO_ACCESS_KEY" required:"true"`
	SecretKey  string `envconfig:"MINIO_SECRET_KEY" required:"true"`
	Region     string `envconfig:"MINIO_REGION" default:""`
	UseSSL     bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	PublicRead bool   `envconfig:"MINIO_PUBLIC_READ" default:"true"`
}

type UploadConfig struct {
	MaxSizeBytes       int64         `envconfig:"UPLOAD_MAX_SIZE_BYTES" default:"5242880"` // 5MB
	CredentialTTL      time.Duration `envconfig:"UPLOAD_CREDENTIAL_TTL" default:"1h"`
	OriginalPrefix     string        `envconfig:"UPLOAD_ORIGINAL_PREFIX" default:"fiver/original"`
	MaskPrefix         string        `envconfig:"UPLOAD_MASK_PREFIX" default:"fiver/mask"`
	OriginalObjectName string        `envconfig:"UPLOAD_ORIGINAL_OBJECT_NAME" default:"image.jpg"`
	MaskObjectName     string        `envconfig:"UPLOAD_MASK_OBJECT_NAME" default:"mask.png"`
}

type ClientConfig struct {
	BackendURL     string        `envconfig:"CLIENT_BACKEND_URL" default:"http://localhost:8080"`
	CredentialPath string        `envconfig:"CLIENT_CREDENTIAL_PATH" default:"/presignedUrl"`
	PublicBaseURL  string        `envconfig:"CLIENT_PUBLIC_BASE_URL" required:"true"`
	Timeout        time.Duration `envconfig:"CLIENT_TIMEOUT" default:"30s"`
}

type BrushConfig struct {
	MinRadius     float64 `envconfig:"BRUSH_MIN_RADIUS" default:"5"`
	MaxRadius     float64 `envconfig:"BRUSH_MAX_RADIUS" default:"50"`
	DefaultRadius float64 `envconfig:"BRUSH_DEFAULT_RADIUS" default:"10"`
	Step          float64 `envconfig:"BRUSH_STEP" default:"5"`
	DisplayWidth  int     `envconfig:"BRUSH_DISPLAY_WIDTH" default:"800"`
	DisplayHeight int     `envconfig:"BRUSH_DISPLAY_HEIGHT" default:"600"`
}

type NATSConfig struct {
	URL          string        `envconfig:"NATS_URL" required:"true"`
	StreamName   string        `envconfig:"NATS_STREAM_NAME" required:"true"`
	ConsumerName string        `envconfig:"NATS_CONSUMER_NAME" required:"true"`
	Subject      string        `envconfig:"NATS_SUBJECT" required:"true"`
	MaxDeliver   int           `envconfig:"NATS_MAX_DELIVER" default:"5"`
	AckWait      time.Duration `envconfig:"NATS_ACK_WAIT" default:"10s"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"10"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"2"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

// Load loads the credential service configuration
func Load() (*Config, error) {
	var cfg Config
	if err := process(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadCLI loads the mask client configuration
func LoadCLI() (*CLIConfig, error) {
	var cfg CLIConfig
	if err := process(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadWorker loads the storage event worker configuration
func LoadWorker() (*WorkerConfig, error) {
	var cfg WorkerConfig
	if err := process(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// process reads an optional .env file, real environment variables win
func process(spec any) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return envconfig.Process("", spec)
}
