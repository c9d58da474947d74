package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/DRSN-tech/online-store/pkg/logger"
	"github.com/jimlawless/whereami"
)

type Config struct {
	Http  *HTTPConfig
	Db    *PGDBCfg
	Redis *RedisCfg
	Minio *MinIOCfg
	Kafka *KafkaCfg
	Auth  *AuthCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PGDBCfg struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	QueryTimeout time.Duration
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ProductTTL  time.Duration
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Название бакета с изображениями товаров
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
	PublicBaseURL     string // Базовый URL, по которому клиент видит объекты бакета
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type AuthCfg struct {
	JWTSecret string        // процессный секрет подписи; ротация инвалидирует все токены
	TokenTTL  time.Duration // срок действия выпускаемых токенов
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	auth, err := loadAuthCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:  http,
		Db:    db,
		Redis: redis,
		Minio: minio,
		Kafka: kafka,
		Auth:  auth,
	}, nil
}

func loadAuthCfg(log logger.Logger) (*AuthCfg, error) {
	const defaultTokenTTL = time.Hour

	secret := getEnv("AUTH_JWT_SECRET")
	if secret == "" {
		err := fmt.Errorf("AUTH_JWT_SECRET is required")
		log.Errorf(err, "missing AUTH_JWT_SECRET")
		return nil, err
	}

	ttl, err := parseDurationEnv("AUTH_TOKEN_TTL", defaultTokenTTL)
	if err != nil {
		log.Errorf(err, "invalid AUTH_TOKEN_TTL")
		return nil, err
	}

	return &AuthCfg{
		JWTSecret: secret,
		TokenTTL:  ttl,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC environment variable is required")
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	networkMode := getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode)

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       networkMode,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL   = false
		defaultEndpoint = "minio:9000"
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	endpoint := getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint)
	bucket := getEnv("BUCKET_NAME")

	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	defaultPublicURL := fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket)

	return &MinIOCfg{
		MinioEndpoint:     endpoint,
		BucketName:        bucket,
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		PublicBaseURL:     getEnvOrDefault("MINIO_PUBLIC_BASE_URL", defaultPublicURL),
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost         = "localhost"
		defaultPort         = "5432"
		defaultSSLMode      = "disable"
		defaultQueryTimeout = 3 * time.Second
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	queryTimeout, err := parseDurationEnv("DB_QUERY_TIMEOUT", defaultQueryTimeout)
	if err != nil {
		log.Errorf(err, "invalid DB_QUERY_TIMEOUT")
		return nil, err
	}

	return &PGDBCfg{
		Host:         getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:         getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:         user,
		Password:     password,
		DBName:       dbName,
		SSLMode:      getEnvOrDefault("SSL_MODE", defaultSSLMode),
		QueryTimeout: queryTimeout,
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultProductTTL   = 3 * time.Minute
	)

	addr := getEnvOrDefault("REDIS_ADDR", defaultAddr)
	password := getEnv("REDIS_PASSWORD")
	user := getEnv("REDIS_USER")

	dbStr := getEnvOrDefault("REDIS_DB_ID", strconv.Itoa(defaultDB))
	db, err := strconv.Atoi(dbStr)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetriesStr := getEnvOrDefault("MAX_RETRIES", strconv.Itoa(defaultMaxRetries))
	maxRetries, err := strconv.Atoi(maxRetriesStr)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	productTTL, err := parseDurationEnv("PRODUCT_TTL", defaultProductTTL)
	if err != nil {
		log.Errorf(err, "invalid PRODUCT_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        addr,
		Password:    password,
		User:        user,
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		ProductTTL:  productTTL,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
