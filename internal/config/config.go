package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// 在庫/注文の保存先
const (
	StoreDriverAuto     = "auto"
	StoreDriverFile     = "file"
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // development/production
	FEURL string // フロントURL（CORSで使う）

	StoreDriver string // auto/file/mongo/postgres
	DataDir     string // fileのときの保存先

	MongoURI string
	MongoDB  string

	DatabaseURL      string // あれば最優先
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisAddr     string // 空なら在庫ロックはプロセス内
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string // 空ならイベントは送らない
	KafkaTopic   string

	AdminEmail        string
	AdminPassword     string
	AdminPasswordHash string // bcrypt
	AdminJWTSecret    string

	LogLevel    string
	LogEncoding string

	SeedInventory bool   // 在庫が空のとき初期データを入れる
	CatalogFile   string // sync-inventoryが読むカタログ
}

// .envを読む（なくてもよい）
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		_ = godotenv.Load()
		return
	}
	for _, p := range paths {
		_ = godotenv.Load(p)
	}
}

// Loadは環境変数から設定を作る
func Load() (Config, error) {
	pgPort, err := atoiOr("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	redisDB, err := atoiOr("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}
	seed, err := boolOr("SEED_INVENTORY", true)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "development"),
		FEURL: strings.TrimRight(getenv("FE_URL", getenv("FRONTEND_URL", "")), "/"),

		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", StoreDriverAuto)),
		DataDir:     getenv("DATA_DIR", "data"),

		MongoURI: os.Getenv("MONGODB_URI"),
		MongoDB:  getenv("MONGODB_DB", "bismillah_wholesale"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "app"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "storefront.events"),

		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminJWTSecret:    os.Getenv("ADMIN_JWT_SECRET"),

		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogEncoding: os.Getenv("LOG_ENCODING"),

		SeedInventory: seed,
		CatalogFile:   getenv("CATALOG_FILE", "catalog.yaml"),
	}

	if strings.HasPrefix(cfg.Port, ":") {
		cfg.Port = strings.TrimPrefix(cfg.Port, ":")
	}

	//保存先の決定
	if cfg.StoreDriver == StoreDriverAuto {
		cfg.StoreDriver = cfg.resolveStoreDriver()
	}

	//必須チェック
	switch cfg.StoreDriver {
	case StoreDriverFile:
		if cfg.DataDir == "" {
			return Config{}, fmt.Errorf("DATA_DIR is required")
		}
	case StoreDriverMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGODB_URI is required for STORE_DRIVER=mongo")
		}
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" && cfg.PostgresHost == "" {
			return Config{}, fmt.Errorf("DATABASE_URL or POSTGRES_HOST is required for STORE_DRIVER=postgres")
		}
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER must be one of auto, file, mongo, postgres: %q", cfg.StoreDriver)
	}

	if cfg.KafkaTopic == "" {
		return Config{}, fmt.Errorf("KAFKA_TOPIC must not be empty")
	}

	return cfg, nil
}

func (c Config) resolveStoreDriver() string {
	switch {
	case c.MongoURI != "":
		return StoreDriverMongo
	case c.DatabaseURL != "" || c.PostgresHost != "":
		return StoreDriverPostgres
	default:
		return StoreDriverFile
	}
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "production" || c.GoEnv == "prod"
}

// 管理者ログインが設定されているか
func (c Config) AdminConfigured() bool {
	return c.AdminEmail != "" && c.AdminJWTSecret != "" &&
		(c.AdminPassword != "" || c.AdminPasswordHash != "")
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func boolOr(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be true/false: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
