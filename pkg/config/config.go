package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	OTP           OTPConfig
	Orders        OrdersConfig
	FeatureFlags  FeatureFlagsConfig
	Tracing       TracingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Orders.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COUNTERLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"COUNTERLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COUNTERLINE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"COUNTERLINE_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"COUNTERLINE_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"COUNTERLINE_CORS_ORIGINS"`

	ReadTimeout     time.Duration `envconfig:"COUNTERLINE_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"COUNTERLINE_HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"COUNTERLINE_HTTP_SHUTDOWN_TIMEOUT" default:"20s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"COUNTERLINE_DB_DSN"`
	Driver string `envconfig:"COUNTERLINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COUNTERLINE_DB_HOST"`
	LegacyPort     int    `envconfig:"COUNTERLINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COUNTERLINE_DB_USER"`
	LegacyPassword string `envconfig:"COUNTERLINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"COUNTERLINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"COUNTERLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COUNTERLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COUNTERLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COUNTERLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COUNTERLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the local sqlite driver was requested.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"COUNTERLINE_REDIS_URL"`
	Address      string        `envconfig:"COUNTERLINE_REDIS_ADDR"`
	Password     string        `envconfig:"COUNTERLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"COUNTERLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COUNTERLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COUNTERLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COUNTERLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COUNTERLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COUNTERLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"COUNTERLINE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"COUNTERLINE_JWT_ISSUER" default:"counterline"`
	ExpirationMinutes int    `envconfig:"COUNTERLINE_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"COUNTERLINE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"COUNTERLINE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"COUNTERLINE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"COUNTERLINE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"COUNTERLINE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"COUNTERLINE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUserNameLimit int           `envconfig:"COUNTERLINE_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"COUNTERLINE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	OTPWindow          time.Duration `envconfig:"COUNTERLINE_AUTH_RATE_LIMIT_OTP_WINDOW" default:"10m"`
	OTPPhoneLimit      int           `envconfig:"COUNTERLINE_AUTH_RATE_LIMIT_OTP_PHONE_LIMIT" default:"10"`
	OTPIPLimit         int           `envconfig:"COUNTERLINE_AUTH_RATE_LIMIT_OTP_IP_LIMIT" default:"30"`
}

type OTPConfig struct {
	CodeLength int           `envconfig:"COUNTERLINE_OTP_CODE_LENGTH" default:"6"`
	TTL        time.Duration `envconfig:"COUNTERLINE_OTP_TTL" default:"120s"`
	Cooldown   time.Duration `envconfig:"COUNTERLINE_OTP_RATE_LIMIT" default:"20s"`
	DailyLimit int           `envconfig:"COUNTERLINE_OTP_DAILY_LIMIT" default:"5"`
	// ExposeCode returns the generated code in the API response; there is no SMS gateway.
	ExposeCode bool `envconfig:"COUNTERLINE_OTP_EXPOSE_CODE" default:"true"`
}

type OrdersConfig struct {
	TokenTimezone  string        `envconfig:"COUNTERLINE_ORDER_TOKEN_TIMEZONE" default:"Local"`
	IdempotencyTTL time.Duration `envconfig:"COUNTERLINE_ORDER_IDEMPOTENCY_TTL" default:"24h"`
}

// Location resolves the timezone that defines an order's calendar day.
func (o OrdersConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(o.TokenTimezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvOrderTokenTimezone, name, err)
	}
	return loc, nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COUNTERLINE_AUTO_MIGRATE" default:"false"`
}

type TracingConfig struct {
	Enabled      bool    `envconfig:"COUNTERLINE_TRACING_ENABLED" default:"false"`
	Exporter     string  `envconfig:"COUNTERLINE_TRACING_EXPORTER" default:"stdout"`
	OTLPEndpoint string  `envconfig:"COUNTERLINE_TRACING_OTLP_ENDPOINT" default:"localhost:4317"`
	OTLPInsecure bool    `envconfig:"COUNTERLINE_TRACING_OTLP_INSECURE" default:"true"`
	SampleRatio  float64 `envconfig:"COUNTERLINE_TRACING_SAMPLE_RATIO" default:"1"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
