package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const minJWTSecretLength = 32

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// TrustedProxies lists CIDRs of reverse proxies whose X-Forwarded-For
	// header is honoured. Empty means the socket peer is the client IP.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	JWT   JWTConfig
	Auth  AuthConfig
	Audit AuditConfig
	Seed  SeedConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET, required"`
	TTL    time.Duration `env:"JWT_TTL,    default=24h"`
	Issuer string        `env:"JWT_ISSUER, default=clinic-backend"`
}

type AuthConfig struct {
	BcryptCost           int           `env:"AUTH_BCRYPT_COST,            default=10"`
	LoginMaxFailures     int           `env:"AUTH_LOGIN_MAX_FAILURES,     default=5"`
	LoginLockout         time.Duration `env:"AUTH_LOGIN_LOCKOUT,          default=15m"`
	LoginRatePerSecond   float64       `env:"AUTH_LOGIN_RATE_PER_SECOND,  default=5"`
	LoginRateBurst       int           `env:"AUTH_LOGIN_RATE_BURST,       default=10"`
	DiscloseAccountState bool          `env:"AUTH_DISCLOSE_ACCOUNT_STATE, default=false"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// SeedConfig names the administrator created at startup. Seeding is skipped
// when Email is empty.
type SeedConfig struct {
	AdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
	AdminName     string `env:"SEED_ADMIN_NAME, default=Administrator"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=clinic"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks constraints the struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("config: JWT_SECRET must be at least %d bytes", minJWTSecretLength))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("config: JWT_TTL must be positive"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, errors.New("config: AUTH_BCRYPT_COST must be between 4 and 31"))
	}
	if _, err := c.TrustedProxyNets(); err != nil {
		errs = append(errs, err)
	}
	if c.Seed.AdminEmail != "" && len(c.Seed.AdminPassword) < 6 {
		errs = append(errs, errors.New("config: SEED_ADMIN_PASSWORD must be at least 6 characters"))
	}
	return errors.Join(errs...)
}

// TrustedProxyNets parses TrustedProxies. A bare IP is treated as a single host.
func (c *Config) TrustedProxyNets() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		cidr := strings.TrimSpace(raw)
		if cidr == "" {
			continue
		}
		if !strings.Contains(cidr, "/") {
			if ip := net.ParseIP(cidr); ip != nil && ip.To4() != nil {
				cidr += "/32"
			} else {
				cidr += "/128"
			}
		}
		_, n, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("config: TRUSTED_PROXIES: invalid entry %q", raw)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}
