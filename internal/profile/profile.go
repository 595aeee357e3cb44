package profile

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"

	"github.com/go-sql-driver/mysql"
	"github.com/jacobarthurs/myplan/internal/analyzer"
	"github.com/jacobarthurs/myplan/internal/plan"
	"gopkg.in/yaml.v3"
)

const configFileName = "profiles.yaml"

var configDirFunc = configDir

var ErrConfigExists = errors.New("config file already exists")

type Profile struct {
	Name    string `yaml:"name"`
	Dialect string `yaml:"dialect,omitempty"`
	DSN     string `yaml:"dsn"`
}

// RedactedDSN returns the DSN with its password masked. DSNs that cannot be
// parsed are returned unchanged.
func (p Profile) RedactedDSN() string {
	dialect, err := plan.NormalizeDialect(p.Dialect)
	if err != nil {
		return p.DSN
	}

	if dialect == plan.Postgres {
		u, err := url.Parse(p.DSN)
		if err != nil || u.Scheme == "" {
			return p.DSN
		}
		return u.Redacted()
	}

	cfg, err := mysql.ParseDSN(p.DSN)
	if err != nil {
		return p.DSN
	}
	if cfg.Passwd != "" {
		cfg.Passwd = "xxxxx"
	}
	return cfg.FormatDSN()
}

type Config struct {
	Default  string          `yaml:"default,omitempty"`
	Profiles []Profile       `yaml:"profiles"`
	Rules    analyzer.Config `yaml:"rules"`
}

func Resolve(name string) (Profile, error) {
	cfg, err := load()
	if err != nil {
		if os.IsNotExist(err) {
			return Profile{}, fmt.Errorf("no profiles configured")
		}
		return Profile{}, err
	}

	for _, p := range cfg.Profiles {
		if p.Name == name {
			return p, nil
		}
	}

	return Profile{}, fmt.Errorf("profile %q not found", name)
}

func List() ([]Profile, error) {
	cfg, err := load()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return cfg.Profiles, nil
}

func Add(name, dialect, dsn string) error {
	if dialect == "" {
		dialect = plan.DialectFromDSN(dsn)
	}
	d, err := plan.NormalizeDialect(dialect)
	if err != nil {
		return err
	}

	cfg, err := loadOrDefault()
	if err != nil {
		return err
	}

	for i, p := range cfg.Profiles {
		if p.Name == name {
			cfg.Profiles[i].Dialect = d
			cfg.Profiles[i].DSN = dsn
			return save(cfg)
		}
	}

	cfg.Profiles = append(cfg.Profiles, Profile{
		Name:    name,
		Dialect: d,
		DSN:     dsn,
	})
	return save(cfg)
}

func Remove(name string) error {
	cfg, err := load()
	if err != nil {
		return err
	}

	for i, p := range cfg.Profiles {
		if p.Name == name {
			cfg.Profiles = append(cfg.Profiles[:i], cfg.Profiles[i+1:]...)
			if cfg.Default == name {
				cfg.Default = ""
			}
			return save(cfg)
		}
	}

	return fmt.Errorf("profile %q not found", name)
}

// ResolveTarget picks the database to explain against: an explicit DSN, then
// a named profile, then the default profile, then the environment. A zero
// Target means no database is configured.
func ResolveTarget(dsn, dialect, profileName string) (plan.Target, error) {
	var target plan.Target

	switch {
	case dsn != "":
		target = plan.Target{DSN: dsn}
	case profileName != "":
		p, err := Resolve(profileName)
		if err != nil {
			return plan.Target{}, err
		}
		target = plan.Target{Dialect: p.Dialect, DSN: p.DSN}
	default:
		cfg, err := load()
		if err != nil && !os.IsNotExist(err) {
			return plan.Target{}, err
		}
		if cfg != nil && cfg.Default != "" {
			p, err := Resolve(cfg.Default)
			if err != nil {
				return plan.Target{}, err
			}
			target = plan.Target{Dialect: p.Dialect, DSN: p.DSN}
		} else {
			target = targetFromEnv()
		}
	}

	if dialect != "" {
		target.Dialect = dialect
	}
	if target.Dialect == "" {
		target.Dialect = plan.DialectFromDSN(target.DSN)
	}
	if target.IsZero() {
		return plan.Target{}, nil
	}

	d, err := plan.NormalizeDialect(target.Dialect)
	if err != nil {
		return plan.Target{}, err
	}
	target.Dialect = d
	return target, nil
}

func targetFromEnv() plan.Target {
	if dsn := os.Getenv("MYPLAN_DSN"); dsn != "" {
		return plan.Target{Dialect: os.Getenv("MYPLAN_DIALECT"), DSN: dsn}
	}

	host := os.Getenv("MYSQL_HOST")
	if host == "" {
		return plan.Target{}
	}
	if _, _, err := net.SplitHostPort(host); err != nil {
		port := getEnv("MYSQL_PORT", "3306")
		host = net.JoinHostPort(host, port)
	}

	cfg := mysql.NewConfig()
	cfg.User = getEnv("MYSQL_USER", "root")
	cfg.Passwd = os.Getenv("MYSQL_PASS")
	cfg.Net = "tcp"
	cfg.Addr = host
	cfg.DBName = os.Getenv("MYSQL_DATABASE")

	return plan.Target{Dialect: plan.MySQL, DSN: cfg.FormatDSN()}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// LoadRules returns the rule configuration from the config file, or the
// defaults when no file exists.
func LoadRules() (analyzer.Config, error) {
	cfg, err := loadOrDefault()
	if err != nil {
		return analyzer.Config{}, err
	}
	if err := cfg.Rules.Validate(); err != nil {
		return analyzer.Config{}, fmt.Errorf("invalid rules: %w", err)
	}
	return cfg.Rules, nil
}

// Init writes a starter config file and returns its path.
func Init(force bool) (string, error) {
	path, err := configPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, path)
	}

	cfg := &Config{
		Profiles: []Profile{},
		Rules:    analyzer.DefaultConfig(),
	}
	if err := save(cfg); err != nil {
		return "", err
	}
	return path, nil
}

func ConfigPath() (string, error) {
	return configPath()
}

func loadOrDefault() (*Config, error) {
	cfg, err := load()
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Rules: analyzer.DefaultConfig()}, nil
		}
		return nil, err
	}
	return cfg, nil
}

func load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Config{Rules: analyzer.DefaultConfig()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return &cfg, nil
}

func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("finding config directory: %w", err)
	}
	return filepath.Join(base, "myplan"), nil
}

func configPath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

func ensureConfigDir() error {
	dir, err := configDirFunc()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

func save(cfg *Config) error {
	if err := ensureConfigDir(); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}

	return nil
}

func SetDefault(name string) error {
	cfg, err := loadOrDefault()
	if err != nil {
		return err
	}

	found := false
	for _, p := range cfg.Profiles {
		if p.Name == name {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("profile %q not found", name)
	}

	cfg.Default = name
	return save(cfg)
}

func GetDefault() (string, error) {
	cfg, err := load()
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return cfg.Default, nil
}

func ClearDefault() error {
	cfg, err := load()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	cfg.Default = ""
	return save(cfg)
}
