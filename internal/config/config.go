package config

import "github.com/kelseyhightower/envconfig"

type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	DatabaseDSN string `envconfig:"DB_DSN"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName      string `envconfig:"DB_NAME" default:"easyphone"`
	DBSSLMode   string `envconfig:"DB_SSLMODE" default:"disable"`

	SessionKey         string `envconfig:"SESSION_KEY" default:"dev-insecure"`
	AdminSecret        string `envconfig:"JWT_ADMIN_SECRET" default:"dev-admin-secret"`
	AdminAllowedEmails string `envconfig:"ADMIN_ALLOWED_EMAILS"`
	AdminUser          string `envconfig:"ADMIN_USER" default:"admin"`
	AdminPass          string `envconfig:"ADMIN_PASS" default:"admin123"`

	SuperfreteToken string `envconfig:"SUPERFRETE_TOKEN"`
	OriginCEP       string `envconfig:"ORIGIN_CEP" default:"64091250"`

	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	BaseURL            string `envconfig:"BASE_URL" default:"http://localhost:8080"`
}

func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	if c.DatabaseDSN == "" {
		c.DatabaseDSN = "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword +
			" dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=" + c.DBSSLMode
	}
	return c, nil
}
