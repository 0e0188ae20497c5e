package config

// DBConfig contains PostgreSQL database configuration.
// The database holds the externally-owned operator allow-list table.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"fleetui"`
	Password string `env:"PASSWORD" envDefault:"fleetui"`
	Name     string `env:"NAME"     envDefault:"fleetui"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// Enabled controls whether a database connection is attempted at all.
	// The gateway runs fine without one; operator logins just go unrecorded.
	Enabled bool `env:"ENABLED" envDefault:"false"`
}

// RedisConfig contains Redis configuration for the session store.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
	// Enabled selects Redis over the in-process session store.
	Enabled bool `env:"ENABLED" envDefault:"true"`
}
