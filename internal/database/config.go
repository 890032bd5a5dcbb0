package database

// Config selects the SQL backend and its pool limits.
type Config struct {
	// Driver is "postgres" or "sqlite".
	Driver          string `mapstructure:"driver" yaml:"driver" json:"driver"`
	DSN             string `mapstructure:"dsn" yaml:"dsn" json:"dsn"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime" json:"conn_max_lifetime"` // seconds
	// LogQueries turns on gorm statement logging.
	LogQueries bool `mapstructure:"log_queries" yaml:"log_queries" json:"log_queries"`
}
