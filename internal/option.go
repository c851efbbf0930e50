package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVaults appends vault roots, typically from command-line
// arguments, to the configured set.
func WithVaults(roots ...string) Option {
	return func(a *application) {
		if a.config != nil {
			a.config.Vaults = append(a.config.Vaults, roots...)
		}
	}
}
