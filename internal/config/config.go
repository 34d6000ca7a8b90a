package config

type Config interface {
	EnvConfig
	CorsConfig
	TokenConfig
	StoreConfig
	PaymentConfig
	MailConfig
	MenuConfig
	SecurityConfig
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Tokens
	Store
	Payments
	Mail
	Menu
	Security
}

// New returns a Config backed by environment variables and built-in defaults.
func New() Config {
	return newConfig(nil)
}

// Load returns a Config that reads environment variables first, then the
// YAML file at path, then built-in defaults. An empty path behaves like New.
func Load(path string) (Config, error) {
	if path == "" {
		return New(), nil
	}
	src, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return newConfig(src), nil
}

func newConfig(src *source) Config {
	return mainConfig{
		EnvVars:  EnvVars{src: src},
		Cors:     Cors{src: src},
		Tokens:   Tokens{src: src},
		Store:    Store{src: src},
		Payments: Payments{src: src},
		Mail:     Mail{src: src},
		Menu:     Menu{src: src},
		Security: Security{src: src},
	}
}
