package config

type StoreConfig interface {
	GetStoreBackend() string
	GetDataFolder() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
	GetPostgresDSN() string
}

type Store struct {
	src *source
}

var _ StoreConfig = Store{}

// GetStoreBackend is one of file, memory, redis or postgres.
func (s Store) GetStoreBackend() string {
	return s.src.get("STORE_BACKEND", "file")
}

func (s Store) GetDataFolder() string {
	return s.src.get("FOLDER", "./.data")
}

func (s Store) GetRedisAddr() string {
	return s.src.get("REDIS_ADDR", "localhost:6379")
}

func (s Store) GetRedisPassword() string {
	return s.src.get("REDIS_PASSWORD", "")
}

func (s Store) GetRedisDB() int {
	return s.src.getInt("REDIS_DB", 0)
}

func (s Store) GetRedisPrefix() string {
	return s.src.get("REDIS_PREFIX", "pizza:")
}

func (s Store) GetPostgresDSN() string {
	return s.src.get("POSTGRES_DSN", "")
}
