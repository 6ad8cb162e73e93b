package config

type Storage struct{}

var _ StorageConfig = Storage{}

// GetTokenFile returns the path of the JSON file holding the persisted
// credential pair. The file survives client restarts the same way the
// web frontend's storage key survives page reloads.
func (Storage) GetTokenFile() string {
	return GetEnv("TOKEN_FILE", "./data/synergy_tokens.json")
}

// GetRedisAddr returns the Redis address for shared credential storage.
// Empty means the file store is used instead.
func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "")
}
