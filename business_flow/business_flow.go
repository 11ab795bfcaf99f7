package businessflow

import (
	"strings"

	"github.com/amirphl/billboard-engine/config"
)

// redisKey namespaces key under the configured prefix
func redisKey(cfg config.CacheConfig, key string) string {
	prefix := strings.TrimSpace(cfg.RedisPrefix)
	if prefix == "" {
		return key
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return prefix + key
}
