package helpers

import (
	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client. Redis is optional infrastructure:
// callers must tolerate a nil client.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// SessionKey is the redis key holding the session hash for a user.
func SessionKey(userID string) string {
	return "user:session:" + userID
}
