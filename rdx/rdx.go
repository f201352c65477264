package rdx

import (
	"log"
	"os"
	"time"

	"fournil/globals"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

// Init creates the shared Redis client. Redis backs the popular-pastries
// cache and the internal event channel; the service still works without it,
// so a failed ping only logs.
func Init() {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}

	Conn = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if err := Conn.Ping(globals.Ctx).Err(); err != nil {
		log.Printf("Redis unreachable at %s: %v", addr, err)
	}
}

func RdxGet(key string) (string, error) {
	return Conn.Get(globals.Ctx, key).Result()
}

func RdxSet(key, value string) error {
	return Conn.Set(globals.Ctx, key, value, 0).Err()
}

func SetWithExpiry(key, value string, ttl time.Duration) error {
	return Conn.Set(globals.Ctx, key, value, ttl).Err()
}

func RdxDel(key string) error {
	return Conn.Del(globals.Ctx, key).Err()
}

// DelPattern removes every key matching the pattern. Used to invalidate the
// popular-pastries cache whenever the catalog changes.
func DelPattern(pattern string) {
	keys, err := Conn.Keys(globals.Ctx, pattern).Result()
	if err != nil {
		log.Println("Redis scan error:", err)
		return
	}
	if len(keys) > 0 {
		if err := Conn.Del(globals.Ctx, keys...).Err(); err != nil {
			log.Println("Redis delete error:", err)
		}
	}
}
