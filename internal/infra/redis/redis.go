package redis

import (
	"log"
	"sync"

	radix "github.com/mediocregopher/radix/v3"

	"github.com/mrstephan404-hue/my-ecommerce-store/internal/config"
)

var (
	client radix.Client
	once   sync.Once
)

// Init 初始化 Redis 连接池
func Init(cfg *config.RedisConfig) radix.Client {
	once.Do(func() {
		pool, err := radix.NewPool("tcp", cfg.Addr, 10)
		if err != nil {
			// Redis 只承担鉴权缓存，连不上时降级为直接解析 JWT
			log.Printf("redis unavailable, token cache disabled: %v", err)
			return
		}
		client = pool
	})
	return client
}

// Client 获取 Redis 客户端，可能为 nil
func Client() radix.Client {
	return client
}
