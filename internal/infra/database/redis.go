package database

import (
	"github.com/redis/go-redis/v9"

	"github.com/totegamma/tagnote/internal/config"
)

func NewRedis(conf config.Redis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
}
