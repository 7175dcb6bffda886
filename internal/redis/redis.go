package redis

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"social_media/pkg/config"
)

// Client 包裝 go-redis，作為訊息動態的 pub/sub 中繼
type Client struct {
	inner   *redis.Client
	channel string
}

// NewRedisClient 依設定建立連線並確認可以 ping 通
func NewRedisClient(cfg config.RedisConfig) (*Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr required")
	}
	channel := cfg.Channel
	if channel == "" {
		channel = "social_media:messages"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &Client{inner: client, channel: channel}, nil
}

// Publish 將事件送到頻道
func (c *Client) Publish(ctx context.Context, payload []byte) error {
	if c == nil || c.inner == nil {
		return errors.New("redis client not initialized")
	}
	return c.inner.Publish(ctx, c.channel, payload).Err()
}

// Subscribe 訂閱頻道，收到訂閱確認後才返回；之後在背景對每則訊息呼叫 handle，
// 直到 ctx 結束或連線中斷，結束原因送到回傳的 channel
func (c *Client) Subscribe(ctx context.Context, handle func(payload []byte)) (<-chan error, error) {
	if c == nil || c.inner == nil {
		return nil, errors.New("redis client not initialized")
	}
	sub := c.inner.Subscribe(ctx, c.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	done := make(chan error, 1)
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				done <- ctx.Err()
				return
			case msg, ok := <-ch:
				if !ok {
					done <- errors.New("redis subscription closed")
					return
				}
				handle([]byte(msg.Payload))
			}
		}
	}()
	return done, nil
}

// Close 關閉連線，nil client 時不做任何事
func (c *Client) Close() error {
	if c == nil || c.inner == nil {
		return nil
	}
	return c.inner.Close()
}
