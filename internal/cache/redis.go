package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter compte les tentatives par identifiant (email, IP) et pose un
// cooldown quand la limite est atteinte.
type Limiter struct {
	redis    redis.Cmdable
	prefix   string
	max      int
	cooldown time.Duration
}

func NewLimiter(client redis.Cmdable, prefix string, max int, cooldown time.Duration) *Limiter {
	return &Limiter{redis: client, prefix: prefix, max: max, cooldown: cooldown}
}

func (l *Limiter) attemptsKey(id string) string {
	return fmt.Sprintf("%s_attempts:%s", l.prefix, id)
}

func (l *Limiter) cooldownKey(id string) string {
	return fmt.Sprintf("%s_cooldown:%s", l.prefix, id)
}

func (l *Limiter) Max() int { return l.max }

// Blocked renvoie le temps de cooldown restant, 0 si id peut continuer.
// Atteindre la limite active le cooldown et remet le compteur à zéro.
func (l *Limiter) Blocked(ctx context.Context, id string) (time.Duration, error) {
	ttl, err := l.redis.TTL(ctx, l.cooldownKey(id)).Result()
	if err != nil {
		return 0, err
	}
	if ttl > 0 {
		return ttl, nil
	}

	attempts, err := l.Attempts(ctx, id)
	if err != nil {
		return 0, err
	}
	if attempts < l.max {
		return 0, nil
	}

	if err := l.redis.Set(ctx, l.cooldownKey(id), "1", l.cooldown).Err(); err != nil {
		return 0, err
	}
	if err := l.redis.Del(ctx, l.attemptsKey(id)).Err(); err != nil {
		return 0, err
	}
	return l.cooldown, nil
}

func (l *Limiter) Attempts(ctx context.Context, id string) (int, error) {
	attempts, err := l.redis.Get(ctx, l.attemptsKey(id)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return attempts, err
}

// Hit enregistre une tentative et renvoie le nombre restant avant cooldown.
func (l *Limiter) Hit(ctx context.Context, id string) (int, error) {
	key := l.attemptsKey(id)
	attempts, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if err := l.redis.Expire(ctx, key, l.cooldown).Err(); err != nil {
		return 0, err
	}
	remaining := l.max - int(attempts)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Reset efface compteur et cooldown (ex: login réussi).
func (l *Limiter) Reset(ctx context.Context, id string) error {
	return l.redis.Del(ctx, l.attemptsKey(id), l.cooldownKey(id)).Err()
}
