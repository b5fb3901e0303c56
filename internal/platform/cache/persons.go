package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"financeiro-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

const personKeyPrefix = "financeiro:person:"

// PersonCache guarda o cadastro de pessoas do ERP por código.
type PersonCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPersonCache cria o cache com a validade informada.
func NewPersonCache(client *redis.Client, ttl time.Duration) *PersonCache {
	return &PersonCache{client: client, ttl: ttl}
}

func personKey(code int) string {
	return personKeyPrefix + strconv.Itoa(code)
}

// GetPersons devolve as pessoas encontradas; códigos ausentes não aparecem no mapa.
func (c *PersonCache) GetPersons(ctx context.Context, codes []int) (map[int]domain.Person, error) {
	found := make(map[int]domain.Person, len(codes))
	if len(codes) == 0 {
		return found, nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = personKey(code)
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("platform/cache: mget pessoas: %w", err)
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var p domain.Person
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			continue
		}
		found[codes[i]] = p
	}
	return found, nil
}

// SetPersons grava as pessoas com o TTL configurado.
func (c *PersonCache) SetPersons(ctx context.Context, persons []domain.Person) error {
	if len(persons) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, p := range persons {
		payload, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("platform/cache: serializar pessoa %d: %w", p.Code, err)
		}
		pipe.Set(ctx, personKey(p.Code), payload, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("platform/cache: gravar pessoas: %w", err)
	}
	return nil
}
