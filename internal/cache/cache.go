package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"kle_back_end/internal/models"
	"kle_back_end/internal/store"
)

const (
	ProductCacheTTL     = 10 * time.Minute
	ProductListCacheTTL = time.Hour

	productListKey = "products:all"
)

// SharedFetchTimeout borne une lecture du store partagée entre plusieurs requêtes.
const SharedFetchTimeout = 10 * time.Second

func productKey(id string) string {
	return "product:" + id
}

// Products met en cache les lectures du catalogue dans Redis (cache-aside).
// Toute écriture passe par le store sous-jacent puis invalide les clés concernées.
type Products struct {
	next  store.ProductStore
	redis redis.Cmdable
	group singleflight.Group
}

var _ store.ProductStore = (*Products)(nil)

func NewProducts(next store.ProductStore, client redis.Cmdable) *Products {
	return &Products{next: next, redis: client}
}

func (c *Products) FindByID(ctx context.Context, id string) (*models.Product, error) {
	key := productKey(id)

	var cached models.Product
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}

	v, err := c.shared(ctx, key, func(fetchCtx context.Context) (interface{}, error) {
		p, err := c.next.FindByID(fetchCtx, id)
		if err != nil {
			return nil, err
		}
		c.set(fetchCtx, key, p, ProductCacheTTL)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p := *v.(*models.Product)
	return &p, nil
}

func (c *Products) List(ctx context.Context) ([]models.Product, error) {
	var cached []models.Product
	if c.get(ctx, productListKey, &cached) {
		return cached, nil
	}

	v, err := c.shared(ctx, productListKey, func(fetchCtx context.Context) (interface{}, error) {
		products, err := c.next.List(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.set(fetchCtx, productListKey, products, ProductListCacheTTL)
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]models.Product(nil), v.([]models.Product)...), nil
}

func (c *Products) Create(ctx context.Context, p *models.Product) error {
	if err := c.next.Create(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *Products) Update(ctx context.Context, p *models.Product) error {
	err := c.next.Update(ctx, p)
	// Invalidation même en cas d'échec : l'état en base est incertain.
	c.invalidate(ctx, p.ID)
	return err
}

func (c *Products) Delete(ctx context.Context, id string) (*models.Product, error) {
	p, err := c.next.Delete(ctx, id)
	c.invalidate(ctx, id)
	return p, err
}

// shared regroupe les lectures concurrentes d'une même clé. La lecture tourne sur un
// contexte détaché de l'appelant qui l'a lancée ; chaque appelant n'attend que
// tant que son propre contexte est actif.
func (c *Products) shared(ctx context.Context, key string, fetch func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := c.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), SharedFetchTimeout)
		defer cancel()
		return fetch(fetchCtx)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Products) get(ctx context.Context, key string, dst interface{}) bool {
	data, err := c.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		log.Printf("⚠️ Lecture cache %s impossible: %v", key, err)
		return false
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		log.Printf("⚠️ Entrée cache %s illisible: %v", key, err)
		return false
	}
	return true
}

func (c *Products) set(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, string(data), ttl).Err(); err != nil {
		log.Printf("⚠️ Écriture cache %s impossible: %v", key, err)
	}
}

func (c *Products) invalidate(ctx context.Context, ids ...string) {
	keys := []string{productListKey}
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		log.Printf("⚠️ Invalidation cache %v impossible: %v", keys, err)
	}
}
