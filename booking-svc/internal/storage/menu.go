package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"tableside/booking-svc/internal/domain"
)

// MenuCatalog reads dishes straight from the primary database.
type MenuCatalog struct {
	DB *sql.DB
}

func NewMenuCatalog(db *sql.DB) *MenuCatalog {
	return &MenuCatalog{DB: db}
}

func (m *MenuCatalog) MenuItem(ctx context.Context, id int) (domain.MenuItem, error) {
	var item domain.MenuItem
	err := m.DB.QueryRowContext(ctx, `
		SELECT id, name, price
		FROM dishes
		WHERE id = $1 AND available = TRUE
	`, id).Scan(&item.ID, &item.Name, &item.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MenuItem{}, fmt.Errorf("menu item %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("menu item %d: %w", id, err)
	}
	return item, nil
}

type MenuSource interface {
	MenuItem(ctx context.Context, id int) (domain.MenuItem, error)
}

// CachedMenu keeps the last known name and price of every dish it served in
// Redis, so orders can still be priced while the primary is down.
type CachedMenu struct {
	Source MenuSource
	Client *redis.Client
	TTL    time.Duration
}

func NewCachedMenu(source MenuSource, client *redis.Client, ttl time.Duration) *CachedMenu {
	return &CachedMenu{Source: source, Client: client, TTL: ttl}
}

func (c *CachedMenu) itemKey(id int) string {
	return "menu:item:" + strconv.Itoa(id)
}

func (c *CachedMenu) MenuItem(ctx context.Context, id int) (domain.MenuItem, error) {
	item, err := c.Source.MenuItem(ctx, id)
	if err == nil {
		c.store(ctx, item)
		return item, nil
	}
	if errors.Is(err, domain.ErrNotFound) || c.Client == nil {
		return domain.MenuItem{}, err
	}

	cached, cacheErr := c.load(ctx, id)
	if cacheErr != nil {
		log.Printf("Menu cache miss for dish %d: %v", id, cacheErr)
		return domain.MenuItem{}, err
	}
	return cached, nil
}

func (c *CachedMenu) store(ctx context.Context, item domain.MenuItem) {
	if c.Client == nil {
		return
	}
	key := c.itemKey(item.ID)
	if err := c.Client.HSet(ctx, key, map[string]interface{}{
		"name":  item.Name,
		"price": item.Price.String(),
	}).Err(); err != nil {
		log.Printf("Error caching dish %d: %v", item.ID, err)
		return
	}
	c.Client.Expire(ctx, key, c.TTL)
}

func (c *CachedMenu) load(ctx context.Context, id int) (domain.MenuItem, error) {
	fields, err := c.Client.HGetAll(ctx, c.itemKey(id)).Result()
	if err != nil {
		return domain.MenuItem{}, err
	}
	if len(fields) == 0 {
		return domain.MenuItem{}, redis.Nil
	}

	price, err := decimal.NewFromString(fields["price"])
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("cached price: %w", err)
	}
	return domain.MenuItem{ID: id, Name: fields["name"], Price: price}, nil
}
