// internal/adapter/cache/cache.go

package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Cache stores rendered views by their render inputs
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Key identifies a render by view, year, variable and selected regions.
// Region order does not change the key.
func Key(view string, year int, variable string, ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return fmt.Sprintf("%s|%d|%s|%s", view, year, variable, strings.Join(sorted, ","))
}

// Nop is a cache that never hits
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, []byte) error { return nil }
