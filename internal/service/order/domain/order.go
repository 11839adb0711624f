// internal/service/order/domain/order.go
package domain

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// Order is the unit of work flowing through the pipeline. It is immutable:
// stages hand it over by value and never modify it.
type Order struct {
	id      int64
	product string
}

// NewOrder builds an order. Ids come from a Sequence.
func NewOrder(id int64, product string) Order {
	return Order{id: id, product: product}
}

func (o Order) ID() int64 { return o.id }

func (o Order) Product() string { return o.product }

// Sequence hands out order ids 1, 2, 3, ... Safe for concurrent use.
type Sequence struct {
	last atomic.Int64
}

// Next returns the next id.
func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Catalog is the ordered list of product labels orders are drawn from.
type Catalog struct {
	products []string
}

// NewCatalog copies products into a catalog. An empty list is rejected.
func NewCatalog(products []string) (Catalog, error) {
	if len(products) == 0 {
		return Catalog{}, errors.New("catalog must contain at least one product")
	}
	return Catalog{products: append([]string(nil), products...)}, nil
}

// Pick returns the product for the i-th generated order, cycling through the
// catalog.
func (c Catalog) Pick(i int) string {
	return c.products[i%len(c.products)]
}

func (c Catalog) Len() int { return len(c.products) }
