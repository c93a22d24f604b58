package orders

import (
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
)

// Store keeps orders in memory for a retention period.
type Store struct {
	orders *cache.Cache
}

// NewStore creates a store that forgets orders after retention. A zero
// retention keeps them forever.
func NewStore(retention time.Duration) *Store {
	if retention <= 0 {
		return &Store{orders: cache.New(cache.NoExpiration, 0)}
	}
	return &Store{orders: cache.New(retention, retention)}
}

func (s *Store) Save(order Order) {
	s.orders.SetDefault(order.ID, order)
}

func (s *Store) Get(id string) (Order, bool) {
	v, ok := s.orders.Get(id)
	if !ok {
		return Order{}, false
	}
	return v.(Order), true
}

// ByCustomer returns the customer's orders, oldest first. An empty
// customer matches every order.
func (s *Store) ByCustomer(customer string) []Order {
	var orders []Order
	for _, item := range s.orders.Items() {
		order := item.Object.(Order)
		if customer == "" || order.Customer == customer {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders
}
