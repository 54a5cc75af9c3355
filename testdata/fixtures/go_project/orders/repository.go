package orders

// IOrderRepository is the order persistence boundary.
type IOrderRepository interface {
	SaveOrder(name string) error
	AllOrders() []string
}

// OrderRepository stores orders in memory.
type OrderRepository struct {
	orders []string
}

func (r *OrderRepository) SaveOrder(name string) error {
	r.orders = append(r.orders, name)
	return nil
}

func (r *OrderRepository) AllOrders() []string {
	return r.orders
}
