package orders

// IOrderService is the order business logic boundary.
type IOrderService interface {
	CreateOrder(name string) error
	ListOrders() []string
}

// OrderService implements IOrderService on top of the repository.
type OrderService struct {
	repo IOrderRepository
}

func (s *OrderService) CreateOrder(name string) error {
	return s.repo.SaveOrder(name)
}

func (s *OrderService) ListOrders() []string {
	return s.repo.AllOrders()
}
