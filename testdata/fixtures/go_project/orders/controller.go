package orders

// OrderController handles order HTTP requests.
type OrderController struct {
	service IOrderService
}

func (c *OrderController) Create(name string) error {
	return c.service.CreateOrder(name)
}

func (c *OrderController) List() []string {
	return c.service.ListOrders()
}
