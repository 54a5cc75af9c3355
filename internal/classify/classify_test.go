package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dusk-indust/layerlens/internal/graph"
)

func TestRoles_DefaultRules(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name string
		want []graph.Role
	}{
		{"OrderController", []graph.Role{graph.RoleController}},
		{"IOrderService", []graph.Role{graph.RoleService}},
		{"Service1Impl", []graph.Role{graph.RoleService}},
		{"Repository2Impl", []graph.Role{graph.RoleRepository}},
		{"ORDERSERVICE", []graph.Role{graph.RoleService}},
		{"Money", nil},
		{"Helper", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Roles(tt.name), tt.name)
	}
}

func TestRoles_MultipleMatches(t *testing.T) {
	c := NewClassifier(nil)

	// A name matching several rules collects every role, in rule order.
	roles := c.Roles("ControllerServiceBridge")
	assert.Equal(t, []graph.Role{graph.RoleController, graph.RoleService}, roles)
}

func TestRoles_CustomRules(t *testing.T) {
	c := NewClassifier([]Rule{
		{Role: graph.RoleRepository, Keywords: []string{"dao", "store"}},
	})

	assert.Equal(t, []graph.Role{graph.RoleRepository}, c.Roles("UserDAO"))
	assert.Equal(t, []graph.Role{graph.RoleRepository}, c.Roles("OrderStore"))
	assert.Nil(t, c.Roles("OrderRepository"))
}

func TestRoles_OneRolePerRule(t *testing.T) {
	c := NewClassifier([]Rule{
		{Role: graph.RoleService, Keywords: []string{"service", "svc"}},
	})

	// Matching both keywords of one rule still yields the role once.
	assert.Equal(t, []graph.Role{graph.RoleService}, c.Roles("SvcService"))
}
