// Package classify assigns architectural role tags to types at ingest
// time. Roles are inputs to the analysis core: once a graph is populated
// they never change.
package classify

import (
	"strings"

	"github.com/dusk-indust/layerlens/internal/graph"
)

// Rule maps name keywords to one role. Matching is case-insensitive
// substring matching on the type's short name, so "OrderServiceImpl" and
// "IOrderService" both match a "service" keyword.
type Rule struct {
	Role     graph.Role
	Keywords []string
}

// DefaultRules tags the three canonical layers by naming convention.
func DefaultRules() []Rule {
	return []Rule{
		{Role: graph.RoleController, Keywords: []string{"controller"}},
		{Role: graph.RoleService, Keywords: []string{"service"}},
		{Role: graph.RoleRepository, Keywords: []string{"repository"}},
	}
}

// Classifier applies a fixed rule list to type names.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a Classifier; a nil or empty rule list falls back
// to DefaultRules.
func NewClassifier(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Roles returns the role tags for a type's short name, in rule order.
// A type matching no rule gets no roles and is not a component.
func (c *Classifier) Roles(shortName string) []graph.Role {
	lower := strings.ToLower(shortName)
	var roles []graph.Role
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				roles = append(roles, rule.Role)
				break
			}
		}
	}
	return roles
}
