//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph
// backend. It requires CGO because the go-kuzu driver wraps KuzuDB's C
// library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(":memory:", cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at
// the given directory path. This enables persisted architecture graphs
// that survive across sessions (the diagram command reads one).
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	// Ensure parent directory exists (KuzuDB creates the leaf directory).
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open file database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Package(
		name STRING,
		PRIMARY KEY(name)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Type(
		name STRING,
		pkg STRING,
		is_interface BOOLEAN,
		roles STRING,
		PRIMARY KEY(name)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Method(
		id STRING,
		name STRING,
		type_name STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS CONTAINS(FROM Package TO Type)`,
	`CREATE REL TABLE IF NOT EXISTS DECLARES(FROM Type TO Method)`,
	`CREATE REL TABLE IF NOT EXISTS INVOKES(FROM Method TO Method)`,
	`CREATE REL TABLE IF NOT EXISTS IMPLEMENTS(FROM Type TO Type)`,
	`CREATE REL TABLE IF NOT EXISTS EXTENDS(FROM Type TO Type)`,
	`CREATE REL TABLE IF NOT EXISTS DEPENDS_ON(FROM Type TO Type)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddPackage inserts a Package node.
func (s *KuzuStore) AddPackage(_ context.Context, node PackageNode) error {
	return s.exec(
		"CREATE (p:Package {name: $name})",
		map[string]any{"name": node.Name},
	)
}

// AddType inserts a Type node. Roles are stored as a comma-joined string.
func (s *KuzuStore) AddType(_ context.Context, node TypeNode) error {
	return s.exec(
		`CREATE (t:Type {
			name: $name,
			pkg: $pkg,
			is_interface: $iface,
			roles: $roles
		})`,
		map[string]any{
			"name":  node.Name,
			"pkg":   node.Package,
			"iface": node.IsInterface,
			"roles": joinRoles(node.Roles),
		},
	)
}

// AddMethod inserts a Method node.
func (s *KuzuStore) AddMethod(_ context.Context, node MethodNode) error {
	return s.exec(
		"CREATE (m:Method {id: $id, name: $name, type_name: $tn})",
		map[string]any{
			"id":   node.ID,
			"name": node.Name,
			"tn":   node.Type,
		},
	)
}

// AddEdge inserts a relationship edge between two nodes. Both endpoints
// must already exist; a missing endpoint is a DanglingReferenceError
// because the MATCH-CREATE would otherwise drop the edge silently.
func (s *KuzuStore) AddEdge(ctx context.Context, edge Edge) error {
	spec, err := edgeSpecFor(edge.Kind)
	if err != nil {
		return err
	}
	srcOK, err := s.nodeExists(spec.srcTable, spec.srcKey, edge.SourceID)
	if err != nil {
		return err
	}
	if !srcOK {
		return &DanglingReferenceError{Edge: edge, NodeID: edge.SourceID}
	}
	dstOK, err := s.nodeExists(spec.dstTable, spec.dstKey, edge.TargetID)
	if err != nil {
		return err
	}
	if !dstOK {
		return &DanglingReferenceError{Edge: edge, NodeID: edge.TargetID}
	}

	cypher := fmt.Sprintf(
		`MATCH (a:%s {%s: $src}), (b:%s {%s: $dst}) CREATE (a)-[:%s]->(b)`,
		spec.srcTable, spec.srcKey, spec.dstTable, spec.dstKey, edge.Kind,
	)
	return s.exec(cypher, map[string]any{
		"src": edge.SourceID,
		"dst": edge.TargetID,
	})
}

// edgeSpec describes the endpoint tables of a relationship kind.
type edgeSpec struct {
	srcTable, srcKey string
	dstTable, dstKey string
}

func edgeSpecFor(kind EdgeKind) (edgeSpec, error) {
	switch kind {
	case EdgeKindContains:
		return edgeSpec{"Package", "name", "Type", "name"}, nil
	case EdgeKindDeclares:
		return edgeSpec{"Type", "name", "Method", "id"}, nil
	case EdgeKindInvokes:
		return edgeSpec{"Method", "id", "Method", "id"}, nil
	case EdgeKindImplements, EdgeKindExtends, EdgeKindDependsOn:
		return edgeSpec{"Type", "name", "Type", "name"}, nil
	default:
		return edgeSpec{}, fmt.Errorf("kuzu: unsupported edge kind: %s", kind)
	}
}

// nodeExists runs a point lookup against a node table.
func (s *KuzuStore) nodeExists(table, key, id string) (bool, error) {
	cypher := fmt.Sprintf("MATCH (n:%s {%s: $id}) RETURN count(n)", table, key)
	rows, err := s.query(cypher, map[string]any{"id": id})
	if err != nil {
		return false, err
	}
	return len(rows) > 0 && len(rows[0]) > 0 && toInt(rows[0][0]) > 0, nil
}

// ---------- Node enumeration ----------

// Packages returns all Package nodes sorted by name.
func (s *KuzuStore) Packages(_ context.Context) ([]PackageNode, error) {
	rows, err := s.query("MATCH (p:Package) RETURN p.name ORDER BY p.name", nil)
	if err != nil {
		return nil, err
	}
	out := make([]PackageNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, PackageNode{Name: toString(r[0])})
	}
	return out, nil
}

// Types returns all Type nodes sorted by name.
func (s *KuzuStore) Types(_ context.Context) ([]TypeNode, error) {
	rows, err := s.query(
		"MATCH (t:Type) RETURN t.name, t.pkg, t.is_interface, t.roles ORDER BY t.name",
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]TypeNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToType(r))
	}
	return out, nil
}

// Methods returns all Method nodes sorted by ID.
func (s *KuzuStore) Methods(_ context.Context) ([]MethodNode, error) {
	rows, err := s.query(
		"MATCH (m:Method) RETURN m.id, m.name, m.type_name ORDER BY m.id",
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]MethodNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, MethodNode{
			ID:   toString(r[0]),
			Name: toString(r[1]),
			Type: toString(r[2]),
		})
	}
	return out, nil
}

// GetType retrieves a single Type node by name, or nil if not found.
func (s *KuzuStore) GetType(_ context.Context, name string) (*TypeNode, error) {
	rows, err := s.query(
		"MATCH (t:Type {name: $name}) RETURN t.name, t.pkg, t.is_interface, t.roles",
		map[string]any{"name": name},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	t := rowToType(rows[0])
	return &t, nil
}

// GetMethod retrieves a single Method node by ID, or nil if not found.
func (s *KuzuStore) GetMethod(_ context.Context, id string) (*MethodNode, error) {
	rows, err := s.query(
		"MATCH (m:Method {id: $id}) RETURN m.id, m.name, m.type_name",
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &MethodNode{
		ID:   toString(rows[0][0]),
		Name: toString(rows[0][1]),
		Type: toString(rows[0][2]),
	}, nil
}

// HasRole reports whether the named type carries the given role tag.
func (s *KuzuStore) HasRole(ctx context.Context, typeName string, role Role) (bool, error) {
	t, err := s.GetType(ctx, typeName)
	if err != nil || t == nil {
		return false, err
	}
	return t.HasRole(role), nil
}

// ---------- Edge iteration ----------

// Outgoing returns edges leaving nodeID, filtered by kind ("" matches all).
func (s *KuzuStore) Outgoing(ctx context.Context, nodeID string, kind EdgeKind) ([]Edge, error) {
	return s.edgesFor(nodeID, kind, true)
}

// Incoming returns edges arriving at nodeID, filtered by kind ("" matches all).
func (s *KuzuStore) Incoming(ctx context.Context, nodeID string, kind EdgeKind) ([]Edge, error) {
	return s.edgesFor(nodeID, kind, false)
}

func (s *KuzuStore) edgesFor(nodeID string, kind EdgeKind, outgoing bool) ([]Edge, error) {
	kinds := BaseEdgeKinds
	if kind != "" {
		kinds = []EdgeKind{kind}
	}

	var edges []Edge
	for _, k := range kinds {
		spec, err := edgeSpecFor(k)
		if err != nil {
			return nil, err
		}
		var cypher string
		if outgoing {
			cypher = fmt.Sprintf(
				"MATCH (a:%s {%s: $id})-[:%s]->(b:%s) RETURN a.%s, b.%s",
				spec.srcTable, spec.srcKey, k, spec.dstTable, spec.srcKey, spec.dstKey,
			)
		} else {
			cypher = fmt.Sprintf(
				"MATCH (a:%s)-[:%s]->(b:%s {%s: $id}) RETURN a.%s, b.%s",
				spec.srcTable, k, spec.dstTable, spec.dstKey, spec.srcKey, spec.dstKey,
			)
		}
		rows, err := s.query(cypher, map[string]any{"id": nodeID})
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			edges = append(edges, Edge{
				SourceID: toString(r[0]),
				TargetID: toString(r[1]),
				Kind:     k,
			})
		}
	}
	return edges, nil
}

// Validate is satisfied at insert time: AddEdge rejects edges with missing
// endpoints, so a populated KuzuStore cannot hold dangling references.
func (s *KuzuStore) Validate(_ context.Context) error {
	return nil
}

// ---------- Stats ----------

// Stats returns counts of all node and edge tables.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	packages, err := s.countTable("Package")
	if err != nil {
		return nil, err
	}
	types, err := s.countTable("Type")
	if err != nil {
		return nil, err
	}
	methods, err := s.countTable("Method")
	if err != nil {
		return nil, err
	}
	components, err := s.countComponents()
	if err != nil {
		return nil, err
	}
	edges, err := s.countEdges()
	if err != nil {
		return nil, err
	}
	return &GraphStats{
		PackageCount:   packages,
		TypeCount:      types,
		MethodCount:    methods,
		ComponentCount: components,
		EdgeCount:      edges,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	// Table name is a fixed internal constant, not user input.
	cypher := fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// countComponents returns the number of Type nodes with at least one role.
func (s *KuzuStore) countComponents() (int, error) {
	rows, err := s.query(`MATCH (t:Type) WHERE t.roles <> "" RETURN count(t)`, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// countEdges returns the total number of edges across all relationship tables.
func (s *KuzuStore) countEdges() (int, error) {
	total := 0
	for _, k := range BaseEdgeKinds {
		cypher := fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", k)
		rows, err := s.query(cypher, nil)
		if err != nil {
			// Table may not exist yet; treat as zero.
			continue
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			total += toInt(rows[0][0])
		}
	}
	return total, nil
}

// rowToType converts a 4-column result row into a TypeNode.
// Column order: name, pkg, is_interface, roles.
func rowToType(r []any) TypeNode {
	return TypeNode{
		Name:        toString(r[0]),
		Package:     toString(r[1]),
		IsInterface: toBool(r[2]),
		Roles:       splitRoles(toString(r[3])),
	}
}

// joinRoles serializes role tags for storage ("controller,service").
func joinRoles(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

// splitRoles parses the stored role string back into tags.
func splitRoles(s string) []Role {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]Role, 0, len(parts))
	for _, p := range parts {
		out = append(out, Role(p))
	}
	return out
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).
// These helpers safely coerce any -> concrete type.

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
