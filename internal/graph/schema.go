package graph

// --- Enums ---

// NodeKind classifies nodes in the architecture graph.
type NodeKind string

const (
	NodeKindPackage NodeKind = "package"
	NodeKindType    NodeKind = "type"
	NodeKindMethod  NodeKind = "method"
)

// Role is an architectural layer tag carried by a Type node. Roles are
// assigned once at ingest time and never change for the rest of a run.
type Role string

const (
	RoleController Role = "controller"
	RoleService    Role = "service"
	RoleRepository Role = "repository"
)

// Roles lists all layer roles in presentation-to-persistence order.
var Roles = []Role{RoleController, RoleService, RoleRepository}

// EdgeKind classifies relationships between nodes.
type EdgeKind string

const (
	// Base edges, provided by ingestion.
	EdgeKindContains   EdgeKind = "CONTAINS"   // Package -> Type
	EdgeKindDeclares   EdgeKind = "DECLARES"   // Type -> Method
	EdgeKindInvokes    EdgeKind = "INVOKES"    // Method -> Method (multi-edge allowed)
	EdgeKindImplements EdgeKind = "IMPLEMENTS" // Type -> Type
	EdgeKindExtends    EdgeKind = "EXTENDS"    // Type -> Type
	EdgeKindDependsOn  EdgeKind = "DEPENDS_ON" // Type -> Type

	// Derived edge, computed per run and never written to a Store.
	EdgeKindUses EdgeKind = "USES" // Type -> Type
)

// BaseEdgeKinds lists the edge kinds a Store accepts from ingestion.
var BaseEdgeKinds = []EdgeKind{
	EdgeKindContains,
	EdgeKindDeclares,
	EdgeKindInvokes,
	EdgeKindImplements,
	EdgeKindExtends,
	EdgeKindDependsOn,
}

// HierarchyEdgeKinds are the edge kinds followed when closing the
// implementation/extension hierarchy transitively.
var HierarchyEdgeKinds = []EdgeKind{EdgeKindImplements, EdgeKindExtends}

// Language identifies a programming language for parsing.
type Language string

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
)

// SupportedLanguages are the languages the bundled ingester can parse.
var SupportedLanguages = []Language{LangGo, LangTypeScript, LangPython, LangRust}

// --- Models ---

// PackageNode represents a package (directory-level namespace). Its
// fully-qualified name doubles as the node identifier.
type PackageNode struct {
	Name string `json:"name"`
}

// TypeNode represents a class, struct, interface, or trait. Name is the
// fully-qualified identifier ("pkg/path.TypeName"). Roles holds the layer
// tags assigned by classification; a type with at least one role is a
// component.
type TypeNode struct {
	Name        string `json:"name"`
	Package     string `json:"package"`
	IsInterface bool   `json:"isInterface"`
	Roles       []Role `json:"roles,omitempty"`
}

// HasRole reports whether the type carries the given role tag.
func (t TypeNode) HasRole(role Role) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsComponent reports whether the type carries any layer role.
func (t TypeNode) IsComponent() bool {
	return len(t.Roles) > 0
}

// MethodNode represents a method declared by exactly one type. ID is
// "typeName#methodName".
type MethodNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // declaring type name
}

// MethodID builds the canonical method node identifier.
func MethodID(typeName, methodName string) string {
	return typeName + "#" + methodName
}

// Edge represents a directed relationship between two nodes. Attrs is an
// opaque attribute bag passed through to exports unmodified.
type Edge struct {
	SourceID string            `json:"sourceId"`
	TargetID string            `json:"targetId"`
	Kind     EdgeKind          `json:"kind"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}

// GraphStats summarizes an architecture graph.
type GraphStats struct {
	PackageCount   int `json:"packageCount"`
	TypeCount      int `json:"typeCount"`
	MethodCount    int `json:"methodCount"`
	ComponentCount int `json:"componentCount"`
	EdgeCount      int `json:"edgeCount"`
}
