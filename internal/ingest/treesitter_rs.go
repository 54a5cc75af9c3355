package ingest

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/layerlens/internal/graph"
)

// rsExtractor extracts struct, enum, and trait items from Rust source
// files. Traits map to interfaces; a trait impl block attaches an
// IMPLEMENTS fact and its methods to the implementing type.
type rsExtractor struct{}

func (e *rsExtractor) Extract(root *tree_sitter.Node, source []byte) []TypeDecl {
	collector := newDeclCollector()

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, source, collector)
	return collector.decls()
}

func (e *rsExtractor) walk(cursor *tree_sitter.TreeCursor, source []byte, collector *declCollector) {
	node := cursor.Node()

	switch node.Kind() {
	case "struct_item":
		e.extractStruct(node, source, collector)
	case "enum_item":
		if name := node.ChildByFieldName("name"); name != nil {
			collector.get(name.Utf8Text(source))
		}
	case "trait_item":
		e.extractTrait(node, source, collector)
	case "impl_item":
		e.extractImpl(node, source, collector)
	}

	if cursor.GotoFirstChild() {
		e.walk(cursor, source, collector)
		for cursor.GotoNextSibling() {
			e.walk(cursor, source, collector)
		}
		cursor.GotoParent()
	}
}

func (e *rsExtractor) extractStruct(node *tree_sitter.Node, source []byte, collector *declCollector) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	decl := collector.get(nameNode.Utf8Text(source))

	body := node.ChildByFieldName("body")
	if body == nil || body.Kind() != "field_declaration_list" {
		return
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		field := body.Child(i)
		if field == nil || field.Kind() != "field_declaration" {
			continue
		}
		if typeNode := field.ChildByFieldName("type"); typeNode != nil {
			decl.FieldTypes = append(decl.FieldTypes, rsTypeIdentifiers(typeNode, source)...)
		}
	}
}

func (e *rsExtractor) extractTrait(node *tree_sitter.Node, source []byte, collector *declCollector) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	decl := collector.get(nameNode.Utf8Text(source))
	decl.IsInterface = true

	// Supertraits: "trait A: B + C".
	if bounds := firstChildOfKind(node, "trait_bounds"); bounds != nil {
		for _, name := range rsTypeIdentifiers(bounds, source) {
			decl.Supertypes = append(decl.Supertypes, SuperRef{Name: name, Kind: graph.EdgeKindExtends})
		}
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		item := body.Child(i)
		if item == nil {
			continue
		}
		switch item.Kind() {
		case "function_signature_item", "function_item":
			if name := item.ChildByFieldName("name"); name != nil {
				decl.Methods = append(decl.Methods, MethodDecl{Name: name.Utf8Text(source)})
			}
		}
	}
}

func (e *rsExtractor) extractImpl(node *tree_sitter.Node, source []byte, collector *declCollector) {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	typeName := rsBaseTypeName(typeNode, source)
	if typeName == "" {
		return
	}
	decl := collector.get(typeName)

	if traitNode := node.ChildByFieldName("trait"); traitNode != nil {
		if traitName := rsBaseTypeName(traitNode, source); traitName != "" {
			decl.Supertypes = append(decl.Supertypes, SuperRef{Name: traitName, Kind: graph.EdgeKindImplements})
		}
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		item := body.Child(i)
		if item == nil || item.Kind() != "function_item" {
			continue
		}
		nameNode := item.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nameNode.Utf8Text(source)
		if name == "new" {
			continue
		}
		method := MethodDecl{Name: name}
		if fnBody := item.ChildByFieldName("body"); fnBody != nil {
			method.Calls = collectCalls(fnBody, source, "call_expression", "function", rsCallee)
		}
		decl.Methods = append(decl.Methods, method)
	}
}

// rsBaseTypeName unwraps generic arguments and path qualifiers down to
// the base type name.
func rsBaseTypeName(node *tree_sitter.Node, source []byte) string {
	switch node.Kind() {
	case "type_identifier":
		return node.Utf8Text(source)
	case "generic_type":
		if inner := node.ChildByFieldName("type"); inner != nil {
			return rsBaseTypeName(inner, source)
		}
	case "scoped_type_identifier", "scoped_identifier":
		if name := node.ChildByFieldName("name"); name != nil {
			return name.Utf8Text(source)
		}
		return lastSegment(node.Utf8Text(source))
	case "reference_type":
		if inner := node.ChildByFieldName("type"); inner != nil {
			return rsBaseTypeName(inner, source)
		}
	}
	return ""
}

// rsTypeIdentifiers collects base type names referenced by a type
// expression, unwrapping Arc/Box/Option-style wrappers via recursion.
func rsTypeIdentifiers(node *tree_sitter.Node, source []byte) []string {
	var refs []string
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "type_identifier" {
			refs = append(refs, n.Utf8Text(source))
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)
	return refs
}

// rsCallee keeps method calls ("self.repo.save(...)") and trims path
// qualifiers from associated-function calls.
func rsCallee(fn *tree_sitter.Node, source []byte) string {
	switch fn.Kind() {
	case "field_expression":
		if field := fn.ChildByFieldName("field"); field != nil {
			return field.Utf8Text(source)
		}
	case "scoped_identifier":
		if name := fn.ChildByFieldName("name"); name != nil {
			return name.Utf8Text(source)
		}
	}
	return ""
}
