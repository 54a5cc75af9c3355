package ingest

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/layerlens/internal/graph"
)

// goExtractor extracts type declarations from Go source files.
//
// Go has no implements syntax; the linker infers IMPLEMENTS edges by
// method-set matching over the extracted declarations. Struct embedding
// of a named type is reported as EXTENDS.
type goExtractor struct{}

func (e *goExtractor) Extract(root *tree_sitter.Node, source []byte) []TypeDecl {
	collector := newDeclCollector()

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, source, collector)
	return collector.decls()
}

func (e *goExtractor) walk(cursor *tree_sitter.TreeCursor, source []byte, collector *declCollector) {
	node := cursor.Node()

	switch node.Kind() {
	case "type_declaration":
		e.extractTypeDeclaration(node, source, collector)

	case "method_declaration":
		e.extractMethod(node, source, collector)
	}

	if cursor.GotoFirstChild() {
		e.walk(cursor, source, collector)
		for cursor.GotoNextSibling() {
			e.walk(cursor, source, collector)
		}
		cursor.GotoParent()
	}
}

func (e *goExtractor) extractTypeDeclaration(node *tree_sitter.Node, source []byte, collector *declCollector) {
	// type_declaration contains one or more type_spec children.
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "type_spec" {
			continue
		}
		e.extractTypeSpec(child, source, collector)
	}
}

func (e *goExtractor) extractTypeSpec(node *tree_sitter.Node, source []byte, collector *declCollector) {
	nameNode := node.ChildByFieldName("name")
	typeNode := node.ChildByFieldName("type")
	if nameNode == nil || typeNode == nil {
		return
	}
	decl := collector.get(nameNode.Utf8Text(source))

	switch typeNode.Kind() {
	case "interface_type":
		decl.IsInterface = true
		e.extractInterfaceBody(typeNode, source, decl)
	case "struct_type":
		e.extractStructBody(typeNode, source, decl)
	}
}

// extractInterfaceBody collects method signatures and embedded interfaces.
func (e *goExtractor) extractInterfaceBody(node *tree_sitter.Node, source []byte, decl *TypeDecl) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "method_elem", "method_spec":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				decl.Methods = append(decl.Methods, MethodDecl{Name: nameNode.Utf8Text(source)})
			}
		case "type_identifier", "type_elem":
			// Embedded interface: the interface extends it.
			ref := lastSegment(child.Utf8Text(source))
			if ref != "" {
				decl.Supertypes = append(decl.Supertypes, SuperRef{Name: ref, Kind: graph.EdgeKindExtends})
			}
		}
	}
}

// extractStructBody collects field type references and embedded types.
func (e *goExtractor) extractStructBody(node *tree_sitter.Node, source []byte, decl *TypeDecl) {
	fieldList := firstChildOfKind(node, "field_declaration_list")
	if fieldList == nil {
		return
	}
	for i := uint(0); i < fieldList.ChildCount(); i++ {
		field := fieldList.Child(i)
		if field == nil || field.Kind() != "field_declaration" {
			continue
		}
		typeNode := field.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		refs := typeIdentifiers(typeNode, source)

		// A field_declaration without a name child is an embedded type.
		if field.ChildByFieldName("name") == nil && len(refs) == 1 {
			decl.Supertypes = append(decl.Supertypes, SuperRef{Name: refs[0], Kind: graph.EdgeKindExtends})
			continue
		}
		decl.FieldTypes = append(decl.FieldTypes, refs...)
	}
}

func (e *goExtractor) extractMethod(node *tree_sitter.Node, source []byte, collector *declCollector) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	receiver := receiverTypeName(node, source)
	if receiver == "" {
		return
	}

	method := MethodDecl{Name: nameNode.Utf8Text(source)}
	if body := node.ChildByFieldName("body"); body != nil {
		method.Calls = collectCalls(body, source, "call_expression", "function", goCallee)
	}

	decl := collector.get(receiver)
	decl.Methods = append(decl.Methods, method)
}

// receiverTypeName resolves the receiver's base type name, unwrapping a
// pointer receiver.
func receiverTypeName(node *tree_sitter.Node, source []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	param := firstChildOfKind(recv, "parameter_declaration")
	if param == nil {
		return ""
	}
	typeNode := param.ChildByFieldName("type")
	if typeNode == nil {
		return ""
	}
	if typeNode.Kind() == "pointer_type" {
		if inner := firstChildOfKind(typeNode, "type_identifier"); inner != nil {
			return inner.Utf8Text(source)
		}
		return ""
	}
	if typeNode.Kind() == "type_identifier" {
		return typeNode.Utf8Text(source)
	}
	return ""
}

// goCallee keeps selector calls only ("x.Save(...)"): plain identifier
// calls are package-level functions, not method invocations.
func goCallee(fn *tree_sitter.Node, source []byte) string {
	if fn.Kind() != "selector_expression" {
		return ""
	}
	field := fn.ChildByFieldName("field")
	if field == nil {
		return ""
	}
	return field.Utf8Text(source)
}

// firstChildOfKind returns the first direct child with the given kind.
func firstChildOfKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// typeIdentifiers walks a type expression and collects the base type
// names it references (unwrapping pointers, slices, maps, generics).
func typeIdentifiers(node *tree_sitter.Node, source []byte) []string {
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

// --- declaration collection ---

// declCollector accumulates TypeDecls in first-seen order, letting
// extractors attach methods to types declared elsewhere in the file.
type declCollector struct {
	byName map[string]*TypeDecl
	order  []string
}

func newDeclCollector() *declCollector {
	return &declCollector{byName: make(map[string]*TypeDecl)}
}

// get returns the declaration for name, creating it on first use.
func (c *declCollector) get(name string) *TypeDecl {
	if d, ok := c.byName[name]; ok {
		return d
	}
	d := &TypeDecl{Name: name}
	c.byName[name] = d
	c.order = append(c.order, name)
	return d
}

// decls returns the collected declarations in first-seen order.
func (c *declCollector) decls() []TypeDecl {
	out := make([]TypeDecl, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, *c.byName[name])
	}
	return out
}
