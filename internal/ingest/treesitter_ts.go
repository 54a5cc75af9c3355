package ingest

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/layerlens/internal/graph"
)

// tsExtractor extracts class and interface declarations from TypeScript
// source files. Heritage clauses map directly onto the graph: "extends"
// becomes EXTENDS and "implements" becomes IMPLEMENTS.
type tsExtractor struct{}

func (e *tsExtractor) Extract(root *tree_sitter.Node, source []byte) []TypeDecl {
	collector := newDeclCollector()

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, source, collector)
	return collector.decls()
}

func (e *tsExtractor) walk(cursor *tree_sitter.TreeCursor, source []byte, collector *declCollector) {
	node := cursor.Node()

	switch node.Kind() {
	case "class_declaration", "abstract_class_declaration":
		e.extractClass(node, source, collector)

	case "interface_declaration":
		e.extractInterface(node, source, collector)
	}

	if cursor.GotoFirstChild() {
		e.walk(cursor, source, collector)
		for cursor.GotoNextSibling() {
			e.walk(cursor, source, collector)
		}
		cursor.GotoParent()
	}
}

func (e *tsExtractor) extractClass(node *tree_sitter.Node, source []byte, collector *declCollector) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	decl := collector.get(nameNode.Utf8Text(source))

	if heritage := firstChildOfKind(node, "class_heritage"); heritage != nil {
		for i := uint(0); i < heritage.ChildCount(); i++ {
			clause := heritage.Child(i)
			if clause == nil {
				continue
			}
			switch clause.Kind() {
			case "extends_clause":
				appendHeritageRefs(clause, source, graph.EdgeKindExtends, decl)
			case "implements_clause":
				appendHeritageRefs(clause, source, graph.EdgeKindImplements, decl)
			}
		}
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		member := body.Child(i)
		if member == nil {
			continue
		}
		switch member.Kind() {
		case "method_definition":
			e.extractClassMethod(member, source, decl)
		case "public_field_definition":
			decl.FieldTypes = append(decl.FieldTypes, annotationTypeRefs(member, source)...)
		}
	}
}

func (e *tsExtractor) extractClassMethod(node *tree_sitter.Node, source []byte, decl *TypeDecl) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Utf8Text(source)
	if name == "constructor" {
		// Constructor parameter properties are dependency facts,
		// not invocable methods.
		if params := node.ChildByFieldName("parameters"); params != nil {
			decl.FieldTypes = append(decl.FieldTypes, annotationTypeRefs(params, source)...)
		}
		return
	}

	method := MethodDecl{Name: name}
	if body := node.ChildByFieldName("body"); body != nil {
		method.Calls = collectCalls(body, source, "call_expression", "function", tsCallee)
	}
	decl.Methods = append(decl.Methods, method)
}

func (e *tsExtractor) extractInterface(node *tree_sitter.Node, source []byte, collector *declCollector) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	decl := collector.get(nameNode.Utf8Text(source))
	decl.IsInterface = true

	if clause := firstChildOfKind(node, "extends_type_clause"); clause != nil {
		appendHeritageRefs(clause, source, graph.EdgeKindExtends, decl)
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		member := body.Child(i)
		if member == nil || member.Kind() != "method_signature" {
			continue
		}
		if sigName := member.ChildByFieldName("name"); sigName != nil {
			decl.Methods = append(decl.Methods, MethodDecl{Name: sigName.Utf8Text(source)})
		}
	}
}

// appendHeritageRefs collects the type names referenced by an extends or
// implements clause.
func appendHeritageRefs(clause *tree_sitter.Node, source []byte, kind graph.EdgeKind, decl *TypeDecl) {
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "type_identifier", "identifier":
			name := lastSegment(n.Utf8Text(source))
			if name != "" {
				decl.Supertypes = append(decl.Supertypes, SuperRef{Name: name, Kind: kind})
			}
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(clause)
}

// annotationTypeRefs collects the type names appearing in type
// annotations under node, for DEPENDS_ON facts.
func annotationTypeRefs(node *tree_sitter.Node, source []byte) []string {
	var refs []string
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "type_annotation" {
			refs = append(refs, tsTypeIdentifiers(n, source)...)
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)
	return refs
}

func tsTypeIdentifiers(node *tree_sitter.Node, source []byte) []string {
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

// tsCallee keeps member calls only ("this.repo.save(...)"); bare
// identifier calls are free functions.
func tsCallee(fn *tree_sitter.Node, source []byte) string {
	if fn.Kind() != "member_expression" {
		return ""
	}
	prop := fn.ChildByFieldName("property")
	if prop == nil {
		return ""
	}
	return prop.Utf8Text(source)
}
