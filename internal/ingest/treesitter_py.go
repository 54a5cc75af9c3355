package ingest

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/layerlens/internal/graph"
)

// pyExtractor extracts class definitions from Python source files.
// Python has one inheritance mechanism, so every superclass becomes an
// EXTENDS fact; classes deriving from ABC or Protocol are treated as
// interfaces.
type pyExtractor struct{}

func (e *pyExtractor) Extract(root *tree_sitter.Node, source []byte) []TypeDecl {
	collector := newDeclCollector()

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, source, collector)
	return collector.decls()
}

func (e *pyExtractor) walk(cursor *tree_sitter.TreeCursor, source []byte, collector *declCollector) {
	node := cursor.Node()

	if node.Kind() == "class_definition" {
		e.extractClass(node, source, collector)
		// Nested classes are rare; a flat walk keeps methods attached
		// to their immediate class.
		return
	}

	if cursor.GotoFirstChild() {
		e.walk(cursor, source, collector)
		for cursor.GotoNextSibling() {
			e.walk(cursor, source, collector)
		}
		cursor.GotoParent()
	}
}

func (e *pyExtractor) extractClass(node *tree_sitter.Node, source []byte, collector *declCollector) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	decl := collector.get(nameNode.Utf8Text(source))

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := uint(0); i < supers.ChildCount(); i++ {
			arg := supers.Child(i)
			if arg == nil {
				continue
			}
			var name string
			switch arg.Kind() {
			case "identifier":
				name = arg.Utf8Text(source)
			case "attribute":
				if attr := arg.ChildByFieldName("attribute"); attr != nil {
					name = attr.Utf8Text(source)
				}
			}
			if name == "" {
				continue
			}
			if name == "ABC" || name == "Protocol" {
				decl.IsInterface = true
				continue
			}
			decl.Supertypes = append(decl.Supertypes, SuperRef{Name: name, Kind: graph.EdgeKindExtends})
		}
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		stmt := body.Child(i)
		if stmt == nil {
			continue
		}
		fn := stmt
		if stmt.Kind() == "decorated_definition" {
			fn = stmt.ChildByFieldName("definition")
			if fn == nil {
				continue
			}
		}
		if fn.Kind() != "function_definition" {
			continue
		}
		e.extractMethod(fn, source, decl)
	}
}

func (e *pyExtractor) extractMethod(node *tree_sitter.Node, source []byte, decl *TypeDecl) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Utf8Text(source)
	if name == "__init__" {
		return
	}

	method := MethodDecl{Name: name}
	if body := node.ChildByFieldName("body"); body != nil {
		method.Calls = collectCalls(body, source, "call", "function", pyCallee)
	}
	decl.Methods = append(decl.Methods, method)
}

// pyCallee keeps attribute calls only ("self.repo.save(...)"); bare
// identifier calls are free functions or constructors.
func pyCallee(fn *tree_sitter.Node, source []byte) string {
	if fn.Kind() != "attribute" {
		return ""
	}
	attr := fn.ChildByFieldName("attribute")
	if attr == nil {
		return ""
	}
	return attr.Utf8Text(source)
}
