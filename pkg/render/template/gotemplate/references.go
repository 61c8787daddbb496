package gotemplate

import (
	"sort"
	texttemplate "text/template"
	"text/template/parse"
)

// references collects every field name the template set can read: field and
// chain idents, variable paths and string literals (for index, get and dig
// style lookups).
func references(root *texttemplate.Template) []string {
	seen := make(map[string]struct{})
	for _, tmpl := range root.Templates() {
		if tmpl.Tree == nil || tmpl.Tree.Root == nil {
			continue
		}
		collectReferences(tmpl.Tree.Root, seen)
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectReferences(node parse.Node, seen map[string]struct{}) {
	switch n := node.(type) {
	case nil:
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			collectReferences(child, seen)
		}
	case *parse.ActionNode:
		collectReferences(n.Pipe, seen)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, cmd := range n.Cmds {
			collectReferences(cmd, seen)
		}
	case *parse.CommandNode:
		for _, arg := range n.Args {
			collectReferences(arg, seen)
		}
	case *parse.IfNode:
		collectBranch(&n.BranchNode, seen)
	case *parse.RangeNode:
		collectBranch(&n.BranchNode, seen)
	case *parse.WithNode:
		collectBranch(&n.BranchNode, seen)
	case *parse.TemplateNode:
		collectReferences(n.Pipe, seen)
	case *parse.FieldNode:
		addNames(seen, n.Ident)
	case *parse.ChainNode:
		collectReferences(n.Node, seen)
		addNames(seen, n.Field)
	case *parse.VariableNode:
		if len(n.Ident) > 1 {
			addNames(seen, n.Ident[1:])
		}
	case *parse.StringNode:
		seen[n.Text] = struct{}{}
	}
}

func collectBranch(n *parse.BranchNode, seen map[string]struct{}) {
	collectReferences(n.Pipe, seen)
	collectReferences(n.List, seen)
	collectReferences(n.ElseList, seen)
}

func addNames(seen map[string]struct{}, names []string) {
	for _, name := range names {
		seen[name] = struct{}{}
	}
}
