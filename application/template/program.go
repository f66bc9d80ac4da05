// Package template compiles program templates. A template is program text in
// which numeric sizes are written as {{.params.Name}}; everything else,
// including the braces of net syntax, passes through unchanged.
package template

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"
	"text/template/parse"
)

// Program is a compiled program template. It is safe for concurrent use.
type Program struct {
	name   string
	tmpl   *template.Template
	params []string
}

// Parse compiles raw. Rendering fails on any parameter that is referenced
// but not supplied.
func Parse(name string, raw []byte) (*Program, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse program template %q: %w", name, err)
	}

	seen := make(map[string]struct{})
	if tmpl.Tree != nil {
		collectParams(tmpl.Tree.Root, seen)
	}
	params := make([]string, 0, len(seen))
	for p := range seen {
		params = append(params, p)
	}
	sort.Strings(params)

	return &Program{name: name, tmpl: tmpl, params: params}, nil
}

// Name returns the name the template was parsed under.
func (p *Program) Name() string { return p.name }

// Params returns the parameter names the template references, sorted.
func (p *Program) Params() []string {
	out := make([]string, len(p.params))
	copy(out, p.params)
	return out
}

// Render substitutes params into the template.
func (p *Program) Render(params map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, map[string]any{"params": params}); err != nil {
		return nil, fmt.Errorf("failed to render program template %q: %w", p.name, err)
	}
	return buf.Bytes(), nil
}

// collectParams records every .params.X field reference below node.
func collectParams(node parse.Node, seen map[string]struct{}) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			collectParams(c, seen)
		}
	case *parse.ActionNode:
		collectParams(n.Pipe, seen)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, c := range n.Cmds {
			collectParams(c, seen)
		}
	case *parse.CommandNode:
		for _, a := range n.Args {
			collectParams(a, seen)
		}
	case *parse.FieldNode:
		if len(n.Ident) >= 2 && n.Ident[0] == "params" {
			seen[n.Ident[1]] = struct{}{}
		}
	case *parse.IfNode:
		collectBranch(&n.BranchNode, seen)
	case *parse.RangeNode:
		collectBranch(&n.BranchNode, seen)
	case *parse.WithNode:
		collectBranch(&n.BranchNode, seen)
	}
}

func collectBranch(b *parse.BranchNode, seen map[string]struct{}) {
	collectParams(b.Pipe, seen)
	collectParams(b.List, seen)
	collectParams(b.ElseList, seen)
}
