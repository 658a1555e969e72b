// File: pkg/scan/tree.go
package scan

import (
	"sort"
	"strings"
)

type treeNode struct {
	name     string
	isDir    bool
	children map[string]*treeNode
}

func (n *treeNode) child(name string, isDir bool) *treeNode {
	if c, ok := n.children[name]; ok {
		if isDir {
			c.isDir = true
		}
		return c
	}
	c := &treeNode{name: name, isDir: isDir, children: map[string]*treeNode{}}
	n.children[name] = c
	return c
}

// RenderTree draws the records as an ASCII tree under rootName. Directories come first,
// then files, each group alphabetical ignoring case.
func RenderTree(rootName string, records []FileRecord) string {
	root := &treeNode{name: rootName, isDir: true, children: map[string]*treeNode{}}
	for _, rec := range records {
		parts := strings.Split(strings.Trim(rec.RelativePath, "/"), "/")
		node := root
		for i, part := range parts {
			if part == "" {
				continue
			}
			last := i == len(parts)-1
			node = node.child(part, !last || rec.IsDirectory)
		}
	}

	var b strings.Builder
	b.WriteString(strings.TrimSuffix(rootName, "/") + "/\n")
	renderChildren(&b, root, "")
	return b.String()
}

func renderChildren(b *strings.Builder, node *treeNode, prefix string) {
	children := make([]*treeNode, 0, len(node.children))
	for _, c := range node.children {
		children = append(children, c)
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].isDir != children[j].isDir {
			return children[i].isDir
		}
		li, lj := strings.ToLower(children[i].name), strings.ToLower(children[j].name)
		if li != lj {
			return li < lj
		}
		return children[i].name < children[j].name
	})

	for i, c := range children {
		connector := "├── "
		extension := "│   "
		if i == len(children)-1 {
			connector = "└── "
			extension = "    "
		}

		b.WriteString(prefix + connector + c.name)
		if c.isDir {
			b.WriteString("/")
		}
		b.WriteString("\n")
		if c.isDir {
			renderChildren(b, c, prefix+extension)
		}
	}
}
