package persistence

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danmuck/zkctl/internal/proto"
)

// DataNode is one parsed node of the persisted tree.
type DataNode struct {
	Path   string
	Data   []byte
	ACLRef int64
	Stat   proto.StatPersisted

	children []string
}

// IsEphemeral reports whether the node is owned by a session.
func (n *DataNode) IsEphemeral() bool {
	return n.Stat.EphemeralOwner != 0
}

// Children returns the names (not full paths) of the node's children in
// lexical order.
func (n *DataNode) Children() []string {
	out := make([]string, len(n.children))
	copy(out, n.children)
	sort.Strings(out)
	return out
}

// DataTree is the node tree reconstructed from a snapshot's flat node list.
// Nodes are held in a path-keyed arena; parent/child links are path lookups,
// never direct references.
type DataTree struct {
	nodes map[string]*DataNode
}

// NewDataTree returns a tree holding only the root node "/".
func NewDataTree() *DataTree {
	root := &DataNode{Path: "/"}
	return &DataTree{nodes: map[string]*DataNode{"/": root}}
}

// Insert adds a node under its parent. The snapshot serializes parents
// before children, so a missing parent means the file is inconsistent.
func (t *DataTree) Insert(node *DataNode) error {
	if node.Path == "" || !strings.HasPrefix(node.Path, "/") {
		return fmt.Errorf("%w: %q is not an absolute path", ErrInconsistentTree, node.Path)
	}
	if _, ok := t.nodes[node.Path]; ok {
		return fmt.Errorf("%w: duplicate path %q", ErrInconsistentTree, node.Path)
	}
	parent, ok := t.nodes[ParentPath(node.Path)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInconsistentTree, node.Path)
	}
	parent.children = append(parent.children, lastPathElement(node.Path))
	t.nodes[node.Path] = node
	return nil
}

// Get looks a node up by absolute path.
func (t *DataTree) Get(path string) (*DataNode, bool) {
	n, ok := t.nodes[path]
	return n, ok
}

// Parent resolves a node's parent, or false for the root.
func (t *DataTree) Parent(path string) (*DataNode, bool) {
	if path == "/" {
		return nil, false
	}
	return t.Get(ParentPath(path))
}

// Len counts nodes including the root.
func (t *DataTree) Len() int {
	return len(t.nodes)
}

// Walk visits every node in lexical path order.
func (t *DataTree) Walk(fn func(*DataNode) error) error {
	paths := make([]string, 0, len(t.nodes))
	for p := range t.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := fn(t.nodes[p]); err != nil {
			return err
		}
	}
	return nil
}

// Ephemerals groups ephemeral node paths by owning session id.
func (t *DataTree) Ephemerals() map[int64][]string {
	out := make(map[int64][]string)
	for p, n := range t.nodes {
		if n.IsEphemeral() {
			out[n.Stat.EphemeralOwner] = append(out[n.Stat.EphemeralOwner], p)
		}
	}
	for _, paths := range out {
		sort.Strings(paths)
	}
	return out
}

// ParentPath returns the absolute path of a node's parent.
func ParentPath(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return "/"
	}
	return path[:i]
}

func lastPathElement(path string) string {
	i := strings.LastIndexByte(path, '/')
	return path[i+1:]
}
