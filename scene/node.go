package scene

import (
	"errors"
	"fmt"
	"slices"
)

// Node is an element of the scene hierarchy. Inactive nodes and their
// subtrees are neither updated nor rendered.
//
// Node is not safe for concurrent use.
type Node struct {
	name       string
	parent     *Node
	children   []*Node
	components []Component
	active     bool
}

// NewNode returns an active node with no children or components.
func NewNode(name string) *Node {
	return &Node{name: name, active: true}
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// AddChild appends child. A nil child is ignored; a child attached
// elsewhere is detached from its previous parent first.
func (n *Node) AddChild(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.detach(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

func (n *Node) detach(child *Node) {
	if i := slices.Index(n.children, child); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
		child.parent = nil
	}
}

// RemoveChild removes the first direct child named name. With recursive set
// the search continues depth first through the descendants. It reports
// whether a node was removed.
func (n *Node) RemoveChild(name string, recursive bool) bool {
	for _, c := range n.children {
		if c.name == name {
			n.detach(c)
			return true
		}
	}
	if !recursive {
		return false
	}
	for _, c := range n.children {
		if c.RemoveChild(name, true) {
			return true
		}
	}
	return false
}

// FindChild returns the first direct child named name, searching the
// descendants depth first when recursive is set. It returns nil if no node
// matches.
func (n *Node) FindChild(name string, recursive bool) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	if !recursive {
		return nil
	}
	for _, c := range n.children {
		if found := c.FindChild(name, true); found != nil {
			return found
		}
	}
	return nil
}

// ChildAt returns the i-th child, or nil when i is out of range.
func (n *Node) ChildAt(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// NumChildren returns the number of direct children.
func (n *Node) NumChildren() int { return len(n.children) }

// SetActive enables or disables the node and its subtree.
func (n *Node) SetActive(active bool) { n.active = active }

// IsActive reports whether the node is active.
func (n *Node) IsActive() bool { return n.active }

// AddComponent attaches c, replacing any component of the same type.
func (n *Node) AddComponent(c Component) {
	if c == nil {
		return
	}
	for i, existing := range n.components {
		if existing.Type() == c.Type() {
			n.components[i] = c
			return
		}
	}
	n.components = append(n.components, c)
}

// RemoveComponent detaches the component of type t.
func (n *Node) RemoveComponent(t ComponentType) {
	n.components = slices.DeleteFunc(n.components, func(c Component) bool {
		return c.Type() == t
	})
}

// Component returns the component of type t, or nil.
func (n *Node) Component(t ComponentType) Component {
	for _, c := range n.components {
		if c.Type() == t {
			return c
		}
	}
	return nil
}

// Update advances the components of the node and then its children.
func (n *Node) Update(dt float64) {
	if !n.active {
		return
	}
	for _, c := range n.components {
		c.Update(dt)
	}
	for _, child := range n.children {
		child.Update(dt)
	}
}

// Render stages the components of the node and then its children. The
// node's transform component, if any, is composed with the renderer's
// current world transform for the subtree and restored afterwards.
// Staging errors are collected; one failing component does not stop the
// traversal.
func (n *Node) Render(r Renderer) error {
	if !n.active || r == nil {
		return nil
	}
	parent := r.WorldTransform()
	if tc, ok := n.Component(ComponentTransform).(*TransformComponent); ok {
		r.SetWorldTransform(parent.Mul4(tc.Matrix()))
	}
	defer r.SetWorldTransform(parent)

	var errs []error
	for _, c := range n.components {
		if err := c.Render(r); err != nil {
			errs = append(errs, fmt.Errorf("%s: %s: %w", n.name, c.Type(), err))
		}
	}
	for _, child := range n.children {
		if err := child.Render(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
