package lv2

import "strings"

// PluginClass is a node in the plugin class tree rooted at lv2:Plugin.
type PluginClass struct {
	world  *World
	uri    *Node
	parent *Node
	label  *Node
}

func comparePluginClasses(a, b *PluginClass) int { return strings.Compare(a.uri.str, b.uri.str) }

// URI returns the class URI.
func (c *PluginClass) URI() *Node { return c.uri }

// ParentURI returns the superclass URI, or nil for the root.
func (c *PluginClass) ParentURI() *Node { return c.parent }

// Label returns the class label.
func (c *PluginClass) Label() *Node { return c.label }

// Children returns the loaded classes whose parent is c, or nil.
func (c *PluginClass) Children() *Collection[*PluginClass] {
	children := NewCollection(comparePluginClasses)
	for class := range c.world.classes.All() {
		if class.parent.Equals(c.uri) {
			children.Insert(class)
		}
	}
	if children.Len() == 0 {
		return nil
	}
	return children
}
