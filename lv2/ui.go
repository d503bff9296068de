package lv2

import "strings"

// UI is a plugin user interface declared with ui:ui.
type UI struct {
	world     *World
	uri       *Node
	classes   *Nodes
	bundleURI *Node
	binaryURI *Node
}

func newUI(w *World, uri, class, binary *Node) *UI {
	bundle := binary.str[:strings.LastIndexByte(binary.str, '/')+1]
	return &UI{
		world:     w,
		uri:       uri,
		classes:   nodesOf([]*Node{class}),
		bundleURI: NewURI(bundle),
		binaryURI: binary,
	}
}

func compareUIs(a, b *UI) int { return strings.Compare(a.uri.str, b.uri.str) }

// URI returns the UI URI.
func (u *UI) URI() *Node { return u.uri }

// Classes returns the UI types, such as ui:GtkUI.
func (u *UI) Classes() *Nodes { return u.classes }

// IsA reports whether the UI has class as one of its types.
func (u *UI) IsA(class *Node) bool { return u.classes.Contains(class) }

// BundleURI returns the directory URI of the UI binary.
func (u *UI) BundleURI() *Node { return u.bundleURI }

// BinaryURI returns the URI of the UI binary.
func (u *UI) BinaryURI() *Node { return u.binaryURI }

// UISupportedFunc rates how well a host container type can embed a UI
// type. Zero means unsupported; higher is better.
type UISupportedFunc func(containerType, uiType string) uint

// IsSupported returns the best-rated UI type for containerType and its
// quality, or nil and zero when no type is supported.
func (u *UI) IsSupported(supported UISupportedFunc, containerType *Node) (*Node, uint) {
	var best *Node
	var quality uint
	for class := range u.classes.All() {
		if q := supported(containerType.str, class.str); q > quality {
			best, quality = class, q
		}
	}
	return best, quality
}
