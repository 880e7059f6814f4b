package target

import (
	"encoding/base64"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gaurav-prasanna/texpipe/core"
)

// RenderAttr marks how a node was last filled.
const RenderAttr = "data-render"

// Node writes into the children of an HTML element. The DOM is not safe
// for concurrent use, so every Node of one document must share mu.
type Node struct {
	sel *goquery.Selection
	mu  *sync.Mutex
}

// NewNode wraps sel. A nil mu gives the node its own lock.
func NewNode(sel *goquery.Selection, mu *sync.Mutex) *Node {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &Node{sel: sel, mu: mu}
}

// SetTypeset embeds SVG output as an image. Other formats cannot be shown
// in a browser, so their source is kept in a code element.
func (n *Node) SetTypeset(out core.Typeset) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sel.Empty()
	if out.Format == "svg" {
		src := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(out.Data)
		n.sel.AppendNodes(element(atom.Img,
			html.Attribute{Key: "class", Val: "math"},
			html.Attribute{Key: "alt", Val: out.Source},
			html.Attribute{Key: "src", Val: src},
		))
	} else {
		code := element(atom.Code,
			html.Attribute{Key: "class", Val: "math"},
			html.Attribute{Key: "data-format", Val: out.Format},
		)
		code.AppendChild(&html.Node{Type: html.TextNode, Data: out.Source})
		n.sel.AppendNodes(code)
	}
	n.sel.SetAttr(RenderAttr, core.ContentTypeset.String())
}

// SetFallback writes text with a <br> for every newline.
func (n *Node) SetFallback(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sel.Empty()
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			n.sel.AppendNodes(element(atom.Br))
		}
		if line != "" {
			n.sel.AppendNodes(&html.Node{Type: html.TextNode, Data: line})
		}
	}
	n.sel.SetAttr(RenderAttr, core.ContentFallback.String())
}

func (n *Node) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sel.Empty()
	n.sel.RemoveAttr(RenderAttr)
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     a.String(),
		DataAtom: a,
		Attr:     attrs,
	}
}
