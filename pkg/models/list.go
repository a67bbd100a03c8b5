package models

// StringLiteral is a language tagged string.
type StringLiteral struct {
	Value    string `json:"value"`
	Language string `json:"language,omitempty"`
}

// ListNode is a node of a controlled vocabulary list as returned by /v2/node.
type ListNode struct {
	IRI         string      `json:"iri"`
	Label       string      `json:"label"`
	Comment     string      `json:"comment,omitempty"`
	IsRootNode  bool        `json:"is_root_node"`
	RootNodeIRI string      `json:"root_node_iri,omitempty"`
	Position    int         `json:"position"`
	Children    []*ListNode `json:"children,omitempty"`
}

// List is a full hierarchical list as returned by the admin API.
type List struct {
	Info     ListInfo        `json:"listinfo"`
	Children []ListChildNode `json:"children"`
}

// ListInfo describes the root of a list.
type ListInfo struct {
	ID         string          `json:"id"`
	ProjectIRI string          `json:"projectIri"`
	Name       string          `json:"name,omitempty"`
	Labels     []StringLiteral `json:"labels"`
	Comments   []StringLiteral `json:"comments"`
}

// ListChildNode is a non-root node of a list.
type ListChildNode struct {
	ID          string          `json:"id"`
	Name        string          `json:"name,omitempty"`
	Labels      []StringLiteral `json:"labels"`
	Comments    []StringLiteral `json:"comments"`
	Position    int             `json:"position"`
	HasRootNode string          `json:"hasRootNode,omitempty"`
	Children    []ListChildNode `json:"children"`
}

// Label returns the label in the requested language, falling back to the
// first label. Empty when the node has no labels.
func Label(labels []StringLiteral, language string) string {
	for _, l := range labels {
		if l.Language == language {
			return l.Value
		}
	}
	if len(labels) > 0 {
		return labels[0].Value
	}
	return ""
}

// Find searches the list depth first for the node with the given IRI.
func (l *List) Find(iri string) (*ListChildNode, bool) {
	return findChild(l.Children, iri)
}

func findChild(children []ListChildNode, iri string) (*ListChildNode, bool) {
	for i := range children {
		if children[i].ID == iri {
			return &children[i], true
		}
		if n, ok := findChild(children[i].Children, iri); ok {
			return n, true
		}
	}
	return nil, false
}
