package knora

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/piprate/json-gold/ld"

	"github.com/dasch-swiss/mls-app-ng/pkg/jsonutil"
)

// node is an expanded JSON-LD node object: every key is an absolute IRI (or a
// keyword) and every property value is an array.
type node map[string]interface{}

// expand parses a JSON-LD document and expands it against its inline context.
// A document holding only a @graph expands to the graph's nodes.
func expand(body []byte) ([]node, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON-LD: %w", err)
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")
	expanded, err := proc.Expand(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to expand JSON-LD: %w", err)
	}

	nodes := make([]node, 0, len(expanded))
	for _, item := range expanded {
		if m, ok := item.(map[string]interface{}); ok {
			nodes = append(nodes, node(m))
		}
	}
	return nodes, nil
}

// id returns the @id of the node.
func (n node) id() string {
	s, _ := n["@id"].(string)
	return s
}

// types returns the @type IRIs of the node.
func (n node) types() []string {
	raw, _ := n["@type"].([]interface{})
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if s, ok := t.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// firstType returns the first @type, empty when untyped.
func (n node) firstType() string {
	if t := n.types(); len(t) > 0 {
		return t[0]
	}
	return ""
}

func (n node) hasType(iri string) bool {
	for _, t := range n.types() {
		if t == iri {
			return true
		}
	}
	return false
}

// objects returns the entries of a property as expanded objects.
func (n node) objects(prop string) []map[string]interface{} {
	raw, _ := n[prop].([]interface{})
	out := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

// nodes returns the entries of a property that are node objects.
func (n node) nodes(prop string) []node {
	objs := n.objects(prop)
	out := make([]node, 0, len(objs))
	for _, o := range objs {
		if _, isLiteral := o["@value"]; !isLiteral {
			out = append(out, node(o))
		}
	}
	return out
}

// literal returns the lexical form of the first value of a property and
// whether the property had a literal at all.
func (n node) literal(prop string) (string, bool) {
	for _, o := range n.objects(prop) {
		if v, ok := o["@value"]; ok {
			return jsonutil.FlexibleString(v), true
		}
	}
	return "", false
}

// str is literal without the presence flag.
func (n node) str(prop string) string {
	s, _ := n.literal(prop)
	return s
}

// literals returns the lexical forms of all literal values of a property.
func (n node) literals(prop string) []string {
	var out []string
	for _, o := range n.objects(prop) {
		if v, ok := o["@value"]; ok {
			out = append(out, jsonutil.FlexibleString(v))
		}
	}
	return out
}

// langLiteral returns the literal in the given language, falling back to the
// first literal of the property.
func (n node) langLiteral(prop, language string) string {
	for _, o := range n.objects(prop) {
		if lang, _ := o["@language"].(string); lang == language {
			return jsonutil.FlexibleString(o["@value"])
		}
	}
	return n.str(prop)
}

func (n node) boolean(prop string) bool {
	for _, o := range n.objects(prop) {
		if v, ok := o["@value"]; ok {
			return jsonutil.FlexibleBool(v)
		}
	}
	return false
}

func (n node) integer(prop string) (int, bool) {
	for _, o := range n.objects(prop) {
		if v, ok := o["@value"]; ok {
			return jsonutil.FlexibleInt(v)
		}
	}
	return 0, false
}

// ref returns the first IRI a property points to, either as a node reference
// or as an xsd:anyURI literal.
func (n node) ref(prop string) string {
	for _, o := range n.objects(prop) {
		if id, ok := o["@id"].(string); ok {
			return id
		}
		if v, ok := o["@value"]; ok {
			return jsonutil.FlexibleString(v)
		}
	}
	return ""
}

// refs returns all node reference IRIs of a property.
func (n node) refs(prop string) []string {
	var out []string
	for _, o := range n.objects(prop) {
		if id, ok := o["@id"].(string); ok {
			out = append(out, id)
		}
	}
	return out
}

// keys returns the non-keyword keys of the node in sorted order.
func (n node) keys() []string {
	out := make([]string, 0, len(n))
	for k := range n {
		if len(k) > 0 && k[0] == '@' {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
