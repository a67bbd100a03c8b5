package models

import (
	"fmt"
	"sort"
)

// ============================================================================
// Ontology definitions (as decoded from /v2/ontologies/allentities)
// ============================================================================

// Cardinality is the declared multiplicity of a property on a class.
type Cardinality int

const (
	CardinalityExactlyOne Cardinality = iota
	CardinalityZeroOrOne
	CardinalityZeroOrMany
	CardinalityOneOrMany
)

var cardinalitySymbols = [...]string{
	CardinalityExactlyOne: "1",
	CardinalityZeroOrOne:  "0-1",
	CardinalityZeroOrMany: "0-n",
	CardinalityOneOrMany:  "1-n",
}

func (c Cardinality) String() string {
	if c < 0 || int(c) >= len(cardinalitySymbols) {
		return fmt.Sprintf("Cardinality(%d)", int(c))
	}
	return cardinalitySymbols[c]
}

// ParseCardinality maps one of "1", "0-1", "0-n", "1-n" to a Cardinality.
func ParseCardinality(s string) (Cardinality, error) {
	for c, sym := range cardinalitySymbols {
		if sym == s {
			return Cardinality(c), nil
		}
	}
	return 0, fmt.Errorf("unknown cardinality %q", s)
}

func (c Cardinality) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(cardinalitySymbols) {
		return nil, fmt.Errorf("invalid cardinality %d", int(c))
	}
	return []byte(cardinalitySymbols[c]), nil
}

func (c *Cardinality) UnmarshalText(text []byte) error {
	parsed, err := ParseCardinality(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Ontology is a decoded ontology with its classes and properties keyed by IRI.
type Ontology struct {
	IRI        string                         `json:"iri"`
	Label      string                         `json:"label"`
	Classes    map[string]*ClassDefinition    `json:"classes"`
	Properties map[string]*PropertyDefinition `json:"properties"`
}

// ClassDefinition is an OWL class with its cardinality restrictions.
type ClassDefinition struct {
	IRI           string             `json:"iri"`
	Label         string             `json:"label"`
	Comment       string             `json:"comment,omitempty"`
	SubClassOf    []string           `json:"sub_class_of,omitempty"`
	Cardinalities []ClassCardinality `json:"cardinalities"`
}

// ClassCardinality is one owl:Restriction of a class.
type ClassCardinality struct {
	PropertyIRI string      `json:"property_iri"`
	Cardinality Cardinality `json:"cardinality"`
	GuiOrder    *int        `json:"gui_order,omitempty"`
}

// PropertyDefinition is an ontology property.
type PropertyDefinition struct {
	IRI                 string   `json:"iri"`
	Label               string   `json:"label"`
	Comment             string   `json:"comment,omitempty"`
	SubjectType         string   `json:"subject_type,omitempty"`
	ObjectType          string   `json:"object_type,omitempty"`
	GuiElement          string   `json:"gui_element,omitempty"`
	GuiAttributes       []string `json:"gui_attributes,omitempty"`
	SubPropertyOf       []string `json:"sub_property_of,omitempty"`
	IsEditable          bool     `json:"is_editable"`
	IsLinkProperty      bool     `json:"is_link_property"`
	IsLinkValueProperty bool     `json:"is_link_value_property"`
}

// ============================================================================
// Class descriptors (derived per class from a cached ontology)
// ============================================================================

// ClassDescriptor describes a resource class and its domain properties.
type ClassDescriptor struct {
	ID         string                        `json:"id"`
	Label      string                        `json:"label"`
	Comment    string                        `json:"comment,omitempty"`
	Properties map[string]PropertyDescriptor `json:"properties"`
}

// PropertyDescriptor is the schema metadata of one property of a class.
type PropertyDescriptor struct {
	Label               string      `json:"label"`
	Comment             string      `json:"comment,omitempty"`
	Cardinality         Cardinality `json:"cardinality"`
	GuiElement          string      `json:"gui_element,omitempty"`
	GuiAttributes       []string    `json:"gui_attributes,omitempty"`
	GuiOrder            *int        `json:"gui_order,omitempty"`
	SubjectType         string      `json:"subject_type,omitempty"`
	ObjectType          string      `json:"object_type,omitempty"`
	IsEditable          bool        `json:"is_editable"`
	IsLinkProperty      bool        `json:"is_link_property"`
	IsLinkValueProperty bool        `json:"is_link_value_property"`
}

// OrderedPropertyIRIs returns the property IRIs sorted by GUI order.
// Properties without an order come last; ties are broken by IRI.
func (d *ClassDescriptor) OrderedPropertyIRIs() []string {
	iris := make([]string, 0, len(d.Properties))
	for iri := range d.Properties {
		iris = append(iris, iri)
	}
	sort.Slice(iris, func(i, j int) bool {
		a, b := d.Properties[iris[i]].GuiOrder, d.Properties[iris[j]].GuiOrder
		switch {
		case a != nil && b != nil && *a != *b:
			return *a < *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return iris[i] < iris[j]
	})
	return iris
}
