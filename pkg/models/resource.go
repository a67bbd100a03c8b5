package models

import "sort"

// ============================================================================
// Raw resources as delivered by the Knora API
// ============================================================================

// Permission is the permission level of the current user on a resource or value.
type Permission string

const (
	PermissionRestrictedView Permission = "RV"
	PermissionView           Permission = "V"
	PermissionModify         Permission = "M"
	PermissionDelete         Permission = "D"
	PermissionChangeRights   Permission = "CR"
)

// CanEdit reports whether the permission allows modifying the resource.
func (p Permission) CanEdit() bool {
	switch p {
	case PermissionModify, PermissionDelete, PermissionChangeRights:
		return true
	}
	return false
}

// ValueKind tags the variant of a Value.
type ValueKind int

const (
	ValueKindText ValueKind = iota
	ValueKindList
	ValueKindLink
	ValueKindOther
)

func (k ValueKind) String() string {
	switch k {
	case ValueKindText:
		return "text"
	case ValueKindList:
		return "list"
	case ValueKindLink:
		return "link"
	default:
		return "other"
	}
}

// ValueBase holds the fields every value carries regardless of its kind.
type ValueBase struct {
	ID                string     // value IRI
	TypeIRI           string     // declared knora-api value type
	Comment           string     // empty when the value has no comment
	UserHasPermission Permission
	PropertyLabel     string // empty until resolved from the ontology
}

// Base returns the common value fields.
func (b *ValueBase) Base() *ValueBase { return b }

func (b *ValueBase) isValue() {}

// Value is one value of a resource property. The set of implementations is
// closed: *TextValue, *ListValue, *LinkValue and *OtherValue.
type Value interface {
	Kind() ValueKind
	Base() *ValueBase
	// String returns the display form of the value.
	String() string
	isValue()
}

// TextValue is a plain text value.
type TextValue struct {
	ValueBase
	Text string
}

func (v *TextValue) Kind() ValueKind { return ValueKindText }
func (v *TextValue) String() string  { return v.Text }

// ListValue points to a node of a controlled vocabulary list.
type ListValue struct {
	ValueBase
	NodeIRI   string
	NodeLabel string // empty until resolved from the list node cache
}

func (v *ListValue) Kind() ValueKind { return ValueKindList }
func (v *ListValue) String() string  { return v.NodeLabel }

// LinkValue references another resource. Incoming is set for the reverse
// direction (knora-api:hasIncomingLinkValue), where the linked resource is
// the source of the link.
type LinkValue struct {
	ValueBase
	LinkedResourceIRI   string
	LinkedResourceLabel string // empty unless the response embedded the linked resource
	Incoming            bool
}

func (v *LinkValue) Kind() ValueKind { return ValueKindLink }

// String returns the label of the linked resource when known, its IRI otherwise.
func (v *LinkValue) String() string {
	if v.LinkedResourceLabel != "" {
		return v.LinkedResourceLabel
	}
	return v.LinkedResourceIRI
}

// OtherValue is any value type the projection has no dedicated shape for
// (dates, integers, URIs, ...). Literal is its string form as sent by the API.
type OtherValue struct {
	ValueBase
	Literal string
}

func (v *OtherValue) Kind() ValueKind { return ValueKindOther }
func (v *OtherValue) String() string  { return v.Literal }

var (
	_ Value = (*TextValue)(nil)
	_ Value = (*ListValue)(nil)
	_ Value = (*LinkValue)(nil)
	_ Value = (*OtherValue)(nil)
)

// RawResource is a resource as returned by the backend, before projection.
type RawResource struct {
	ID                string
	Label             string
	ClassIRI          string
	ArkURL            string
	UserHasPermission Permission
	// Properties maps a property IRI to its values in response order.
	Properties map[string][]Value
}

// PropertyIRIs returns the property IRIs in sorted order, giving every
// projection a stable iteration order.
func (r *RawResource) PropertyIRIs() []string {
	iris := make([]string, 0, len(r.Properties))
	for iri := range r.Properties {
		iris = append(iris, iri)
	}
	sort.Strings(iris)
	return iris
}

// Values returns the values of a property, nil when the property is absent.
func (r *RawResource) Values(propertyIRI string) []Value {
	return r.Properties[propertyIRI]
}

// AddValue appends a value to a property, creating the property if needed.
func (r *RawResource) AddValue(propertyIRI string, v Value) {
	if r.Properties == nil {
		r.Properties = make(map[string][]Value)
	}
	r.Properties[propertyIRI] = append(r.Properties[propertyIRI], v)
}
