package models

// ============================================================================
// Projected, UI-facing shapes
// ============================================================================

// PropertyRecord is one property of a resource in the generic projection.
// Implementations are *PropertyData and *ListPropertyData.
type PropertyRecord interface {
	Data() *PropertyData
}

// PropertyData is the generic property shape. Values, IDs, Comments and
// Permissions are index-aligned with the source values of the property.
type PropertyData struct {
	PropName    string       `json:"propname"`
	Label       string       `json:"label"`
	Values      []string     `json:"values"`
	IDs         []string     `json:"ids"`
	Comments    []string     `json:"comments"`
	Permissions []Permission `json:"permissions"`
}

// Data returns the record itself.
func (p *PropertyData) Data() *PropertyData { return p }

// Len returns the number of values of the record.
func (p *PropertyData) Len() int { return len(p.Values) }

// ListPropertyData is the shape of list valued properties. NodeIRIs is
// index-aligned with Values.
type ListPropertyData struct {
	PropertyData
	NodeIRIs []string `json:"node_iris"`
}

var (
	_ PropertyRecord = (*PropertyData)(nil)
	_ PropertyRecord = (*ListPropertyData)(nil)
)

// FlatProperty is a property in the flat projection.
type FlatProperty struct {
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// FlatPropertyMap maps a property IRI to its label and values.
type FlatPropertyMap map[string]FlatProperty

// Values returns the values of a property, nil when absent.
func (m FlatPropertyMap) Values(propertyIRI string) []string {
	return m[propertyIRI].Values
}

// First returns the first value of a property.
func (m FlatPropertyMap) First(propertyIRI string) (string, bool) {
	values := m[propertyIRI].Values
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// ResourceData is a resource with its generically projected properties.
type ResourceData struct {
	ID         string           `json:"id"`
	Label      string           `json:"label"`
	Permission Permission       `json:"permission"`
	ArkURL     string           `json:"ark_url,omitempty"`
	Properties []PropertyRecord `json:"properties"`
}

// CanEdit reports whether the current user may modify the resource.
func (r *ResourceData) CanEdit() bool { return r.Permission.CanEdit() }

// LemmaData is a resource of a known class with flat projected properties.
type LemmaData struct {
	ID         string          `json:"id"`
	Label      string          `json:"label"`
	Permission Permission      `json:"permission"`
	ArkURL     string          `json:"ark_url,omitempty"`
	Properties FlatPropertyMap `json:"properties"`
}

// CanEdit reports whether the current user may modify the lemma.
func (l *LemmaData) CanEdit() bool { return l.Permission.CanEdit() }

// SearchRow is one row of a search result. Cells are nil where the field was
// not found on the resource.
type SearchRow []*string

// Strings returns the row with holes replaced by the empty string.
func (r SearchRow) Strings() []string {
	out := make([]string, len(r))
	for i, cell := range r {
		if cell != nil {
			out[i] = *cell
		}
	}
	return out
}

// SearchResult is a page of search rows together with the total hit count.
type SearchResult struct {
	Count int         `json:"count"`
	Rows  []SearchRow `json:"rows"`
}
