// Package vocab holds the IRIs of the vocabularies that Knora API v2 responses
// are expressed in.
package vocab

import (
	"strings"

	"github.com/cayleygraph/quad/voc"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/rdfs"
)

// Namespaces
const (
	KnoraAPI     = "http://api.knora.org/ontology/knora-api/v2#"
	SalsahGUI    = "http://api.knora.org/ontology/salsah-gui/v2#"
	OWL          = "http://www.w3.org/2002/07/owl#"
	XSD          = "http://www.w3.org/2001/XMLSchema#"
	SchemaOrg    = "http://schema.org/"
	RDF          = rdf.NS
	RDFS         = rdfs.NS
	KnoraAPIBase = "http://api.knora.org/ontology/knora-api/v2"
)

// knora-api value types
const (
	TextValue     = KnoraAPI + "TextValue"
	ListValue     = KnoraAPI + "ListValue"
	LinkValue     = KnoraAPI + "LinkValue"
	IntValue      = KnoraAPI + "IntValue"
	BooleanValue  = KnoraAPI + "BooleanValue"
	DateValue     = KnoraAPI + "DateValue"
	UriValue      = KnoraAPI + "UriValue"
	DecimalValue  = KnoraAPI + "DecimalValue"
	GeonameValue  = KnoraAPI + "GeonameValue"
	ColorValue    = KnoraAPI + "ColorValue"
	IntervalValue = KnoraAPI + "IntervalValue"
)

// knora-api properties
const (
	ValueAsString         = KnoraAPI + "valueAsString"
	ValueHasComment       = KnoraAPI + "valueHasComment"
	UserHasPermission     = KnoraAPI + "userHasPermission"
	ArkURL                = KnoraAPI + "arkUrl"
	ListValueAsListNode   = KnoraAPI + "listValueAsListNode"
	LinkValueHasTarget    = KnoraAPI + "linkValueHasTarget"
	LinkValueHasTargetIri = KnoraAPI + "linkValueHasTargetIri"
	LinkValueHasSource    = KnoraAPI + "linkValueHasSource"
	LinkValueHasSourceIri = KnoraAPI + "linkValueHasSourceIri"
	HasIncomingLinkValue  = KnoraAPI + "hasIncomingLinkValue"
	IntValueAsInt         = KnoraAPI + "intValueAsInt"
	BooleanValueAsBoolean = KnoraAPI + "booleanValueAsBoolean"
	DecimalValueAsDecimal = KnoraAPI + "decimalValueAsDecimal"
	UriValueAsUri         = KnoraAPI + "uriValueAsUri"
	SubjectType           = KnoraAPI + "subjectType"
	ObjectType            = KnoraAPI + "objectType"
	IsEditable            = KnoraAPI + "isEditable"
	IsLinkProperty        = KnoraAPI + "isLinkProperty"
	IsLinkValueProperty   = KnoraAPI + "isLinkValueProperty"
	IsRootNode            = KnoraAPI + "isRootNode"
	HasRootNode           = KnoraAPI + "hasRootNode"
	HasSubListNode        = KnoraAPI + "hasSubListNode"
	ListNodePosition      = KnoraAPI + "listNodePosition"
	Error                 = KnoraAPI + "error"
	NumberOfItems         = SchemaOrg + "numberOfItems"
	GuiElement            = SalsahGUI + "guiElement"
	GuiAttribute          = SalsahGUI + "guiAttribute"
	GuiOrder              = SalsahGUI + "guiOrder"
	OwlOnProperty         = OWL + "onProperty"
	OwlCardinality        = OWL + "cardinality"
	OwlMinCardinality     = OWL + "minCardinality"
	OwlMaxCardinality     = OWL + "maxCardinality"
	OwlRestriction        = OWL + "Restriction"
	OwlClass              = OWL + "Class"
	OwlObjectProperty     = OWL + "ObjectProperty"
	OwlDatatypeProperty   = OWL + "DatatypeProperty"
	OwlAnnotationProperty = OWL + "AnnotationProperty"
	RDFSLabel             = RDFS + "label"
	RDFSComment           = RDFS + "comment"
	RDFSSubClassOf        = RDFS + "subClassOf"
	RDFSSubPropertyOf     = RDFS + "subPropertyOf"
	KnoraAPIResourceClass = KnoraAPI + "Resource"
	KnoraAPIListNodeClass = KnoraAPI + "ListNode"
)

func init() {
	voc.Register(voc.Namespace{Full: KnoraAPI, Prefix: "knora-api:"})
	voc.Register(voc.Namespace{Full: SalsahGUI, Prefix: "salsah-gui:"})
	voc.Register(voc.Namespace{Full: OWL, Prefix: "owl:"})
}

// reservedNamespaces are the structural vocabularies whose properties never
// appear in a class descriptor.
var reservedNamespaces = []string{
	strings.TrimSuffix(KnoraAPI, "#"),
	strings.TrimSuffix(RDFS, "#"),
}

// OntologyOf returns the ontology identifier an entity IRI belongs to: the
// part before '#', or the IRI itself when it has no fragment.
func OntologyOf(iri string) string {
	if i := strings.Index(iri, "#"); i >= 0 {
		return iri[:i]
	}
	return iri
}

// IsReserved reports whether a property IRI belongs to the knora-api or rdfs
// base vocabulary.
func IsReserved(propertyIRI string) bool {
	ns := OntologyOf(propertyIRI)
	for _, reserved := range reservedNamespaces {
		if ns == reserved {
			return true
		}
	}
	return false
}

// Short abbreviates an IRI with a registered prefix, for logs.
func Short(iri string) string {
	return voc.ShortIRI(iri)
}
