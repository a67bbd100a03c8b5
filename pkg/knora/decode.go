package knora

import (
	"fmt"

	"github.com/dasch-swiss/mls-app-ng/pkg/models"
	"github.com/dasch-swiss/mls-app-ng/pkg/vocab"
)

// literalKeys are tried in order for the string form of values that have no
// dedicated shape and no knora-api:valueAsString.
var literalKeys = []string{
	vocab.IntValueAsInt,
	vocab.DecimalValueAsDecimal,
	vocab.BooleanValueAsBoolean,
	vocab.UriValueAsUri,
}

// valueMetadata are value properties that never carry the value itself.
var valueMetadata = map[string]bool{
	vocab.UserHasPermission:              true,
	vocab.ValueHasComment:                true,
	vocab.ArkURL:                         true,
	vocab.KnoraAPI + "hasPermissions":    true,
	vocab.KnoraAPI + "valueCreationDate": true,
	vocab.KnoraAPI + "valueHasUUID":      true,
	vocab.KnoraAPI + "versionArkUrl":     true,
	vocab.KnoraAPI + "attachedToUser":    true,
}

// decodeResources turns expanded resource nodes into raw resources.
func decodeResources(nodes []node) []*models.RawResource {
	out := make([]*models.RawResource, 0, len(nodes))
	for _, n := range nodes {
		if n.id() == "" {
			continue
		}
		out = append(out, decodeResource(n))
	}
	return out
}

func decodeResource(n node) *models.RawResource {
	res := &models.RawResource{
		ID:                n.id(),
		Label:             n.str(vocab.RDFSLabel),
		ClassIRI:          n.firstType(),
		ArkURL:            n.str(vocab.ArkURL),
		UserHasPermission: models.Permission(n.str(vocab.UserHasPermission)),
		Properties:        make(map[string][]models.Value),
	}

	for _, prop := range n.keys() {
		for _, vn := range n.nodes(prop) {
			// Structural references such as attachedToProject are untyped;
			// only typed node objects are property values.
			if vn.firstType() == "" {
				continue
			}
			res.AddValue(prop, decodeValue(vn))
		}
	}
	return res
}

func decodeValue(n node) models.Value {
	base := models.ValueBase{
		ID:                n.id(),
		TypeIRI:           n.firstType(),
		Comment:           n.str(vocab.ValueHasComment),
		UserHasPermission: models.Permission(n.str(vocab.UserHasPermission)),
	}

	switch base.TypeIRI {
	case vocab.TextValue:
		return &models.TextValue{ValueBase: base, Text: n.str(vocab.ValueAsString)}

	case vocab.ListValue:
		v := &models.ListValue{ValueBase: base, NodeIRI: n.ref(vocab.ListValueAsListNode)}
		if embedded := n.nodes(vocab.ListValueAsListNode); len(embedded) > 0 {
			v.NodeLabel = embedded[0].str(vocab.RDFSLabel)
		}
		return v

	case vocab.LinkValue:
		return decodeLinkValue(base, n)
	}

	return &models.OtherValue{ValueBase: base, Literal: otherLiteral(n)}
}

func decodeLinkValue(base models.ValueBase, n node) *models.LinkValue {
	v := &models.LinkValue{ValueBase: base}

	targetProp, iriProp := vocab.LinkValueHasTarget, vocab.LinkValueHasTargetIri
	if _, ok := n[vocab.LinkValueHasSource]; ok {
		targetProp, iriProp, v.Incoming = vocab.LinkValueHasSource, vocab.LinkValueHasSourceIri, true
	} else if _, ok := n[vocab.LinkValueHasSourceIri]; ok {
		targetProp, iriProp, v.Incoming = vocab.LinkValueHasSource, vocab.LinkValueHasSourceIri, true
	}

	if embedded := n.nodes(targetProp); len(embedded) > 0 {
		v.LinkedResourceIRI = embedded[0].id()
		v.LinkedResourceLabel = embedded[0].str(vocab.RDFSLabel)
	}
	if v.LinkedResourceIRI == "" {
		v.LinkedResourceIRI = n.ref(iriProp)
	}
	return v
}

func otherLiteral(n node) string {
	if s, ok := n.literal(vocab.ValueAsString); ok {
		return s
	}
	for _, key := range literalKeys {
		if s, ok := n.literal(key); ok {
			return s
		}
	}
	for _, key := range n.keys() {
		if valueMetadata[key] {
			continue
		}
		if s, ok := n.literal(key); ok {
			return s
		}
	}
	return ""
}

// ============================================================================
// Ontologies
// ============================================================================

// decodeOntology builds an ontology from an expanded allentities response.
// The entities are either nested in the ontology node's @graph or, when the
// response carries no ontology metadata, are the top-level nodes.
func decodeOntology(iri string, nodes []node) (*models.Ontology, error) {
	ont := &models.Ontology{
		IRI:        iri,
		Classes:    make(map[string]*models.ClassDefinition),
		Properties: make(map[string]*models.PropertyDefinition),
	}

	entities := nodes
	for _, n := range nodes {
		if graph := n.nodes("@graph"); len(graph) > 0 {
			ont.Label = n.str(vocab.RDFSLabel)
			entities = graph
			break
		}
	}

	for _, e := range entities {
		switch {
		case e.hasType(vocab.OwlClass):
			class, err := decodeClass(e)
			if err != nil {
				return nil, err
			}
			ont.Classes[class.IRI] = class
		case e.hasType(vocab.OwlObjectProperty), e.hasType(vocab.OwlDatatypeProperty), e.hasType(vocab.OwlAnnotationProperty):
			prop := decodeProperty(e)
			ont.Properties[prop.IRI] = prop
		}
	}
	return ont, nil
}

func decodeClass(n node) (*models.ClassDefinition, error) {
	class := &models.ClassDefinition{
		IRI:     n.id(),
		Label:   n.langLiteral(vocab.RDFSLabel, "en"),
		Comment: n.langLiteral(vocab.RDFSComment, "en"),
	}

	for _, sup := range n.nodes(vocab.RDFSSubClassOf) {
		if !sup.hasType(vocab.OwlRestriction) {
			if id := sup.id(); id != "" {
				class.SubClassOf = append(class.SubClassOf, id)
			}
			continue
		}

		card, err := restrictionCardinality(sup)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", class.IRI, err)
		}
		cc := models.ClassCardinality{
			PropertyIRI: sup.ref(vocab.OwlOnProperty),
			Cardinality: card,
		}
		if order, ok := sup.integer(vocab.GuiOrder); ok {
			cc.GuiOrder = &order
		}
		class.Cardinalities = append(class.Cardinalities, cc)
	}
	return class, nil
}

// restrictionCardinality maps an owl:Restriction to one of the four supported
// cardinalities.
func restrictionCardinality(r node) (models.Cardinality, error) {
	if n, ok := r.integer(vocab.OwlCardinality); ok && n == 1 {
		return models.CardinalityExactlyOne, nil
	}
	if n, ok := r.integer(vocab.OwlMaxCardinality); ok && n == 1 {
		return models.CardinalityZeroOrOne, nil
	}
	if n, ok := r.integer(vocab.OwlMinCardinality); ok {
		switch n {
		case 0:
			return models.CardinalityZeroOrMany, nil
		case 1:
			return models.CardinalityOneOrMany, nil
		}
	}
	return 0, fmt.Errorf("unsupported cardinality restriction on %s", r.ref(vocab.OwlOnProperty))
}

func decodeProperty(n node) *models.PropertyDefinition {
	return &models.PropertyDefinition{
		IRI:                 n.id(),
		Label:               n.langLiteral(vocab.RDFSLabel, "en"),
		Comment:             n.langLiteral(vocab.RDFSComment, "en"),
		SubjectType:         n.ref(vocab.SubjectType),
		ObjectType:          n.ref(vocab.ObjectType),
		GuiElement:          n.ref(vocab.GuiElement),
		GuiAttributes:       n.literals(vocab.GuiAttribute),
		SubPropertyOf:       n.refs(vocab.RDFSSubPropertyOf),
		IsEditable:          n.boolean(vocab.IsEditable),
		IsLinkProperty:      n.boolean(vocab.IsLinkProperty),
		IsLinkValueProperty: n.boolean(vocab.IsLinkValueProperty),
	}
}

// ============================================================================
// List nodes
// ============================================================================

func decodeListNode(n node) *models.ListNode {
	ln := &models.ListNode{
		IRI:         n.id(),
		Label:       n.str(vocab.RDFSLabel),
		Comment:     n.str(vocab.RDFSComment),
		IsRootNode:  n.boolean(vocab.IsRootNode),
		RootNodeIRI: n.ref(vocab.HasRootNode),
	}
	if pos, ok := n.integer(vocab.ListNodePosition); ok {
		ln.Position = pos
	}
	for _, child := range n.nodes(vocab.HasSubListNode) {
		ln.Children = append(ln.Children, decodeListNode(child))
	}
	return ln
}
