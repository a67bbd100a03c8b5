package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/dasch-swiss/mls-app-ng/pkg/apperrors"
	"github.com/dasch-swiss/mls-app-ng/pkg/knora"
	"github.com/dasch-swiss/mls-app-ng/pkg/models"
	"github.com/dasch-swiss/mls-app-ng/pkg/vocab"
)

// OntologyCache memoizes ontologies per IRI and derives class descriptors from them.
type OntologyCache interface {
	// GetOntology returns the ontology, fetching it once per process.
	GetOntology(ctx context.Context, ontologyIRI string) (*models.Ontology, error)

	// GetClassDescriptor describes the domain properties of a class. Properties
	// of the knora-api and rdfs vocabularies are left out. A class or property
	// missing from the ontology is an *apperrors.SchemaResolutionError.
	GetClassDescriptor(ctx context.Context, ontologyIRI, classIRI string) (*models.ClassDescriptor, error)

	// PropertyLabel returns the label of a property from its ontology, empty
	// when the ontology has no such property.
	PropertyLabel(ctx context.Context, propertyIRI string) (string, error)
}

type ontologyCache struct {
	client knora.API
	memo   *memo[*models.Ontology]
	logger *zap.Logger
}

// NewOntologyCache creates an OntologyCache backed by the Knora API.
func NewOntologyCache(client knora.API, logger *zap.Logger) OntologyCache {
	logger = logger.Named("ontology_cache")
	return &ontologyCache{
		client: client,
		memo:   newMemo[*models.Ontology]("ontology", logger),
		logger: logger,
	}
}

var _ OntologyCache = (*ontologyCache)(nil)

func (c *ontologyCache) GetOntology(ctx context.Context, ontologyIRI string) (*models.Ontology, error) {
	return c.memo.get(ctx, ontologyIRI, func(ctx context.Context) (*models.Ontology, error) {
		return c.client.GetOntology(ctx, ontologyIRI)
	})
}

func (c *ontologyCache) GetClassDescriptor(ctx context.Context, ontologyIRI, classIRI string) (*models.ClassDescriptor, error) {
	ont, err := c.GetOntology(ctx, ontologyIRI)
	if err != nil {
		return nil, &apperrors.SchemaResolutionError{OntologyIRI: ontologyIRI, ClassIRI: classIRI, Err: err}
	}

	class, ok := ont.Classes[classIRI]
	if !ok {
		return nil, &apperrors.SchemaResolutionError{OntologyIRI: ontologyIRI, ClassIRI: classIRI, Err: apperrors.ErrNotFound}
	}

	desc := &models.ClassDescriptor{
		ID:         class.IRI,
		Label:      class.Label,
		Comment:    class.Comment,
		Properties: make(map[string]models.PropertyDescriptor, len(class.Cardinalities)),
	}

	for _, cc := range class.Cardinalities {
		if vocab.IsReserved(cc.PropertyIRI) {
			continue
		}

		def, err := c.propertyDefinition(ctx, ont, cc.PropertyIRI)
		if err != nil {
			return nil, &apperrors.SchemaResolutionError{
				OntologyIRI: ontologyIRI,
				ClassIRI:    classIRI,
				PropertyIRI: cc.PropertyIRI,
				Err:         err,
			}
		}

		desc.Properties[cc.PropertyIRI] = models.PropertyDescriptor{
			Label:               def.Label,
			Comment:             def.Comment,
			Cardinality:         cc.Cardinality,
			GuiElement:          def.GuiElement,
			GuiAttributes:       def.GuiAttributes,
			GuiOrder:            cc.GuiOrder,
			SubjectType:         def.SubjectType,
			ObjectType:          def.ObjectType,
			IsEditable:          def.IsEditable,
			IsLinkProperty:      def.IsLinkProperty,
			IsLinkValueProperty: def.IsLinkValueProperty,
		}
	}

	c.logger.Debug("Built class descriptor",
		zap.String("class", vocab.Short(classIRI)),
		zap.Int("properties", len(desc.Properties)))

	return desc, nil
}

// propertyDefinition finds a property in the class's ontology, or in the
// ontology the property belongs to when a class uses a foreign property.
func (c *ontologyCache) propertyDefinition(ctx context.Context, ont *models.Ontology, propertyIRI string) (*models.PropertyDefinition, error) {
	if def, ok := ont.Properties[propertyIRI]; ok {
		return def, nil
	}

	owner := vocab.OntologyOf(propertyIRI)
	if owner == ont.IRI {
		return nil, apperrors.ErrNotFound
	}
	foreign, err := c.GetOntology(ctx, owner)
	if err != nil {
		return nil, err
	}
	if def, ok := foreign.Properties[propertyIRI]; ok {
		return def, nil
	}
	return nil, apperrors.ErrNotFound
}

func (c *ontologyCache) PropertyLabel(ctx context.Context, propertyIRI string) (string, error) {
	ont, err := c.GetOntology(ctx, vocab.OntologyOf(propertyIRI))
	if err != nil {
		return "", err
	}
	if def, ok := ont.Properties[propertyIRI]; ok {
		return def.Label, nil
	}
	return "", nil
}
