package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dasch-swiss/mls-app-ng/pkg/auth"
	"github.com/dasch-swiss/mls-app-ng/pkg/config"
	"github.com/dasch-swiss/mls-app-ng/pkg/knora"
	"github.com/dasch-swiss/mls-app-ng/pkg/models"
	"github.com/dasch-swiss/mls-app-ng/pkg/vocab"
)

// OntologyParam is the template parameter carrying the ontology prefix.
const OntologyParam = "ontology"

// LexiconService is the entry point of page-level consumers: it fetches
// resources, resolves their labels through the caches and projects them.
type LexiconService interface {
	// GetResource returns a resource with generically projected properties.
	GetResource(ctx context.Context, iri string) (*models.ResourceData, error)

	// GetLemma returns a resource with flat projected properties.
	GetLemma(ctx context.Context, iri string) (*models.LemmaData, error)

	// GetResInfo describes a resource class.
	GetResInfo(ctx context.Context, ontologyIRI, classIRI string) (*models.ClassDescriptor, error)

	GetOntology(ctx context.Context, ontologyIRI string) (*models.Ontology, error)
	GetListNode(ctx context.Context, nodeIRI string) (*models.ListNode, error)
	GetList(ctx context.Context, listIRI string) (*models.List, error)

	// GravsearchQuery runs a named query and lays the results out as rows
	// whose columns follow fields.
	GravsearchQuery(ctx context.Context, name string, params map[string]string, fields []string) ([]models.SearchRow, error)

	// GravsearchQueryCount returns the number of results of a named query.
	GravsearchQueryCount(ctx context.Context, name string, params map[string]string) (int, error)

	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	Logout(ctx context.Context) (*models.LogoutResult, error)
	Session() SessionState

	// MLSOntology returns the MLS ontology namespace, ending in '#'.
	MLSOntology() string
}

type lexiconService struct {
	cfg        *config.KnoraConfig
	client     knora.API
	ontologies OntologyCache
	lists      ListCache
	session    SessionState
	queries    QueryResolver
	logger     *zap.Logger
}

// NewLexiconService creates a LexiconService.
func NewLexiconService(
	cfg *config.KnoraConfig,
	client knora.API,
	ontologies OntologyCache,
	lists ListCache,
	session SessionState,
	queries QueryResolver,
	logger *zap.Logger,
) LexiconService {
	return &lexiconService{
		cfg:        cfg,
		client:     client,
		ontologies: ontologies,
		lists:      lists,
		session:    session,
		queries:    queries,
		logger:     logger.Named("lexicon"),
	}
}

var _ LexiconService = (*lexiconService)(nil)

// withSession attaches the session token, if any, to ctx.
func (s *lexiconService) withSession(ctx context.Context) context.Context {
	return auth.ContextWithToken(ctx, s.session.Token())
}

func (s *lexiconService) GetResource(ctx context.Context, iri string) (*models.ResourceData, error) {
	ctx = s.withSession(ctx)
	raw, err := s.client.GetResource(ctx, iri)
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	if err := s.enrich(ctx, raw); err != nil {
		return nil, err
	}
	return ProjectResource(raw), nil
}

func (s *lexiconService) GetLemma(ctx context.Context, iri string) (*models.LemmaData, error) {
	ctx = s.withSession(ctx)
	raw, err := s.client.GetResource(ctx, iri)
	if err != nil {
		return nil, fmt.Errorf("failed to get lemma: %w", err)
	}
	if err := s.enrich(ctx, raw); err != nil {
		return nil, err
	}
	return ProjectLemma(raw), nil
}

func (s *lexiconService) GetResInfo(ctx context.Context, ontologyIRI, classIRI string) (*models.ClassDescriptor, error) {
	return s.ontologies.GetClassDescriptor(s.withSession(ctx), ontologyIRI, classIRI)
}

func (s *lexiconService) GetOntology(ctx context.Context, ontologyIRI string) (*models.Ontology, error) {
	return s.ontologies.GetOntology(s.withSession(ctx), ontologyIRI)
}

func (s *lexiconService) GetListNode(ctx context.Context, nodeIRI string) (*models.ListNode, error) {
	return s.lists.GetListNode(s.withSession(ctx), nodeIRI)
}

func (s *lexiconService) GetList(ctx context.Context, listIRI string) (*models.List, error) {
	return s.lists.GetList(s.withSession(ctx), listIRI)
}

func (s *lexiconService) GravsearchQuery(ctx context.Context, name string, params map[string]string, fields []string) ([]models.SearchRow, error) {
	query, err := s.resolve(name, params)
	if err != nil {
		return nil, err
	}

	ctx = s.withSession(ctx)
	rows, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to run query %s: %w", name, err)
	}
	for _, raw := range rows {
		if err := s.enrichListValues(ctx, raw); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("Gravsearch query done", zap.String("query", name), zap.Int("rows", len(rows)))
	return ProjectSearchRows(rows, fields), nil
}

func (s *lexiconService) GravsearchQueryCount(ctx context.Context, name string, params map[string]string) (int, error) {
	query, err := s.resolve(name, params)
	if err != nil {
		return 0, err
	}

	count, err := s.client.SearchCount(s.withSession(ctx), query)
	if err != nil {
		return 0, fmt.Errorf("failed to count query %s: %w", name, err)
	}
	return count, nil
}

// resolve renders a query with the ontology prefix added to a copy of params.
func (s *lexiconService) resolve(name string, params map[string]string) (string, error) {
	withOntology := make(map[string]string, len(params)+1)
	for k, v := range params {
		withOntology[k] = v
	}
	withOntology[OntologyParam] = s.cfg.OntologyPrefix

	return s.queries.Resolve(name, withOntology)
}

func (s *lexiconService) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	return s.session.Login(ctx, email, password)
}

func (s *lexiconService) Logout(ctx context.Context) (*models.LogoutResult, error) {
	return s.session.Logout(ctx)
}

func (s *lexiconService) Session() SessionState {
	return s.session
}

func (s *lexiconService) MLSOntology() string {
	return s.cfg.MLSOntologyIRI()
}

// enrich fills in the labels the resource response does not carry: property
// labels from the ontology and list node labels from the list cache.
func (s *lexiconService) enrich(ctx context.Context, raw *models.RawResource) error {
	for _, prop := range raw.PropertyIRIs() {
		values := raw.Values(prop)
		if len(values) == 0 {
			continue
		}

		label, err := s.ontologies.PropertyLabel(ctx, prop)
		if err != nil {
			return fmt.Errorf("failed to resolve label of %s: %w", vocab.Short(prop), err)
		}
		for _, v := range values {
			if base := v.Base(); base.PropertyLabel == "" {
				base.PropertyLabel = label
			}
		}
	}
	return s.enrichListValues(ctx, raw)
}

func (s *lexiconService) enrichListValues(ctx context.Context, raw *models.RawResource) error {
	for _, prop := range raw.PropertyIRIs() {
		for _, v := range raw.Values(prop) {
			lv, ok := v.(*models.ListValue)
			if !ok || lv.NodeLabel != "" || lv.NodeIRI == "" {
				continue
			}
			node, err := s.lists.GetListNode(ctx, lv.NodeIRI)
			if err != nil {
				return fmt.Errorf("failed to resolve list node %s: %w", lv.NodeIRI, err)
			}
			lv.NodeLabel = node.Label
		}
	}
	return nil
}
