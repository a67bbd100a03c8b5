package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dasch-swiss/mls-app-ng/pkg/apperrors"
	"github.com/dasch-swiss/mls-app-ng/pkg/auth"
	"github.com/dasch-swiss/mls-app-ng/pkg/knora"
	"github.com/dasch-swiss/mls-app-ng/pkg/models"
)

// mockKnora is a configurable knora.API for service tests. Lookups by IRI
// return apperrors.ErrNotFound when the map has no entry. When gate is set,
// ontology and list fetches block until it is closed.
type mockKnora struct {
	resources  map[string]*models.RawResource
	ontologies map[string]*models.Ontology
	nodes      map[string]*models.ListNode
	lists      map[string]*models.List

	searchResult []*models.RawResource
	searchCount  int
	searchErr    error

	loginToken string
	loginErr   error
	logoutMsg  string
	logoutErr  error

	gate chan struct{}
	// ontologyErr, when set, fails every ontology fetch.
	ontologyErr error

	ontologyCalls atomic.Int32
	nodeCalls     atomic.Int32
	listCalls     atomic.Int32
	loginCalls    atomic.Int32

	mu         sync.Mutex
	queries    []string
	lastTokens []string
}

var _ knora.API = (*mockKnora)(nil)

func (m *mockKnora) recordToken(ctx context.Context) {
	token, _ := auth.GetToken(ctx)
	m.mu.Lock()
	m.lastTokens = append(m.lastTokens, token)
	m.mu.Unlock()
}

func (m *mockKnora) tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lastTokens...)
}

func (m *mockKnora) wait() {
	if m.gate != nil {
		<-m.gate
	}
}

func (m *mockKnora) GetResource(ctx context.Context, iri string) (*models.RawResource, error) {
	m.recordToken(ctx)
	if res, ok := m.resources[iri]; ok {
		return res, nil
	}
	return nil, &apperrors.UpstreamError{Op: "getResource", StatusCode: 404, Payload: "resource not found"}
}

func (m *mockKnora) GetOntology(ctx context.Context, iri string) (*models.Ontology, error) {
	m.ontologyCalls.Add(1)
	m.recordToken(ctx)
	m.wait()
	if m.ontologyErr != nil {
		return nil, m.ontologyErr
	}
	if ont, ok := m.ontologies[iri]; ok {
		return ont, nil
	}
	return nil, &apperrors.UpstreamError{Op: "getOntology", StatusCode: 404, Payload: "ontology not found"}
}

func (m *mockKnora) Search(ctx context.Context, query string) ([]*models.RawResource, error) {
	m.recordToken(ctx)
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResult, nil
}

func (m *mockKnora) SearchCount(ctx context.Context, query string) (int, error) {
	m.recordToken(ctx)
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if m.searchErr != nil {
		return 0, m.searchErr
	}
	return m.searchCount, nil
}

func (m *mockKnora) Login(ctx context.Context, identityKind, identity, secret string) (string, error) {
	m.loginCalls.Add(1)
	if m.loginErr != nil {
		return "", m.loginErr
	}
	return m.loginToken, nil
}

func (m *mockKnora) Logout(ctx context.Context) (string, error) {
	m.recordToken(ctx)
	if m.logoutErr != nil {
		return "", m.logoutErr
	}
	return m.logoutMsg, nil
}

func (m *mockKnora) GetListNode(ctx context.Context, iri string) (*models.ListNode, error) {
	m.nodeCalls.Add(1)
	m.wait()
	if node, ok := m.nodes[iri]; ok {
		return node, nil
	}
	return nil, &apperrors.UpstreamError{Op: "getListNode", StatusCode: 404, Payload: "node not found"}
}

func (m *mockKnora) GetList(ctx context.Context, iri string) (*models.List, error) {
	m.listCalls.Add(1)
	m.wait()
	if list, ok := m.lists[iri]; ok {
		return list, nil
	}
	return nil, &apperrors.UpstreamError{Op: "getList", StatusCode: 404, Payload: "list not found"}
}
