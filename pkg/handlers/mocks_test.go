package handlers

import (
	"context"
	"sync"

	"github.com/dasch-swiss/mls-app-ng/pkg/models"
	"github.com/dasch-swiss/mls-app-ng/pkg/services"
)

// mockLexiconService is a configurable mock for all handler tests.
type mockLexiconService struct {
	resource *models.ResourceData
	lemma    *models.LemmaData
	desc     *models.ClassDescriptor
	ontology *models.Ontology
	node     *models.ListNode
	list     *models.List
	rows     []models.SearchRow
	count    int
	login    *models.LoginResult
	logout   *models.LogoutResult
	session  *mockSession
	err      error
	countErr error

	// Recorded arguments
	lastIRI      string
	lastOntology string
	lastQuery    string
	lastParams   map[string]string
	lastFields   []string
	countCalls   int
}

var _ services.LexiconService = (*mockLexiconService)(nil)

func (m *mockLexiconService) GetResource(ctx context.Context, iri string) (*models.ResourceData, error) {
	m.lastIRI = iri
	if m.err != nil {
		return nil, m.err
	}
	return m.resource, nil
}

func (m *mockLexiconService) GetLemma(ctx context.Context, iri string) (*models.LemmaData, error) {
	m.lastIRI = iri
	if m.err != nil {
		return nil, m.err
	}
	return m.lemma, nil
}

func (m *mockLexiconService) GetResInfo(ctx context.Context, ontologyIRI, classIRI string) (*models.ClassDescriptor, error) {
	m.lastOntology = ontologyIRI
	m.lastIRI = classIRI
	if m.err != nil {
		return nil, m.err
	}
	return m.desc, nil
}

func (m *mockLexiconService) GetOntology(ctx context.Context, ontologyIRI string) (*models.Ontology, error) {
	m.lastOntology = ontologyIRI
	if m.err != nil {
		return nil, m.err
	}
	return m.ontology, nil
}

func (m *mockLexiconService) GetListNode(ctx context.Context, nodeIRI string) (*models.ListNode, error) {
	m.lastIRI = nodeIRI
	if m.err != nil {
		return nil, m.err
	}
	return m.node, nil
}

func (m *mockLexiconService) GetList(ctx context.Context, listIRI string) (*models.List, error) {
	m.lastIRI = listIRI
	if m.err != nil {
		return nil, m.err
	}
	return m.list, nil
}

func (m *mockLexiconService) GravsearchQuery(ctx context.Context, name string, params map[string]string, fields []string) ([]models.SearchRow, error) {
	m.lastQuery = name
	m.lastParams = params
	m.lastFields = fields
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

func (m *mockLexiconService) GravsearchQueryCount(ctx context.Context, name string, params map[string]string) (int, error) {
	m.countCalls++
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.count, nil
}

func (m *mockLexiconService) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.login, nil
}

func (m *mockLexiconService) Logout(ctx context.Context) (*models.LogoutResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.logout, nil
}

func (m *mockLexiconService) Session() services.SessionState {
	return m.session
}

func (m *mockLexiconService) MLSOntology() string {
	return "http://0.0.0.0:3333/ontology/0807/mls/v2#"
}

// mockSession is a SessionState whose status is set by the test.
type mockSession struct {
	mu     sync.Mutex
	status models.SessionStatus
	subs   map[int]func(models.SessionStatus)
	nextID int
}

var _ services.SessionState = (*mockSession)(nil)

func newMockSession() *mockSession {
	return &mockSession{subs: make(map[int]func(models.SessionStatus))}
}

func (m *mockSession) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	return nil, nil
}

func (m *mockSession) Logout(ctx context.Context) (*models.LogoutResult, error) {
	return nil, nil
}

func (m *mockSession) Status() models.SessionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *mockSession) Token() string { return "" }

func (m *mockSession) Subscribe(fn func(models.SessionStatus)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	status := m.status
	m.mu.Unlock()

	fn(status)
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// publish sets the status and delivers it to every subscriber.
func (m *mockSession) publish(status models.SessionStatus) {
	m.mu.Lock()
	m.status = status
	subs := make([]func(models.SessionStatus), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(status)
	}
}

func (m *mockSession) subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}
