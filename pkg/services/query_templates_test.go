package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasch-swiss/mls-app-ng/pkg/apperrors"
)

const ontologyPrefix = "http://0.0.0.0:3333"

func TestQueryTemplates_BuiltinsResolve(t *testing.T) {
	q, err := NewQueryTemplates("")
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"article_query", "lemma_lexica", "lemmata_query", "lemmata_search", "lexica_query", "lexicon_lemmata"},
		q.Names())

	query, err := q.Resolve("lemmata_query", map[string]string{
		"ontology": ontologyPrefix,
		"start":    "A",
		"page":     "2",
	})
	require.NoError(t, err)
	assert.Contains(t, query, "PREFIX mls: <http://0.0.0.0:3333/ontology/0807/mls/v2#>")
	assert.Contains(t, query, `FILTER regex(?textStr, "^A", "i")`)
	assert.Contains(t, query, "OFFSET 2")
}

func TestQueryTemplates_IRIParameter(t *testing.T) {
	q, err := NewQueryTemplates("")
	require.NoError(t, err)

	query, err := q.Resolve("lemma_lexica", map[string]string{
		"ontology":  ontologyPrefix,
		"lemma_iri": "http://rdfh.ch/0807/lemma1",
	})
	require.NoError(t, err)
	assert.Contains(t, query, "<http://rdfh.ch/0807/lemma1>")

	_, err = q.Resolve("lemma_lexica", map[string]string{
		"ontology":  ontologyPrefix,
		"lemma_iri": "http://rdfh.ch/0807/x> . ?s ?p ?o",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestQueryTemplates_UnknownQuery(t *testing.T) {
	q, err := NewQueryTemplates("")
	require.NoError(t, err)

	_, err = q.Resolve("nonexistent", map[string]string{"ontology": ontologyPrefix})
	assert.ErrorIs(t, err, apperrors.ErrUnknownQuery)
}

func TestQueryTemplates_MissingParameter(t *testing.T) {
	q, err := NewQueryTemplates("")
	require.NoError(t, err)

	_, err = q.Resolve("lemmata_query", map[string]string{"ontology": ontologyPrefix, "page": "0"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestQueryTemplates_InvalidPage(t *testing.T) {
	q, err := NewQueryTemplates("")
	require.NoError(t, err)

	for _, page := range []string{"-1", "x", ""} {
		_, err = q.Resolve("lexica_query", map[string]string{"ontology": ontologyPrefix, "page": page})
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument, "page %q", page)
	}
}

func TestQueryTemplates_SearchTermIsMatchedLiterally(t *testing.T) {
	q, err := NewQueryTemplates("")
	require.NoError(t, err)

	query, err := q.Resolve("lemmata_search", map[string]string{
		"ontology":   ontologyPrefix,
		"searchterm": `Smith (1.`,
		"page":       "0",
	})
	require.NoError(t, err)
	assert.Contains(t, query, `FILTER regex(?textStr, "Smith \\(1\\.", "i")`)

	query, err = q.Resolve("lemmata_query", map[string]string{
		"ontology": ontologyPrefix,
		"start":    `a"b`,
		"page":     "0",
	})
	require.NoError(t, err)
	assert.Contains(t, query, `FILTER regex(?textStr, "^a\"b", "i")`)
}

func TestEscapeRegex(t *testing.T) {
	assert.Equal(t, `Goethe`, escapeRegex("Goethe"))
	assert.Equal(t, `\\[a-z\\]\\*`, escapeRegex("[a-z]*"))
	assert.Equal(t, `\\\\`, escapeRegex(`\`))
}

func TestEscapeLiteral(t *testing.T) {
	assert.Equal(t, `Goethe`, escapeLiteral("Goethe"))
	assert.Equal(t, `say \"hi\"`, escapeLiteral(`say "hi"`))
	assert.Equal(t, `a\\b\nc`, escapeLiteral("a\\b\nc"))
}

func TestQueryTemplates_OverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
lexica_query: "SELECT {{.ontology}} {{page .page}}"
custom: "custom {{esc .term}}"
`), 0o600))

	q, err := NewQueryTemplates(path)
	require.NoError(t, err)

	query, err := q.Resolve("lexica_query", map[string]string{"ontology": "o", "page": "1"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT o 1", query)

	query, err = q.Resolve("custom", map[string]string{"term": `"x"`})
	require.NoError(t, err)
	assert.Equal(t, `custom \"x\"`, query)

	_, err = q.Resolve("lemmata_query", map[string]string{"ontology": "o", "start": "A", "page": "0"})
	assert.NoError(t, err, "built-ins not overridden remain available")
}

func TestQueryTemplates_InvalidOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`broken: "{{.x"`), 0o600))

	_, err := NewQueryTemplates(path)
	assert.Error(t, err)

	_, err = NewQueryTemplates(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
