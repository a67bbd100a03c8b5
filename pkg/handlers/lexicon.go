package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/dasch-swiss/mls-app-ng/pkg/models"
	"github.com/dasch-swiss/mls-app-ng/pkg/services"
	"github.com/dasch-swiss/mls-app-ng/pkg/vocab"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// SearchRequest for POST /api/search/{query}
type SearchRequest struct {
	Params map[string]string `json:"params"`
	Fields []string          `json:"fields"`
	// SkipCount leaves out the count query.
	SkipCount bool `json:"skip_count,omitempty"`
}

// SearchResponse for POST /api/search/{query}
type SearchResponse struct {
	Count *int               `json:"count,omitempty"`
	Rows  []models.SearchRow `json:"rows"`
}

// ============================================================================
// Handler
// ============================================================================

// LexiconHandler serves projected resources, schema information and searches.
type LexiconHandler struct {
	lexicon services.LexiconService
	logger  *zap.Logger
}

// NewLexiconHandler creates a new lexicon handler.
func NewLexiconHandler(lexicon services.LexiconService, logger *zap.Logger) *LexiconHandler {
	return &LexiconHandler{
		lexicon: lexicon,
		logger:  logger.Named("lexicon_handler"),
	}
}

// RegisterRoutes registers the lexicon handler's routes on the given mux.
// IRIs in paths are expected percent-encoded as a single segment.
func (h *LexiconHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/resources/{iri}", h.GetResource)
	mux.HandleFunc("GET /api/lemmata/{iri}", h.GetLemma)
	mux.HandleFunc("GET /api/resinfo", h.GetResInfo)
	mux.HandleFunc("GET /api/ontologies", h.GetOntology)
	mux.HandleFunc("GET /api/lists/{iri}", h.GetList)
	mux.HandleFunc("GET /api/nodes/{iri}", h.GetListNode)
	mux.HandleFunc("POST /api/search/{query}", h.Search)
}

// GetResource handles GET /api/resources/{iri}
func (h *LexiconHandler) GetResource(w http.ResponseWriter, r *http.Request) {
	res, err := h.lexicon.GetResource(r.Context(), r.PathValue("iri"))
	if err != nil {
		writeServiceError(w, r, h.logger, "get_resource", err)
		return
	}
	writeData(w, h.logger, res)
}

// GetLemma handles GET /api/lemmata/{iri}
func (h *LexiconHandler) GetLemma(w http.ResponseWriter, r *http.Request) {
	lemma, err := h.lexicon.GetLemma(r.Context(), r.PathValue("iri"))
	if err != nil {
		writeServiceError(w, r, h.logger, "get_lemma", err)
		return
	}
	writeData(w, h.logger, lemma)
}

// GetResInfo handles GET /api/resinfo?ontology=&class=
// The ontology defaults to the MLS project ontology.
func (h *LexiconHandler) GetResInfo(w http.ResponseWriter, r *http.Request) {
	classIRI := r.URL.Query().Get("class")
	if classIRI == "" {
		h.writeBadRequest(w, "class is required")
		return
	}
	ontologyIRI := r.URL.Query().Get("ontology")
	if ontologyIRI == "" {
		ontologyIRI = vocab.OntologyOf(h.lexicon.MLSOntology())
	}

	desc, err := h.lexicon.GetResInfo(r.Context(), ontologyIRI, classIRI)
	if err != nil {
		writeServiceError(w, r, h.logger, "get_resinfo", err)
		return
	}
	writeData(w, h.logger, desc)
}

// GetOntology handles GET /api/ontologies?iri=
func (h *LexiconHandler) GetOntology(w http.ResponseWriter, r *http.Request) {
	ontologyIRI := r.URL.Query().Get("iri")
	if ontologyIRI == "" {
		ontologyIRI = vocab.OntologyOf(h.lexicon.MLSOntology())
	}

	ont, err := h.lexicon.GetOntology(r.Context(), ontologyIRI)
	if err != nil {
		writeServiceError(w, r, h.logger, "get_ontology", err)
		return
	}
	writeData(w, h.logger, ont)
}

// GetList handles GET /api/lists/{iri}
func (h *LexiconHandler) GetList(w http.ResponseWriter, r *http.Request) {
	list, err := h.lexicon.GetList(r.Context(), r.PathValue("iri"))
	if err != nil {
		writeServiceError(w, r, h.logger, "get_list", err)
		return
	}
	writeData(w, h.logger, list)
}

// GetListNode handles GET /api/nodes/{iri}
func (h *LexiconHandler) GetListNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.lexicon.GetListNode(r.Context(), r.PathValue("iri"))
	if err != nil {
		writeServiceError(w, r, h.logger, "get_list_node", err)
		return
	}
	writeData(w, h.logger, node)
}

// Search handles POST /api/search/{query}
func (h *LexiconHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("query")

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid request body")
		return
	}
	if len(req.Fields) == 0 {
		h.writeBadRequest(w, "fields are required")
		return
	}

	rows, err := h.lexicon.GravsearchQuery(r.Context(), name, req.Params, req.Fields)
	if err != nil {
		writeServiceError(w, r, h.logger, "search", err)
		return
	}

	resp := SearchResponse{Rows: rows}
	if !req.SkipCount {
		count, err := h.lexicon.GravsearchQueryCount(r.Context(), name, req.Params)
		if err != nil {
			writeServiceError(w, r, h.logger, "search_count", err)
			return
		}
		resp.Count = &count
	}

	writeData(w, h.logger, resp)
}

func (h *LexiconHandler) writeBadRequest(w http.ResponseWriter, message string) {
	if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
