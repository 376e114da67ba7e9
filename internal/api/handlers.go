package api

import (
	"encoding/json"
	"net/http"

	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/errors"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/pipeline"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/reconcile"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/table"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/internal/formats/usfm"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/internal/formats/usx"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/internal/logging"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/internal/markers"
)

// mergeRequest is the body of POST /api/v1/merge.
type mergeRequest struct {
	Book      string `json:"book,omitempty"`
	Generated string `json:"generated"`
	Existing  string `json:"existing,omitempty"`
	USFM      string `json:"usfm,omitempty"`
	USX       string `json:"usx,omitempty"`
	Strategy  string `json:"strategy,omitempty"`
	FillIDs   bool   `json:"fill_ids,omitempty"`
	User      string `json:"user,omitempty"`
}

// mergeResponse is the body of a successful merge.
type mergeResponse struct {
	Output string         `json:"output"`
	Rows   int            `json:"rows"`
	Status map[string]int `json:"status"`
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	verses, err := s.verseText(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.hub.Broadcast(ProgressMessage{
		Type: "progress", Operation: "merge", Stage: "merge",
		Book: req.Book, Message: "merging tables",
	})

	result, err := pipeline.Run(pipeline.Input{
		Generated: req.Generated,
		Existing:  req.Existing,
		Verses:    verses,
		Strategy:  pipeline.Strategy(req.Strategy),
		FillIDs:   req.FillIDs,
	})
	if err != nil {
		s.hub.Broadcast(ProgressMessage{
			Type: "error", Operation: "merge", Book: req.Book, Message: err.Error(),
		})
		status := http.StatusInternalServerError
		if errors.Is(err, errors.ErrInvalidInput) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err)
		return
	}

	if req.User != "" {
		ms, err := s.store.List(r.Context(), req.User, req.Book)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		result = markers.Apply(result, ms)
	}

	logging.PipelineStage("merge", req.Book, len(result.Rows))
	s.hub.Broadcast(ProgressMessage{
		Type: "complete", Operation: "merge", Stage: "reconcile",
		Book: req.Book, Rows: len(result.Rows), Message: "merge complete",
	})

	counts := make(map[string]int)
	for i := range result.Rows {
		if st := result.Rows[i].Status; st != table.StatusNone {
			counts[string(st)]++
		}
	}
	writeJSON(w, http.StatusOK, mergeResponse{
		Output: table.Serialize(result),
		Rows:   len(result.Rows),
		Status: counts,
	})
}

// verseText extracts (and caches) the verse-text map for a request.
// Nil with no error means no source document was supplied and the
// pipeline runs in dedupe-only mode.
func (s *Server) verseText(req mergeRequest) (reconcile.VerseText, error) {
	var source []byte
	var extract func([]byte) (map[string][]string, error)
	switch {
	case req.USFM != "":
		source, extract = []byte(req.USFM), usfm.ExtractVerseText
	case req.USX != "":
		source, extract = []byte(req.USX), usx.ExtractVerseText
	default:
		return nil, nil
	}

	if cached, ok := s.verses.Get(source); ok {
		return cached, nil
	}
	m, err := extract(source)
	if err != nil {
		return nil, err
	}
	s.verses.Put(source, m)
	return m, nil
}

type validateRequest struct {
	Content string `json:"content"`
}

type validateResponse struct {
	Valid   bool   `json:"valid"`
	Rows    int    `json:"rows,omitempty"`
	Columns int    `json:"columns,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	t, err := table.Parse(req.Content, table.HasHeader(req.Content))
	if err == nil {
		err = table.ValidateSchema(t)
	}
	if err != nil {
		writeJSON(w, http.StatusOK, validateResponse{Valid: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{
		Valid:   true,
		Rows:    len(t.Rows),
		Columns: len(t.Header),
	})
}

func (s *Server) handleListMarkers(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	book := r.URL.Query().Get("book")
	if user == "" || book == "" {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrInvalidInput, "user and book are required"))
		return
	}
	ms, err := s.store.List(r.Context(), user, book)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

func (s *Server) handlePutMarker(w http.ResponseWriter, r *http.Request) {
	var m markers.Marker
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := s.store.Put(r.Context(), m)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleRemoveMarker(w http.ResponseWriter, r *http.Request) {
	var m markers.Marker
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	row := table.Row{
		Reference:  m.Reference,
		OrigWords:  m.OrigWords,
		Occurrence: m.Occurrence,
		TWLink:     m.TWLink,
	}
	if err := s.store.Remove(r.Context(), m.User, m.Book, m.Kind, row.Key()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":        "ok",
		"sqlite_driver": markers.DriverType(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
