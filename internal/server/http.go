package server

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Injng/boxi/internal/expression"
	"github.com/Injng/boxi/internal/rosetta"
	"github.com/Injng/boxi/internal/types"
	"github.com/goccy/go-json"
)

const basePath = "/v1/evaluations"

const (
	succeededState = "SUCCEEDED"
	failedState    = "FAILED"
)

type evaluation struct {
	Name       string                  `json:"name"`
	Expression string                  `json:"expression"`
	CreateTime time.Time               `json:"createTime"`
	State      string                  `json:"state"`
	Infix      string                  `json:"infix,omitempty"`
	Postfix    string                  `json:"postfix,omitempty"`
	Result     *rosetta.Representation `json:"result,omitempty"`
	Error      any                     `json:"error,omitempty"`

	seq uint64
}

type httpHandler struct {
	idBase      uint64
	evaluations sync.Map
	now         func() time.Time
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == basePath {
		switch r.Method {
		case http.MethodGet:
			h.listEvaluations(w, r)
			return

		case http.MethodPost:
			h.createEvaluation(w, r)
			return

		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
	}

	id := strings.TrimPrefix(path, basePath+"/")
	if id == path || id == "" || strings.IndexByte(id, '/') != -1 {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getEvaluation(w, r, id)
		return

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
}

func (h *httpHandler) createEvaluation(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req struct {
		Expression *string `json:"expression"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("failed to decode request body: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if req.Expression == nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	seq := atomic.AddUint64(&h.idBase, 1)
	id := fmt.Sprintf("%016x", seq)
	ev := &evaluation{
		Name:       basePath + "/" + id,
		Expression: *req.Expression,
		CreateTime: h.now().UTC(),
		seq:        seq,
	}
	h.evaluate(ev)
	h.evaluations.Store(id, ev)

	if err := resJSON(w, http.StatusOK, ev); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func (h *httpHandler) evaluate(ev *evaluation) {
	expr, err := expression.Compile(ev.Expression)
	if err != nil {
		ev.State = failedState
		ev.Error = types.ExceptionOf(err)
		return
	}
	ev.Infix = expression.RenderTokens(expr.Infix)
	ev.Postfix = expression.RenderTokens(expr.Postfix)

	ret, err := expr.Evaluate()
	if err != nil {
		ev.State = failedState
		ev.Error = types.ExceptionOf(err)
		return
	}

	v := rosetta.New(ret).Representation()
	ev.State = succeededState
	ev.Result = &v
}

func (h *httpHandler) listEvaluations(w http.ResponseWriter, r *http.Request) {
	results := []*evaluation{}
	h.evaluations.Range(func(key, value any) bool {
		results = append(results, value.(*evaluation))
		return true
	})
	sort.Slice(results, func(i, j int) bool {
		return results[i].seq < results[j].seq
	})

	if err := resJSON(w, http.StatusOK, map[string][]*evaluation{"evaluations": results}); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func (h *httpHandler) getEvaluation(w http.ResponseWriter, r *http.Request, id string) {
	ret, ok := h.evaluations.Load(id)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if err := resJSON(w, http.StatusOK, ret.(*evaluation)); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

// NewHTTPHandler serves the evaluation API. Evaluations are kept in memory
// for the lifetime of the handler.
func NewHTTPHandler() http.Handler {
	return &httpHandler{now: time.Now}
}

func resJSON(w http.ResponseWriter, status int, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)+1))
	w.WriteHeader(status)

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}
