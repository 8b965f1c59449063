// Package hierarchytest provides an in-process fake of the hierarchy service
// and its token endpoint for tests.
package hierarchytest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Default credentials accepted by the token endpoint.
const (
	ClientID     = "test-client-id"
	ClientSecret = "test-client-secret"
	Audience     = "https://hierarchy.test/api"
	OrgID        = "3fa85f64-5717-4562-b3fc-2c963f66afa6"
)

// node mirrors the service's PascalCase wire format.
type node struct {
	ID              string `json:"Id"`
	ShortCode       string `json:"ShortCode"`
	Name            string `json:"Name"`
	NodeType        string `json:"NodeType"`
	Archived        bool   `json:"Archived"`
	ParentShortCode string `json:"ParentShortCode,omitempty"`
	ParentID        string `json:"ParentId,omitempty"`
}

// Server is a fake hierarchy service. Tokens are opaque strings "token-N".
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	nodes     map[string]map[string]*node // "org/type" -> shortCode -> node
	issued    map[string]bool             // formatted tokens accepted by the API
	expiresIn int
	failAPI   int
	failAuth  int
	omitType  bool

	tokenRequests atomic.Int64
	apiRequests   atomic.Int64
}

// NewServer starts a fake service. Close it with t.Cleanup(s.Close).
func NewServer() *Server {
	s := &Server{
		nodes:     make(map[string]map[string]*node),
		issued:    make(map[string]bool),
		expiresIn: 3600,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", s.handleToken)
	mux.HandleFunc("PUT /v1/organisation/{org}/hierarchy/{type}", s.withAuth(s.handlePutRoot))
	mux.HandleFunc("PUT /v1/organisation/{org}/hierarchy/{type}/nodes/{key}", s.withAuth(s.handlePutNode))
	mux.HandleFunc("GET /v1/organisation/{org}/hierarchy/{type}/nodes", s.withAuth(s.handleList))
	mux.HandleFunc("GET /v1/organisation/{org}/hierarchy/{type}/nodes/{key}", s.withAuth(s.handleGet))
	mux.HandleFunc("PATCH /v1/organisation/{org}/hierarchy/{type}/nodes/{key}", s.withAuth(s.handlePatch))

	s.Server = httptest.NewServer(mux)
	return s
}

// SetExpiresIn sets the expires_in value of subsequently issued tokens.
func (s *Server) SetExpiresIn(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresIn = seconds
}

// FailAPI makes every hierarchy request answer with status. 0 restores normal behaviour.
func (s *Server) FailAPI(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAPI = status
}

// FailAuth makes the token endpoint answer with status. 0 restores normal behaviour.
func (s *Server) FailAuth(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAuth = status
}

// OmitTokenType makes the token endpoint leave out token_type.
func (s *Server) OmitTokenType(omit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitType = omit
}

// RevokeTokens invalidates every issued token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued = make(map[string]bool)
}

// TokenRequests returns how many times the token endpoint was called.
func (s *Server) TokenRequests() int {
	return int(s.tokenRequests.Load())
}

// APIRequests returns how many hierarchy requests were received.
func (s *Server) APIRequests() int {
	return int(s.apiRequests.Load())
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	n := s.tokenRequests.Add(1)

	s.mu.Lock()
	failAuth, expiresIn, omitType := s.failAuth, s.expiresIn, s.omitType
	s.mu.Unlock()

	if failAuth != 0 {
		writeJSON(w, failAuth, map[string]string{"error": "access_denied"})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	if r.PostForm.Get("grant_type") != "client_credentials" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}
	if r.PostForm.Get("client_id") != ClientID || r.PostForm.Get("client_secret") != ClientSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client"})
		return
	}

	accessToken := fmt.Sprintf("token-%d", n)
	resp := map[string]interface{}{
		"access_token": accessToken,
		"expires_in":   expiresIn,
	}
	if !omitType {
		resp["token_type"] = "Bearer"
		s.mu.Lock()
		s.issued["Bearer "+accessToken] = true
		s.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.apiRequests.Add(1)

		s.mu.Lock()
		failAPI := s.failAPI
		authorized := s.issued[r.Header.Get("Authorization")]
		s.mu.Unlock()

		if failAPI != 0 {
			writeJSON(w, failAPI, map[string]string{"message": http.StatusText(failAPI)})
			return
		}
		if !authorized {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid bearer token"})
			return
		}
		if r.Header.Get("Accept") != "application/json" {
			writeJSON(w, http.StatusNotAcceptable, map[string]string{"message": "application/json only"})
			return
		}
		next(w, r)
	}
}

func (s *Server) scope(r *http.Request) map[string]*node {
	key := r.PathValue("org") + "/" + r.PathValue("type")
	m, ok := s.nodes[key]
	if !ok {
		m = make(map[string]*node)
		s.nodes[key] = m
	}
	return m
}

type upsertBody struct {
	ShortCode       string `json:"shortCode"`
	Name            string `json:"name"`
	NodeType        string `json:"nodeType"`
	Archived        bool   `json:"archived"`
	ParentShortCode string `json:"parentShortCode"`
	ParentID        string `json:"parentId"`
}

func (s *Server) handlePutRoot(w http.ResponseWriter, r *http.Request) {
	var body upsertBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	if body.ShortCode != "root" || body.NodeType != "company" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "root must be shortCode root, nodeType company"})
		return
	}

	s.mu.Lock()
	n := s.upsert(s.scope(r), "root", body)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handlePutNode(w http.ResponseWriter, r *http.Request) {
	var body upsertBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	if body.ParentShortCode == "" || body.ParentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "parentShortCode and parentId are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	scope := s.scope(r)
	parent, ok := scope[body.ParentShortCode]
	if !ok || parent.ID != body.ParentID {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "unknown parent"})
		return
	}
	writeJSON(w, http.StatusOK, s.upsert(scope, r.PathValue("key"), body))
}

// upsert must be called with s.mu held.
func (s *Server) upsert(scope map[string]*node, shortCode string, body upsertBody) *node {
	n, ok := scope[shortCode]
	if !ok {
		n = &node{ID: uuid.NewString(), ShortCode: shortCode}
		scope[shortCode] = n
	}
	n.Name = body.Name
	n.NodeType = body.NodeType
	n.Archived = body.Archived
	n.ParentShortCode = body.ParentShortCode
	n.ParentID = body.ParentID
	cp := *n
	return &cp
}

var filterRe = regexp.MustCompile(`^(\w+) (eq|ne) '((?:[^']|'')*)'$`)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	match := func(*node) bool { return true }
	if f := r.URL.Query().Get("$filter"); f != "" {
		m := filterRe.FindStringSubmatch(f)
		if m == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed $filter"})
			return
		}
		field, op, value := m[1], m[2], strings.ReplaceAll(m[3], "''", "'")
		match = func(n *node) bool {
			var got string
			switch field {
			case "ShortCode":
				got = n.ShortCode
			case "NodeType":
				got = n.NodeType
			case "Name":
				got = n.Name
			}
			return (got == value) == (op == "eq")
		}
	}

	s.mu.Lock()
	values := make([]node, 0)
	for _, n := range s.scope(r) {
		if match(n) {
			values = append(values, *n)
		}
	}
	s.mu.Unlock()

	sort.Slice(values, func(i, j int) bool { return values[i].ShortCode < values[j].ShortCode })
	writeJSON(w, http.StatusOK, map[string]interface{}{"value": values})
}

// findByID must be called with s.mu held.
func (s *Server) findByID(r *http.Request) *node {
	id := r.PathValue("key")
	for _, n := range s.scope(r) {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	n := s.findByID(r)
	var cp node
	if n != nil {
		cp = *n
	}
	s.mu.Unlock()

	if n == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "node not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"value": []node{cp}})
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	var ops []struct {
		Value interface{} `json:"value"`
		Path  string      `json:"path"`
		Op    string      `json:"op"`
	}
	if err := json.NewDecoder(r.Body).Decode(&ops); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.findByID(r)
	if n == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "node not found"})
		return
	}
	for _, op := range ops {
		archived, ok := op.Value.(bool)
		if op.Op != "replace" || op.Path != "/Archived" || !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "unsupported patch operation"})
			return
		}
		n.Archived = archived
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
