// Package httpapi exposes the tax-refund REST API.
package httpapi

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/chungyifen/tax-refund/internal/model"
	"github.com/chungyifen/tax-refund/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth    service.AuthService
	refunds service.RefundService
	signKey []byte
	log     *zap.Logger
}

// New constructs the HTTP server with injected services.
func New(auth service.AuthService, refunds service.RefundService, signKey []byte, log *zap.Logger) *Server {
	return &Server{auth: auth, refunds: refunds, signKey: signKey, log: log}
}

// Router builds the route tree with the shared middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(recoverer(s.log))
	r.Use(logging(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.bearerAuth)
			r.Get("/auth/info", s.info)
			r.Post("/auth/logout", s.logout)
			r.Get("/system/users", s.requireAuthority("USER_VIEW", s.listUsers))
			r.Get("/refund/list", s.requireAuthority("TAX_REFUND_VIEW", s.listRefunds))
			r.Post("/refund/list", s.requireAuthority("TAX_REFUND_EDIT", s.createRefund))
		})
	})

	return r
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}
	tok, err := s.auth.LoginWithIP(r.Context(), req.Username, req.Password, remoteIP(r))
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: tok.AccessToken, TokenType: tok.TokenType})
}

// info answers whoami: the response body is the profile itself, no wrapper.
func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	uid, ok := userIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	p, err := s.auth.Profile(r.Context(), uid)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// logout acknowledges the request. Tokens are stateless; discarding the
// credential is the client's side of the contract.
func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.auth.ListUsers(r.Context())
	if err != nil {
		writeMappedError(w, err)
		return
	}
	if users == nil {
		users = []model.UserSummary{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) listRefunds(w http.ResponseWriter, r *http.Request) {
	rows, err := s.refunds.List(r.Context())
	if err != nil {
		writeMappedError(w, err)
		return
	}
	if rows == nil {
		rows = []model.TaxRefund{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) createRefund(w http.ResponseWriter, r *http.Request) {
	var in model.NewTaxRefund
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed refund body")
		return
	}
	row, err := s.refunds.Create(r.Context(), in)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, row)
}
