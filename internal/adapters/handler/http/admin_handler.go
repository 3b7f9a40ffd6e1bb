package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/adrsyn/ballotbox/internal/core/domain"
	"github.com/adrsyn/ballotbox/internal/core/ports"
	"github.com/adrsyn/ballotbox/internal/core/services"
)

const adminSessionCookie = "admin_session_token"

type AdminHandler struct {
	tokens    ports.TokenService
	session   ports.SessionService
	reset     ports.ResetService
	cache     *services.StateCache
	overrides ports.OverrideStore
}

func NewAdminHandler(tokens ports.TokenService, session ports.SessionService, reset ports.ResetService, cache *services.StateCache, overrides ports.OverrideStore) *AdminHandler {
	return &AdminHandler{
		tokens:    tokens,
		session:   session,
		reset:     reset,
		cache:     cache,
		overrides: overrides,
	}
}

type loginRequest struct {
	AdminID  string `json:"admin_id"`
	Password string `json:"admin_password"`
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.session.Login(r.Context(), req.AdminID, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     adminSessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int((48 * time.Hour).Seconds()),
		Secure:   true,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusOK)
}

func (h *AdminHandler) Check(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.adminFromRequest(w, r); !ok {
		return
	}
	w.WriteHeader(http.StatusOK)
}

type resetRequest struct {
	VoterName string `json:"voter_fullname"`
}

type resetResponse struct {
	NewToken string `json:"new_token"`
}

func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.adminFromRequest(w, r); !ok {
		return
	}

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.reset.ResetVoter(r.Context(), req.VoterName)
	if err != nil {
		if errors.Is(err, domain.ErrVoterNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, resetResponse{NewToken: token})
}

type votesResponse struct {
	VotesData map[string]string `json:"votes_data"`
}

// Votes returns the raw voter→candidate map.
func (h *AdminHandler) Votes(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.adminFromRequest(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, votesResponse{VotesData: h.cache.Votes()})
}

// VotesSimple returns per-campus candidate counts.
func (h *AdminHandler) VotesSimple(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.adminFromRequest(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.cache.TallyByCampus())
}

type tokensResponse struct {
	ChangedVoterTokens map[string]string       `json:"changed_voter_tokens"`
	StaticVoterData    map[string]domain.Voter `json:"static_voter_data"`
}

// Tokens exposes the override entries alongside the cached voter
// table, so admins can see which voters were reset.
func (h *AdminHandler) Tokens(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.adminFromRequest(w, r); !ok {
		return
	}

	overrides, err := h.overrides.ResetTokens(r.Context())
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, tokensResponse{
		ChangedVoterTokens: overrides,
		StaticVoterData:    h.cache.Voters(),
	})
}

func (h *AdminHandler) adminFromRequest(w http.ResponseWriter, r *http.Request) (domain.Admin, bool) {
	cookie, err := r.Cookie(adminSessionCookie)
	if err != nil {
		http.Error(w, "missing admin session token", http.StatusUnauthorized)
		return domain.Admin{}, false
	}

	admin, err := h.tokens.VerifyAdmin(r.Context(), cookie.Value)
	if err != nil {
		http.Error(w, "invalid admin session token", http.StatusUnauthorized)
		return domain.Admin{}, false
	}
	return admin, true
}
