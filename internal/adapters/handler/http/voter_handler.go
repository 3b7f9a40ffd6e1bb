package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adrsyn/ballotbox/internal/core/domain"
	"github.com/adrsyn/ballotbox/internal/core/ports"
)

const voterTokenCookie = "voter_token"

type VoterHandler struct {
	tokens ports.TokenService
	ledger ports.LedgerService
}

func NewVoterHandler(tokens ports.TokenService, ledger ports.LedgerService) *VoterHandler {
	return &VoterHandler{
		tokens: tokens,
		ledger: ledger,
	}
}

type voteRequest struct {
	CandidateName string `json:"candidate_name"`
}

func (h *VoterHandler) Vote(w http.ResponseWriter, r *http.Request) {
	voter, ok := h.voterFromRequest(w, r)
	if !ok {
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.ledger.Cast(r.Context(), voter, req.CandidateName); err != nil {
		if errors.Is(err, domain.ErrCandidateNotFound) || errors.Is(err, domain.ErrCampusMismatch) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, domain.ErrAlreadyVoted) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *VoterHandler) Check(w http.ResponseWriter, r *http.Request) {
	voter, ok := h.voterFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, voter)
}

func (h *VoterHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     voterTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusOK)
}

func (h *VoterHandler) voterFromRequest(w http.ResponseWriter, r *http.Request) (domain.Voter, bool) {
	cookie, err := r.Cookie(voterTokenCookie)
	if err != nil {
		http.Error(w, "missing voter token", http.StatusUnauthorized)
		return domain.Voter{}, false
	}

	voter, err := h.tokens.VerifyVoter(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			http.Error(w, "invalid voter token", http.StatusUnauthorized)
			return domain.Voter{}, false
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return domain.Voter{}, false
	}
	return voter, true
}
