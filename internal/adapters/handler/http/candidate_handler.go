package http

import (
	"net/http"
	"sort"

	"github.com/adrsyn/ballotbox/internal/core/domain"
	"github.com/adrsyn/ballotbox/internal/core/services"
)

type CandidateHandler struct {
	cache *services.StateCache
}

func NewCandidateHandler(cache *services.StateCache) *CandidateHandler {
	return &CandidateHandler{
		cache: cache,
	}
}

func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	candidates := h.cache.Candidates()
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Campus != candidates[j].Campus {
			return candidates[i].Campus < candidates[j].Campus
		}
		return candidates[i].Name < candidates[j].Name
	})

	grouped := map[domain.Campus][]string{}
	for _, c := range candidates {
		grouped[c.Campus] = append(grouped[c.Campus], c.Name)
	}
	writeJSON(w, http.StatusOK, grouped)
}
