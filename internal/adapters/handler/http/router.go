package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(voterHandler *VoterHandler, adminHandler *AdminHandler, candidateHandler *CandidateHandler, liveVotes http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/voter", func(r chi.Router) {
			r.Post("/vote", voterHandler.Vote)
			r.Post("/check", voterHandler.Check)
			r.Post("/logout", voterHandler.Logout)
		})

		r.Get("/candidates", candidateHandler.List)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", adminHandler.Login)
			r.Post("/check", adminHandler.Check)
			r.Post("/reset", adminHandler.Reset)
			r.Get("/votes", adminHandler.Votes)
			r.Get("/votes/simple", adminHandler.VotesSimple)
			r.Get("/tokens", adminHandler.Tokens)
		})
	})

	r.Get("/ws/votes", liveVotes)

	return r
}
