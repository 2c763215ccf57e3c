package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/session"
	"github.com/gorilla/mux"
)

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	me, _ := session.UserFromContext(r.Context())

	list, err := s.users.ListContacts(r.Context(), me.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	me, _ := session.UserFromContext(r.Context())

	list, err := s.messages.History(r.Context(), me.ID, mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	me, _ := session.UserFromContext(r.Context())

	var in models.Content
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	msg, err := s.messages.Send(r.Context(), me.ID, mux.Vars(r)["id"], in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}
