package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophchat/internal/server/services"
	"github.com/dmitrijs2005/gophchat/internal/server/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	ProfilePic string `json:"profilePic"`
}

func (s *Server) setSession(w http.ResponseWriter, token string) {
	session.SetCookie(w, token, int(s.opts.CookieMaxAge.Seconds()), s.opts.CookieSecure)
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, token, err := s.users.Signup(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setSession(w, token)
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, token, err := s.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setSession(w, token)
	writeJSON(w, http.StatusOK, user)
}

// logout only drops the client's cookie; the token itself stays valid until
// it expires.
func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	session.ClearCookie(w, s.opts.CookieSecure)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	me, _ := session.UserFromContext(r.Context())

	var in updateProfileRequest
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), me.ID, in.ProfilePic)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) checkAuth(w http.ResponseWriter, r *http.Request) {
	me, _ := session.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, me)
}
