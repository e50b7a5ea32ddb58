package api

import (
	"net/http"
	"time"

	"github.com/matzehuels/cardsheet/pkg/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginUser struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	User      loginUser `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	sess, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.logger.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		writeError(w, r, s.logger, err)
		return
	}
	s.logger.Info("admin signed in", "email", sess.Email)
	ok(w, "Login successful", loginResponse{
		Token:     sess.ID,
		User:      loginUser{Email: sess.Email, Role: sess.Role},
		ExpiresAt: sess.ExpiresAt,
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerToken(r.Header.Get("Authorization"))
	if err := s.auth.Logout(r.Context(), token); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	ok(w, "Logged out", nil)
}
