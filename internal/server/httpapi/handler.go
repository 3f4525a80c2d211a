package httpapi

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if missing(req.Username, req.Password) {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{
			Error:  "username and password are required",
			Fields: fieldsHint{"username": "string", "password": "string"},
		})
		return
	}

	token, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch status := statusForError(err); status {
		case http.StatusUnauthorized, http.StatusBadRequest:
			s.writeJSON(w, r, http.StatusUnauthorized, errorResponse{Success: boolPtr(false), Error: "invalid credentials"})
		default:
			s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Success: boolPtr(false), Error: "server error"})
		}
		return
	}

	s.writeJSON(w, r, http.StatusOK, tokenResponse{Success: true, Message: "login successful", Token: token})
}

type protectedResponse struct {
	Message string `json:"message"`
	User    any    `json:"user"`
}

func (s *HTTPServer) protected(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		s.writeJSON(w, r, http.StatusForbidden, errorResponse{Message: "access denied"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, protectedResponse{Message: "access granted", User: claims})
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createUserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

func (s *HTTPServer) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if missing(req.Username, req.Email, req.Password) {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{
			Error:  "all fields are required",
			Fields: fieldsHint{"username": "string", "email": "string", "password": "string"},
		})
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch status := statusForError(err); status {
		case http.StatusBadRequest:
			s.writeJSON(w, r, status, errorResponse{Error: err.Error()})
		case http.StatusConflict:
			s.writeJSON(w, r, status, errorResponse{Error: "username or email already exists"})
		default:
			s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "failed to create user"})
		}
		return
	}

	s.writeJSON(w, r, http.StatusCreated, createUserResponse{
		ID:       user.ID,
		Username: user.UserName,
		Email:    user.Email,
		Message:  "user created",
	})
}

type resetCodeRequest struct {
	Email string `json:"email"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *HTTPServer) requestResetCode(w http.ResponseWriter, r *http.Request) {
	var req resetCodeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Success: boolPtr(false), Message: err.Error()})
		return
	}

	if missing(req.Email) {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Success: boolPtr(false), Message: "email is required"})
		return
	}

	// The outcome for unknown emails is deliberately indistinguishable.
	if _, err := s.users.RequestResetCode(r.Context(), req.Email); err != nil {
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Success: boolPtr(false), Message: "server error"})
		return
	}

	s.writeJSON(w, r, http.StatusOK, successResponse{
		Success: true,
		Message: "if this email is registered, a reset code has been issued",
	})
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func (s *HTTPServer) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Success: boolPtr(false), Message: err.Error()})
		return
	}

	if missing(req.Email, req.Code, req.NewPassword) {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{
			Success: boolPtr(false),
			Message: "all fields are required",
			Fields:  fieldsHint{"email": "string", "code": "string", "newPassword": "string"},
		})
		return
	}

	token, err := s.users.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword)
	if err != nil {
		switch status := statusForError(err); status {
		case http.StatusOK:
			s.writeJSON(w, r, status, successResponse{Success: false, Message: "invalid or expired code"})
		case http.StatusBadRequest:
			s.writeJSON(w, r, status, errorResponse{Success: boolPtr(false), Message: err.Error()})
		case http.StatusNotFound:
			s.writeJSON(w, r, status, errorResponse{Success: boolPtr(false), Message: "user not found"})
		default:
			s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Success: boolPtr(false), Message: "server error"})
		}
		return
	}

	s.writeJSON(w, r, http.StatusOK, tokenResponse{Success: true, Message: "password has been reset", Token: token})
}
