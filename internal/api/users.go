package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/opencampus/lostfound/internal/auth"
	"github.com/opencampus/lostfound/internal/imaging"
	"github.com/opencampus/lostfound/internal/mail"
	"github.com/opencampus/lostfound/internal/model"
	"github.com/opencampus/lostfound/internal/store"
)

// UsersHandler handles registration, authentication, and profile endpoints.
type UsersHandler struct {
	DB        *sql.DB
	JWTSecret string
	Mailer    mail.Mailer
}

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	RollNumber string `json:"roll_number"`
	Phone      string `json:"phone"`
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

// Register handles POST /api/user/register.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" || req.RollNumber == "" {
		jsonError(w, http.StatusBadRequest, "name, email, password and roll number required")
		return
	}

	exists, err := store.UserExists(r.Context(), h.DB, req.Email, req.RollNumber)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if exists {
		jsonError(w, http.StatusConflict, "user already exists with that email or roll number")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Name, req.Email, string(hash), req.RollNumber, req.Phone, model.RoleUser)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	// Verification mail is best-effort: the account exists either way and the
	// code can be re-requested via forgot-password style retry.
	code, err := store.CreateOTP(r.Context(), h.DB, user.ID, store.OTPPurposeVerify)
	if err != nil {
		slog.Error("creating verification otp", "user_id", user.ID, "error", err)
	} else if err := h.Mailer.Send(r.Context(), mail.Message{
		To:      user.Email,
		Subject: "Verify your email - Lost & Found",
		Text:    "Your verification code is: " + code + ". It is valid for 10 minutes.",
	}); err != nil {
		slog.Error("sending verification mail", "user_id", user.ID, "error", err)
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"message": "user registered, please verify your email",
		"user":    user,
	})
}

// VerifyEmail handles POST /api/user/verify-email.
func (h *UsersHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.OTP == "" {
		jsonError(w, http.StatusBadRequest, "email and otp required")
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	ok, err := store.VerifyOTP(r.Context(), h.DB, user.ID, store.OTPPurposeVerify, req.OTP)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		jsonError(w, http.StatusUnauthorized, "invalid or expired otp")
		return
	}

	if err := store.SetEmailVerified(r.Context(), h.DB, user.ID); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to verify email")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "email verified"})
}

// Login handles POST /api/user/login.
func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Email, user.Role)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "role", user.Role)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, User: user})
}

// Logout handles POST /api/user/logout. The presented token's JTI is revoked.
func (h *UsersHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/user/me.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"user": user})
}

// UpdateProfile handles PUT /api/user/me.
func (h *UsersHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	if err := store.UpdateUserProfile(r.Context(), h.DB, claims.UserID, req.Name, req.Phone); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"user": user})
}

// ChangePassword handles PUT /api/user/password.
func (h *UsersHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, claims.UserID, string(hash)); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	slog.Info("user changed own password", "user_id", claims.UserID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// ForgotPassword handles POST /api/user/forgot-password.
func (h *UsersHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		jsonError(w, http.StatusBadRequest, "email required")
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	code, err := store.CreateOTP(r.Context(), h.DB, user.ID, store.OTPPurposeReset)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.Mailer.Send(r.Context(), mail.Message{
		To:      user.Email,
		Subject: "Lost & Found: reset your password",
		Text:    "Your password reset code is: " + code + ". It is valid for 10 minutes.",
	}); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to send reset code")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "reset code sent to your email"})
}

// ResetPassword handles POST /api/user/reset-password.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "email, otp and new password required")
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	ok, err := store.VerifyOTP(r.Context(), h.DB, user.ID, store.OTPPurposeReset, req.OTP)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		jsonError(w, http.StatusUnauthorized, "invalid or expired otp")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, user.ID, string(hash)); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "password has been reset"})
}

// UploadPhoto handles PUT /api/user/me/photo.
func (h *UsersHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	photo, ok := readPhotoUpload(w, r)
	if !ok {
		return
	}

	if err := store.SetUserPhoto(r.Context(), h.DB, claims.UserID, photo.Data, photo.MIME); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save photo")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// RemoveUser handles DELETE /api/admin/users/{id}. Admin only; accounts are
// soft-deleted so their items and claims keep resolving.
func (h *UsersHandler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if id == claims.UserID {
		jsonError(w, http.StatusBadRequest, "cannot remove your own account")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || user.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to remove user")
		return
	}

	slog.Info("user removed", "user_id", id, "by", claims.UserID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user removed"})
}

// GetPhoto handles GET /api/user/{id}/photo.
func (h *UsersHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	data, mime, err := store.GetUserPhoto(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// readPhotoUpload parses a multipart "photo" field and runs it through the
// imaging pipeline. On failure a response has already been written.
func readPhotoUpload(w http.ResponseWriter, r *http.Request) (*imaging.Photo, bool) {
	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return nil, false
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return nil, false
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return photo, true
}
