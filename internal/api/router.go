package api

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opencampus/lostfound/internal/lifecycle"
	"github.com/opencampus/lostfound/internal/mail"
	"github.com/opencampus/lostfound/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, mailer mail.Mailer) http.Handler {
	mux := http.NewServeMux()

	usersHandler := &UsersHandler{DB: db, JWTSecret: jwtSecret, Mailer: mailer}
	lostHandler := &LostItemsHandler{DB: db}
	foundHandler := &FoundItemsHandler{DB: db}
	claimsHandler := &ClaimsHandler{Claims: &lifecycle.Claims{DB: db, Mailer: mailer}}
	reportsHandler := &ReportsHandler{Reports: &lifecycle.Reports{DB: db, Mailer: mailer}}

	authMW := AuthMiddleware(jwtSecret, db)

	// Accounts: registration and credential flows are public.
	mux.HandleFunc("POST /api/user/register", usersHandler.Register)
	mux.HandleFunc("POST /api/user/verify-email", usersHandler.VerifyEmail)
	mux.HandleFunc("POST /api/user/login", usersHandler.Login)
	mux.HandleFunc("POST /api/user/forgot-password", usersHandler.ForgotPassword)
	mux.HandleFunc("POST /api/user/reset-password", usersHandler.ResetPassword)
	mux.HandleFunc("GET /api/user/{id}/photo", usersHandler.GetPhoto)

	mux.Handle("POST /api/user/logout", authMW(http.HandlerFunc(usersHandler.Logout)))
	mux.Handle("GET /api/user/me", authMW(http.HandlerFunc(usersHandler.Me)))
	mux.Handle("PUT /api/user/me", authMW(http.HandlerFunc(usersHandler.UpdateProfile)))
	mux.Handle("PUT /api/user/me/photo", authMW(http.HandlerFunc(usersHandler.UploadPhoto)))
	mux.Handle("PUT /api/user/password", authMW(http.HandlerFunc(usersHandler.ChangePassword)))

	adminMW := RequireRole(model.RoleAdmin)
	mux.Handle("DELETE /api/admin/users/{id}", authMW(adminMW(http.HandlerFunc(usersHandler.RemoveUser))))

	// Lost items: reads are public, writes are owner-gated in the handlers.
	mux.HandleFunc("GET /api/lost-items", lostHandler.List)
	mux.HandleFunc("GET /api/lost-items/{id}", lostHandler.Get)
	mux.HandleFunc("GET /api/lost-items/{id}/photo", lostHandler.GetPhoto)
	mux.Handle("GET /api/lost-items/mine", authMW(http.HandlerFunc(lostHandler.ListMine)))
	mux.Handle("POST /api/lost-items", authMW(http.HandlerFunc(lostHandler.Create)))
	mux.Handle("PUT /api/lost-items/{id}", authMW(http.HandlerFunc(lostHandler.Update)))
	mux.Handle("DELETE /api/lost-items/{id}", authMW(http.HandlerFunc(lostHandler.Delete)))
	mux.Handle("PUT /api/lost-items/{id}/photo", authMW(http.HandlerFunc(lostHandler.UploadPhoto)))

	// Found items.
	mux.HandleFunc("GET /api/found-items", foundHandler.List)
	mux.HandleFunc("GET /api/found-items/{id}", foundHandler.Get)
	mux.HandleFunc("GET /api/found-items/{id}/photo", foundHandler.GetPhoto)
	mux.Handle("GET /api/found-items/mine", authMW(http.HandlerFunc(foundHandler.ListMine)))
	mux.Handle("POST /api/found-items", authMW(http.HandlerFunc(foundHandler.Create)))
	mux.Handle("PUT /api/found-items/{id}", authMW(http.HandlerFunc(foundHandler.Update)))
	mux.Handle("PUT /api/found-items/{id}/security", authMW(http.HandlerFunc(foundHandler.UpdateSecurityQA)))
	mux.Handle("DELETE /api/found-items/{id}", authMW(http.HandlerFunc(foundHandler.Delete)))
	mux.Handle("PUT /api/found-items/{id}/photo", authMW(http.HandlerFunc(foundHandler.UploadPhoto)))

	// Claims.
	mux.Handle("POST /api/claims", authMW(http.HandlerFunc(claimsHandler.Create)))
	mux.Handle("GET /api/claims/user", authMW(http.HandlerFunc(claimsHandler.ListMine)))
	mux.Handle("GET /api/claims/item/{itemId}", authMW(http.HandlerFunc(claimsHandler.ListForItem)))
	mux.Handle("GET /api/claims/{id}", authMW(http.HandlerFunc(claimsHandler.Get)))
	mux.Handle("PUT /api/claims/{id}/status", authMW(http.HandlerFunc(claimsHandler.UpdateStatus)))
	mux.Handle("DELETE /api/claims/{id}", authMW(http.HandlerFunc(claimsHandler.Delete)))

	// Found-reports.
	mux.Handle("POST /api/found-reports", authMW(http.HandlerFunc(reportsHandler.Create)))
	mux.Handle("GET /api/found-reports/mine", authMW(http.HandlerFunc(reportsHandler.ListMine)))
	mux.Handle("GET /api/found-reports/my-items", authMW(http.HandlerFunc(reportsHandler.ListForMyItems)))
	mux.Handle("PUT /api/found-reports/{id}/status", authMW(http.HandlerFunc(reportsHandler.UpdateStatus)))
	mux.Handle("DELETE /api/found-reports/{id}", authMW(http.HandlerFunc(reportsHandler.Delete)))

	// Observability.
	mux.Handle("GET /metrics", promhttp.Handler())

	return MetricsMiddleware(mux)
}
