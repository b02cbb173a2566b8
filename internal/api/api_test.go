package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/opencampus/lostfound/internal/db"
	"github.com/opencampus/lostfound/internal/mail"
)

// testMailer records messages instead of delivering them.
type testMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *testMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *testMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

func setupTestAPI(t *testing.T) (*httptest.Server, *sql.DB, *testMailer) {
	t.Helper()
	database := db.NewTestDB(t)
	mailer := &testMailer{}
	server := httptest.NewServer(NewRouter(database, "test-secret", mailer))
	t.Cleanup(server.Close)
	return server, database, mailer
}

// doJSON performs a JSON request against the test server and decodes the
// response body into a generic map.
func doJSON(t *testing.T, server *httptest.Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decoding response of %s %s: %v", method, path, err)
	}
	return resp.StatusCode, decoded
}

// registerAndLogin creates an account and returns its bearer token.
func registerAndLogin(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()

	status, body := doJSON(t, server, "POST", "/api/user/register", "", map[string]string{
		"name":        "Test User",
		"email":       email,
		"password":    "password123",
		"roll_number": "RN-" + email,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %v", email, status, body)
	}

	status, body = doJSON(t, server, "POST", "/api/user/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	if status != http.StatusOK {
		t.Fatalf("login %s: status %d, body %v", email, status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in response %v", email, body)
	}
	return token
}

func TestRegisterLoginFlow(t *testing.T) {
	server, _, mailer := setupTestAPI(t)

	status, body := doJSON(t, server, "POST", "/api/user/register", "", map[string]string{
		"name":        "Robin Sharma",
		"email":       "robin@campus.edu",
		"password":    "password123",
		"roll_number": "CS-2021-042",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: status %d, body %v", status, body)
	}

	// Registration sends a verification code.
	msgs := mailer.messages()
	if len(msgs) != 1 || msgs[0].To != "robin@campus.edu" {
		t.Errorf("expected one verification mail to the registrant, got %v", msgs)
	}

	// Duplicate email is a conflict.
	status, _ = doJSON(t, server, "POST", "/api/user/register", "", map[string]string{
		"name":        "Impostor",
		"email":       "robin@campus.edu",
		"password":    "password123",
		"roll_number": "CS-2021-999",
	})
	if status != http.StatusConflict {
		t.Errorf("duplicate register: expected 409, got %d", status)
	}

	// Wrong password is rejected.
	status, _ = doJSON(t, server, "POST", "/api/user/login", "", map[string]string{
		"email":    "robin@campus.edu",
		"password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("bad login: expected 401, got %d", status)
	}

	token := registerAndLogin(t, server, "other@campus.edu")
	status, body = doJSON(t, server, "GET", "/api/user/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("me: status %d, body %v", status, body)
	}
}

// lastCodeTo pulls the most recent 6-digit code mailed to an address.
func lastCodeTo(t *testing.T, mailer *testMailer, to string) string {
	t.Helper()
	var code string
	for _, msg := range mailer.messages() {
		if msg.To != to {
			continue
		}
		if m := codeRe.FindString(msg.Text); m != "" {
			code = m
		}
	}
	if code == "" {
		t.Fatalf("no code mailed to %s", to)
	}
	return code
}

var codeRe = regexp.MustCompile(`\b\d{6}\b`)

func TestEmailVerificationFlow(t *testing.T) {
	server, database, mailer := setupTestAPI(t)

	status, body := doJSON(t, server, "POST", "/api/user/register", "", map[string]string{
		"name":        "Robin Sharma",
		"email":       "robin@campus.edu",
		"password":    "password123",
		"roll_number": "CS-2021-042",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: status %d, body %v", status, body)
	}

	// A wrong code is rejected.
	status, _ = doJSON(t, server, "POST", "/api/user/verify-email", "", map[string]string{
		"email": "robin@campus.edu",
		"otp":   "000000",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("wrong otp: expected 401, got %d", status)
	}

	code := lastCodeTo(t, mailer, "robin@campus.edu")
	status, _ = doJSON(t, server, "POST", "/api/user/verify-email", "", map[string]string{
		"email": "robin@campus.edu",
		"otp":   code,
	})
	if status != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d", status)
	}

	var verified bool
	if err := database.QueryRow(`SELECT email_verified FROM users WHERE email = 'robin@campus.edu'`).Scan(&verified); err != nil {
		t.Fatalf("checking verification: %v", err)
	}
	if !verified {
		t.Error("expected email_verified to be set")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	server, _, mailer := setupTestAPI(t)
	registerAndLogin(t, server, "robin@campus.edu")

	status, _ := doJSON(t, server, "POST", "/api/user/forgot-password", "", map[string]string{
		"email": "robin@campus.edu",
	})
	if status != http.StatusOK {
		t.Fatalf("forgot-password: status %d", status)
	}

	code := lastCodeTo(t, mailer, "robin@campus.edu")
	status, _ = doJSON(t, server, "POST", "/api/user/reset-password", "", map[string]string{
		"email":        "robin@campus.edu",
		"otp":          code,
		"new_password": "newpassword456",
	})
	if status != http.StatusOK {
		t.Fatalf("reset-password: status %d", status)
	}

	// Old password no longer works, the new one does.
	status, _ = doJSON(t, server, "POST", "/api/user/login", "", map[string]string{
		"email":    "robin@campus.edu",
		"password": "password123",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("old password: expected 401, got %d", status)
	}
	status, _ = doJSON(t, server, "POST", "/api/user/login", "", map[string]string{
		"email":    "robin@campus.edu",
		"password": "newpassword456",
	})
	if status != http.StatusOK {
		t.Errorf("new password: expected 200, got %d", status)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	server, _, _ := setupTestAPI(t)

	status, _ := doJSON(t, server, "POST", "/api/claims", "", map[string]any{"found_item_id": 1})
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", status)
	}

	status, _ = doJSON(t, server, "POST", "/api/lost-items", "bogus-token", map[string]string{
		"name": "Backpack", "lost_location": "Library",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 with invalid token, got %d", status)
	}
}

func TestProfileUpdateReturnsUser(t *testing.T) {
	server, _, _ := setupTestAPI(t)
	token := registerAndLogin(t, server, "user@campus.edu")

	status, body := doJSON(t, server, "PUT", "/api/user/me", token, map[string]string{
		"name":  "Renamed User",
		"phone": "555-0123",
	})
	if status != http.StatusOK {
		t.Fatalf("update profile: status %d, body %v", status, body)
	}
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected the updated user in the response, got %v", body)
	}
	if user["name"] != "Renamed User" || user["phone"] != "555-0123" {
		t.Errorf("unexpected profile in response: %v", user)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	server, _, _ := setupTestAPI(t)
	token := registerAndLogin(t, server, "user@campus.edu")

	status, _ := doJSON(t, server, "GET", "/api/user/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("me before logout: status %d", status)
	}

	status, _ = doJSON(t, server, "POST", "/api/user/logout", token, nil)
	if status != http.StatusOK {
		t.Fatalf("logout: status %d", status)
	}

	status, _ = doJSON(t, server, "GET", "/api/user/me", token, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 with revoked token, got %d", status)
	}
}

func TestClaimLifecycle(t *testing.T) {
	server, _, mailer := setupTestAPI(t)
	finderToken := registerAndLogin(t, server, "finder@campus.edu")
	claimerToken := registerAndLogin(t, server, "claimer@campus.edu")

	status, body := doJSON(t, server, "POST", "/api/found-items", finderToken, map[string]string{
		"name":            "Silver Watch",
		"found_location":  "Lecture Hall B",
		"pickup_location": "Lobby Desk",
	})
	if status != http.StatusCreated {
		t.Fatalf("create found item: status %d, body %v", status, body)
	}
	item := body["item"].(map[string]any)
	itemID := int64(item["id"].(float64))

	// The found-item listing is public.
	status, body = doJSON(t, server, "GET", "/api/found-items", "", nil)
	if status != http.StatusOK {
		t.Fatalf("list found items: status %d", status)
	}
	if items := body["items"].([]any); len(items) != 1 {
		t.Errorf("expected 1 found item, got %d", len(items))
	}

	status, body = doJSON(t, server, "POST", "/api/claims", claimerToken, map[string]any{
		"found_item_id": itemID,
		"message":       "has my initials on the back",
	})
	if status != http.StatusCreated {
		t.Fatalf("create claim: status %d, body %v", status, body)
	}
	claim := body["claim"].(map[string]any)
	claimID := int64(claim["id"].(float64))
	if claim["status"] != "pending" {
		t.Errorf("expected pending claim, got %v", claim["status"])
	}

	// Duplicate pending claim is a conflict.
	status, _ = doJSON(t, server, "POST", "/api/claims", claimerToken, map[string]any{
		"found_item_id": itemID,
	})
	if status != http.StatusConflict {
		t.Errorf("duplicate claim: expected 409, got %d", status)
	}

	// Only the item poster may list an item's claims.
	itemClaimsPath := fmt.Sprintf("/api/claims/item/%d", itemID)
	status, _ = doJSON(t, server, "GET", itemClaimsPath, claimerToken, nil)
	if status != http.StatusForbidden {
		t.Errorf("claims list as claimer: expected 403, got %d", status)
	}
	status, body = doJSON(t, server, "GET", itemClaimsPath, finderToken, nil)
	if status != http.StatusOK {
		t.Fatalf("claims list as poster: status %d, body %v", status, body)
	}
	if claims := body["claims"].([]any); len(claims) != 1 {
		t.Errorf("expected 1 claim, got %d", len(claims))
	}

	// The claimer may not decide their own claim.
	statusPath := fmt.Sprintf("/api/claims/%d/status", claimID)
	status, _ = doJSON(t, server, "PUT", statusPath, claimerToken, map[string]string{"status": "approved"})
	if status != http.StatusForbidden {
		t.Errorf("self-approve: expected 403, got %d", status)
	}

	status, body = doJSON(t, server, "PUT", statusPath, finderToken, map[string]string{"status": "approved"})
	if status != http.StatusOK {
		t.Fatalf("approve: status %d, body %v", status, body)
	}
	if body["claim"].(map[string]any)["status"] != "approved" {
		t.Errorf("expected approved claim, got %v", body["claim"])
	}

	// Approval notified the claimer with the pickup location.
	var approval *mail.Message
	for _, msg := range mailer.messages() {
		if strings.Contains(msg.Subject, "approved") {
			m := msg
			approval = &m
		}
	}
	if approval == nil {
		t.Fatal("expected an approval notification")
	}
	if approval.To != "claimer@campus.edu" {
		t.Errorf("approval went to %q, want the claimer", approval.To)
	}
	if !strings.Contains(approval.Text, "Lobby Desk") {
		t.Errorf("approval should name the pickup location, got %q", approval.Text)
	}

	// A decided claim is immutable.
	status, _ = doJSON(t, server, "PUT", statusPath, finderToken, map[string]string{"status": "rejected"})
	if status != http.StatusConflict {
		t.Errorf("re-decide: expected 409, got %d", status)
	}

	// The claimer sees the decision in their own listing.
	status, body = doJSON(t, server, "GET", "/api/claims/user", claimerToken, nil)
	if status != http.StatusOK {
		t.Fatalf("my claims: status %d", status)
	}
	mine := body["claims"].([]any)
	if len(mine) != 1 || mine[0].(map[string]any)["status"] != "approved" {
		t.Errorf("expected one approved claim, got %v", mine)
	}
}

func TestFoundReportLifecycle(t *testing.T) {
	server, _, mailer := setupTestAPI(t)
	ownerToken := registerAndLogin(t, server, "owner@campus.edu")
	finderToken := registerAndLogin(t, server, "finder@campus.edu")

	status, body := doJSON(t, server, "POST", "/api/lost-items", ownerToken, map[string]string{
		"name":          "Blue Backpack",
		"lost_location": "Library",
	})
	if status != http.StatusCreated {
		t.Fatalf("create lost item: status %d, body %v", status, body)
	}
	itemID := int64(body["item"].(map[string]any)["id"].(float64))

	// Pickup location is mandatory.
	status, _ = doJSON(t, server, "POST", "/api/found-reports", finderToken, map[string]any{
		"lost_item_id": itemID,
	})
	if status != http.StatusBadRequest {
		t.Errorf("report without pickup location: expected 400, got %d", status)
	}

	status, body = doJSON(t, server, "POST", "/api/found-reports", finderToken, map[string]any{
		"lost_item_id":    itemID,
		"message":         "found it near the stairs",
		"pickup_location": "Front Desk",
	})
	if status != http.StatusCreated {
		t.Fatalf("create report: status %d, body %v", status, body)
	}
	reportID := int64(body["report"].(map[string]any)["id"].(float64))

	// The owner was notified.
	var notified bool
	for _, msg := range mailer.messages() {
		if msg.To == "owner@campus.edu" && strings.Contains(msg.Text, "Front Desk") {
			notified = true
		}
	}
	if !notified {
		t.Error("expected a notification to the item owner naming the pickup location")
	}

	// The finder cannot confirm the return.
	statusPath := fmt.Sprintf("/api/found-reports/%d/status", reportID)
	status, _ = doJSON(t, server, "PUT", statusPath, finderToken, map[string]string{"status": "returned"})
	if status != http.StatusForbidden {
		t.Errorf("finder confirming return: expected 403, got %d", status)
	}

	status, body = doJSON(t, server, "PUT", statusPath, ownerToken, map[string]string{"status": "returned"})
	if status != http.StatusOK {
		t.Fatalf("owner confirming return: status %d, body %v", status, body)
	}
	if body["report"].(map[string]any)["status"] != "returned" {
		t.Errorf("expected returned report, got %v", body["report"])
	}

	// Returned is terminal.
	status, _ = doJSON(t, server, "PUT", statusPath, ownerToken, map[string]string{"status": "pending"})
	if status != http.StatusConflict {
		t.Errorf("reopening returned report: expected 409, got %d", status)
	}

	// Both sides see the report in their listings.
	status, body = doJSON(t, server, "GET", "/api/found-reports/mine", finderToken, nil)
	if status != http.StatusOK || len(body["reports"].([]any)) != 1 {
		t.Errorf("finder listing: status %d, body %v", status, body)
	}
	status, body = doJSON(t, server, "GET", "/api/found-reports/my-items", ownerToken, nil)
	if status != http.StatusOK || len(body["reports"].([]any)) != 1 {
		t.Errorf("owner listing: status %d, body %v", status, body)
	}
}

func TestAdminUserRemoval(t *testing.T) {
	server, database, _ := setupTestAPI(t)
	adminToken := registerAndLogin(t, server, "staff@campus.edu")
	userToken := registerAndLogin(t, server, "user@campus.edu")

	// Promotion happens out of band; re-login to pick up the admin role.
	if _, err := database.Exec(`UPDATE users SET role = 'admin' WHERE email = 'staff@campus.edu'`); err != nil {
		t.Fatalf("promoting admin: %v", err)
	}
	status, body := doJSON(t, server, "POST", "/api/user/login", "", map[string]string{
		"email":    "staff@campus.edu",
		"password": "password123",
	})
	if status != http.StatusOK {
		t.Fatalf("admin login: status %d, body %v", status, body)
	}
	adminToken = body["token"].(string)

	var userID int64
	if err := database.QueryRow(`SELECT id FROM users WHERE email = 'user@campus.edu'`).Scan(&userID); err != nil {
		t.Fatalf("looking up user: %v", err)
	}
	path := fmt.Sprintf("/api/admin/users/%d", userID)

	// Regular users may not remove accounts.
	status, _ = doJSON(t, server, "DELETE", path, userToken, nil)
	if status != http.StatusForbidden {
		t.Errorf("removal by regular user: expected 403, got %d", status)
	}

	status, _ = doJSON(t, server, "DELETE", path, adminToken, nil)
	if status != http.StatusOK {
		t.Errorf("removal by admin: expected 200, got %d", status)
	}

	// The removed account can no longer log in.
	status, _ = doJSON(t, server, "POST", "/api/user/login", "", map[string]string{
		"email":    "user@campus.edu",
		"password": "password123",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("login after removal: expected 401, got %d", status)
	}

	// Removing it again is a 404.
	status, _ = doJSON(t, server, "DELETE", path, adminToken, nil)
	if status != http.StatusNotFound {
		t.Errorf("double removal: expected 404, got %d", status)
	}

	// The freed email can back a fresh account that logs in normally.
	status, body = doJSON(t, server, "POST", "/api/user/register", "", map[string]string{
		"name":        "New Holder",
		"email":       "user@campus.edu",
		"password":    "freshpassword1",
		"roll_number": "CS-2022-007",
	})
	if status != http.StatusCreated {
		t.Fatalf("re-register freed email: status %d, body %v", status, body)
	}
	status, _ = doJSON(t, server, "POST", "/api/user/login", "", map[string]string{
		"email":    "user@campus.edu",
		"password": "freshpassword1",
	})
	if status != http.StatusOK {
		t.Errorf("login as re-registered account: expected 200, got %d", status)
	}
}

func TestLostItemOwnership(t *testing.T) {
	server, _, _ := setupTestAPI(t)
	ownerToken := registerAndLogin(t, server, "owner@campus.edu")
	otherToken := registerAndLogin(t, server, "other@campus.edu")

	status, body := doJSON(t, server, "POST", "/api/lost-items", ownerToken, map[string]string{
		"name":          "Umbrella",
		"lost_location": "Cafeteria",
	})
	if status != http.StatusCreated {
		t.Fatalf("create lost item: status %d, body %v", status, body)
	}
	itemID := int64(body["item"].(map[string]any)["id"].(float64))
	path := fmt.Sprintf("/api/lost-items/%d", itemID)

	// Non-owners cannot update or delete; the item is not acknowledged.
	status, _ = doJSON(t, server, "PUT", path, otherToken, map[string]string{
		"name":          "Umbrella",
		"lost_location": "Gym",
	})
	if status != http.StatusNotFound {
		t.Errorf("update by non-owner: expected 404, got %d", status)
	}
	status, _ = doJSON(t, server, "DELETE", path, otherToken, nil)
	if status != http.StatusNotFound {
		t.Errorf("delete by non-owner: expected 404, got %d", status)
	}

	// The owner's update succeeds and echoes the updated item.
	status, body = doJSON(t, server, "PUT", path, ownerToken, map[string]string{
		"name":          "Black Umbrella",
		"lost_location": "Cafeteria",
	})
	if status != http.StatusOK {
		t.Fatalf("update by owner: status %d, body %v", status, body)
	}
	if item, ok := body["item"].(map[string]any); !ok || item["name"] != "Black Umbrella" {
		t.Errorf("expected the updated item in the response, got %v", body)
	}

	status, _ = doJSON(t, server, "DELETE", path, ownerToken, nil)
	if status != http.StatusOK {
		t.Errorf("delete by owner: expected 200, got %d", status)
	}
	status, _ = doJSON(t, server, "GET", path, "", nil)
	if status != http.StatusNotFound {
		t.Errorf("get deleted item: expected 404, got %d", status)
	}
}
