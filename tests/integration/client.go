package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"kassa/internal/models"
)

// TestClient drives a running API instance over HTTP with Basic Auth
// credentials. The suite is skipped unless KASSA_API_URL is set, so it never
// runs against nothing in CI.
type TestClient struct {
	BaseURL    string
	Email      string
	Password   string
	HTTPClient *http.Client
}

func NewTestClient(baseURL, email, password string) *TestClient {
	return &TestClient{
		BaseURL:  baseURL,
		Email:    email,
		Password: password,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RequireAPI skips the test unless an API base URL is configured.
func RequireAPI(t *testing.T) string {
	t.Helper()
	baseURL := os.Getenv("KASSA_API_URL")
	if baseURL == "" {
		t.Skip("KASSA_API_URL not set, skipping integration test")
	}
	return baseURL
}

func (c *TestClient) makeRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.SetBasicAuth(c.Email, c.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return out
}

// Purchase attempts a purchase and returns the response with its status code.
func (c *TestClient) Purchase(t *testing.T, req models.PurchaseRequest) (*models.PurchaseResponse, int) {
	resp := c.makeRequest(t, "POST", "/api/v1/tickets/purchase", req)
	if resp.StatusCode != http.StatusCreated {
		resp.Body.Close()
		return nil, resp.StatusCode
	}
	out := decodeBody[models.PurchaseResponse](t, resp)
	return &out, http.StatusCreated
}

func (c *TestClient) MyTickets(t *testing.T) []models.TicketListItem {
	resp := c.makeRequest(t, "GET", "/api/v1/tickets/my", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 listing tickets, got %d", resp.StatusCode)
	}
	return decodeBody[[]models.TicketListItem](t, resp)
}

func (c *TestClient) RequestRefund(t *testing.T, ticketID int64, reason string) (*models.Refund, int) {
	resp := c.makeRequest(t, "POST",
		"/api/v1/tickets/"+itoa(ticketID)+"/refund-request",
		models.RefundRequestCreate{Reason: reason})
	if resp.StatusCode != http.StatusCreated {
		resp.Body.Close()
		return nil, resp.StatusCode
	}
	out := decodeBody[models.Refund](t, resp)
	return &out, http.StatusCreated
}

func (c *TestClient) ApproveRefund(t *testing.T, refundID int64) (*models.Refund, int) {
	resp := c.makeRequest(t, "POST", "/api/v1/refunds/"+itoa(refundID)+"/approve", nil)
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, resp.StatusCode
	}
	out := decodeBody[models.Refund](t, resp)
	return &out, http.StatusOK
}

func (c *TestClient) SeatState(t *testing.T, sessionID, ticketTypeID int64) *models.SeatStateResponse {
	resp := c.makeRequest(t, "GET",
		"/api/v1/seats/state?session_id="+itoa(sessionID)+"&ticket_type_id="+itoa(ticketTypeID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 for seat state, got %d", resp.StatusCode)
	}
	out := decodeBody[models.SeatStateResponse](t, resp)
	return &out
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
