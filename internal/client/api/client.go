// Package api implements the repository contract over the backend HTTP
// API. It also carries the session: Login stores the bearer token used by
// every subsequent call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mpetrenko/shiftnotes/internal/common"
	"github.com/mpetrenko/shiftnotes/internal/models"
)

type Client struct {
	baseURL string
	httpc   *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// IsAuthorized reports whether a login token is held.
func (c *Client) IsAuthorized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// Logout drops the stored token.
func (c *Client) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type errorResponse struct {
	Error string `json:"error"`
}

// do performs one API call and decodes the response envelope into out
// (which may be nil for 204 responses). Non-2xx statuses map back to the
// shared sentinel errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
		reqBody = bytes.NewReader(b)
	}

	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.bearer(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
		return nil
	}

	var apiErr errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	msg := apiErr.Error
	if msg == "" {
		msg = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrorUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrorPartialCascade, msg)
	default:
		return fmt.Errorf("%w: %s", common.ErrorPersistence, msg)
	}
}

// Ping checks server reachability.
func (c *Client) Ping(ctx context.Context) error {
	var resp map[string]string
	return c.do(ctx, http.MethodGet, "/api/ping", nil, &resp)
}

// Register creates an account and returns its id.
func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	var resp map[string]string
	err := c.do(ctx, http.MethodPost, "/api/register",
		map[string]string{"username": username, "password": password}, &resp)
	if err != nil {
		return "", err
	}
	return resp["id"], nil
}

// Login authenticates and stores the access token for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp map[string]string
	err := c.do(ctx, http.MethodPost, "/api/login",
		map[string]string{"username": username, "password": password}, &resp)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.token = resp["token"]
	c.mu.Unlock()
	return nil
}

func (c *Client) ListShifts(ctx context.Context) ([]models.Shift, error) {
	var resp struct {
		Shifts []models.Shift `json:"shifts"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/shifts", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Shifts, nil
}

func (c *Client) CreateShift(ctx context.Context, name string) (*models.Shift, error) {
	var resp struct {
		Shift *models.Shift `json:"shift"`
	}
	err := c.do(ctx, http.MethodPost, "/api/shifts", map[string]string{"name": name}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Shift, nil
}

func (c *Client) RenameShift(ctx context.Context, shiftID, name string) (*models.Shift, error) {
	var resp struct {
		Shift *models.Shift `json:"shift"`
	}
	err := c.do(ctx, http.MethodPut, "/api/shifts/"+shiftID, map[string]string{"name": name}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Shift, nil
}

func (c *Client) DeleteShift(ctx context.Context, shiftID string) error {
	return c.do(ctx, http.MethodDelete, "/api/shifts/"+shiftID, nil, nil)
}

func (c *Client) ListPatients(ctx context.Context, shiftID string) ([]models.Patient, error) {
	var resp struct {
		Patients []models.Patient `json:"patients"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/shifts/"+shiftID+"/patients", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Patients, nil
}

func (c *Client) CreatePatient(ctx context.Context, shiftID, name string) (*models.Patient, error) {
	var resp struct {
		Patient *models.Patient `json:"patient"`
	}
	err := c.do(ctx, http.MethodPost, "/api/shifts/"+shiftID+"/patients",
		map[string]string{"name": name}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Patient, nil
}

func (c *Client) UpdatePatient(ctx context.Context, patientID string, upd models.PatientUpdate) (*models.Patient, error) {
	body := map[string]any{}
	if upd.Name != nil {
		body["name"] = *upd.Name
	}
	if upd.Archived != nil {
		body["archived"] = *upd.Archived
	}

	var resp struct {
		Patient *models.Patient `json:"patient"`
	}
	err := c.do(ctx, http.MethodPut, "/api/patients/"+patientID, body, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Patient, nil
}

func (c *Client) DeletePatient(ctx context.Context, patientID string) error {
	return c.do(ctx, http.MethodDelete, "/api/patients/"+patientID, nil, nil)
}

func (c *Client) ListNotes(ctx context.Context, patientID string) ([]models.Note, error) {
	var resp struct {
		Notes []models.Note `json:"notes"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/patients/"+patientID+"/notes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notes, nil
}

func (c *Client) CreateNote(ctx context.Context, patientID, content string) (*models.Note, error) {
	var resp struct {
		Note *models.Note `json:"note"`
	}
	err := c.do(ctx, http.MethodPost, "/api/patients/"+patientID+"/notes",
		map[string]string{"content": content}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Note, nil
}

func (c *Client) UpdateNote(ctx context.Context, noteID, content string) (*models.Note, error) {
	var resp struct {
		Note *models.Note `json:"note"`
	}
	err := c.do(ctx, http.MethodPut, "/api/notes/"+noteID, map[string]string{"content": content}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Note, nil
}

func (c *Client) DeleteNote(ctx context.Context, noteID string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+noteID, nil, nil)
}
