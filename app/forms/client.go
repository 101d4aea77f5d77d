package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clubassist/types"
)

// Creator is the opaque form-persistence capability the model can invoke.
type Creator interface {
	Create(ctx context.Context, owner string, spec types.FormSpec) (*types.Form, error)
}

// Client talks to the form-persistence service.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Create(ctx context.Context, owner string, spec types.FormSpec) (*types.Form, error) {
	payload := struct {
		Owner string `json:"owner"`
		types.FormSpec
	}{Owner: owner, FormSpec: spec}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, types.FunctionExecutionError("create_form", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/forms", bytes.NewReader(body))
	if err != nil {
		return nil, types.FunctionExecutionError("create_form", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, types.FunctionExecutionError("create_form", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.FunctionExecutionError("create_form", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, types.FunctionExecutionError("create_form", fmt.Errorf("status %d: %s", resp.StatusCode, string(data)))
	}

	var form types.Form
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, types.FunctionExecutionError("create_form", err)
	}
	return &form, nil
}
