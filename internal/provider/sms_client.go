package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SMSClient talks to the SMS gateway's messaging endpoint. It is built once
// at process start with injected credentials and shared across deliveries.
type SMSClient struct {
	url      string
	username string
	apiKey   string
	client   *http.Client
}

func NewSMSClient(url, username, apiKey string) *SMSClient {
	return &SMSClient{
		url:      url,
		username: username,
		apiKey:   apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type smsRequest struct {
	Username string `json:"username"`
	To       string `json:"to"`
	Message  string `json:"message"`
	From     string `json:"from,omitempty"`
	Enqueue  int    `json:"enqueue"`
}

type smsResponse struct {
	SMSMessageData struct {
		Message    string      `json:"Message"`
		Recipients []Recipient `json:"Recipients"`
	} `json:"SMSMessageData"`
}

func (c *SMSClient) Send(ctx context.Context, body, sender string, recipients []string, enableQueueing bool) ([]Recipient, error) {
	enqueue := 0
	if enableQueueing {
		enqueue = 1
	}

	reqBody, err := json.Marshal(smsRequest{
		Username: c.username,
		To:       strings.Join(recipients, ","),
		Message:  body,
		From:     sender,
		Enqueue:  enqueue,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiKey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: unexpected status code %d body=%q", ErrUnavailable, resp.StatusCode, string(raw))
	}

	var sr smsResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return nil, fmt.Errorf("%w: failed to decode json: %v body=%q", ErrUnavailable, err, string(raw))
	}

	return sr.SMSMessageData.Recipients, nil
}
