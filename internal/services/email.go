package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/rocjay1/ledger-sync/internal/models"
)

const (
	communicationScope = "https://communication.azure.com//.default"
	emailAPIVersion    = "2023-03-31"
	haltSubject        = "Ledger Sync - Queue Halted"
)

// Mailer sends ledger alerts through the Azure Communication Services
// email REST API.
type Mailer struct {
	sendURL    string
	sender     string
	cred       azcore.TokenCredential
	httpClient *http.Client
}

// NewMailer reads COMMUNICATION_SERVICES_ENDPOINT and SENDER_EMAIL.
// A nil cred falls back to DefaultAzureCredential.
func NewMailer(cred azcore.TokenCredential) (*Mailer, error) {
	endpoint := os.Getenv("COMMUNICATION_SERVICES_ENDPOINT")
	if endpoint == "" {
		return nil, fmt.Errorf("COMMUNICATION_SERVICES_ENDPOINT environment variable is required")
	}

	sender := os.Getenv("SENDER_EMAIL")
	if sender == "" {
		return nil, fmt.Errorf("SENDER_EMAIL environment variable is required")
	}

	if cred == nil {
		var err error
		if cred, err = newDefaultAzureCredential(); err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
	}

	return &Mailer{
		sendURL:    fmt.Sprintf("%s/emails:send?api-version=%s", endpoint, emailAPIVersion),
		sender:     sender,
		cred:       cred,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type emailAddress struct {
	Address string `json:"address"`
}

type emailRecipients struct {
	To []emailAddress `json:"to"`
}

type emailContent struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type emailRequest struct {
	SenderAddress string          `json:"senderAddress"`
	Content       emailContent    `json:"content"`
	Recipients    emailRecipients `json:"recipients"`
}

func (m *Mailer) newRequest(to []string, subject, html string) emailRequest {
	req := emailRequest{
		SenderAddress: m.sender,
		Content:       emailContent{Subject: subject, HTML: html},
	}
	for _, addr := range to {
		req.Recipients.To = append(req.Recipients.To, emailAddress{Address: addr})
	}
	return req
}

// SendEmail sends one HTML message. The service answers 202 when it has
// accepted the message for delivery.
func (m *Mailer) SendEmail(ctx context.Context, to []string, subject, html string) error {
	token, err := m.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{communicationScope}})
	if err != nil {
		return fmt.Errorf("failed to get communication services token: %w", err)
	}

	body, err := json.Marshal(m.newRequest(to, subject, html))
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.sendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.Token)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email request failed with status %d: %s", resp.StatusCode, detail)
	}

	slog.Info("email accepted", "recipients", to, "subject", subject)
	return nil
}

// SendQueueHaltEmail reports a queue halted on its first item.
func (m *Mailer) SendQueueHaltEmail(ctx context.Context, recipients []string, items []models.QueueItem) error {
	return m.SendEmail(ctx, recipients, haltSubject, RenderQueueHaltBody(items))
}
