package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"notification-center/internal/config"
	"notification-center/internal/models"
)

// SMS delivers notifications through the Twilio REST API.
type SMS struct {
	cfg    config.Config
	client *http.Client
}

func NewSMS(cfg config.Config) *SMS {
	return &SMS{cfg: cfg, client: &http.Client{}}
}

func (s *SMS) Send(ctx context.Context, n models.Notification, address string) error {
	accountSID := s.cfg.SMS.AccountSID
	authToken := s.cfg.SMS.AuthToken
	fromNumber := s.cfg.SMS.FromNumber

	if accountSID == "" || authToken == "" || fromNumber == "" {
		return fmt.Errorf("missing SMS configuration: AccountSID, AuthToken, or FromNumber is empty")
	}
	if !strings.HasPrefix(address, "+") {
		return fmt.Errorf("phone number %q for recipient %d must start with +", address, n.RecipientID)
	}

	urlStr := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", accountSID)
	msgData := url.Values{}
	msgData.Set("To", address)
	msgData.Set("From", fromNumber)
	msgData.Set("Body", fmt.Sprintf("%s\n%s", n.Title, n.Message))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, strings.NewReader(msgData.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create SMS request for %s: %w", address, err)
	}
	req.SetBasicAuth(accountSID, authToken)
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS to %s: %w", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("twilio API returned status %d for %s", resp.StatusCode, address)
	}
	return nil
}
