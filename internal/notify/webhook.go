package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	HeaderSignature  = "X-Signature"
	HeaderDeliveryID = "X-Delivery-Id"
)

// Webhook POSTs each notification as JSON to URL, signed with Secret.
// Signature header is base64(HMAC_SHA256(body)). There is no retry.
type Webhook struct {
	HTTPClient *http.Client
	URL        string
	Secret     string
	Timeout    time.Duration
}

func (w Webhook) Notify(ctx context.Context, n Notification) error {
	if w.URL == "" || w.Secret == "" {
		return fmt.Errorf("webhook notifier: missing url or secret")
	}
	client := w.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderSignature, Sign(body, w.Secret))
	req.Header.Set(HeaderDeliveryID, uuid.NewString())

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if len(b) > 0 {
			return fmt.Errorf("webhook notifier: status=%d body=%s", resp.StatusCode, string(b))
		}
		return fmt.Errorf("webhook notifier: status=%d", resp.StatusCode)
	}
	return nil
}

// Sign returns base64(HMAC_SHA256(body)) with secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature is what receivers run on the raw body.
func VerifySignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(body, secret)), []byte(signature))
}
