package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"campusreserve/internal/validation"
	"campusreserve/pkg/config"
	"campusreserve/pkg/token"
)

type flowOptions struct {
	BaseURL    string
	Secret     string
	Issuer     string
	Audience   string
	ResourceID int64
	Date       string
	From       string
	To         string
	Attendees  int
	// Reject, when set, rejects with this message instead of approving.
	Reject string
	Client *http.Client
}

func newFlowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Submit a reservation as a requester, then review it as a manager",
		RunE:  runFlowCmd,
	}
	cmd.Flags().String("base-url", "", "API base url (defaults to DEVFLOW_BASE_URL or http://localhost<HTTP_ADDR>)")
	cmd.Flags().String("secret", "", "Signing secret (defaults to AUTH_JWT_SECRET)")
	cmd.Flags().Int64("resource", 1, "Resource id to book")
	cmd.Flags().String("date", "", "Booking date YYYY-MM-DD (defaults to next weekday)")
	cmd.Flags().String("from", "08:00", "Start time")
	cmd.Flags().String("to", "09:00", "End time")
	cmd.Flags().Int("attendees", 5, "Number of attendees")
	cmd.Flags().String("reject", "", "Reject with this message instead of approving")
	return cmd
}

func runFlowCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	opts := flowOptions{Secret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.Issuer, Audience: cfg.Auth.Audience}
	opts.BaseURL, _ = cmd.Flags().GetString("base-url")
	if s, _ := cmd.Flags().GetString("secret"); s != "" {
		opts.Secret = s
	}
	opts.ResourceID, _ = cmd.Flags().GetInt64("resource")
	opts.Date, _ = cmd.Flags().GetString("date")
	opts.From, _ = cmd.Flags().GetString("from")
	opts.To, _ = cmd.Flags().GetString("to")
	opts.Attendees, _ = cmd.Flags().GetInt("attendees")
	opts.Reject, _ = cmd.Flags().GetString("reject")

	if opts.BaseURL == "" {
		opts.BaseURL = config.Lookup("DEVFLOW_BASE_URL")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL(cfg.HTTPAddr)
	}
	if opts.Date == "" {
		opts.Date = nextWeekday(time.Now().In(cfg.Booking.Location)).Format(validation.DateLayout)
	}
	return runFlow(cmd.Context(), cmd.OutOrStdout(), opts)
}

func runFlow(ctx context.Context, out io.Writer, opts flowOptions) error {
	if opts.Secret == "" {
		return errors.New("missing --secret (or AUTH_JWT_SECRET in env/.env)")
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 15 * time.Second}
	}
	base := strings.TrimRight(opts.BaseURL, "/")

	now := time.Now()
	requester, err := token.Issue(opts.Secret, opts.Issuer, opts.Audience, "devflow-requester", "Devflow Requester", []string{"requester"}, now, time.Hour)
	if err != nil {
		return err
	}
	manager, err := token.Issue(opts.Secret, opts.Issuer, opts.Audience, "devflow-manager", "Devflow Manager", []string{"manager"}, now, time.Hour)
	if err != nil {
		return err
	}

	var created struct {
		ID     int64 `json:"id"`
		Status int   `json:"status"`
	}
	status, err := call(ctx, opts.Client, http.MethodPost, base+"/v1/reservations", requester, map[string]any{
		"resourceId":          opts.ResourceID,
		"activityDescription": "devflow smoke test",
		"numberOfAttendees":   opts.Attendees,
		"startDate":           opts.Date,
		"endDate":             opts.Date,
		"startTime":           opts.From,
		"endTime":             opts.To,
	}, &created)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fmt.Fprintf(out, "submitted reservation %d (HTTP %d, status %d)\n", created.ID, status, created.Status)

	path := fmt.Sprintf("%s/v1/reservations/%d", base, created.ID)
	var resolved struct {
		Status          int     `json:"status"`
		ResponseMessage *string `json:"responseMessage"`
	}
	if opts.Reject != "" {
		status, err = call(ctx, opts.Client, http.MethodPost, path+"/reject", manager, map[string]string{"message": opts.Reject}, &resolved)
	} else {
		status, err = call(ctx, opts.Client, http.MethodPost, path+"/approve", manager, map[string]string{"message": "approved by devflow"}, &resolved)
	}
	if err != nil {
		return fmt.Errorf("review: %w", err)
	}
	msg := ""
	if resolved.ResponseMessage != nil {
		msg = *resolved.ResponseMessage
	}
	fmt.Fprintf(out, "reviewed reservation %d (HTTP %d, status %d, message %q)\n", created.ID, status, resolved.Status, msg)

	var timeline struct {
		Items []struct {
			EventType string `json:"eventType"`
			Actor     string `json:"actor"`
		} `json:"items"`
	}
	if _, err := call(ctx, opts.Client, http.MethodGet, path+"/events", requester, nil, &timeline); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	for _, e := range timeline.Items {
		fmt.Fprintf(out, "event %s by %s\n", e.EventType, e.Actor)
	}
	return nil
}

// call sends body as JSON and decodes a 2xx response into dst. Error envelopes come back as errors.
func call(ctx context.Context, client *http.Client, method, url, tok string, body, dst any) (int, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if dst != nil {
		if err := json.Unmarshal(raw, dst); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func defaultBaseURL(httpAddr string) string {
	if strings.HasPrefix(httpAddr, ":") {
		return "http://localhost" + httpAddr
	}
	return "http://" + httpAddr
}

// nextWeekday returns the next Monday-to-Friday date strictly after now.
func nextWeekday(now time.Time) time.Time {
	d := now.AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
