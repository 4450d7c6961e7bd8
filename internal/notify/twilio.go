package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/oshokin/gas-alarm-notifier/internal/config"
	"github.com/oshokin/gas-alarm-notifier/internal/logger"
)

const (
	// twilioAPIBase is the Twilio REST API host.
	twilioAPIBase = "https://api.twilio.com"

	// twilioTimeout bounds each API call so a stuck network call cannot
	// freeze the evaluation loop past a few seconds.
	twilioTimeout = 10 * time.Second
)

// TwilioChannel sends the message to every configured phone number through
// the Twilio Messages API. It is the highest-priority channel.
type TwilioChannel struct {
	client *resty.Client
	cfg    *config.TwilioConfig
}

// NewTwilioChannel creates the channel. The client is built even when the
// channel is unconfigured; Send short-circuits before any network I/O.
func NewTwilioChannel(cfg *config.TwilioConfig) *TwilioChannel {
	client := resty.New().
		SetBaseURL(twilioAPIBase).
		SetTimeout(twilioTimeout)

	return &TwilioChannel{
		client: client,
		cfg:    cfg,
	}
}

// Name identifies the channel in delivery logs.
func (c *TwilioChannel) Name() string {
	return "twilio"
}

// Send posts one message per recipient. It succeeds only when every
// configured recipient was accepted, so a partial outage falls through to
// the next channel rather than silently paging half the recipient list.
func (c *TwilioChannel) Send(ctx context.Context, text string) bool {
	if !c.cfg.Configured() {
		logger.Debug(ctx, "Twilio channel not configured, skipping")

		return false
	}

	accepted := 0

	for _, to := range c.cfg.Recipients {
		if c.sendOne(ctx, to, text) {
			accepted++
		}
	}

	logger.InfoKV(ctx, "Twilio delivery finished", "accepted", accepted, "recipients", len(c.cfg.Recipients))

	return accepted == len(c.cfg.Recipients)
}

// sendOne posts a single message and reports whether the API accepted it.
func (c *TwilioChannel) sendOne(ctx context.Context, to, text string) bool {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken).
		SetFormData(map[string]string{
			"To":   to,
			"From": c.cfg.From,
			"Body": text,
		}).
		Post(fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", c.cfg.AccountSID))
	if err != nil {
		logger.ErrorKV(ctx, "Twilio API call failed", "to", to, "error", err)

		return false
	}

	if resp.IsError() {
		logger.ErrorKV(ctx, "Twilio API rejected message", "to", to, "status", resp.StatusCode())

		return false
	}

	return true
}
