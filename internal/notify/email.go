package notify

import (
	"context"
	"strings"

	mail "gopkg.in/mail.v2"

	"github.com/oshokin/gas-alarm-notifier/internal/config"
	"github.com/oshokin/gas-alarm-notifier/internal/logger"
)

// shortMessageLimit is the body length carriers accept on short-form SMS
// gateways (single 7-bit SMS segment).
const shortMessageLimit = 160

// EmailChannel delivers over an authenticated, STARTTLS-encrypted mail
// submission. Configured destinations are partitioned into up to three
// buckets, each sent as a separate message:
//
//   - short-form SMS gateway addresses: body truncated to 160 characters,
//     empty subject (carriers reject or mangle subjects),
//   - long-form MMS/other gateway addresses: full body, empty subject,
//   - plain email addresses: full body, site label as subject.
type EmailChannel struct {
	cfg *config.EmailConfig

	// subject is used for the plain-email bucket only.
	subject string

	// send submits one message; swapped out in tests.
	send func(m *mail.Message) error
}

// NewEmailChannel creates the channel. subject labels plain-email messages.
func NewEmailChannel(cfg *config.EmailConfig, subject string) *EmailChannel {
	c := &EmailChannel{
		cfg:     cfg,
		subject: subject,
	}
	c.send = c.submit

	return c
}

// Name identifies the channel in delivery logs.
func (c *EmailChannel) Name() string {
	return "email"
}

// Send partitions recipients and submits one message per non-empty bucket.
// It succeeds when at least one bucket was sent, and reports failure
// without any I/O when no recipients are configured at all.
func (c *EmailChannel) Send(ctx context.Context, text string) bool {
	if !c.cfg.Configured() {
		logger.Debug(ctx, "Email channel not configured, skipping")

		return false
	}

	short, long := partitionGateways(c.cfg.SMSGateways, c.cfg.ShortGatewaySuffixes)

	sent := 0

	if len(short) > 0 && c.sendBucket(ctx, short, truncate(text, shortMessageLimit), "") {
		sent++
	}

	if len(long) > 0 && c.sendBucket(ctx, long, text, "") {
		sent++
	}

	if len(c.cfg.Recipients) > 0 && c.sendBucket(ctx, c.cfg.Recipients, text, c.subject) {
		sent++
	}

	logger.InfoKV(ctx, "Email delivery finished",
		"buckets_sent", sent,
		"short", len(short),
		"long", len(long),
		"plain", len(c.cfg.Recipients))

	return sent > 0
}

// sendBucket submits one message to a recipient bucket.
func (c *EmailChannel) sendBucket(ctx context.Context, to []string, body, subject string) bool {
	m := mail.NewMessage()
	m.SetHeader("From", c.cfg.From)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := c.send(m); err != nil {
		logger.ErrorKV(ctx, "Mail submission failed", "recipients", len(to), "error", err)

		return false
	}

	return true
}

// submit dials the submission host with STARTTLS and a bounded timeout.
func (c *EmailChannel) submit(m *mail.Message) error {
	d := mail.NewDialer(c.cfg.Host, c.cfg.Port, c.cfg.Username, c.cfg.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.Timeout = c.cfg.Timeout()

	return d.DialAndSend(m)
}

// partitionGateways splits gateway addresses into the short-form bucket
// (suffix match, case-insensitive) and the long-form bucket.
func partitionGateways(gateways, shortSuffixes []string) (short, long []string) {
	for _, addr := range gateways {
		if isShortGateway(addr, shortSuffixes) {
			short = append(short, addr)
		} else {
			long = append(long, addr)
		}
	}

	return short, long
}

// isShortGateway reports whether addr belongs to a short-form carrier gateway.
func isShortGateway(addr string, suffixes []string) bool {
	lowered := strings.ToLower(addr)

	for _, suffix := range suffixes {
		if strings.HasSuffix(lowered, strings.ToLower(suffix)) {
			return true
		}
	}

	return false
}

// truncate clips s to at most limit bytes. Gateway bodies are plain ASCII,
// so byte truncation matches the carrier's character limit.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	return s[:limit]
}
