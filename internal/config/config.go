package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full daemon configuration. It is read once at startup and
// treated as immutable afterwards; components receive the sections they need
// through their constructors.
type Config struct {
	// Sensor describes the monitored GPIO contact.
	Sensor SensorConfig `yaml:"sensor"`
	// Policy controls cooldown suppression and clear notifications.
	Policy PolicyConfig `yaml:"policy"`
	// Messaging holds the site label and message templates.
	Messaging MessagingConfig `yaml:"messaging"`
	// Twilio configures the SMS API channel (highest priority).
	Twilio TwilioConfig `yaml:"twilio"`
	// Email configures the mail-relay fallback channel.
	Email EmailConfig `yaml:"email"`
	// MQTT configures the optional broker publish channel (lowest priority).
	MQTT MQTTConfig `yaml:"mqtt"`
	// LogFile is the append-only log of transitions and delivery outcomes.
	LogFile string `yaml:"log_file"`
	// LogLevel is the minimum level written to the log ("debug".."fatal").
	LogLevel string `yaml:"log_level"`
	// StatusAddress, when set, enables the read-only gRPC health listener.
	StatusAddress string `yaml:"status_addr"`
}

// SensorConfig describes the detector contact wiring.
type SensorConfig struct {
	// Chip is the GPIO character device name.
	Chip string `yaml:"chip"`
	// Pin is the line offset on the chip (BCM numbering on a Pi).
	Pin int `yaml:"pin"`
	// ActiveHigh maps the raw electrical level to the logical alarm state:
	// true means a high level asserts the alarm.
	ActiveHigh *bool `yaml:"active_high"`
	// DebounceSeconds is the contact settle time enforced by the kernel.
	DebounceSeconds float64 `yaml:"debounce_seconds"`
}

// Debounce returns the debounce period as a duration.
func (c *SensorConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceSeconds * float64(time.Second))
}

// IsActiveHigh reports the configured polarity, defaulting to active-high.
func (c *SensorConfig) IsActiveHigh() bool {
	return c.ActiveHigh == nil || *c.ActiveHigh
}

// PolicyConfig controls when transitions produce notifications.
type PolicyConfig struct {
	// CooldownSeconds is the minimum time between two alarm-raised
	// notifications that are not separated by a clear.
	CooldownSeconds int `yaml:"cooldown_seconds"`
	// SendClear controls whether a cleared alarm produces a notification.
	SendClear *bool `yaml:"send_clear"`
}

// Cooldown returns the suppression window as a duration.
func (c *PolicyConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// SendClearEnabled reports whether clear notifications are on, defaulting to on.
func (c *PolicyConfig) SendClearEnabled() bool {
	return c.SendClear == nil || *c.SendClear
}

// MessagingConfig holds the site label and message templates.
type MessagingConfig struct {
	// SiteName is prepended to every rendered message.
	SiteName string `yaml:"site_name"`
	// AlarmMessage is the template for alarm-raised notifications.
	AlarmMessage string `yaml:"alarm_message"`
	// ClearMessage is the template for alarm-cleared notifications.
	ClearMessage string `yaml:"clear_message"`
}

// TwilioConfig configures the Twilio Messages API channel.
type TwilioConfig struct {
	// AccountSID identifies the Twilio account.
	AccountSID string `yaml:"account_sid"`
	// AuthToken authenticates API calls.
	AuthToken string `yaml:"auth_token"`
	// From is the sending phone number in E.164 form.
	From string `yaml:"from"`
	// Recipients are destination phone numbers in E.164 form.
	Recipients []string `yaml:"recipients"`
}

// Configured reports whether the channel has everything it needs to attempt
// delivery. An unconfigured channel reports failure without network I/O.
func (c *TwilioConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != "" && len(c.Recipients) > 0
}

// EmailConfig configures the authenticated SMTP submission channel.
type EmailConfig struct {
	// Host is the mail submission host.
	Host string `yaml:"host"`
	// Port is the submission port (STARTTLS).
	Port int `yaml:"port"`
	// Username authenticates the submission, may be empty for open relays.
	Username string `yaml:"username"`
	// Password authenticates the submission.
	Password string `yaml:"password"`
	// From is the envelope sender address.
	From string `yaml:"from"`
	// SMSGateways are carrier gateway addresses (short or long form).
	SMSGateways []string `yaml:"sms_gateways"`
	// Recipients are plain email addresses.
	Recipients []string `yaml:"recipients"`
	// ShortGatewaySuffixes mark gateway addresses whose carrier requires the
	// 160-character short form with an empty subject.
	ShortGatewaySuffixes []string `yaml:"short_gateway_suffixes"`
	// TimeoutSeconds bounds each submission.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the submission timeout as a duration.
func (c *EmailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Configured reports whether the channel has a host and at least one recipient.
func (c *EmailConfig) Configured() bool {
	return c.Host != "" && (len(c.SMSGateways) > 0 || len(c.Recipients) > 0)
}

// MQTTConfig configures the optional broker publish channel.
type MQTTConfig struct {
	// Broker is the broker URL, e.g. "tcp://127.0.0.1:1883".
	Broker string `yaml:"broker"`
	// ClientID identifies this daemon to the broker.
	ClientID string `yaml:"client_id"`
	// Username authenticates the connection, optional.
	Username string `yaml:"username"`
	// Password authenticates the connection, optional.
	Password string `yaml:"password"`
	// Topic receives the rendered notification text.
	Topic string `yaml:"topic"`
}

// Configured reports whether the channel has a broker and a topic.
func (c *MQTTConfig) Configured() bool {
	return c.Broker != "" && c.Topic != ""
}

const (
	// DefaultConfigFilename is the default filename for daemon settings.
	DefaultConfigFilename = "gas-alarm-notifier.yaml"

	// DefaultChip is the GPIO character device of the first controller.
	DefaultChip = "gpiochip0"

	// DefaultPin is the monitored line offset (BCM numbering).
	DefaultPin = 17

	// DefaultDebounceSeconds is the contact settle time.
	DefaultDebounceSeconds = 0.2

	// DefaultCooldownSeconds is the suppression window between repeated raises.
	DefaultCooldownSeconds = 300

	// DefaultSMTPPort is the STARTTLS submission port.
	DefaultSMTPPort = 587

	// DefaultEmailTimeoutSeconds bounds each mail submission.
	DefaultEmailTimeoutSeconds = 20

	// DefaultShortGatewaySuffix marks short-form SMS gateway addresses.
	DefaultShortGatewaySuffix = "@vtext.com"

	// DefaultSiteName labels rendered messages when none is configured.
	DefaultSiteName = "Hydrogen Room A"

	// DefaultAlarmMessage is the alarm-raised template.
	DefaultAlarmMessage = "HYDROGEN GAS ALARM"

	// DefaultClearMessage is the alarm-cleared template.
	DefaultClearMessage = "Hydrogen detector returned to normal"

	// DefaultLogFile is the append-only transition and delivery log.
	DefaultLogFile = "gas-alarm-notifier.log"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativePin is returned when the sensor pin offset is negative.
	errNegativePin = errors.New("sensor pin must not be negative")
	// errNegativeDebounce is returned when the debounce period is negative.
	errNegativeDebounce = errors.New("sensor debounce must not be negative")
	// errNegativeCooldown is returned when the cooldown window is negative.
	errNegativeCooldown = errors.New("policy cooldown must not be negative")
	// errBadSMTPPort is returned when the submission port is out of range.
	errBadSMTPPort = errors.New("email port must be between 1 and 65535")
)

// Load reads configuration from the provided path, validates it and fills in
// defaults for unset fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the provided settings for required fields and formatting,
// and applies defaults for anything unset.
//
//nolint:cyclop // A flat run of field checks reads better than helpers per section.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Sensor.Chip == "" {
		cfg.Sensor.Chip = DefaultChip
	}

	if cfg.Sensor.Pin == 0 {
		cfg.Sensor.Pin = DefaultPin
	}

	if cfg.Sensor.Pin < 0 {
		return errNegativePin
	}

	if cfg.Sensor.DebounceSeconds == 0 {
		cfg.Sensor.DebounceSeconds = DefaultDebounceSeconds
	}

	if cfg.Sensor.DebounceSeconds < 0 {
		return errNegativeDebounce
	}

	if cfg.Policy.CooldownSeconds == 0 {
		cfg.Policy.CooldownSeconds = DefaultCooldownSeconds
	}

	if cfg.Policy.CooldownSeconds < 0 {
		return errNegativeCooldown
	}

	if cfg.Messaging.SiteName == "" {
		cfg.Messaging.SiteName = DefaultSiteName
	}

	if cfg.Messaging.AlarmMessage == "" {
		cfg.Messaging.AlarmMessage = DefaultAlarmMessage
	}

	if cfg.Messaging.ClearMessage == "" {
		cfg.Messaging.ClearMessage = DefaultClearMessage
	}

	if cfg.Email.Port == 0 {
		cfg.Email.Port = DefaultSMTPPort
	}

	if cfg.Email.Port < 1 || cfg.Email.Port > 65535 {
		return errBadSMTPPort
	}

	if cfg.Email.TimeoutSeconds <= 0 {
		cfg.Email.TimeoutSeconds = DefaultEmailTimeoutSeconds
	}

	if len(cfg.Email.ShortGatewaySuffixes) == 0 {
		cfg.Email.ShortGatewaySuffixes = []string{DefaultShortGatewaySuffix}
	}

	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogFile
	}

	if cfg.StatusAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", cfg.StatusAddress); err != nil {
			return fmt.Errorf("invalid status address: %w", err)
		}
	}

	return nil
}
