package license

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TradeMode is the enumerated operating mode a license is authorized for.
type TradeMode int

const (
	TradeModeDemo       TradeMode = 0
	TradeModeRestricted TradeMode = 1
	TradeModeLive       TradeMode = 2
)

// String returns the operator-facing name of the trade mode.
func (m TradeMode) String() string {
	switch m {
	case TradeModeDemo:
		return "demo"
	case TradeModeRestricted:
		return "restricted"
	case TradeModeLive:
		return "live"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// Valid reports whether the mode is one of the enumerated values.
func (m TradeMode) Valid() bool {
	return m >= TradeModeDemo && m <= TradeModeLive
}

// HistoryAction tags an entry in the account hash history log.
type HistoryAction string

const (
	// HistoryActionInitialSet marks the very first login hash observed.
	HistoryActionInitialSet HistoryAction = "initial_set"
	// HistoryActionUpdated marks a new login hash taking effect.
	HistoryActionUpdated HistoryAction = "updated"
	// HistoryActionReplaced marks the outgoing hash at the moment of a rotation.
	HistoryActionReplaced HistoryAction = "replaced"
)

// HistoryEntry is one record in the append-only account-login audit trail.
// Entries are never edited or reordered after the fact.
type HistoryEntry struct {
	AccountHash string        `json:"account_hash"`
	Timestamp   time.Time     `json:"timestamp"`
	Action      HistoryAction `json:"action"`
}

// Status is the derived lifecycle state of a license.
type Status string

const (
	StatusInactive     Status = "Inactive"
	StatusExpired      Status = "Expired"
	StatusNotBound     Status = "Not Bound"
	StatusBoundNoLogin Status = "Bound - No Login"
	StatusExpiringSoon Status = "Expiring Soon"
	StatusActive       Status = "Active"
)

// ExpiringSoonWindow is how far ahead of expiry a license is reported as
// expiring soon.
const ExpiringSoonWindow = 30 * 24 * time.Hour

// DefaultValidity is applied when a license is issued without an explicit
// expiry timestamp.
const DefaultValidity = 365 * 24 * time.Hour

// License is the capability token issued per trading account.
//
// SystemHash is the primary identifier: nil until the first successful
// validation, immutable and globally unique afterwards. AccountHash is the
// secondary login identifier and may rotate; every rotation is recorded in
// History.
type License struct {
	ID              int64
	Key             string
	ClientID        int64
	ConfigurationID *int64

	SystemHash       *string
	AccountHash      *string
	History          []HistoryEntry
	BrokerServer     string
	AccountTradeMode TradeMode

	ExpiresAt time.Time
	IsActive  bool

	FirstUsedAt     *time.Time
	LastUsedAt      *time.Time
	UsageCount      uint64
	DailyUsageCount uint64
	LastResetDate   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GenerateKey returns a fresh opaque license key. The key is the only
// secret handed to the bot, so it carries no structure beyond uniqueness.
func GenerateKey() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NewParams carries the operator-supplied fields for issuing a license.
type NewParams struct {
	ClientID  int64
	TradeMode TradeMode
	ExpiresAt time.Time
}

// ConfigurationResolver supplies the configuration reference at issue time.
// Passing the resolver explicitly keeps license creation free of hidden
// framework-level side effects; a nil resolver issues an unassigned
// (non-functional, not erroneous) license.
type ConfigurationResolver func() *int64

// New issues an unbound license. The expiry defaults to now+DefaultValidity
// when not supplied.
func New(now time.Time, p NewParams, resolve ConfigurationResolver) (*License, error) {
	if !p.TradeMode.Valid() {
		return nil, fmt.Errorf("invalid trade mode %d", int(p.TradeMode))
	}
	expires := p.ExpiresAt
	if expires.IsZero() {
		expires = now.Add(DefaultValidity)
	}
	var configID *int64
	if resolve != nil {
		configID = resolve()
	}
	return &License{
		Key:              GenerateKey(),
		ClientID:         p.ClientID,
		ConfigurationID:  configID,
		AccountTradeMode: p.TradeMode,
		ExpiresAt:        expires,
		IsActive:         true,
		LastResetDate:    truncateToDay(now),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// IsExpired reports whether the license is past its expiry timestamp.
func (l *License) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// IsExpiringSoon reports whether the license expires within the
// ExpiringSoonWindow.
func (l *License) IsExpiringSoon(now time.Time) bool {
	return now.Add(ExpiringSoonWindow).After(l.ExpiresAt)
}

// IsBound reports whether the license has been bound to a trading account.
func (l *License) IsBound() bool {
	return l.SystemHash != nil && *l.SystemHash != ""
}

// HasLogin reports whether a login hash has been observed.
func (l *License) HasLogin() bool {
	return l.AccountHash != nil && *l.AccountHash != ""
}

// IsValid reports whether the license is usable for trading right now.
// A license without an assigned configuration is never valid.
func (l *License) IsValid(now time.Time) bool {
	return l.IsActive && !l.IsExpired(now) && l.ConfigurationID != nil
}

// Status computes the derived lifecycle state. It is never stored, so it
// cannot disagree with the underlying fields.
func (l *License) Status(now time.Time) Status {
	switch {
	case !l.IsActive:
		return StatusInactive
	case l.IsExpired(now):
		return StatusExpired
	case !l.IsBound():
		return StatusNotBound
	case !l.HasLogin():
		return StatusBoundNoLogin
	case l.IsExpiringSoon(now):
		return StatusExpiringSoon
	default:
		return StatusActive
	}
}

// truncateToDay drops the time-of-day component, keeping the calendar date
// in the location of t.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// beforeCalendarDay reports whether a falls on an earlier calendar date
// than b. Each value is read in its own location, so the result holds
// even when the two carry different time zones.
func beforeCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
