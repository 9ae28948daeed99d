package license

import "time"

// BindParams carries the bot-supplied identifiers for one validation call.
type BindParams struct {
	SystemHash   string
	TradeMode    TradeMode
	BrokerServer string
	AccountHash  string
}

// BindOutcome reports what the bind/update mutation did.
type BindOutcome struct {
	// FirstTimeUse is true only for the call that performed the binding.
	// Computed from FirstUsedAt before the mutation, which is atomic with
	// the counter updates, so it can never disagree with them.
	FirstTimeUse bool
	// AccountLoginChanged is true when this call rotated a previously
	// recorded non-empty login hash to a different value.
	AccountLoginChanged bool
	// AppendedHistory holds the history entries produced by this call, in
	// append order. The store persists them in the same transaction as the
	// license row.
	AppendedHistory []HistoryEntry
}

// Authorize runs the ordered validation checks against the current record.
// It never mutates the license; any returned error is terminal for the
// call. The caller must already have resolved the record by key (the
// not-found case is the store's ErrLicenseNotFound).
func (l *License) Authorize(now time.Time, p BindParams) error {
	if !l.IsActive {
		return ErrLicenseInactive
	}
	if l.IsExpired(now) {
		return ErrLicenseExpired
	}
	if l.ConfigurationID == nil {
		return ErrNoConfiguration
	}
	if l.IsBound() {
		if *l.SystemHash != p.SystemHash {
			return ErrSystemMismatch
		}
		if l.AccountTradeMode != p.TradeMode {
			return ErrTradeModeMismatch
		}
	}
	// First use: any system hash and trade mode are accepted and become
	// authoritative in Bind.
	return nil
}

// Bind applies the bind/update mutation. It must only be called after
// Authorize succeeded, inside the same exclusive critical section for this
// license; the store guarantees that with a row-level lock.
func (l *License) Bind(now time.Time, p BindParams) BindOutcome {
	var out BindOutcome

	// Daily counter reset is lazy: reset-then-increment the first time a
	// new calendar day is observed. The comparison is by date components,
	// not instants: the store returns last_reset_date as midnight UTC
	// while now carries the server zone, and an instant comparison would
	// reset within the same calendar day whenever the zones differ.
	if beforeCalendarDay(l.LastResetDate, now) {
		l.DailyUsageCount = 0
		l.LastResetDate = truncateToDay(now)
	}

	if l.FirstUsedAt == nil {
		out.FirstTimeUse = true
		l.FirstUsedAt = &now
		systemHash := p.SystemHash
		l.SystemHash = &systemHash
		l.AccountTradeMode = p.TradeMode
		if p.BrokerServer != "" {
			l.BrokerServer = p.BrokerServer
		}
		if p.AccountHash != "" {
			accountHash := p.AccountHash
			l.AccountHash = &accountHash
			out.AppendedHistory = append(out.AppendedHistory, HistoryEntry{
				AccountHash: accountHash,
				Timestamp:   now,
				Action:      HistoryActionInitialSet,
			})
		}
	} else if p.AccountHash != "" && (l.AccountHash == nil || *l.AccountHash != p.AccountHash) {
		// Login rotation beneath the fixed trading account. The old value
		// is appended first so the log reads as a contiguous transition.
		if l.AccountHash != nil && *l.AccountHash != "" {
			out.AppendedHistory = append(out.AppendedHistory, HistoryEntry{
				AccountHash: *l.AccountHash,
				Timestamp:   now,
				Action:      HistoryActionReplaced,
			})
			out.AccountLoginChanged = true
		}
		accountHash := p.AccountHash
		l.AccountHash = &accountHash
		action := HistoryActionUpdated
		if len(out.AppendedHistory) == 0 {
			// Bound without a login on first use; this is the first login
			// ever observed.
			action = HistoryActionInitialSet
		}
		out.AppendedHistory = append(out.AppendedHistory, HistoryEntry{
			AccountHash: accountHash,
			Timestamp:   now,
			Action:      action,
		})
	}

	if !out.FirstTimeUse && p.BrokerServer != "" && p.BrokerServer != l.BrokerServer {
		// Informational only, may drift as the bot reconnects elsewhere.
		l.BrokerServer = p.BrokerServer
	}

	l.History = append(l.History, out.AppendedHistory...)
	l.LastUsedAt = &now
	l.UsageCount++
	l.DailyUsageCount++
	l.UpdatedAt = now

	return out
}
