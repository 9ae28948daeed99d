package license

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bindNow = time.Date(2025, 6, 20, 10, 30, 0, 0, time.UTC)

func boundLicense(t *testing.T) *License {
	t.Helper()
	lic := newTestLicense(t, bindNow)
	err := lic.Authorize(bindNow, BindParams{SystemHash: "S1", TradeMode: TradeModeDemo})
	require.NoError(t, err)
	lic.Bind(bindNow, BindParams{SystemHash: "S1", TradeMode: TradeModeDemo})
	return lic
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*License)
		params  BindParams
		wantErr error
	}{
		{
			name:   "first use accepts any system hash and mode",
			mutate: func(l *License) {},
			params: BindParams{SystemHash: "anything", TradeMode: TradeModeLive},
		},
		{
			name:    "inactive license",
			mutate:  func(l *License) { l.IsActive = false },
			params:  BindParams{SystemHash: "S1", TradeMode: TradeModeDemo},
			wantErr: ErrLicenseInactive,
		},
		{
			name:    "expired license",
			mutate:  func(l *License) { l.ExpiresAt = bindNow.Add(-time.Second) },
			params:  BindParams{SystemHash: "S1", TradeMode: TradeModeDemo},
			wantErr: ErrLicenseExpired,
		},
		{
			name:    "inactive reported before expired",
			mutate:  func(l *License) { l.IsActive = false; l.ExpiresAt = bindNow.Add(-time.Second) },
			params:  BindParams{SystemHash: "S1", TradeMode: TradeModeDemo},
			wantErr: ErrLicenseInactive,
		},
		{
			name:    "unassigned configuration",
			mutate:  func(l *License) { l.ConfigurationID = nil },
			params:  BindParams{SystemHash: "S1", TradeMode: TradeModeDemo},
			wantErr: ErrNoConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lic := newTestLicense(t, bindNow)
			tt.mutate(lic)
			err := lic.Authorize(bindNow, tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// Scenario: new license, first call binds S1 / demo and becomes authoritative.
func TestBindFirstUse(t *testing.T) {
	lic := newTestLicense(t, bindNow)

	require.NoError(t, lic.Authorize(bindNow, BindParams{SystemHash: "S1", TradeMode: TradeModeDemo}))
	out := lic.Bind(bindNow, BindParams{
		SystemHash:   "S1",
		TradeMode:    TradeModeDemo,
		BrokerServer: "demo.broker.com",
	})

	assert.True(t, out.FirstTimeUse)
	assert.False(t, out.AccountLoginChanged)
	require.NotNil(t, lic.SystemHash)
	assert.Equal(t, "S1", *lic.SystemHash)
	assert.Equal(t, "demo.broker.com", lic.BrokerServer)
	assert.Equal(t, uint64(1), lic.UsageCount)
	assert.Equal(t, uint64(1), lic.DailyUsageCount)
	require.NotNil(t, lic.FirstUsedAt)
	assert.Equal(t, bindNow, *lic.FirstUsedAt)
	assert.Empty(t, lic.History, "no login hash supplied, no history entry")
}

// Scenario: second call from a different trading account fails and the
// record is untouched.
func TestAuthorizeSystemMismatch(t *testing.T) {
	lic := boundLicense(t)
	before := *lic

	err := lic.Authorize(bindNow.Add(time.Minute), BindParams{SystemHash: "S2", TradeMode: TradeModeDemo})
	assert.ErrorIs(t, err, ErrSystemMismatch)
	assert.Equal(t, before, *lic, "failed authorization must not mutate the record")
}

// Scenario: same account, wrong trade mode.
func TestAuthorizeTradeModeMismatch(t *testing.T) {
	lic := boundLicense(t)

	err := lic.Authorize(bindNow.Add(time.Minute), BindParams{SystemHash: "S1", TradeMode: TradeModeRestricted})
	assert.ErrorIs(t, err, ErrTradeModeMismatch)
}

// Round-trip: the bound account with the bound mode always revalidates
// until expiry.
func TestAuthorizeRoundTrip(t *testing.T) {
	lic := boundLicense(t)

	for _, elapsed := range []time.Duration{time.Second, time.Hour, 200 * 24 * time.Hour} {
		err := lic.Authorize(bindNow.Add(elapsed), BindParams{SystemHash: "S1", TradeMode: TradeModeDemo})
		assert.NoError(t, err, "elapsed %s", elapsed)
	}
}

func TestBindFirstUseWithLogin(t *testing.T) {
	lic := newTestLicense(t, bindNow)

	out := lic.Bind(bindNow, BindParams{
		SystemHash:  "S1",
		TradeMode:   TradeModeDemo,
		AccountHash: "A1",
	})

	assert.True(t, out.FirstTimeUse)
	assert.False(t, out.AccountLoginChanged)
	require.Len(t, lic.History, 1)
	assert.Equal(t, "A1", lic.History[0].AccountHash)
	assert.Equal(t, HistoryActionInitialSet, lic.History[0].Action)
}

// Scenario: A1 then A2 leaves [..., {A1 replaced}, {A2 updated}] and
// reports the login change.
func TestBindLoginRotation(t *testing.T) {
	lic := newTestLicense(t, bindNow)
	lic.Bind(bindNow, BindParams{SystemHash: "S1", TradeMode: TradeModeDemo, AccountHash: "A1"})

	later := bindNow.Add(time.Hour)
	out := lic.Bind(later, BindParams{SystemHash: "S1", TradeMode: TradeModeDemo, AccountHash: "A2"})

	assert.False(t, out.FirstTimeUse)
	assert.True(t, out.AccountLoginChanged)
	require.Len(t, lic.History, 3)
	assert.Equal(t, HistoryActionInitialSet, lic.History[0].Action)
	assert.Equal(t, "A1", lic.History[1].AccountHash)
	assert.Equal(t, HistoryActionReplaced, lic.History[1].Action)
	assert.Equal(t, "A2", lic.History[2].AccountHash)
	assert.Equal(t, HistoryActionUpdated, lic.History[2].Action)
	require.NotNil(t, lic.AccountHash)
	assert.Equal(t, "A2", *lic.AccountHash)
}

func TestBindRepeatedLoginAddsNothing(t *testing.T) {
	lic := newTestLicense(t, bindNow)
	lic.Bind(bindNow, BindParams{SystemHash: "S1", TradeMode: TradeModeDemo, AccountHash: "A1"})

	for i := 0; i < 5; i++ {
		out := lic.Bind(bindNow.Add(time.Duration(i+1)*time.Minute), BindParams{
			SystemHash: "S1", TradeMode: TradeModeDemo, AccountHash: "A1",
		})
		assert.False(t, out.AccountLoginChanged)
		assert.Empty(t, out.AppendedHistory)
	}
	assert.Len(t, lic.History, 1, "repeats of the same value produce no entries")
}

func TestBindFirstLoginAfterBareBinding(t *testing.T) {
	lic := newTestLicense(t, bindNow)
	lic.Bind(bindNow, BindParams{SystemHash: "S1", TradeMode: TradeModeDemo})
	require.Empty(t, lic.History)

	out := lic.Bind(bindNow.Add(time.Minute), BindParams{
		SystemHash: "S1", TradeMode: TradeModeDemo, AccountHash: "A1",
	})

	assert.False(t, out.AccountLoginChanged, "no previous non-empty login to change from")
	require.Len(t, lic.History, 1)
	assert.Equal(t, HistoryActionInitialSet, lic.History[0].Action)
}

func TestBindHistoryMonotonicGrowth(t *testing.T) {
	lic := newTestLicense(t, bindNow)
	logins := []string{"A1", "A1", "A2", "A3", "A3", "A2"}
	prevLen := 0

	for i, login := range logins {
		lic.Bind(bindNow.Add(time.Duration(i)*time.Minute), BindParams{
			SystemHash: "S1", TradeMode: TradeModeDemo, AccountHash: login,
		})
		assert.GreaterOrEqual(t, len(lic.History), prevLen)
		prevLen = len(lic.History)
	}

	// Transitions: initial A1, A1->A2, A2->A3, A3->A2. The first costs one
	// entry, each later one costs two.
	assert.Len(t, lic.History, 1+2*3)
}

func TestBindDailyReset(t *testing.T) {
	lic := newTestLicense(t, bindNow)

	for i := 0; i < 3; i++ {
		lic.Bind(bindNow.Add(time.Duration(i)*time.Hour), BindParams{SystemHash: "S1", TradeMode: TradeModeDemo})
	}
	assert.Equal(t, uint64(3), lic.DailyUsageCount)
	assert.Equal(t, uint64(3), lic.UsageCount)

	nextDay := bindNow.Add(26 * time.Hour)
	lic.Bind(nextDay, BindParams{SystemHash: "S1", TradeMode: TradeModeDemo})

	assert.Equal(t, uint64(1), lic.DailyUsageCount, "reset-then-increment on a new calendar day")
	assert.Equal(t, uint64(4), lic.UsageCount, "lifetime counter is monotonic")
	assert.Equal(t, truncateToDay(nextDay), lic.LastResetDate)
}

func TestBindDailyResetMixedZones(t *testing.T) {
	// The store round-trips last_reset_date through a DATE column, which
	// comes back as midnight UTC, while Bind observes now in the server
	// zone. Same calendar date in both must not reset the counter.
	lic := newTestLicense(t, bindNow)
	for i := 0; i < 3; i++ {
		lic.Bind(bindNow.Add(time.Duration(i)*time.Hour), BindParams{SystemHash: "S1", TradeMode: TradeModeDemo})
	}
	require.Equal(t, uint64(3), lic.DailyUsageCount)

	lic.LastResetDate = time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	westOfUTC := time.FixedZone("UTC-5", -5*60*60)
	sameDay := time.Date(2025, 6, 20, 11, 0, 0, 0, westOfUTC)
	lic.Bind(sameDay, BindParams{SystemHash: "S1", TradeMode: TradeModeDemo})

	assert.Equal(t, uint64(4), lic.DailyUsageCount, "same calendar date must keep accumulating")
	assert.Equal(t, time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), lic.LastResetDate)

	nextDay := time.Date(2025, 6, 21, 2, 0, 0, 0, westOfUTC)
	lic.Bind(nextDay, BindParams{SystemHash: "S1", TradeMode: TradeModeDemo})

	assert.Equal(t, uint64(1), lic.DailyUsageCount, "a later calendar date still resets")
}

func TestBindFirstTimeUseOnlyOnce(t *testing.T) {
	lic := newTestLicense(t, bindNow)

	out := lic.Bind(bindNow, BindParams{SystemHash: "S1", TradeMode: TradeModeDemo})
	assert.True(t, out.FirstTimeUse)

	for i := 0; i < 3; i++ {
		out = lic.Bind(bindNow.Add(time.Duration(i+1)*time.Minute), BindParams{SystemHash: "S1", TradeMode: TradeModeDemo})
		assert.False(t, out.FirstTimeUse)
	}
}

func TestBindBrokerServerUpdates(t *testing.T) {
	lic := newTestLicense(t, bindNow)
	lic.Bind(bindNow, BindParams{SystemHash: "S1", TradeMode: TradeModeDemo, BrokerServer: "demo.broker.com"})
	lic.Bind(bindNow.Add(time.Minute), BindParams{SystemHash: "S1", TradeMode: TradeModeDemo, BrokerServer: "live.broker.com"})
	assert.Equal(t, "live.broker.com", lic.BrokerServer)

	lic.Bind(bindNow.Add(2*time.Minute), BindParams{SystemHash: "S1", TradeMode: TradeModeDemo})
	assert.Equal(t, "live.broker.com", lic.BrokerServer, "empty broker server leaves the stored value")
}
