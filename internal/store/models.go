package store

import (
	"time"
)

type clientModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	FirstName string    `gorm:"column:first_name"`
	LastName  string    `gorm:"column:last_name"`
	Country   string    `gorm:"column:country"`
	Email     *string   `gorm:"column:email"`
	Phone     *string   `gorm:"column:phone"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
	CreatedBy string    `gorm:"column:created_by"`
}

func (clientModel) TableName() string { return "clients" }

type configurationModel struct {
	ID                     int64     `gorm:"column:id;primaryKey"`
	Name                   string    `gorm:"column:name"`
	AllowedSymbol          string    `gorm:"column:allowed_symbol"`
	StrictSymbolCheck      bool      `gorm:"column:strict_symbol_check"`
	SessionStart           string    `gorm:"column:session_start"`
	SessionEnd             string    `gorm:"column:session_end"`
	FibLevel11             float64   `gorm:"column:fib_level_1_1"`
	FibLevel105            float64   `gorm:"column:fib_level_1_05"`
	FibLevel10             float64   `gorm:"column:fib_level_1_0"`
	FibLevel00             float64   `gorm:"column:fib_level_0_0"`
	FibLevelNeg05          float64   `gorm:"column:fib_level_neg_05"`
	FibLevelNeg1           float64   `gorm:"column:fib_level_neg_1"`
	FibPrimaryBuySL        float64   `gorm:"column:fib_primary_buy_sl"`
	FibPrimarySellSL       float64   `gorm:"column:fib_primary_sell_sl"`
	FibHedgeBuy            float64   `gorm:"column:fib_hedge_buy"`
	FibHedgeSell           float64   `gorm:"column:fib_hedge_sell"`
	FibHedgeBuySL          float64   `gorm:"column:fib_hedge_buy_sl"`
	FibHedgeSellSL         float64   `gorm:"column:fib_hedge_sell_sl"`
	FibHedgeBuyTP          float64   `gorm:"column:fib_hedge_buy_tp"`
	FibHedgeSellTP         float64   `gorm:"column:fib_hedge_sell_tp"`
	PrimaryPendingTimeout  uint      `gorm:"column:primary_pending_timeout"`
	PrimaryPositionTimeout uint      `gorm:"column:primary_position_timeout"`
	HedgingPendingTimeout  uint      `gorm:"column:hedging_pending_timeout"`
	HedgingPositionTimeout uint      `gorm:"column:hedging_position_timeout"`
	CreatedAt              time.Time `gorm:"column:created_at"`
	UpdatedAt              time.Time `gorm:"column:updated_at"`
}

func (configurationModel) TableName() string { return "trading_configurations" }

type licenseModel struct {
	ID               int64      `gorm:"column:id;primaryKey"`
	LicenseKey       string     `gorm:"column:license_key"`
	ClientID         int64      `gorm:"column:client_id"`
	ConfigurationID  *int64     `gorm:"column:configuration_id"`
	SystemHash       *string    `gorm:"column:system_hash"`
	AccountHash      *string    `gorm:"column:account_hash"`
	BrokerServer     string     `gorm:"column:broker_server"`
	AccountTradeMode int        `gorm:"column:account_trade_mode"`
	ExpiresAt        time.Time  `gorm:"column:expires_at"`
	IsActive         bool       `gorm:"column:is_active"`
	FirstUsedAt      *time.Time `gorm:"column:first_used_at"`
	LastUsedAt       *time.Time `gorm:"column:last_used_at"`
	UsageCount       uint64     `gorm:"column:usage_count"`
	DailyUsageCount  uint64     `gorm:"column:daily_usage_count"`
	LastResetDate    time.Time  `gorm:"column:last_reset_date"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
	CreatedBy        string     `gorm:"column:created_by"`
}

func (licenseModel) TableName() string { return "licenses" }

type historyModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	LicenseID   int64     `gorm:"column:license_id"`
	AccountHash string    `gorm:"column:account_hash"`
	RecordedAt  time.Time `gorm:"column:recorded_at"`
	Action      string    `gorm:"column:action"`
}

func (historyModel) TableName() string { return "license_account_hash_history" }
