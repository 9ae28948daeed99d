package domain

// FibonacciLevels is the price-level block of a trading configuration.
// Level semantics belong to the robot; the server only stores and serves
// them.
type FibonacciLevels struct {
	Level11        float64 `json:"level_1_1"`
	Level105       float64 `json:"level_1_05"`
	Level10        float64 `json:"level_1_0"`
	Level00        float64 `json:"level_0_0"`
	LevelNeg05     float64 `json:"level_neg_05"`
	LevelNeg1      float64 `json:"level_neg_1"`
	PrimaryBuySL   float64 `json:"primary_buy_sl"`
	PrimarySellSL  float64 `json:"primary_sell_sl"`
	HedgeBuy       float64 `json:"hedge_buy"`
	HedgeSell      float64 `json:"hedge_sell"`
	HedgeBuySL     float64 `json:"hedge_buy_sl"`
	HedgeSellSL    float64 `json:"hedge_sell_sl"`
	HedgeBuyTP     float64 `json:"hedge_buy_tp"`
	HedgeSellTP    float64 `json:"hedge_sell_tp"`
}

// TimeoutSettings is the order/position timeout block, in minutes.
type TimeoutSettings struct {
	PrimaryPending  uint `json:"primary_pending" validate:"min=1,max=1440"`
	PrimaryPosition uint `json:"primary_position" validate:"min=1,max=1440"`
	HedgingPending  uint `json:"hedging_pending" validate:"min=1,max=1440"`
	HedgingPosition uint `json:"hedging_position" validate:"min=1,max=1440"`
}

// ConfigurationPayload is the fixed, versioned trading configuration
// schema returned verbatim inside a successful validation response.
// SchemaVersion is bumped on any breaking field change; there are no
// parallel legacy field-name aliases.
type ConfigurationPayload struct {
	SchemaVersion     int             `json:"schema_version"`
	Name              string          `json:"name"`
	AllowedSymbol     string          `json:"allowed_symbol"`
	StrictSymbolCheck bool            `json:"strict_symbol_check"`
	SessionStart      string          `json:"session_start"`
	SessionEnd        string          `json:"session_end"`
	FibLevels         FibonacciLevels `json:"fib_levels"`
	Timeouts          TimeoutSettings `json:"timeouts"`
}

// CreateConfigurationRequest creates a named configuration bundle that can
// be shared by any number of licenses.
type CreateConfigurationRequest struct {
	Name              string          `json:"name" validate:"required,max=100"`
	AllowedSymbol     string          `json:"allowed_symbol" validate:"required,max=20"`
	StrictSymbolCheck bool            `json:"strict_symbol_check"`
	SessionStart      string          `json:"session_start" validate:"required,len=5"`
	SessionEnd        string          `json:"session_end" validate:"required,len=5"`
	FibLevels         FibonacciLevels `json:"fib_levels"`
	Timeouts          TimeoutSettings `json:"timeouts"`
}
