package types

import "time"

// Trade is a round trip: opened when the position leaves zero and closed when it returns to zero.
type Trade struct {
	ID       string    `yaml:"id" json:"id" csv:"id"`
	OpenedAt time.Time `yaml:"opened_at" json:"opened_at" csv:"opened_at"`
	ClosedAt time.Time `yaml:"closed_at" json:"closed_at" csv:"closed_at"`
	// Size is the signed size at open; negative for a short.
	Size       float64 `yaml:"size" json:"size" csv:"size"`
	EntryPrice float64 `yaml:"entry_price" json:"entry_price" csv:"entry_price"`
	ExitPrice  float64 `yaml:"exit_price" json:"exit_price" csv:"exit_price"`
	// PnL is the gross realized profit.
	PnL float64 `yaml:"pnl" json:"pnl" csv:"pnl"`
	// PnLComm is the realized profit after commission.
	PnLComm    float64 `yaml:"pnl_comm" json:"pnl_comm" csv:"pnl_comm"`
	Commission float64 `yaml:"commission" json:"commission" csv:"commission"`
	IsClosed   bool    `yaml:"is_closed" json:"is_closed" csv:"is_closed"`
}

// IsLong reports whether the trade was opened by a buy.
func (t Trade) IsLong() bool {
	return t.Size > 0
}
