package types

import "time"

type OrderRecordType string

const (
	OrderRecordTypeBuy  OrderRecordType = "buy"
	OrderRecordTypeSell OrderRecordType = "sell"
)

// OrderRecord is one completed order in the order history.
type OrderRecord struct {
	Time       time.Time       `yaml:"dt" json:"dt" csv:"dt"`
	Type       OrderRecordType `yaml:"type" json:"type" csv:"type"`
	Price      float64         `yaml:"price" json:"price" csv:"price"`
	Size       float64         `yaml:"size" json:"size" csv:"size"`
	Value      float64         `yaml:"value" json:"value" csv:"value"`
	Commission float64         `yaml:"commission" json:"commission" csv:"commission"`
	PnL        float64         `yaml:"pnl" json:"pnl" csv:"pnl"`
	Reason     string          `yaml:"reason" json:"reason" csv:"reason"`
}

// PeriodicRecord is the portfolio snapshot taken at the top of every bar.
type PeriodicRecord struct {
	Time           time.Time `yaml:"dt" json:"dt" csv:"dt"`
	PortfolioValue float64   `yaml:"portfolio_value" json:"portfolio_value" csv:"portfolio_value"`
	Cash           float64   `yaml:"cash" json:"cash" csv:"cash"`
	PositionSize   float64   `yaml:"position_size" json:"position_size" csv:"position_size"`
}

// TradeRecord is one closed trade.
type TradeRecord struct {
	Time    time.Time `yaml:"dt" json:"dt" csv:"dt"`
	PnL     float64   `yaml:"pnl" json:"pnl" csv:"pnl"`
	PnLComm float64   `yaml:"pnl_comm" json:"pnl_comm" csv:"pnl_comm"`
}

// IndicatorRecord is one indicator value reported by a strategy for one bar.
type IndicatorRecord struct {
	Time  time.Time `yaml:"dt" json:"dt" csv:"dt"`
	Name  string    `yaml:"name" json:"name" csv:"name"`
	Value float64   `yaml:"value" json:"value" csv:"value"`
}

// InjectionRecord is one periodic cash injection.
type InjectionRecord struct {
	Time          time.Time `yaml:"dt" json:"dt" csv:"dt"`
	Amount        float64   `yaml:"amount" json:"amount" csv:"amount"`
	TotalInjected float64   `yaml:"total_injected" json:"total_injected" csv:"total_injected"`
}
