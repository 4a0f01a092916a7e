package portfolio

// Action is the side of an order.
type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
)

// Valid reports whether a is a known side.
func (a Action) Valid() bool { return a == Buy || a == Sell }

// Order is an intent produced by the decision layer: buy or sell Quantity
// shares of Symbol at the quoted Price. The price is the strategy's quote;
// execution applies slippage on top of it.
type Order struct {
	Symbol   string
	Action   Action
	Quantity int64
	Price    float64
}
