package economy

// BalanceResult reports current balances.
type BalanceResult struct {
	Wallet int64
	Bank   int64
}

// JobResult reports the outcome of choosing a job or a promotion.
type JobResult struct {
	Job      string
	JobLevel int
}

// WorkResult reports a completed shift.
type WorkResult struct {
	Job      string
	JobLevel int
	Earnings int64
	Wallet   int64
}

// GambleResult reports a coin-flip gamble.
type GambleResult struct {
	Won    bool
	Amount int64
	Wallet int64
}

// SlotsResult reports a slot machine spin.
type SlotsResult struct {
	Symbols [3]string
	Jackpot bool
	Payout  int64
	Wallet  int64
}

// RobResult reports a robbery attempt from the actor's perspective.
type RobResult struct {
	Success bool
	// Amount is the sum stolen on success or the fine actually paid on
	// failure (the fine is clamped so the wallet never goes negative).
	Amount int64
	Wallet int64
}

// TicketsResult reports a lottery ticket purchase.
type TicketsResult struct {
	Bought  int
	Cost    int64
	Tickets int
	Wallet  int64
}

// DrawResult reports a lottery draw.
type DrawResult struct {
	WinnerID string
	Prize    int64
}

// PurchaseResult reports a shop purchase.
type PurchaseResult struct {
	Item   string
	Price  int64
	Wallet int64
}

// SaleResult reports an inventory sale.
type SaleResult struct {
	Item   string
	Value  int64
	Wallet int64
}

// TransferResult reports a completed bank transfer.
type TransferResult struct {
	From       string
	To         string
	Amount     int64
	SenderBank int64
}

// LoanResult reports the loan balance after a draw or repayment.
type LoanResult struct {
	Wallet int64
	// Loan is the outstanding debt; fractional because of interest.
	Loan float64
	// Applied is the amount actually moved (loan principal received or
	// repayment applied).
	Applied float64
}

// InterestResult reports a bank interest claim.
type InterestResult struct {
	Earned int64
	Bank   int64
}
