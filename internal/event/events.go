package event

import "time"

// Monetary fields travel as fixed-point strings so no consumer ever re-parses
// them through a float.

type LoanCreatedEvent struct {
	LoanID       int64     `json:"loanId"`
	LoanNumber   string    `json:"loanNumber"`
	Kind         string    `json:"kind"`
	Principal    string    `json:"principal"`
	Outstanding  string    `json:"outstanding"`
	MaturityDate time.Time `json:"maturityDate"`
	Timestamp    time.Time `json:"timestamp"`
}

type PaymentReceivedEvent struct {
	LoanID      int64     `json:"loanId"`
	LoanNumber  string    `json:"loanNumber"`
	Kind        string    `json:"kind"`
	Amount      string    `json:"amount"`
	Outstanding string    `json:"outstanding"`
	Timestamp   time.Time `json:"timestamp"`
}

type LoanClosedEvent struct {
	LoanID     int64     `json:"loanId"`
	LoanNumber string    `json:"loanNumber"`
	Kind       string    `json:"kind"`
	Timestamp  time.Time `json:"timestamp"`
}

type LoanDefaultedEvent struct {
	LoanID       int64     `json:"loanId"`
	LoanNumber   string    `json:"loanNumber"`
	Kind         string    `json:"kind"`
	Outstanding  string    `json:"outstanding"`
	MaturityDate time.Time `json:"maturityDate"`
	Timestamp    time.Time `json:"timestamp"`
}
