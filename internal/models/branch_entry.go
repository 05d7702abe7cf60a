package models

const (
	// PaymentPlace marks a BranchEntry as a repayment; the amount paid is
	// stored in Loan.
	PaymentPlace = "Payment"
	// PlaceholderMobile is stored on payments when no number was captured.
	PlaceholderMobile = "0000000000"
)

// BranchEntry is the wire shape of both loans and payments.
type BranchEntry struct {
	ID       string `json:"_id,omitempty"`
	Branch   string `json:"branch"`
	Customer string `json:"customer"`
	Place    string `json:"place"`
	Mobile   string `json:"mobile"`
	Loan     Amount `json:"loan"`
	Interest Amount `json:"interest"`
	EMI      Amount `json:"emi"`
	Date     Date   `json:"date"`
}

func (e BranchEntry) IsPayment() bool {
	return e.Place == PaymentPlace
}
