// Package export writes ledgers and branch entries as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"finance-console/internal/finance"
	"finance-console/internal/models"
)

const (
	KindLoan    = "loan"
	KindPayment = "payment"
)

// Row is one CSV line. For payments the loan column carries the amount paid,
// as on the wire.
type Row struct {
	Seq      int           `csv:"seq"`
	Kind     string        `csv:"kind"`
	Date     models.Date   `csv:"date"`
	Customer string        `csv:"customer"`
	Place    string        `csv:"place"`
	Mobile   string        `csv:"mobile"`
	Loan     models.Amount `csv:"loan"`
	Interest models.Amount `csv:"interest"`
	EMI      models.Amount `csv:"emi"`
}

func loanRow(seq int, l finance.Loan) Row {
	return Row{
		Seq:      seq,
		Kind:     KindLoan,
		Date:     l.Date,
		Customer: l.Customer,
		Place:    l.Place,
		Mobile:   l.Mobile,
		Loan:     l.Principal,
		Interest: l.Interest,
		EMI:      l.EMI,
	}
}

func paymentRow(seq int, p finance.Payment) Row {
	return Row{
		Seq:      seq,
		Kind:     KindPayment,
		Date:     p.Date,
		Customer: p.Customer,
		Place:    models.PaymentPlace,
		Mobile:   p.Mobile,
		Loan:     p.Amount,
	}
}

// LedgerRows lists the ledger's loans in sequence, then its payments.
func LedgerRows(l finance.Ledger) []Row {
	rows := make([]Row, 0, len(l.Loans)+len(l.Payments))
	for _, ln := range l.Loans {
		rows = append(rows, loanRow(ln.Seq, ln.Loan))
	}
	for i, p := range l.Payments {
		rows = append(rows, paymentRow(i+1, p))
	}
	return rows
}

// EntryRows keeps input order and numbers loans and payments separately.
func EntryRows(entries []models.BranchEntry) []Row {
	rows := make([]Row, 0, len(entries))
	var loans, payments int
	for _, e := range entries {
		loanSet, paymentSet := finance.Split([]models.BranchEntry{e})
		if len(paymentSet) == 1 {
			payments++
			rows = append(rows, paymentRow(payments, paymentSet[0]))
			continue
		}
		loans++
		rows = append(rows, loanRow(loans, loanSet[0]))
	}
	return rows
}

// WriteRows writes the header and rows to w.
func WriteRows(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func LedgerCSV(w io.Writer, l finance.Ledger) error {
	return WriteRows(w, LedgerRows(l))
}

func EntriesCSV(w io.Writer, entries []models.BranchEntry) error {
	return WriteRows(w, EntryRows(entries))
}
