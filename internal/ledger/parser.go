// Package ledger reads and writes plain-text ledger journals and maps their
// postings onto categories.
//
// A journal entry is a header line followed by indented postings:
//
//	2024/03/05 Swiggy order
//	    Expenses:Food                       ₹450.00
//	    Assets:Banking:HDFC Savings
//
// The first posting is the debit account and carries the amount, the second is
// the credit account. Entries whose credit account is under Income: are income,
// everything else is an expense.
package ledger

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"subtracker/internal/models"
)

// RupeeSign prefixes amounts in exported journals.
const RupeeSign = "₹"

var dateLayouts = []string{"2006/01/02", "2006-01-02"}

// Entry is one two-posting journal entry. Amount is always positive.
type Entry struct {
	Line          int
	Date          time.Time
	Description   string
	Type          models.TransactionType
	Amount        models.Money
	DebitAccount  string
	CreditAccount string
}

// RowError describes an entry that could not be read.
type RowError struct {
	Line   int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

type pending struct {
	line        int
	date        time.Time
	description string
	accounts    []string
	amount      *models.Money
	err         string
}

// Parse reads every entry in r. Entries that are malformed are returned as
// RowErrors and do not stop the scan; only read failures produce an error.
func Parse(r io.Reader) ([]Entry, []RowError, error) {
	var (
		entries []Entry
		bad     []RowError
		cur     *pending
	)

	flush := func() {
		if cur == nil {
			return
		}
		entry, rowErr := cur.finish()
		if rowErr != nil {
			bad = append(bad, *rowErr)
		} else {
			entries = append(entries, entry)
		}
		cur = nil
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		first := rune(line[0])
		switch {
		case unicode.IsDigit(first):
			flush()
			cur = parseHeader(lineNo, line)
		case first == ' ' || first == '\t':
			if cur == nil {
				continue
			}
			cur.addPosting(trimmed)
		default:
			// top-level comments and directives
			flush()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading ledger: %w", err)
	}
	flush()

	return entries, bad, nil
}

func parseHeader(lineNo int, line string) *pending {
	p := &pending{line: lineNo}
	datePart, rest, _ := strings.Cut(line, " ")
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, datePart); err == nil {
			p.date = d
			break
		}
	}
	if p.date.IsZero() {
		p.err = fmt.Sprintf("invalid date %q", datePart)
	}
	rest = strings.TrimSpace(rest)
	// cleared and pending markers
	for _, mark := range []string{"* ", "! "} {
		rest = strings.TrimSpace(strings.TrimPrefix(rest, mark))
	}
	p.description = rest
	return p
}

func (p *pending) addPosting(trimmed string) {
	if strings.HasPrefix(trimmed, ";") {
		// a note directly under the header continues a wrapped description
		if len(p.accounts) == 0 {
			p.description += strings.TrimPrefix(trimmed, ";")
		}
		return
	}

	var parts []string
	for _, part := range strings.Split(strings.ReplaceAll(trimmed, "\t", "  "), "  ") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return
	}
	p.accounts = append(p.accounts, parts[0])

	if len(parts) > 1 {
		amount, err := ParseAmount(parts[len(parts)-1])
		if err != nil {
			p.err = err.Error()
			return
		}
		p.amount = &amount
	}
}

func (p *pending) finish() (Entry, *RowError) {
	fail := func(reason string) (Entry, *RowError) {
		return Entry{}, &RowError{Line: p.line, Reason: reason}
	}
	switch {
	case p.err != "":
		return fail(p.err)
	case p.description == "":
		return fail("missing description")
	case len(p.accounts) != 2:
		return fail(fmt.Sprintf("expected 2 postings, got %d", len(p.accounts)))
	case p.amount == nil:
		return fail("missing amount")
	}

	entry := Entry{
		Line:          p.line,
		Date:          p.date,
		Description:   p.description,
		Type:          models.TransactionTypeExpense,
		Amount:        *p.amount,
		DebitAccount:  p.accounts[0],
		CreditAccount: p.accounts[1],
	}
	if strings.Contains(entry.CreditAccount, "Income:") {
		entry.Type = models.TransactionTypeIncome
	}
	return entry, nil
}

// ParseAmount reads a posting amount such as "₹1,234.50" or "INR 20". The
// sign is dropped.
func ParseAmount(s string) (models.Money, error) {
	cleaned := strings.NewReplacer(RupeeSign, "", "INR", "", "Rs.", "", ",", "", " ", "").Replace(s)
	m, err := models.ParseMoney(cleaned)
	if err != nil {
		return models.Money{}, fmt.Errorf("invalid amount %q", s)
	}
	return m.Abs(), nil
}
