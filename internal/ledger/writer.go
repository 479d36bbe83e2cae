package ledger

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"subtracker/internal/models"
)

const (
	// descriptionWidth is where long descriptions wrap onto a note line.
	descriptionWidth = 50
	// amountColumn is the column amounts are right-aligned to.
	amountColumn = 80
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders the magnitude of m as "₹1,234.50".
func FormatAmount(m models.Money) string {
	return RupeeSign + amountPrinter.Sprintf("%.2f", m.Abs().InexactFloat64())
}

// Write renders entries as a journal Parse can read back. Entries are
// separated by a blank line.
func Write(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		head, rest := splitRunes(e.Description, descriptionWidth)
		fmt.Fprintf(bw, "%s %s\n", e.Date.Format("2006/01/02"), head)
		if rest != "" {
			fmt.Fprintf(bw, "    ;%s\n", rest)
		}

		debit := "    " + e.DebitAccount
		amount := FormatAmount(e.Amount)
		pad := amountColumn - utf8.RuneCountInString(debit) - utf8.RuneCountInString(amount)
		if pad < 2 {
			pad = 2
		}
		fmt.Fprintf(bw, "%s%s%s\n", debit, strings.Repeat(" ", pad), amount)
		fmt.Fprintf(bw, "    %s\n\n", e.CreditAccount)
	}
	return bw.Flush()
}

func splitRunes(s string, n int) (string, string) {
	if utf8.RuneCountInString(s) <= n {
		return s, ""
	}
	r := []rune(s)
	head, rest := string(r[:n]), string(r[n:])
	// the header line loses trailing blanks, so carry them onto the note
	for strings.HasSuffix(head, " ") {
		head = head[:len(head)-1]
		rest = " " + rest
	}
	return head, rest
}
