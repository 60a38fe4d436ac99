package parser

import (
	"strconv"
	"strings"
	"time"

	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	"github.com/shopspring/decimal"
)

// CleanCurrency parses currency cells like "$2,677.00", "-$249.14",
// "(141.84)" and "1,545.00-". Returns false for blank or unparseable.
func CleanCurrency(val string) (decimal.Decimal, bool) {
	s := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(val))
	if s == "" {
		return decimal.Zero, false
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}
	if strings.HasSuffix(s, "-") {
		s = "-" + s[:len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// CleanRate parses rate cells like "15.00%", "0.15", "12". Values above
// one are read as percentages.
func CleanRate(val string) (decimal.Decimal, bool) {
	s := strings.NewReplacer("%", "", ",", "").Replace(strings.TrimSpace(val))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if d.GreaterThan(decimal.NewFromInt(1)) {
		d = d.Div(decimal.NewFromInt(100))
	}
	return d, true
}

var dateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
	"1/2/06",
	"01-02-2006",
	"1-2-2006",
	"2006-01-02 15:04:05",
	"01-02-06",
	"2-Jan-06",
	"Jan 2, 2006",
}

// ParseDate tries the date formats carriers actually emit, including
// raw Excel serial numbers.
func ParseDate(val string) *time.Time {
	s := strings.TrimSpace(val)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	// Excel serial date (days since 1899-12-30).
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 20000 && serial < 80000 {
		t := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC).Add(time.Duration(serial * 24 * float64(time.Hour)))
		t = t.Truncate(24 * time.Hour)
		return &t
	}
	return nil
}

// ParseTerm parses term cells like "N12", "R6", "12", "12.0".
func ParseTerm(val string) int {
	s := strings.ToUpper(strings.TrimSpace(val))
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	var digits strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}

var txVocab = []struct {
	kind     statementdomain.TransactionType
	prefixes []string
}{
	{statementdomain.TxNewBusiness, []string{"NEW BUSINESS", "NEW BUS-A", "NEW BUS", "NB", "NEW"}},
	{statementdomain.TxRenewal, []string{"RENEWAL", "RENEW", "REN", "RWL"}},
	{statementdomain.TxEndorsement, []string{"ENDORSEMENT", "ENDORS", "REVISION", "CHANGE", "ENDORSEMENTS"}},
	{statementdomain.TxCancellation, []string{"CANCEL", "CANCELLATION", "CANCEL-NP", "CANCEL-INS", "CANCELLATIONS",
		"CANCEL PRO RATE", "CANCEL FLAT"}},
	{statementdomain.TxReinstatement, []string{"REINSTATEMENT", "REINSTATEMENTS", "REINSTATE"}},
	{statementdomain.TxAudit, []string{"AUDIT", "AUDIT PREM"}},
	{statementdomain.TxAdjustment, []string{"ADJUST", "ADJUSTMENT", "ADJUSTMENTS", "CHARGEBACK",
		"LOSS HIST CHARGEBACK", "VIOLATION HISTORY CHARGEBACK",
		"UNCOLLECTED PREMIUM", "UNCOLLECTED PREMIUM REIMBURSEMENT",
		"RECOUPMENTS", "APP INCENTIVE",
		"CREDIT ENDORSEMENT", "UNHON", "WAIVED"}},
}

// MapTransactionType folds a carrier transaction label into the closed
// vocabulary. The raw label is preserved on the line separately.
func MapTransactionType(raw string) statementdomain.TransactionType {
	r := strings.ToUpper(strings.TrimSpace(raw))
	if r == "" {
		return statementdomain.TxOther
	}
	for _, entry := range txVocab {
		for _, p := range entry.prefixes {
			if r == p || strings.HasPrefix(r, p) {
				return entry.kind
			}
		}
	}
	return statementdomain.TxOther
}
