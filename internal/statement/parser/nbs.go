package parser

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	"github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"
)

// nbsParser extracts lines from the NBS / Bridge Specialty remittance
// advice PDF. Data lines start with an account number ("4912134I"),
// carry a 7-10 digit policy number, dates like "10SEP25", truncated
// transaction types ("New Po", "Renewa") and trailing-minus negatives.
type nbsParser struct{}

func (nbsParser) Carrier() string { return statementdomain.CarrierNBS }

var (
	nbsAccountRe = regexp.MustCompile(`^\d+I$`)
	nbsPolicyRe  = regexp.MustCompile(`^\d{7,10}$`)
	nbsDateRe    = regexp.MustCompile(`^\d{2}[A-Za-z]{3}\d{2}$`)
	nbsAmountRe  = regexp.MustCompile(`^[\d,]+(?:\.\d+)?-?$`)
)

var nbsSkipMarkers = []string{
	"REMITTANCE", "Check Date", "Payee", "BETTER CHOICE",
	"Bridge Specialty", "PO BOX", "SAINT CHARLES",
	"Cust/Acct#", "Line of", "Total Amount",
	"ACH Payment", "Page ", "Philadelphia",
}

func (p nbsParser) Parse(data []byte, filename string) ([]Record, error) {
	text, err := nbsExtractText(data)
	if err != nil {
		return nil, parseErr(p.Carrier(), 0, "extract pdf text", err)
	}

	var records []Record
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || nbsSkipLine(line) {
			continue
		}

		rec, ok := nbsParseLine(line)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	// A remittance PDF that yields nothing means the layout changed;
	// fail loudly rather than record an empty import.
	if len(records) == 0 {
		return nil, parseErr(p.Carrier(), 0, "no remittance lines recognized", nil)
	}
	return records, nil
}

func nbsSkipLine(line string) bool {
	for _, marker := range nbsSkipMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

func nbsParseLine(line string) (Record, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 5 || !nbsAccountRe.MatchString(tokens[0]) {
		return Record{}, false
	}

	policy := ""
	policyIdx := -1
	for i, tok := range tokens[1:] {
		if nbsPolicyRe.MatchString(tok) {
			policy = tok
			policyIdx = i + 1
			break
		}
	}
	if policy == "" {
		return Record{}, false
	}

	// Insured name sits between the account number and the carrier
	// block before the policy number.
	carrierWords := map[string]bool{
		"American": true, "Mod": true, "DB": true,
		"Pers": true, "Line": true, "Bi": true, "Br": true,
	}
	var insuredParts []string
	for _, tok := range tokens[1:policyIdx] {
		if carrierWords[tok] {
			continue
		}
		insuredParts = append(insuredParts, tok)
	}

	rest := tokens[policyIdx+1:]

	var effDate, tranDate *time.Time
	for _, tok := range rest {
		if !nbsDateRe.MatchString(tok) {
			continue
		}
		if d := nbsParseDate(tok); d != nil {
			if effDate == nil {
				effDate = d
			} else if tranDate == nil {
				tranDate = d
			}
		}
	}

	// Amounts come off the tail: premium, rate, commission.
	var nums []string
	for i := len(rest) - 1; i >= 0 && len(nums) < 3; i-- {
		tok := rest[i]
		if !nbsAmountRe.MatchString(tok) || nbsDateRe.MatchString(tok) {
			break
		}
		nums = append([]string{tok}, nums...)
	}

	var premium, rate, commission decimal.Decimal
	if len(nums) >= 1 {
		commission, _ = CleanCurrency(nums[len(nums)-1])
	}
	if len(nums) >= 2 {
		rate, _ = CleanRate(nums[len(nums)-2])
	}
	if len(nums) >= 3 {
		premium, _ = CleanCurrency(nums[len(nums)-3])
	}

	lower := strings.ToLower(line)
	label := "RENEWAL"
	rawType := "Renewa"
	switch {
	case strings.Contains(lower, "new po"):
		label, rawType = "NEW BUSINESS", "New Po"
	case strings.Contains(lower, "cancel"):
		label, rawType = "CANCELLATION", "Cancel"
	case strings.Contains(lower, "endors"):
		label, rawType = "ENDORSEMENT", "Endors"
	}

	return Record{
		PolicyNumber:       policy,
		InsuredName:        strings.Join(insuredParts, " "),
		TransactionType:    MapTransactionType(label),
		TransactionTypeRaw: rawType,
		TransactionDate:    tranDate,
		EffectiveDate:      effDate,
		PremiumAmount:      premium,
		CommissionRate:     rate,
		CommissionAmount:   commission,
		ProductType:        "Personal Lines",
		LineOfBusiness:     "Personal Lines",
		TermMonths:         12,
		RawData:            line,
	}, true
}

func nbsParseDate(tok string) *time.Time {
	if len(tok) != 7 {
		return nil
	}
	month := strings.ToUpper(tok[2:3]) + strings.ToLower(tok[3:5])
	t, err := time.Parse("02Jan06", tok[:2]+month+tok[5:])
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func nbsExtractText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
