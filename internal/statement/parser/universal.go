package parser

import (
	"strings"

	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
)

// universalParser reads the Universal Property & Casualty CSV. Policies
// are annual; the effective date is inferred from the expiration date.
type universalParser struct{}

func (universalParser) Carrier() string { return statementdomain.CarrierUniversal }

func (p universalParser) Parse(data []byte, filename string) ([]Record, error) {
	rows, err := readCSV(data)
	if err != nil {
		return nil, parseErr(p.Carrier(), 0, "read csv", err)
	}
	if len(rows) == 0 {
		return nil, parseErr(p.Carrier(), 0, "file is empty", nil)
	}

	idx := headerIndex(rows[0])
	records := make([]Record, 0, len(rows))

	for _, row := range rows[1:] {
		policy := lookup(idx, row, "policynumber")
		if policy == "" {
			continue
		}

		rawType := lookup(idx, row, "transactiontype")
		label := universalTransLabel(rawType)

		commission, _ := CleanCurrency(lookup(idx, row, "commission"))
		premium, _ := CleanCurrency(lookup(idx, row, "written"))
		rate, _ := CleanRate(lookup(idx, row, "rate"))

		expDate := ParseDate(lookup(idx, row, "expirationdate"))
		effDate := expDate
		if expDate != nil {
			d := expDate.AddDate(-1, 0, 0)
			effDate = &d
		}

		records = append(records, Record{
			PolicyNumber:       policy,
			InsuredName:        lookup(idx, row, "insuredname"),
			TransactionType:    MapTransactionType(label),
			TransactionTypeRaw: rawType,
			EffectiveDate:      effDate,
			PremiumAmount:      premium,
			CommissionRate:     rate,
			CommissionAmount:   commission,
			LineOfBusiness:     "Property",
			TermMonths:         12,
			RawData:            rawRow(rows[0], row),
		})
	}

	return records, nil
}

func universalTransLabel(raw string) string {
	r := strings.ToLower(raw)
	switch {
	case strings.Contains(r, "renewal"):
		return "RENEWAL"
	case strings.Contains(r, "new"):
		return "NEW BUSINESS"
	case strings.Contains(r, "endorsement"):
		return "ENDORSEMENT"
	case strings.Contains(r, "cancel"):
		return "CANCELLATION"
	default:
		return raw
	}
}
