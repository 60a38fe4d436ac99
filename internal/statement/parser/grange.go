package parser

import (
	"strings"

	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
)

// grangeParser reads the Grange CSV export. Policy numbers carry a
// short product prefix ("DF  5148587") which becomes the product code.
type grangeParser struct{}

func (grangeParser) Carrier() string { return statementdomain.CarrierGrange }

func (p grangeParser) Parse(data []byte, filename string) ([]Record, error) {
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
		policyRaw := lookup(idx, row, "policy number")
		if policyRaw == "" || policyRaw == "0000000" {
			continue
		}

		policy := policyRaw
		product := ""
		if parts := strings.Fields(policyRaw); len(parts) >= 2 && len(parts[0]) <= 3 {
			policy = parts[len(parts)-1]
			product = parts[0]
		}

		rawType := lookup(idx, row, "transaction description")
		premium, _ := CleanCurrency(lookup(idx, row, "premium amount"))
		rate, _ := CleanRate(lookup(idx, row, "comm %"))
		commission, _ := CleanCurrency(lookup(idx, row, "commission amount"))

		records = append(records, Record{
			PolicyNumber:       policy,
			InsuredName:        lookup(idx, row, "policyholder name or description"),
			TransactionType:    MapTransactionType(rawType),
			TransactionTypeRaw: rawType,
			TransactionDate:    ParseDate(lookup(idx, row, "date entered")),
			EffectiveDate:      ParseDate(lookup(idx, row, "date")),
			PremiumAmount:      premium,
			CommissionRate:     rate,
			CommissionAmount:   commission,
			ProducerName:       lookup(idx, row, "producer name"),
			ProductType:        product,
			State:              stateCode(lookup(idx, row, "risk state")),
			RawData:            rawRow(rows[0], row),
		})
	}

	return records, nil
}
