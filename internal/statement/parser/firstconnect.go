package parser

import (
	"strings"

	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	"github.com/shopspring/decimal"
)

// firstConnectParser reads the aggregator's "Commissions Report" sheet.
// The sheet has no leading header; the real header row starts with
// "Carriers". Amount columns shift between exports, so premium, rate
// and commission are taken from the tail of each row.
type firstConnectParser struct{}

func (firstConnectParser) Carrier() string { return statementdomain.CarrierFirstConnect }

func (p firstConnectParser) Parse(data []byte, filename string) ([]Record, error) {
	f, err := openXLSX(data)
	if err != nil {
		return nil, parseErr(p.Carrier(), 0, "open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, parseErr(p.Carrier(), 0, "workbook has no sheets", nil)
	}
	rows, err := sheetRows(f, sheets[0])
	if err != nil {
		return nil, parseErr(p.Carrier(), 0, "read sheet", err)
	}

	headerIdx := -1
	for i, row := range rows {
		if cell(row, 0) == "Carriers" {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, parseErr(p.Carrier(), 0, "could not find 'Carriers' header row", nil)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows[headerIdx+1:] {
		carrier := cell(row, 0)
		if carrier == "" || strings.EqualFold(carrier, "total") {
			continue
		}

		policy := cell(row, 4)
		if policy == "" {
			continue
		}

		nonEmpty := 0
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				nonEmpty++
			}
		}
		if nonEmpty < 8 {
			continue
		}

		agent := cell(row, 2)
		insured := cell(row, 3)
		effDate := cell(row, 5)
		lob := cell(row, 6)
		transType := cell(row, 7)

		// Tail columns: commission last, rate before it, premium before
		// that.
		var tail []string
		for i := 8; i < len(row); i++ {
			if v := cell(row, i); v != "" {
				tail = append(tail, v)
			}
		}
		var premium, rate, commission decimal.Decimal
		if len(tail) >= 1 {
			commission, _ = CleanCurrency(tail[len(tail)-1])
		}
		if len(tail) >= 2 {
			rate, _ = CleanRate(tail[len(tail)-2])
		}
		if len(tail) >= 3 {
			premium, _ = CleanCurrency(tail[len(tail)-3])
		}

		label := firstConnectTransLabel(transType)

		// Some exports put an email in the agent column.
		producer := agent
		if strings.Contains(producer, "@") {
			producer = ""
		}

		records = append(records, Record{
			PolicyNumber:       policy,
			InsuredName:        insured,
			TransactionType:    MapTransactionType(label),
			TransactionTypeRaw: transType,
			EffectiveDate:      ParseDate(effDate),
			PremiumAmount:      premium,
			CommissionRate:     rate,
			CommissionAmount:   commission,
			ProducerName:       producer,
			ProductType:        lob,
			LineOfBusiness:     lob,
			TermMonths:         12,
			RawData:            rawRow(rows[headerIdx], row),
		})
	}

	return records, nil
}

func firstConnectTransLabel(t string) string {
	switch strings.ToUpper(strings.TrimSpace(t)) {
	case "NEW", "NEW BUSINESS":
		return "NEW BUSINESS"
	case "RENEW", "RENEWAL":
		return "RENEWAL"
	case "CANCEL", "CANCELLATION":
		return "CANCELLATION"
	case "ENDORSE", "ENDORSEMENT":
		return "ENDORSEMENT"
	default:
		return t
	}
}
