package parser

import (
	"strings"

	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
)

// geicoParser reads the second sheet of the Geico workbook: sections
// flagged by "First Year Commission" / "Renewal Year Commission"
// markers with data at fixed sparse column positions.
type geicoParser struct{}

func (geicoParser) Carrier() string { return statementdomain.CarrierGeico }

const (
	geicoColAgentID    = 1
	geicoColAgentName  = 3
	geicoColPolicy     = 5
	geicoColInsured    = 8
	geicoColEffDate    = 11
	geicoColTransDate  = 13
	geicoColPremium    = 14
	geicoColRate       = 15
	geicoColCommission = 18
)

func (p geicoParser) Parse(data []byte, filename string) ([]Record, error) {
	f, err := openXLSX(data)
	if err != nil {
		return nil, parseErr(p.Carrier(), 0, "open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) < 2 {
		return nil, parseErr(p.Carrier(), 0, "workbook needs the detail sheet at position 2", nil)
	}
	rows, err := sheetRows(f, sheets[1])
	if err != nil {
		return nil, parseErr(p.Carrier(), 0, "read detail sheet", err)
	}

	section := ""
	records := make([]Record, 0, len(rows))

	for _, row := range rows {
		text := strings.Join(row, " ")

		if strings.Contains(text, "First Year Commission") {
			section = "first_year"
			continue
		}
		if strings.Contains(text, "Renewal Year Commission") {
			section = "renewal"
			continue
		}
		if section == "" {
			continue
		}
		if strings.Contains(text, "Writing Agent") ||
			strings.Contains(text, "CALCULATION") ||
			strings.Contains(text, "Agent Wise") {
			continue
		}

		agentID := cell(row, geicoColAgentID)
		policyRaw := cell(row, geicoColPolicy)
		if agentID == "" || policyRaw == "" {
			continue
		}
		// Totals rows have no I-prefixed agent id.
		if !strings.HasPrefix(agentID, "I") {
			continue
		}

		// Policy is "6192911649-426633894"; the first segment matches
		// the book of business.
		policy := policyRaw
		if i := strings.Index(policyRaw, "-"); i > 0 {
			policy = policyRaw[:i]
		}

		premium, _ := CleanCurrency(cell(row, geicoColPremium))
		rate, _ := CleanRate(cell(row, geicoColRate))
		commission, _ := CleanCurrency(cell(row, geicoColCommission))

		label := "RENEWAL"
		if section == "first_year" {
			label = "NEW BUSINESS"
		}

		records = append(records, Record{
			PolicyNumber:       policy,
			InsuredName:        cell(row, geicoColInsured),
			TransactionType:    MapTransactionType(label),
			TransactionTypeRaw: section + " - " + label,
			TransactionDate:    ParseDate(cell(row, geicoColTransDate)),
			EffectiveDate:      ParseDate(cell(row, geicoColEffDate)),
			PremiumAmount:      premium,
			CommissionRate:     rate,
			CommissionAmount:   commission,
			ProducerName:       cell(row, geicoColAgentName),
			ProductType:        "Private Passenger Auto",
			LineOfBusiness:     "Auto",
			TermMonths:         6,
			RawData:            strings.TrimSpace(text),
		})
	}

	return records, nil
}
