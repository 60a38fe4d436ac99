package parser

import (
	"strings"

	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
)

// progressiveParser handles Progressive agency statements, shipped as
// XLSX or CSV with the same column set.
type progressiveParser struct{}

func (progressiveParser) Carrier() string { return statementdomain.CarrierProgressive }

func (p progressiveParser) Parse(data []byte, filename string) ([]Record, error) {
	var rows [][]string
	var err error

	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		rows, err = readCSV(data)
		if err != nil {
			return nil, parseErr(p.Carrier(), 0, "read csv", err)
		}
	} else {
		f, openErr := openXLSX(data)
		if openErr != nil {
			return nil, parseErr(p.Carrier(), 0, "open workbook", openErr)
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, parseErr(p.Carrier(), 0, "workbook has no sheets", nil)
		}
		rows, err = sheetRows(f, sheets[0])
		if err != nil {
			return nil, parseErr(p.Carrier(), 0, "read sheet", err)
		}
	}
	if len(rows) == 0 {
		return nil, parseErr(p.Carrier(), 0, "file is empty", nil)
	}

	idx := headerIndex(rows[0])
	records := make([]Record, 0, len(rows))

	for _, row := range rows[1:] {
		policy := lookup(idx, row, "policy number")
		if policy == "" {
			continue
		}

		rawType := lookup(idx, row, "tran code")
		premium, _ := CleanCurrency(lookup(idx, row, "gross premium"))
		commission, _ := CleanCurrency(lookup(idx, row, "gross comm"))
		rate, _ := CleanRate(lookup(idx, row, "comm"))
		prodLine := lookup(idx, row, "prod")

		// Progressive auto runs six-month terms.
		term := 12
		if prodLine == "Auto" {
			term = 6
		}

		records = append(records, Record{
			PolicyNumber:       policy,
			InsuredName:        lookup(idx, row, "insured name"),
			TransactionType:    MapTransactionType(rawType),
			TransactionTypeRaw: rawType,
			TransactionDate:    ParseDate(lookup(idx, row, "tran date")),
			EffectiveDate:      ParseDate(lookup(idx, row, "policy effective date")),
			PremiumAmount:      premium,
			CommissionRate:     rate,
			CommissionAmount:   commission,
			ProducerName:       lookup(idx, row, "prod name"),
			ProductType:        prodLine,
			LineOfBusiness:     prodLine,
			TermMonths:         term,
			RawData:            rawRow(rows[0], row),
		})
	}

	return records, nil
}
