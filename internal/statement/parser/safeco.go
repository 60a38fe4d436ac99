package parser

import (
	"strings"

	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
)

// safecoParser handles Safeco (Liberty Mutual) portal exports, whose
// column names drift between downloads.
type safecoParser struct{}

func (safecoParser) Carrier() string { return statementdomain.CarrierSafeco }

func (p safecoParser) Parse(data []byte, filename string) ([]Record, error) {
	var rows [][]string
	var err error

	name := strings.ToLower(filename)
	if strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".txt") {
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

	cols := safecoColumns(rows[0])
	records := make([]Record, 0, len(rows))

	for _, row := range rows[1:] {
		policy := lookup(cols, row, "policy")
		if policy == "" {
			continue
		}

		rawType := lookup(cols, row, "trans_type")
		premium, _ := CleanCurrency(lookup(cols, row, "premium"))
		rate, _ := CleanRate(lookup(cols, row, "comm_rate"))
		commission, _ := CleanCurrency(lookup(cols, row, "comm_amount"))

		records = append(records, Record{
			PolicyNumber:       policy,
			InsuredName:        lookup(cols, row, "insured"),
			TransactionType:    MapTransactionType(rawType),
			TransactionTypeRaw: rawType,
			TransactionDate:    ParseDate(lookup(cols, row, "trans_date")),
			EffectiveDate:      ParseDate(lookup(cols, row, "eff_date")),
			PremiumAmount:      premium,
			CommissionRate:     rate,
			CommissionAmount:   commission,
			ProducerName:       lookup(cols, row, "producer"),
			ProductType:        lookup(cols, row, "product"),
			LineOfBusiness:     lookup(cols, row, "lob"),
			State:              stateCode(lookup(cols, row, "state")),
			TermMonths:         ParseTerm(lookup(cols, row, "term")),
			RawData:            rawRow(rows[0], row),
		})
	}

	return records, nil
}

func safecoColumns(header []string) map[string]int {
	cols := make(map[string]int)
	set := func(key string, i int) {
		if _, exists := cols[key]; !exists {
			cols[key] = i
		}
	}
	for i, h := range header {
		cl := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		switch {
		case strings.Contains(cl, "policy") && (strings.Contains(cl, "num") || strings.Contains(cl, "no") || cl == "policy"):
			set("policy", i)
		case strings.Contains(cl, "insured"), strings.Contains(cl, "name"):
			set("insured", i)
		case strings.Contains(cl, "trans") && strings.Contains(cl, "type"),
			strings.Contains(cl, "activity") && strings.Contains(cl, "type"):
			set("trans_type", i)
		case strings.Contains(cl, "trans") && strings.Contains(cl, "date"):
			set("trans_date", i)
		case strings.Contains(cl, "eff") && strings.Contains(cl, "date"):
			set("eff_date", i)
		case strings.Contains(cl, "premium") && (strings.Contains(cl, "written") || strings.Contains(cl, "net") || cl == "premium"):
			set("premium", i)
		case strings.Contains(cl, "comm") && (strings.Contains(cl, "rate") || strings.Contains(cl, "pct") || strings.Contains(cl, "percent")):
			set("comm_rate", i)
		case strings.Contains(cl, "comm") && (strings.Contains(cl, "amt") || strings.Contains(cl, "amount") || cl == "commission"):
			set("comm_amount", i)
		case strings.Contains(cl, "state") && !strings.Contains(cl, "code"):
			set("state", i)
		case strings.Contains(cl, "producer"), strings.Contains(cl, "agent"), strings.Contains(cl, "writer"):
			set("producer", i)
		case strings.Contains(cl, "line") && strings.Contains(cl, "bus"):
			set("lob", i)
		case strings.Contains(cl, "term"):
			set("term", i)
		case strings.Contains(cl, "product"):
			set("product", i)
		}
	}
	return cols
}
