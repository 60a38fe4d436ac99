package parser

import (
	"strings"
)

// genericParser sniffs common column names for carriers without a
// dedicated parser. A file with no recognizable policy column is
// rejected rather than imported empty.
type genericParser struct {
	carrier string
}

func (g genericParser) Carrier() string { return g.carrier }

func (g genericParser) Parse(data []byte, filename string) ([]Record, error) {
	var rows [][]string
	var err error

	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		f, openErr := openXLSX(data)
		if openErr != nil {
			return nil, parseErr(g.carrier, 0, "open workbook", openErr)
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, parseErr(g.carrier, 0, "workbook has no sheets", nil)
		}
		rows, err = sheetRows(f, sheets[0])
		if err != nil {
			return nil, parseErr(g.carrier, 0, "read sheet", err)
		}
	} else {
		rows, err = readCSV(data)
		if err != nil {
			return nil, parseErr(g.carrier, 0, "read csv", err)
		}
	}
	if len(rows) == 0 {
		return nil, parseErr(g.carrier, 0, "file is empty", nil)
	}

	cols := genericColumns(rows[0])
	if _, ok := cols["policy"]; !ok {
		return nil, parseErr(g.carrier, 0, "could not find a policy number column", nil)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows[1:] {
		policy := lookup(cols, row, "policy")
		if policy == "" {
			continue
		}

		rawType := lookup(cols, row, "trans_type")
		premium, _ := CleanCurrency(lookup(cols, row, "premium"))
		rate, _ := CleanRate(lookup(cols, row, "rate"))
		commission, _ := CleanCurrency(lookup(cols, row, "commission"))

		records = append(records, Record{
			PolicyNumber:       policy,
			InsuredName:        lookup(cols, row, "insured"),
			TransactionType:    MapTransactionType(rawType),
			TransactionTypeRaw: rawType,
			TransactionDate:    ParseDate(lookup(cols, row, "date")),
			PremiumAmount:      premium,
			CommissionRate:     rate,
			CommissionAmount:   commission,
			RawData:            rawRow(rows[0], row),
		})
	}

	return records, nil
}

func genericColumns(header []string) map[string]int {
	cols := make(map[string]int)
	set := func(key string, i int) {
		if _, exists := cols[key]; !exists {
			cols[key] = i
		}
	}
	for i, h := range header {
		cl := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(cl, "policy") && (strings.Contains(cl, "num") || strings.Contains(cl, "#") || cl == "policy number"):
			set("policy", i)
		case strings.Contains(cl, "insured"), strings.Contains(cl, "policyholder"), strings.Contains(cl, "name"):
			set("insured", i)
		case strings.Contains(cl, "premium") && !strings.Contains(cl, "commission"):
			set("premium", i)
		case strings.Contains(cl, "commission") && (strings.Contains(cl, "amt") || strings.Contains(cl, "amount")):
			set("commission", i)
		case strings.Contains(cl, "comm") && strings.Contains(cl, "rate"):
			set("rate", i)
		case strings.Contains(cl, "trans") && (strings.Contains(cl, "type") || strings.Contains(cl, "desc")):
			set("trans_type", i)
		case strings.Contains(cl, "date"):
			set("date", i)
		}
	}
	return cols
}
