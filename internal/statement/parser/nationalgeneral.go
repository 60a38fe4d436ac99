package parser

import (
	"strings"

	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	"github.com/shopspring/decimal"
)

// nationalGeneralParser reads the "Summary Details" sheet (falling back
// to "All Producers" or the first sheet) plus an optional "Adjustments"
// sheet of per-policy corrections.
type nationalGeneralParser struct{}

func (nationalGeneralParser) Carrier() string { return statementdomain.CarrierNationalGeneral }

func (p nationalGeneralParser) Parse(data []byte, filename string) ([]Record, error) {
	f, err := openXLSX(data)
	if err != nil {
		return nil, parseErr(p.Carrier(), 0, "open workbook", err)
	}
	defer f.Close()

	sheet := ""
	switch {
	case hasSheet(f, "Summary Details"):
		sheet = "Summary Details"
	case hasSheet(f, "All Producers"):
		sheet = "All Producers"
	default:
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, parseErr(p.Carrier(), 0, "workbook has no sheets", nil)
		}
		sheet = sheets[0]
	}

	rows, err := sheetRows(f, sheet)
	if err != nil {
		return nil, parseErr(p.Carrier(), 0, "read sheet "+sheet, err)
	}
	if len(rows) == 0 {
		return nil, parseErr(p.Carrier(), 0, "sheet "+sheet+" is empty", nil)
	}

	cols := nationalGeneralColumns(rows[0])
	records := make([]Record, 0, len(rows))

	for _, row := range rows[1:] {
		policyRaw := lookup(cols, row, "policy")
		if policyRaw == "" {
			continue
		}
		// Policy may carry a modifier: "2033396050 00" -> "2033396050".
		policy := policyRaw
		if fields := strings.Fields(policyRaw); len(fields) > 1 {
			policy = fields[0]
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
			EffectiveDate:      ParseDate(lookup(cols, row, "eff_date")),
			PremiumAmount:      premium,
			CommissionRate:     rate,
			CommissionAmount:   commission,
			ProducerName:       lookup(cols, row, "producer"),
			ProductType:        lookup(cols, row, "product"),
			State:              stateCode(lookup(cols, row, "state")),
			TermMonths:         ParseTerm(lookup(cols, row, "term")),
			RawData:            rawRow(rows[0], row),
		})
	}

	if hasSheet(f, "Adjustments") {
		adjRows, err := sheetRows(f, "Adjustments")
		if err != nil {
			return nil, parseErr(p.Carrier(), 0, "read Adjustments sheet", err)
		}
		if len(adjRows) > 0 {
			idx := headerIndex(adjRows[0])
			for _, row := range adjRows[1:] {
				quote := lookup(idx, row, "quote num")
				if quote == "" {
					continue
				}
				rawType := lookup(idx, row, "transtype")
				amount, _ := CleanCurrency(lookup(idx, row, "amount"))

				records = append(records, Record{
					PolicyNumber:       quote,
					InsuredName:        lookup(idx, row, "drivers name"),
					TransactionType:    MapTransactionType(rawType),
					TransactionTypeRaw: rawType,
					EffectiveDate:      ParseDate(lookup(idx, row, "order date")),
					PremiumAmount:      decimal.Zero,
					CommissionAmount:   amount,
					ProducerName:       lookup(idx, row, "quoting producer"),
					ProductType:        lookup(idx, row, "product"),
					State:              stateCode(lookup(idx, row, "gov state")),
					RawData:            rawRow(adjRows[0], row),
				})
			}
		}
	}

	return records, nil
}

// nationalGeneralColumns maps the flexible header variants this carrier
// ships onto stable keys.
func nationalGeneralColumns(header []string) map[string]int {
	cols := make(map[string]int)
	set := func(key string, i int) {
		if _, exists := cols[key]; !exists {
			cols[key] = i
		}
	}
	for i, h := range header {
		cl := strings.ToLower(strings.TrimSpace(h))
		switch {
		case cl == "policy", strings.Contains(cl, "policy") && !strings.Contains(cl, "number"):
			set("policy", i)
		case strings.Contains(cl, "insured"):
			set("insured", i)
		case strings.Contains(cl, "selling") && strings.Contains(cl, "producer"):
			set("producer", i)
		case strings.Contains(cl, "trans") && strings.Contains(cl, "type"):
			set("trans_type", i)
		case cl == "premium", strings.Contains(cl, "written") && strings.Contains(cl, "premium"):
			set("premium", i)
		case cl == "rate":
			set("rate", i)
		case cl == "commission",
			strings.Contains(cl, "commission") && (strings.Contains(cl, "paid") || strings.Contains(cl, "amount")):
			set("commission", i)
		case cl == "term":
			set("term", i)
		case strings.Contains(cl, "eff") && strings.Contains(cl, "date"):
			set("eff_date", i)
		case cl == "state":
			set("state", i)
		case strings.Contains(cl, "sub product"), strings.Contains(cl, "product"):
			set("product", i)
		}
	}
	return cols
}

func stateCode(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 2 {
		return s[:2]
	}
	return s
}
