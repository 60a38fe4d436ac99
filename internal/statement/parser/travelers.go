package parser

import (
	"strconv"
	"strings"
	"time"

	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	"github.com/shopspring/decimal"
)

// travelersParser handles the Travelers PI statement. The format is
// messy: a sub-header row under the real header, transaction codes
// packed into the POL-EFF-DT column as MMDDYY-TYPE, and rates stored
// scaled (1500 means 15.00%).
type travelersParser struct{}

func (travelersParser) Carrier() string { return statementdomain.CarrierTravelers }

func (p travelersParser) Parse(data []byte, filename string) ([]Record, error) {
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
	if len(rows) == 0 {
		return nil, parseErr(p.Carrier(), 0, "file is empty", nil)
	}

	idx := headerIndex(rows[0])
	body := rows[1:]

	// Drop the repeated sub-header row ("DATE", "CDE", "CODE", ...).
	if len(body) > 0 && strings.EqualFold(lookup(idx, body[0], "statement"), "DATE") {
		body = body[1:]
	}

	records := make([]Record, 0, len(body))
	for _, row := range body {
		insured := lookup(idx, row, "name of insured")
		if insured == "" {
			continue
		}
		policyRaw := lookup(idx, row, "policy number")
		if policyRaw == "" {
			continue
		}
		policy := policyRaw
		if fields := strings.Fields(policyRaw); len(fields) > 0 {
			policy = fields[0]
		}

		transCode := lookup(idx, row, "pol-eff-dt")
		premium, _ := CleanCurrency(lookup(idx, row, "payment"))
		commission, _ := CleanCurrency(lookup(idx, row, "paid"))
		rate := travelersRate(lookup(idx, row, "comm"))

		stmtDate := ParseDate(lookup(idx, row, "statement"))
		effDate := travelersCodeDate(transCode)
		if effDate == nil {
			effDate = stmtDate
		}

		records = append(records, Record{
			PolicyNumber:       policy,
			InsuredName:        insured,
			TransactionType:    MapTransactionType(travelersTransLabel(transCode)),
			TransactionTypeRaw: transCode,
			TransactionDate:    stmtDate,
			EffectiveDate:      effDate,
			PremiumAmount:      premium,
			CommissionRate:     rate,
			CommissionAmount:   commission,
			ProducerName:       lookup(idx, row, "sub"),
			TermMonths:         12,
			RawData:            rawRow(rows[0], row),
		})
	}

	return records, nil
}

// travelersRate decodes the scaled COMM column: 1500 = 15.00%, 15 = 15%,
// 0.15 = 15%.
func travelersRate(raw string) decimal.Decimal {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	switch {
	case d.GreaterThan(decimal.NewFromInt(100)):
		return d.Div(decimal.NewFromInt(10000))
	case d.GreaterThan(decimal.NewFromInt(1)):
		return d.Div(decimal.NewFromInt(100))
	default:
		return d
	}
}

func travelersTransLabel(code string) string {
	c := strings.ToUpper(code)
	switch {
	case strings.Contains(c, "NEW-BUS"), strings.Contains(c, "NEW BUS"):
		return "NEW BUSINESS"
	case strings.Contains(c, "CONT"):
		return "RENEWAL"
	case strings.Contains(c, "CANC"):
		return "CANCELLATION"
	case strings.Contains(c, "CHANGE"):
		return "ENDORSEMENT"
	case strings.Contains(c, "REIN"):
		return "REINSTATEMENT"
	case strings.Contains(c, "UNHON"), strings.Contains(c, "CHECK"):
		return "ADJUSTMENT"
	case strings.Contains(c, "WAIVE"):
		return "ENDORSEMENT"
	default:
		return "OTHER"
	}
}

// travelersCodeDate pulls the MMDDYY prefix out of codes like
// "012426-CONT".
func travelersCodeDate(code string) *time.Time {
	code = strings.TrimSpace(code)
	if len(code) < 6 {
		return nil
	}
	mm, err1 := strconv.Atoi(code[0:2])
	dd, err2 := strconv.Atoi(code[2:4])
	yy, err3 := strconv.Atoi(code[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil
	}
	year := 1900 + yy
	if yy < 50 {
		year = 2000 + yy
	}
	if mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return nil
	}
	t := time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	return &t
}
