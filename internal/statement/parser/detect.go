package parser

import (
	"strings"

	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
)

// DetectCarrier fingerprints the file contents and returns the carrier
// it looks like, or "" when unknown. Detection is advisory: the upload
// flow always parses with the operator's selection and only reports a
// disagreement.
func DetectCarrier(data []byte, filename string) string {
	name := strings.ToLower(filename)

	if strings.HasSuffix(name, ".pdf") {
		head := string(data)
		if len(head) > 3000 {
			head = head[:3000]
		}
		if strings.Contains(head, "Bridge Specialty") || strings.Contains(head, "REMITTANCE ADVICE") {
			return statementdomain.CarrierNBS
		}
		if text, err := nbsExtractText(data); err == nil {
			if strings.Contains(text, "Bridge Specialty") || strings.Contains(text, "REMITTANCE ADVICE") {
				return statementdomain.CarrierNBS
			}
		}
		return ""
	}

	if strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".txt") {
		rows, err := readCSV(data)
		if err != nil || len(rows) == 0 {
			return ""
		}
		return detectFromHeader(rows[0])
	}

	f, err := openXLSX(data)
	if err != nil {
		return ""
	}
	defer f.Close()

	// Sheet-name fingerprints first.
	if hasSheet(f, "Summary Details") || hasSheet(f, "All Producers") {
		return statementdomain.CarrierNationalGeneral
	}
	if hasSheet(f, "Commissions Report") {
		rows, err := sheetRows(f, "Commissions Report")
		if err == nil {
			for i, row := range rows {
				if i > 15 {
					break
				}
				for _, v := range row {
					v = strings.TrimSpace(v)
					if strings.Contains(v, "Commission Payable Statement") || v == "Carriers" {
						return statementdomain.CarrierFirstConnect
					}
				}
			}
		}
	}

	sheets := f.GetSheetList()
	if len(sheets) >= 2 {
		rows, err := sheetRows(f, sheets[0])
		if err == nil {
			for i, row := range rows {
				if i > 10 {
					break
				}
				for _, v := range row {
					if strings.Contains(v, "Commission Statement GEICO") {
						return statementdomain.CarrierGeico
					}
				}
			}
		}
	}

	if len(sheets) > 0 {
		rows, err := sheetRows(f, sheets[0])
		if err == nil && len(rows) > 0 {
			return detectFromHeader(rows[0])
		}
	}
	return ""
}

func detectFromHeader(header []string) string {
	cols := make(map[string]bool, len(header))
	for _, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = true
	}
	joined := strings.Join(header, " ")
	joined = strings.ToLower(joined)

	switch {
	case cols["tran code"], cols["gross comm"]:
		return statementdomain.CarrierProgressive
	case cols["activity type"], cols["comm amount"]:
		return statementdomain.CarrierSafeco
	case cols["name of insured"], cols["pol-eff-dt"]:
		return statementdomain.CarrierTravelers
	case cols["selling producer"],
		cols["trans type"] && strings.Contains(joined, "written premium"):
		return statementdomain.CarrierNationalGeneral
	case cols["policyholder name or description"], strings.Contains(joined, "commission rate reason"):
		return statementdomain.CarrierGrange
	case cols["policynumber"], cols["insuredname"] && cols["transactiontype"]:
		return statementdomain.CarrierUniversal
	default:
		return ""
	}
}
