// Package parser normalizes carrier commission statements into a flat
// record stream. Each carrier has its own quirks; one parser per
// carrier keeps them contained.
package parser

import (
	"fmt"
	"time"

	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	"github.com/shopspring/decimal"
)

// Record is one normalized statement line. Amounts are signed:
// chargebacks and return premium come through negative.
type Record struct {
	PolicyNumber       string
	InsuredName        string
	TransactionType    statementdomain.TransactionType
	TransactionTypeRaw string
	TransactionDate    *time.Time
	EffectiveDate      *time.Time
	PremiumAmount      decimal.Decimal
	CommissionRate     decimal.Decimal
	CommissionAmount   decimal.Decimal
	ProducerName       string
	ProductType        string
	LineOfBusiness     string
	State              string
	TermMonths         int
	RawData            string
}

// Parser turns raw statement bytes into normalized records. Parsing is
// deterministic: the same bytes always yield the same records.
type Parser interface {
	Carrier() string
	Parse(data []byte, filename string) ([]Record, error)
}

// ParseError reports where in the file parsing broke down.
type ParseError struct {
	Carrier string
	Row     int
	Msg     string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("parse %s statement: row %d: %s", e.Carrier, e.Row, e.Msg)
	}
	return fmt.Sprintf("parse %s statement: %s", e.Carrier, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(carrier string, row int, msg string, err error) *ParseError {
	return &ParseError{Carrier: carrier, Row: row, Msg: msg, Err: err}
}

var registry = map[string]Parser{
	statementdomain.CarrierNationalGeneral: nationalGeneralParser{},
	statementdomain.CarrierProgressive:     progressiveParser{},
	statementdomain.CarrierSafeco:          safecoParser{},
	statementdomain.CarrierGrange:          grangeParser{},
	statementdomain.CarrierTravelers:       travelersParser{},
	statementdomain.CarrierGeico:           geicoParser{},
	statementdomain.CarrierFirstConnect:    firstConnectParser{},
	statementdomain.CarrierUniversal:       universalParser{},
	statementdomain.CarrierNBS:             nbsParser{},
}

// ForCarrier returns the parser registered for the carrier, falling back
// to the column-sniffing generic parser for carriers without a
// dedicated one (hartford, other).
func ForCarrier(carrier string) Parser {
	if p, ok := registry[carrier]; ok {
		return p
	}
	return genericParser{carrier: carrier}
}
