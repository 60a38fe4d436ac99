package parser

import (
	"testing"
	"time"

	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"$2,677.00", "2677", true},
		{"-$249.14", "-249.14", true},
		{"1,545.00", "1545", true},
		{"($141.84)", "-141.84", true},
		{"(141.84)", "-141.84", true},
		{"1,545.00-", "-1545", true},
		{"0", "0", true},
		{"", "0", false},
		{"abc", "0", false},
	}
	for _, tc := range cases {
		got, ok := CleanCurrency(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "%s -> %s", tc.in, got)
	}
}

func TestCleanRate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"15.00%", "0.15", true},
		{"0.15", "0.15", true},
		{"12", "0.12", true},
		{"1", "1", true},
		{"", "0", false},
	}
	for _, tc := range cases {
		got, ok := CleanRate(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "%s -> %s", tc.in, got)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 24, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"1/24/2024", "01/24/2024", "2024-01-24", "01-24-2024"} {
		got := ParseDate(in)
		require.NotNil(t, got, in)
		assert.Equal(t, want, *got, in)
	}

	assert.Nil(t, ParseDate(""))
	assert.Nil(t, ParseDate("not a date"))

	// Excel serial for 2024-01-24.
	serial := ParseDate("45315")
	require.NotNil(t, serial)
	assert.Equal(t, want, *serial)
}

func TestParseTerm(t *testing.T) {
	assert.Equal(t, 12, ParseTerm("N12"))
	assert.Equal(t, 6, ParseTerm("R6"))
	assert.Equal(t, 12, ParseTerm("12"))
	assert.Equal(t, 12, ParseTerm("12.0"))
	assert.Equal(t, 0, ParseTerm(""))
	assert.Equal(t, 0, ParseTerm("annual"))
}

func TestMapTransactionType(t *testing.T) {
	cases := map[string]statementdomain.TransactionType{
		"NEW BUSINESS":             statementdomain.TxNewBusiness,
		"New Bus-A":                statementdomain.TxNewBusiness,
		"NB":                       statementdomain.TxNewBusiness,
		"Renewal":                  statementdomain.TxRenewal,
		"RWL":                      statementdomain.TxRenewal,
		"Endorsement":              statementdomain.TxEndorsement,
		"Revision":                 statementdomain.TxEndorsement,
		"Cancel Pro Rate":          statementdomain.TxCancellation,
		"CANCELLATION":             statementdomain.TxCancellation,
		"Reinstatement":            statementdomain.TxReinstatement,
		"Audit Prem":               statementdomain.TxAudit,
		"Loss Hist Chargeback":     statementdomain.TxAdjustment,
		"Uncollected Premium":      statementdomain.TxAdjustment,
		"something else entirely":  statementdomain.TxOther,
		"":                         statementdomain.TxOther,
	}
	for in, want := range cases {
		assert.Equal(t, want, MapTransactionType(in), in)
	}
}
