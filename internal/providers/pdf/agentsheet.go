package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	recondomain "github.com/agencydesk/agencydesk/internal/recon/domain"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

type PDFProvider struct {
	agencyName string
}

func New(agencyName string) Provider {
	return &PDFProvider{agencyName: agencyName}
}

func (p *PDFProvider) GenerateAgentSheet(ctx context.Context, sheet *recondomain.AgentSheet) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, p.agencyName, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(10,
		text.NewCol(12, "Agent Commission Sheet - "+sheet.PeriodDisplay, props.Text{
			Size:  12,
			Style: fontstyle.Bold,
		}),
	)

	agent := sheet.Agent
	m.AddRow(22,
		col.New(6).Add(
			text.New("Agent: "+agent.AgentName, props.Text{Top: 0}),
			text.New("Role: "+agent.AgentRole, props.Text{Top: 5}),
			text.New("Generated: "+sheet.GeneratedAt.Format("2006-01-02 15:04"), props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New(fmt.Sprintf("Tier %d at %s", agent.TierLevel, ratePercent(agent.CommissionRate)), props.Text{Top: 0}),
			text.New("Qualifying premium: "+agent.TierPremium.StringFixed(2)+" ("+agent.TierBasedOnPeriod+")", props.Text{Top: 5}),
		),
	)

	// Table header
	m.AddRow(8,
		text.NewCol(2, "Carrier", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Policy", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Insured", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Premium", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Commission", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range sheet.LineItems {
		m.AddRow(7,
			text.NewCol(2, item.Carrier, props.Text{Size: 8}),
			text.NewCol(3, item.PolicyNumber, props.Text{Size: 8}),
			text.NewCol(3, item.InsuredName, props.Text{Size: 8}),
			text.NewCol(2, item.Premium.StringFixed(2), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(2, item.AgentCommission.StringFixed(2), props.Text{Size: 8, Align: align.Right}),
		)
	}

	for _, cat := range sheet.Categories {
		m.AddRow(8,
			col.New(5),
			text.NewCol(3, categoryLabel(cat.Category), props.Text{Size: 9}),
			text.NewCol(2, cat.Premium.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, cat.AgentCommission.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Commission", props.Text{Size: 9}),
		text.NewCol(2, agent.TotalAgentCommission.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Chargebacks", props.Text{Size: 9}),
		text.NewCol(2, agent.Chargebacks.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Bonus", props.Text{Size: 9}),
		text.NewCol(2, agent.Bonus.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Grand total", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, agent.GrandTotal.StringFixed(2), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

func categoryLabel(category string) string {
	if category == "new_business" {
		return "New business"
	}
	return "Other paid"
}

func ratePercent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String() + "%"
}
