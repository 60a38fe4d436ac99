package pdf

import (
	"context"
	"io"

	recondomain "github.com/agencydesk/agencydesk/internal/recon/domain"
)

// Provider renders agency documents. Today that is only the agent
// commission sheet.
type Provider interface {
	GenerateAgentSheet(ctx context.Context, sheet *recondomain.AgentSheet) (io.Reader, error)
}
