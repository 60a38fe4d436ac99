package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	agentdomain "github.com/agencydesk/agencydesk/internal/agent/domain"
	recondomain "github.com/agencydesk/agencydesk/internal/recon/domain"
	saledomain "github.com/agencydesk/agencydesk/internal/sale/domain"
	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	"github.com/agnivade/levenshtein"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ranking nudges for non-name signals. Acceptance is decided on name
// similarity alone; these only break ties between candidates.
const (
	stateBonus    = 0.05
	producerBonus = 0.05
)

// Match runs the exact and fuzzy passes over every line of an import.
// Re-running is safe: exact and manual matches are never touched, fuzzy
// matches may move to a better candidate, and counters are recomputed
// from the lines each time.
func (s *service) Match(ctx context.Context, importID snowflake.ID) (*recondomain.MatchResult, error) {
	imp, err := s.imports.FindByID(ctx, importID)
	if err != nil {
		return nil, err
	}
	lines, err := s.imports.Lines(ctx, importID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.sales.SearchCandidates(ctx, saledomain.CandidateFilter{Carrier: imp.Carrier})
	if err != nil {
		return nil, err
	}
	producers, err := s.candidateProducers(ctx, candidates)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var changed []statementdomain.StatementLine
	matched, newly := 0, 0

	for i := range lines {
		line := &lines[i]
		if line.MatchConfidence == statementdomain.MatchExact || line.MatchConfidence == statementdomain.MatchManual {
			matched++
			continue
		}
		wasMatched := line.IsMatched

		sale, confidence, err := s.findSale(ctx, line, candidates, producers)
		if err != nil {
			return nil, err
		}
		if sale == nil {
			if wasMatched {
				matched++
			}
			continue
		}

		matched++
		if wasMatched && line.MatchedSaleID != nil && *line.MatchedSaleID == sale.ID && line.MatchConfidence == confidence {
			continue
		}
		if !wasMatched {
			newly++
		}

		saleID := sale.ID
		agentID := sale.ProducerID
		line.IsMatched = true
		line.MatchedSaleID = &saleID
		line.AssignedAgentID = &agentID
		line.MatchConfidence = confidence
		line.MatchedAt = &now
		changed = append(changed, *line)
	}

	if len(changed) > 0 {
		if err := s.imports.UpdateLines(ctx, changed); err != nil {
			return nil, err
		}
	}

	status := statementdomain.ImportProcessed
	if matched == len(lines) && len(lines) > 0 {
		status = statementdomain.ImportReconciled
	}
	if err := s.imports.RefreshCounters(ctx, importID, status); err != nil {
		return nil, err
	}

	s.log.Info("matching pass complete",
		zap.String("import_id", importID.String()),
		zap.Int("total", len(lines)),
		zap.Int("matched", matched),
		zap.Int("newly_matched", newly),
	)

	return &recondomain.MatchResult{
		ImportID:     importID.String(),
		Total:        len(lines),
		MatchedTotal: matched,
		NewlyMatched: newly,
		Unmatched:    len(lines) - matched,
	}, nil
}

// ManualMatch pins a line to a sale chosen by an operator. Manual wins
// over anything automatic and is never revisited by Match.
func (s *service) ManualMatch(ctx context.Context, lineID, saleID snowflake.ID) (*recondomain.MatchResult, error) {
	line, err := s.imports.FindLine(ctx, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, statementdomain.ErrLineNotFound
		}
		return nil, err
	}
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, saledomain.ErrNotFound
		}
		return nil, err
	}

	now := s.clock.Now()
	sid := sale.ID
	agentID := sale.ProducerID
	line.IsMatched = true
	line.MatchedSaleID = &sid
	line.AssignedAgentID = &agentID
	line.MatchConfidence = statementdomain.MatchManual
	line.MatchedAt = &now
	if err := s.imports.UpdateLine(ctx, line); err != nil {
		return nil, err
	}

	lines, err := s.imports.Lines(ctx, line.ImportID)
	if err != nil {
		return nil, err
	}
	matched := 0
	for _, l := range lines {
		if l.IsMatched {
			matched++
		}
	}
	status := statementdomain.ImportProcessed
	if matched == len(lines) {
		status = statementdomain.ImportReconciled
	}
	if err := s.imports.RefreshCounters(ctx, line.ImportID, status); err != nil {
		return nil, err
	}

	s.log.Info("line matched manually",
		zap.String("line_id", lineID.String()),
		zap.String("sale_id", saleID.String()),
	)

	return &recondomain.MatchResult{
		ImportID:     line.ImportID.String(),
		Total:        len(lines),
		MatchedTotal: matched,
		Unmatched:    len(lines) - matched,
	}, nil
}

// findSale runs the exact pass, then the fuzzy pass, for one line.
func (s *service) findSale(ctx context.Context, line *statementdomain.StatementLine, candidates []saledomain.Sale, producers map[snowflake.ID]agentdomain.Agent) (*saledomain.Sale, statementdomain.MatchConfidence, error) {
	sale, err := s.sales.FindByPolicyNumber(ctx, line.PolicyNumber)
	if err == nil {
		return sale, statementdomain.MatchExact, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	var (
		best     *saledomain.Sale
		bestName float64
		bestRank float64
	)
	for i := range candidates {
		cand := &candidates[i]
		name := nameSimilarity(line.InsuredName, cand.ClientName)
		if name < s.cfg.NameMatchThreshold {
			continue
		}
		rank := name
		if line.State != "" && strings.EqualFold(line.State, cand.State) {
			rank += stateBonus
		}
		if agent, ok := producers[cand.ProducerID]; ok && line.ProducerName != "" {
			rank += producerBonus * nameSimilarity(line.ProducerName, agent.FullName)
		}
		if rank > bestRank {
			best, bestName, bestRank = cand, name, rank
		}
	}
	if best == nil || bestName < s.cfg.NameMatchThreshold {
		return nil, "", nil
	}
	return best, statementdomain.MatchFuzzy, nil
}

func (s *service) candidateProducers(ctx context.Context, candidates []saledomain.Sale) (map[snowflake.ID]agentdomain.Agent, error) {
	seen := map[snowflake.ID]struct{}{}
	var ids []snowflake.ID
	for _, c := range candidates {
		if _, ok := seen[c.ProducerID]; ok {
			continue
		}
		seen[c.ProducerID] = struct{}{}
		ids = append(ids, c.ProducerID)
	}
	return s.agents.FindByIDs(ctx, ids)
}

// normalizeName uppercases, strips punctuation and sorts tokens so
// "Smith, Alice" and "Alice Smith" compare equal.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	tokens := strings.Fields(b.String())
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func nameSimilarity(a, b string) float64 {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	longest := len(na)
	if len(nb) > longest {
		longest = len(nb)
	}
	dist := levenshtein.ComputeDistance(na, nb)
	return 1 - float64(dist)/float64(longest)
}
