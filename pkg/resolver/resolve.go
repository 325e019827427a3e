package resolver

import (
	"context"
	"strings"

	"github.com/devicelab-dev/droidreplay/pkg/core"
	"github.com/devicelab-dev/droidreplay/pkg/uitree"
)

// Score weights.
const (
	WeightText        = 3
	WeightDescription = 3
	WeightResourceID  = 2
	WeightContains    = 1

	// MinScore is the acceptance threshold. A lone substring hit (1) never
	// selects a target.
	MinScore = 2
)

// Match is a resolved node and its score.
type Match struct {
	Node  uitree.FlatNode
	Score int
}

// Center returns the tap point of the matched node.
func (m *Match) Center() (int, int, error) {
	x, y, ok := uitree.Center(m.Node)
	if !ok {
		return 0, 0, core.ErrNoBounds.WithDetails(map[string]interface{}{
			"index":  m.Node.Index,
			"bounds": m.Node.BoundsText,
		})
	}
	return x, y, nil
}

// Element converts the match to report form.
func (m *Match) Element() *core.ElementInfo {
	info := &core.ElementInfo{
		Index:              m.Node.Index,
		Text:               m.Node.Text,
		ContentDescription: m.Node.ContentDescription,
		ResourceID:         m.Node.ResourceID,
		ClassName:          m.Node.ClassName,
		Score:              m.Score,
	}
	if x, y, ok := uitree.Center(m.Node); ok {
		info.X, info.Y = x, y
	}
	return info
}

// Score rates how well n matches c. Only fields present in c count. Exact and
// substring text credits add up independently.
func Score(c Criteria, n uitree.FlatNode) int {
	score := 0
	if c.Text != "" && n.Text == c.Text {
		score += WeightText
	}
	if c.ContentDescription != "" && n.ContentDescription == c.ContentDescription {
		score += WeightDescription
	}
	if c.ResourceID != "" && n.ResourceID == c.ResourceID {
		score += WeightResourceID
	}
	if c.Text != "" && n.Text != "" && strings.Contains(n.Text, c.Text) {
		score += WeightContains
	}
	return score
}

// Resolve returns the highest scoring node. Ties keep the first node in
// traversal order. Results below MinScore are core.ErrNotFound; an empty
// node list is core.ErrNoNodes.
func Resolve(c Criteria, nodes []uitree.FlatNode) (*Match, error) {
	if c.IsEmpty() {
		return nil, core.ErrNotFound.WithMessage("criteria is empty")
	}
	if len(nodes) == 0 {
		return nil, core.ErrNoNodes
	}

	best := -1
	bestScore := 0
	for i, n := range nodes {
		if s := Score(c, n); s > bestScore {
			best, bestScore = i, s
		}
	}

	if best < 0 || bestScore < MinScore {
		return nil, core.ErrNotFound.WithDetails(map[string]interface{}{
			"criteria":  c.DescribeQuoted(),
			"bestScore": bestScore,
			"nodes":     len(nodes),
		})
	}
	return &Match{Node: nodes[best], Score: bestScore}, nil
}

// TreeSource fetches the current accessibility snapshot.
type TreeSource interface {
	AccessibilityTree(ctx context.Context) ([]byte, error)
}

// Find fetches a fresh snapshot from src and resolves c against it. It never
// uses a cached tree: replay depends on the device state at execution time.
func Find(ctx context.Context, src TreeSource, c Criteria) (*Match, error) {
	body, err := src.AccessibilityTree(ctx)
	if err != nil {
		return nil, err
	}
	return Resolve(c, uitree.Flatten(uitree.FromResponse(body)))
}
