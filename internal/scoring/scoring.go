// Package scoring ranks a project's extracted bids against the priorities the
// homeowner submitted with the latest batch.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/blagoySimandov/bidcompare/go/internal/models"
	"github.com/blagoySimandov/bidcompare/go/internal/state"
	"github.com/rs/zerolog/log"
)

var ErrForbidden = errors.New("forbidden")

type Scorer struct {
	store state.Store
	now   func() time.Time
}

func New(store state.Store) *Scorer {
	return &Scorer{store: store, now: time.Now}
}

// Recompute scores every completed bid of the project and stores the result.
// Bids that are not completed keep whatever score they had.
func (s *Scorer) Recompute(ctx context.Context, userID, projectID string) ([]*models.BidScore, error) {
	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	priorities, err := s.priorities(ctx, projectID)
	if err != nil {
		return nil, err
	}

	facts, err := s.loadCompleted(ctx, projectID)
	if err != nil {
		return nil, err
	}

	scores := score(facts, priorities, s.now())

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx state.Store) error {
		for _, sc := range scores {
			if err := tx.UpsertBidScore(ctx, sc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store scores: %w", err)
	}

	log.Info().
		Str("projectID", projectID).
		Int("bids", len(scores)).
		Msg("Bid scores recomputed")

	return scores, nil
}

func (s *Scorer) ownedProject(ctx context.Context, userID, projectID string) (*models.Project, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, ErrForbidden
	}
	return project, nil
}

func (s *Scorer) priorities(ctx context.Context, projectID string) (models.Priorities, error) {
	batch, err := s.store.LatestBatch(ctx, projectID)
	if errors.Is(err, state.ErrNotFound) {
		return models.DefaultPriorities(), nil
	}
	if err != nil {
		return models.Priorities{}, err
	}
	if batch.Priorities.Validate() != nil {
		return models.DefaultPriorities(), nil
	}
	return batch.Priorities, nil
}

func (s *Scorer) loadCompleted(ctx context.Context, projectID string) ([]*bidFacts, error) {
	bids, err := s.store.ListBidsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var facts []*bidFacts
	for _, bid := range bids {
		if bid.Status != models.BidStatusCompleted {
			continue
		}
		f, err := s.load(ctx, bid)
		if err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, nil
}

func (s *Scorer) load(ctx context.Context, bid *models.Bid) (*bidFacts, error) {
	f := &bidFacts{bid: bid}

	scope, err := s.store.GetBidScope(ctx, bid.ID)
	switch {
	case err == nil:
		f.scope = scope
	case !errors.Is(err, state.ErrNotFound):
		return nil, err
	}

	contractor, err := s.store.GetBidContractor(ctx, bid.ID)
	switch {
	case err == nil:
		f.contractor = contractor
	case !errors.Is(err, state.ErrNotFound):
		return nil, err
	}

	f.equipment, err = s.store.ListBidEquipment(ctx, bid.ID)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func score(facts []*bidFacts, p models.Priorities, at time.Time) []*models.BidScore {
	cheapest, fastest := 0.0, 0.0
	for _, f := range facts {
		if f.scope == nil {
			continue
		}
		if v := f.scope.TotalBidAmount; v != nil && *v > 0 && (cheapest == 0 || *v < cheapest) {
			cheapest = *v
		}
		if v := f.scope.EstimatedDays; v != nil && *v > 0 && (fastest == 0 || float64(*v) < fastest) {
			fastest = float64(*v)
		}
	}

	scores := make([]*models.BidScore, 0, len(facts))
	for _, f := range facts {
		sub := subScores{
			Price:      priceScore(f.scope, cheapest),
			Warranty:   warrantyScore(f.scope),
			Efficiency: efficiencyScore(f.equipment),
			Reputation: reputationScore(f.contractor),
			Timeline:   timelineScore(f.scope, fastest),
		}
		scores = append(scores, &models.BidScore{
			BidID:           f.bid.ID,
			ProjectID:       f.bid.ProjectID,
			OverallScore:    overall(sub, p),
			PriceScore:      round(sub.Price),
			WarrantyScore:   round(sub.Warranty),
			EfficiencyScore: round(sub.Efficiency),
			ReputationScore: round(sub.Reputation),
			TimelineScore:   round(sub.Timeline),
			ComputedAt:      at.UTC(),
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].OverallScore != scores[j].OverallScore {
			return scores[i].OverallScore > scores[j].OverallScore
		}
		return scores[i].BidID < scores[j].BidID
	})
	for i, sc := range scores {
		sc.Rank = i + 1
	}
	return scores
}
