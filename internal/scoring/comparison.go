package scoring

import (
	"context"
	"sort"

	"github.com/blagoySimandov/bidcompare/go/internal/models"
)

type ComparedBid struct {
	Bid        *models.Bid            `json:"bid"`
	Contractor *models.BidContractor  `json:"contractor,omitempty"`
	Scope      *models.BidScope       `json:"scope,omitempty"`
	Equipment  []*models.BidEquipment `json:"equipment"`
	Score      *models.BidScore       `json:"score,omitempty"`
}

type Comparison struct {
	ProjectID     string                       `json:"project_id"`
	ProjectStatus models.ProjectStatus         `json:"project_status"`
	Priorities    models.Priorities            `json:"priorities"`
	Bids          []*ComparedBid               `json:"bids"`
	Questions     []*models.ContractorQuestion `json:"questions"`
	Faqs          []*models.Faq                `json:"faqs"`
}

// Comparison lists the completed bids side by side, best score first. Bids
// that were never scored sort after the scored ones.
func (s *Scorer) Comparison(ctx context.Context, userID, projectID string) (*Comparison, error) {
	project, err := s.ownedProject(ctx, userID, projectID)
	if err != nil {
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

	stored, err := s.store.ListBidScores(ctx, projectID)
	if err != nil {
		return nil, err
	}
	scores := make(map[string]*models.BidScore, len(stored))
	for _, sc := range stored {
		scores[sc.BidID] = sc
	}

	bids := make([]*ComparedBid, 0, len(facts))
	for _, f := range facts {
		bids = append(bids, &ComparedBid{
			Bid:        f.bid,
			Contractor: f.contractor,
			Scope:      f.scope,
			Equipment:  f.equipment,
			Score:      scores[f.bid.ID],
		})
	}
	sort.SliceStable(bids, func(i, j int) bool {
		a, b := bids[i].Score, bids[j].Score
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Rank < b.Rank
		}
	})

	questions, err := s.store.ListQuestions(ctx, projectID)
	if err != nil {
		return nil, err
	}
	faqs, err := s.store.ListFaqs(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &Comparison{
		ProjectID:     project.ID,
		ProjectStatus: project.Status,
		Priorities:    priorities,
		Bids:          bids,
		Questions:     questions,
		Faqs:          faqs,
	}, nil
}
