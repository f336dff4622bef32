package state

import (
	"context"
	"fmt"

	"github.com/blagoySimandov/bidcompare/go/internal/models"
	"github.com/uptrace/bun"
)

type tableDef struct {
	model       interface{}
	name        string
	foreignKeys []string
}

type indexDef struct {
	model   interface{}
	name    string
	columns []string
}

var tables = []tableDef{
	{model: (*models.Project)(nil), name: "projects"},
	{
		model:       (*models.Bid)(nil),
		name:        "bids",
		foreignKeys: []string{`("project_id") REFERENCES "projects" ("id") ON DELETE CASCADE`},
	},
	{
		model: (*models.Document)(nil),
		name:  "pdf_uploads",
		foreignKeys: []string{
			`("project_id") REFERENCES "projects" ("id") ON DELETE CASCADE`,
			`("bid_id") REFERENCES "bids" ("id") ON DELETE CASCADE`,
		},
	},
	{
		model:       (*models.BidScope)(nil),
		name:        "bid_scopes",
		foreignKeys: []string{`("bid_id") REFERENCES "bids" ("id") ON DELETE CASCADE`},
	},
	{
		model:       (*models.BidContractor)(nil),
		name:        "bid_contractors",
		foreignKeys: []string{`("bid_id") REFERENCES "bids" ("id") ON DELETE CASCADE`},
	},
	{
		model:       (*models.BidEquipment)(nil),
		name:        "bid_equipment",
		foreignKeys: []string{`("bid_id") REFERENCES "bids" ("id") ON DELETE CASCADE`},
	},
	{
		model:       (*models.BidScore)(nil),
		name:        "bid_scores",
		foreignKeys: []string{`("bid_id") REFERENCES "bids" ("id") ON DELETE CASCADE`},
	},
	{
		model:       (*models.Batch)(nil),
		name:        "extraction_batches",
		foreignKeys: []string{`("project_id") REFERENCES "projects" ("id") ON DELETE CASCADE`},
	},
	{
		model:       (*models.ContractorQuestion)(nil),
		name:        "contractor_questions",
		foreignKeys: []string{`("project_id") REFERENCES "projects" ("id") ON DELETE CASCADE`},
	},
	{
		model:       (*models.Faq)(nil),
		name:        "project_faqs",
		foreignKeys: []string{`("project_id") REFERENCES "projects" ("id") ON DELETE CASCADE`},
	},
}

var indexes = []indexDef{
	{(*models.Project)(nil), "idx_projects_user_id", []string{"user_id"}},
	{(*models.Bid)(nil), "idx_bids_project_id", []string{"project_id"}},
	{(*models.Document)(nil), "idx_pdf_uploads_project_id", []string{"project_id"}},
	{(*models.Document)(nil), "idx_pdf_uploads_batch", []string{"batch_request_id"}},
	{(*models.Document)(nil), "idx_pdf_uploads_status", []string{"status", "processing_started_at"}},
	{(*models.BidEquipment)(nil), "idx_bid_equipment_bid_id", []string{"bid_id"}},
	{(*models.BidScore)(nil), "idx_bid_scores_project_id", []string{"project_id"}},
	{(*models.Batch)(nil), "idx_extraction_batches_project", []string{"project_id", "created_at"}},
}

// CreateSchema creates every table and index the store needs. It is safe to
// run repeatedly.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, t := range tables {
		query := db.NewCreateTable().
			Model(t.model).
			IfNotExists()
		for _, fk := range t.foreignKeys {
			query = query.ForeignKey(fk)
		}
		if _, err := query.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}

	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create %s index: %w", idx.name, err)
		}
	}

	return nil
}

func (s *BunStore) InitializeDatabase(ctx context.Context) error {
	return CreateSchema(ctx, s.db)
}
