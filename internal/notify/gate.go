package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blagoySimandov/bidcompare/go/internal/models"
	"github.com/blagoySimandov/bidcompare/go/internal/services"
	"github.com/blagoySimandov/bidcompare/go/internal/state"
	"github.com/rs/zerolog/log"
)

type Mailer interface {
	Send(ctx context.Context, email services.Email) error
}

type ResultStatus string

const (
	ResultSent    ResultStatus = "sent"
	ResultSkipped ResultStatus = "skipped"
	ResultFailed  ResultStatus = "failed"
)

const (
	ReasonNotOptedIn  = "notifications disabled"
	ReasonNoEmail     = "no notification email"
	ReasonAlreadySent = "already sent"
	ReasonLostClaim   = "claimed by another delivery"
	ReasonSendFailed  = "send failed"
)

type Result struct {
	Status ResultStatus `json:"status"`
	Reason string       `json:"reason,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// Gate sends the completion email at most once per project. The claim is a
// conditional update on notification_sent_at; only the caller whose update
// changed a row sends.
type Gate struct {
	store   state.Store
	mailer  Mailer
	appURL  string
	timeout time.Duration
	now     func() time.Time
}

func NewGate(store state.Store, mailer Mailer, appURL string, timeout time.Duration) *Gate {
	return &Gate{
		store:   store,
		mailer:  mailer,
		appURL:  strings.TrimRight(appURL, "/"),
		timeout: timeout,
		now:     time.Now,
	}
}

func (g *Gate) NotifyCompletion(ctx context.Context, projectID string) (*Result, error) {
	project, err := g.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project for notification: %w", err)
	}

	if !project.NotifyOnCompletion {
		return skipped(ReasonNotOptedIn), nil
	}
	if project.NotificationEmail == nil || strings.TrimSpace(*project.NotificationEmail) == "" {
		return skipped(ReasonNoEmail), nil
	}
	if project.NotificationSentAt != nil {
		return skipped(ReasonAlreadySent), nil
	}

	claimed, err := g.store.ClaimNotification(ctx, projectID, g.now())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return skipped(ReasonLostClaim), nil
	}

	sendCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	email := services.Email{
		To:      strings.TrimSpace(*project.NotificationEmail),
		Subject: fmt.Sprintf("Your bids for %s are ready to compare", project.Name),
		Body:    g.body(project),
	}
	if err := g.mailer.Send(sendCtx, email); err != nil {
		// The claim stays: a lost email is preferred over a duplicate one.
		log.Error().
			Err(err).
			Str("projectID", projectID).
			Msg("Completion email failed")
		return &Result{Status: ResultFailed, Reason: ReasonSendFailed, Error: err.Error()}, nil
	}

	log.Info().
		Str("projectID", projectID).
		Msg("Completion email sent")
	return &Result{Status: ResultSent}, nil
}

func (g *Gate) body(project *models.Project) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Good news: the contractor bids for %q have been analyzed.\n\n", project.Name)
	sb.WriteString("You can now review them side by side.\n")
	if g.appURL != "" {
		fmt.Fprintf(&sb, "\n%s/projects/%s/compare\n", g.appURL, project.ID)
	}
	return sb.String()
}

func skipped(reason string) *Result {
	return &Result{Status: ResultSkipped, Reason: reason}
}
