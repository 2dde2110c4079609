package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
	"github.com/cuongbtq/fieldservice-be/internal/notify"
)

// ContractStore is the storage the contract scan needs
type ContractStore interface {
	ListContractCandidates(ctx context.Context, organizationID string) ([]model.Contract, error)
	MarkContractExpired(ctx context.Context, organizationID, contractID string, now time.Time) (bool, error)
	MarkContractExpiring(ctx context.Context, organizationID, contractID string, now time.Time) (bool, error)
}

// ContractScanner expires ended contracts and flags those inside their notice window
type ContractScanner struct {
	contracts  ContractStore
	recipients Recipients
	notifier   Notifier
	logger     *slog.Logger
}

func NewContractScanner(contracts ContractStore, recipients Recipients, notifier Notifier, logger *slog.Logger) *ContractScanner {
	return &ContractScanner{
		contracts:  contracts,
		recipients: recipients,
		notifier:   notifier,
		logger:     logger,
	}
}

// Scan evaluates active and expiring contracts against now
func (s *ContractScanner) Scan(ctx context.Context, now time.Time, organizationID string) (Result, error) {
	var res Result

	contracts, err := s.contracts.ListContractCandidates(ctx, organizationID)
	if err != nil {
		return res, errors.Wrap(err, "contract scan")
	}
	res.Checked = len(contracts)

	cache := newRecipientCache(s.recipients)
	for i := range contracts {
		res.record(s.scanOne(ctx, cache, &contracts[i], now))
	}

	s.logger.Info("Contract scan finished",
		slog.String("organization_id", organizationID),
		slog.Int("checked", res.Checked),
		slog.Int("expiring", res.Expiring),
		slog.Int("expired", res.Expired),
		slog.Int("failed", res.Failed),
	)
	return res, nil
}

func (s *ContractScanner) scanOne(ctx context.Context, cache *recipientCache, c *model.Contract, now time.Time) ItemResult {
	item := ItemResult{ID: c.ID, OrganizationID: c.OrganizationID}

	var (
		outcome Outcome
		ev      notify.Event
		mark    func(context.Context, string, string, time.Time) (bool, error)
	)

	switch {
	case c.EndDate.Before(now):
		outcome = OutcomeExpired
		mark = s.contracts.MarkContractExpired
		ev = notify.Event{
			Type:    domain.NotificationContractExpired,
			Message: fmt.Sprintf("Contract \"%s\" has expired", c.DisplayName()),
		}
	case c.Status == domain.ContractStatusActive && !noticeStart(c).After(now):
		outcome = OutcomeExpiring
		mark = s.contracts.MarkContractExpiring
		ev = notify.Event{
			Type:    domain.NotificationContractExpiring,
			Message: fmt.Sprintf("Contract \"%s\" expires on %s", c.DisplayName(), c.EndDate.Format(time.DateOnly)),
		}
	default:
		item.Outcome = OutcomeNotDue
		return item
	}

	updated, err := mark(ctx, c.OrganizationID, c.ID, now)
	if err != nil {
		item.Outcome = OutcomeFailed
		item.Err = err
		s.logger.Error("Failed to update contract status",
			slog.String("contract_id", c.ID),
			slog.String("organization_id", c.OrganizationID),
			slog.String("target", string(outcome)),
			slog.Any("error", err),
		)
		return item
	}
	if !updated {
		item.Outcome = OutcomeUnchanged
		return item
	}

	item.Outcome = outcome
	ev.OrganizationID = c.OrganizationID
	ev.RelatedEntityType = domain.EntityContract
	ev.RelatedEntityID = c.ID
	notifyManagers(ctx, cache, s.notifier, s.logger, ev, &item)
	return item
}

// noticeStart is the first moment the contract counts as expiring soon
func noticeStart(c *model.Contract) time.Time {
	days := c.NotifyDaysBefore
	if days <= 0 {
		days = domain.DefaultNotifyDaysBefore
	}
	return c.EndDate.AddDate(0, 0, -days)
}
