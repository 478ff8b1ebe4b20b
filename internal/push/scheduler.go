package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/devitsbeka/foodvault/internal/model"
	"github.com/devitsbeka/foodvault/internal/store"
)

// expiringLeadTime is how far ahead the scheduler looks for inventory
// items about to expire.
const expiringLeadTime = 48 * time.Hour

// Scheduler periodically checks for expiring inventory and fans out
// event notifications on behalf of the rest of the app.
type Scheduler struct {
	mu        sync.RWMutex
	service   *Service
	push      *store.PushStore
	inventory *store.InventoryStore
	interval  time.Duration
	cancel    context.CancelFunc
	done      chan struct{}
	logger    *slog.Logger
}

// NewScheduler creates a notification scheduler.
func NewScheduler(svc *Service, pushStore *store.PushStore, inventoryStore *store.InventoryStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:   svc,
		push:      pushStore,
		inventory: inventoryStore,
		interval:  60 * time.Second,
		logger:    logger,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick() {
	s.checkExpiringInventory()
}

// checkExpiringInventory notifies owners of items that expire within the
// lead window. Each item notifies its owner at most once, tracked in the
// sent log.
func (s *Scheduler) checkExpiringInventory() {
	cutoff := time.Now().UTC().Add(expiringLeadTime)

	items, err := s.inventory.ListExpiringBefore(cutoff)
	if err != nil {
		s.logger.Error("list expiring inventory", "error", err)
		return
	}

	for _, item := range items {
		refID := fmt.Sprintf("item-%d", item.ID)

		sent, err := s.push.WasSent(item.OwnerID, model.NotifTypeInventoryExpiring, refID)
		if err != nil {
			s.logger.Error("check sent", "error", err)
			continue
		}
		if sent {
			continue
		}

		payload := Payload{
			Title: "Expiring Soon",
			Body:  fmt.Sprintf("%s expires %s", item.Name, humanize.Time(*item.ExpiresAt)),
			URL:   "/inventory",
			Tag:   fmt.Sprintf("expiring-%d", item.ID),
		}
		s.sendToUsers([]int64{item.OwnerID}, 0, payload)

		if err := s.push.RecordSent(item.OwnerID, model.NotifTypeInventoryExpiring, refID); err != nil {
			s.logger.Error("record sent", "error", err)
		}
	}
}

// SendReviewProposed notifies the audience that a new entry awaits review.
// The proposer already knows and is excluded.
func (s *Scheduler) SendReviewProposed(userIDs []int64, entry *model.ReviewEntry) {
	payload := Payload{
		Title: "Review Requested",
		Body:  fmt.Sprintf("%s was proposed for the kitchen", entry.Name),
		URL:   "/review",
		Tag:   fmt.Sprintf("review-%d", entry.ID),
	}
	s.sendToUsers(userIDs, entry.ProposerID, payload)
}

// SendReviewResolved notifies the audience of an approval or rejection.
// The reviewer already knows and is excluded.
func (s *Scheduler) SendReviewResolved(userIDs []int64, entry *model.ReviewEntry) {
	var exclude int64
	if entry.ReviewedBy != nil {
		exclude = *entry.ReviewedBy
	}
	payload := Payload{
		Title: "Review Resolved",
		Body:  fmt.Sprintf("%s was %s", entry.Name, entry.Status),
		URL:   "/review",
		Tag:   fmt.Sprintf("review-%d", entry.ID),
	}
	s.sendToUsers(userIDs, exclude, payload)
}

// SendItemAdded notifies list watchers that an item was added.
// Called from the list handler, not from the scheduler loop.
func (s *Scheduler) SendItemAdded(userIDs []int64, addedBy int64, itemName, listName string) {
	payload := Payload{
		Title: "Shopping List Updated",
		Body:  fmt.Sprintf("%s was added to %s", itemName, listName),
		URL:   "/lists",
		Tag:   "item-added",
	}
	s.sendToUsers(userIDs, addedBy, payload)
}

// sendToUsers delivers a payload to every subscription of the given users,
// skipping excludeUserID and pruning expired subscriptions as it goes.
func (s *Scheduler) sendToUsers(userIDs []int64, excludeUserID int64, payload Payload) {
	for _, userID := range userIDs {
		if userID == excludeUserID {
			continue
		}

		subs, err := s.push.ListByUser(userID)
		if err != nil {
			s.logger.Error("list subscriptions", "user_id", userID, "error", err)
			continue
		}

		for _, sub := range subs {
			if err := s.service.Send(&sub, payload); err != nil {
				if errors.Is(err, ErrExpired) {
					s.push.DeleteByEndpoint(sub.Endpoint)
				} else {
					s.logger.Error("send notification", "user_id", userID, "error", err)
				}
			}
		}
	}
}
