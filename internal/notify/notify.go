// Package notify fans review and list events out to connected WebSocket
// clients and push subscribers. Callers emit events after their database
// transaction commits; a failed commit must never produce a notification.
package notify

import (
	"log/slog"

	"github.com/devitsbeka/foodvault/internal/model"
	"github.com/devitsbeka/foodvault/internal/push"
	"github.com/devitsbeka/foodvault/internal/store"
	ws "github.com/devitsbeka/foodvault/internal/websocket"
)

// Notifier resolves the audience for an event and delivers it over both
// channels. The push scheduler is nil when VAPID keys are not configured;
// WebSocket delivery still happens.
type Notifier struct {
	hub      *ws.Hub
	push     *push.Scheduler
	families *store.FamilyStore
	lists    *store.ListStore
	logger   *slog.Logger
}

func New(hub *ws.Hub, pushSched *push.Scheduler, families *store.FamilyStore, lists *store.ListStore, logger *slog.Logger) *Notifier {
	return &Notifier{
		hub:      hub,
		push:     pushSched,
		families: families,
		lists:    lists,
		logger:   logger,
	}
}

// ReviewProposed announces a new pending entry to its review audience.
func (n *Notifier) ReviewProposed(entry *model.ReviewEntry) {
	audience := n.reviewAudience(entry)
	n.hub.SendToUsers(audience, ws.NewMessage("review_entry", "proposed", entry.ID, map[string]any{
		"owner_id": entry.OwnerID,
		"name":     entry.Name,
	}))
	if n.push != nil {
		n.push.SendReviewProposed(audience, entry)
	}
}

// ReviewResolved announces an approval or rejection to the audience.
func (n *Notifier) ReviewResolved(entry *model.ReviewEntry) {
	audience := n.reviewAudience(entry)
	n.hub.SendToUsers(audience, ws.NewMessage("review_entry", string(entry.Status), entry.ID, map[string]any{
		"owner_id": entry.OwnerID,
		"name":     entry.Name,
	}))
	if n.push != nil {
		n.push.SendReviewResolved(audience, entry)
	}
}

// ItemAdded announces a new shopping item to the list's watchers.
func (n *Notifier) ItemAdded(list *model.ShoppingList, item *model.ShoppingItem) {
	audience := n.listAudience(list)
	n.hub.SendToUsers(audience, ws.NewMessage("list_item", "created", item.ID, map[string]any{
		"list_id": list.ID,
		"name":    item.Name,
	}))
	if n.push != nil {
		var addedBy int64
		if item.AddedBy != nil {
			addedBy = *item.AddedBy
		}
		n.push.SendItemAdded(audience, addedBy, item.Name, list.Name)
	}
}

// reviewAudience is the entry's target owner, the proposer, and the
// members of the source list's family when the entry came off a list.
func (n *Notifier) reviewAudience(entry *model.ReviewEntry) []int64 {
	ids := []int64{entry.OwnerID, entry.ProposerID}

	if entry.SourceItemID != nil {
		item, err := n.lists.GetItemByID(*entry.SourceItemID)
		if err != nil {
			n.logger.Error("load source item for audience", "entry_id", entry.ID, "error", err)
		}
		if item != nil {
			list, err := n.lists.GetListByID(item.ListID)
			if err != nil {
				n.logger.Error("load list for audience", "entry_id", entry.ID, "error", err)
			}
			if list != nil {
				ids = append(ids, n.listAudience(list)...)
			}
		}
	}

	return dedup(ids)
}

// listAudience is the list owner plus the attached family's members.
func (n *Notifier) listAudience(list *model.ShoppingList) []int64 {
	ids := []int64{list.OwnerID}
	if list.FamilyID != nil {
		members, err := n.families.ListMembers(*list.FamilyID)
		if err != nil {
			n.logger.Error("list family members for audience", "family_id", *list.FamilyID, "error", err)
		}
		for _, m := range members {
			ids = append(ids, m.UserID)
		}
	}
	return dedup(ids)
}

func dedup(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
