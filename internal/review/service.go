// Package review implements the pending-review workflow for proposed
// inventory additions. Entries move from pending to approved or
// rejected exactly once; every resolution runs in a single transaction
// covering the authorization read, the entry update, and the
// inventory and shopping-item side effects.
package review

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/devitsbeka/foodvault/internal/access"
	"github.com/devitsbeka/foodvault/internal/database"
	"github.com/devitsbeka/foodvault/internal/errs"
	"github.com/devitsbeka/foodvault/internal/ingredient"
	"github.com/devitsbeka/foodvault/internal/model"
	"github.com/devitsbeka/foodvault/internal/store"
)

// Notifier receives workflow events. Calls happen strictly after the
// surrounding transaction has committed.
type Notifier interface {
	ReviewProposed(entry *model.ReviewEntry)
	ReviewResolved(entry *model.ReviewEntry)
}

type Service struct {
	db        *sql.DB
	families  *store.FamilyStore
	lists     *store.ListStore
	inventory *store.InventoryStore
	reviews   *store.ReviewStore
	resolver  access.Resolver
	notifier  Notifier
	logger    *slog.Logger
}

func NewService(db *sql.DB, families *store.FamilyStore, lists *store.ListStore, inventory *store.InventoryStore, reviews *store.ReviewStore, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		db:        db,
		families:  families,
		lists:     lists,
		inventory: inventory,
		reviews:   reviews,
		notifier:  notifier,
		logger:    logger,
	}
}

// ProposeInput describes a proposed inventory addition. OwnerID is the
// user whose inventory receives the item on approval.
type ProposeInput struct {
	ProposerID   int64
	OwnerID      int64
	Name         string
	Quantity     string
	Unit         string
	ImageURL     string
	SourceItemID *int64
}

// ApproveResult carries the resolved entry together with the inventory
// item the approval created.
type ApproveResult struct {
	Entry         *model.ReviewEntry
	InventoryItem *model.InventoryItem
}

// VoteResult reports a recorded vote. When the vote tipped the entry
// over its family's approval threshold, AutoApproved is set and Entry
// and InventoryItem reflect the applied approval.
type VoteResult struct {
	Vote          *model.ReviewVote
	Entry         *model.ReviewEntry
	InventoryItem *model.InventoryItem
	AutoApproved  bool
}

// Propose records a pending review entry carrying the normalized
// identity and category guess of the proposed ingredient. With a
// source shopping item the item is parked in pending_review in the
// same transaction; the proposer's implicit approve vote seeds the
// family tally.
func (s *Service) Propose(ctx context.Context, in ProposeInput) (*model.ReviewEntry, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errs.Validation("name is required")
	}
	canonical := ingredient.Normalize(name)
	category := ingredient.Categorize(canonical)

	var entry *model.ReviewEntry
	err := database.Transact(ctx, s.db, func(tx *sql.Tx) error {
		if in.SourceItemID != nil {
			if err := s.holdSourceItem(tx, in); err != nil {
				return err
			}
		} else if in.OwnerID != in.ProposerID {
			return errs.Forbidden("user %d cannot propose into another user's inventory", in.ProposerID)
		}

		reviews := s.reviews.WithTx(tx)
		var err error
		entry, err = reviews.CreateEntry(in.ProposerID, in.OwnerID, name, canonical, category, in.Quantity, in.Unit, in.ImageURL, in.SourceItemID)
		if err != nil {
			return err
		}
		// Proposing implies approving.
		_, err = reviews.UpsertVote(entry.ID, in.ProposerID, model.VoteApprove)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review entry proposed",
		"entry_id", entry.ID,
		"proposer_id", in.ProposerID,
		"owner_id", in.OwnerID,
		"canonical_name", entry.CanonicalName)
	if s.notifier != nil {
		s.notifier.ReviewProposed(entry)
	}
	return entry, nil
}

// holdSourceItem authorizes the proposer on the source item's list,
// validates the target owner, and parks the item in pending_review.
func (s *Service) holdSourceItem(tx *sql.Tx, in ProposeInput) error {
	lists := s.lists.WithTx(tx)

	item, err := lists.GetItemByID(*in.SourceItemID)
	if err != nil {
		return err
	}
	if item == nil {
		return errs.NotFound("shopping item", *in.SourceItemID)
	}
	list, err := lists.GetListByID(item.ListID)
	if err != nil {
		return err
	}

	decision, err := s.resolver.ResolveList(s.families.WithTx(tx), list, in.ProposerID)
	if err != nil {
		return err
	}
	if decision == access.NotFound {
		return errs.NotFound("shopping item", *in.SourceItemID)
	}
	if decision != access.Authorized {
		return errs.Forbidden("user %d cannot propose from this list", in.ProposerID)
	}

	ok, err := s.validTarget(tx, list, in.ProposerID, in.OwnerID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Validation("target owner must be the list owner, the proposer, or a member of the list's family")
	}

	if item.Status != model.ItemStatusActive {
		return errs.StateConflict("shopping item", item.ID, string(item.Status))
	}
	if _, err := lists.SetItemStatus(item.ID, model.ItemStatusPendingReview, nil); err != nil {
		return fmt.Errorf("hold source item: %w", err)
	}
	return nil
}

// validTarget reports whether ownerID may receive a proposal from this
// list: the list owner, the proposer, or a member of the list's family.
func (s *Service) validTarget(tx *sql.Tx, list *model.ShoppingList, proposerID, ownerID int64) (bool, error) {
	if ownerID == list.OwnerID || ownerID == proposerID {
		return true, nil
	}
	if list.FamilyID == nil {
		return false, nil
	}
	m, err := s.families.WithTx(tx).GetMember(*list.FamilyID, ownerID)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// Approve resolves a pending entry to approved, inserts the inventory
// item for the target owner, and marks the source shopping item bought,
// all in one transaction.
func (s *Service) Approve(ctx context.Context, entryID, reviewerID int64) (*ApproveResult, error) {
	var result *ApproveResult
	err := database.Transact(ctx, s.db, func(tx *sql.Tx) error {
		entry, _, err := s.resolveEntry(tx, entryID, reviewerID)
		if err != nil {
			return err
		}
		result, err = s.applyApprove(tx, entry, reviewerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review entry approved",
		"entry_id", entryID,
		"reviewer_id", reviewerID,
		"inventory_item_id", result.InventoryItem.ID)
	if s.notifier != nil {
		s.notifier.ReviewResolved(result.Entry)
	}
	return result, nil
}

// Reject resolves a pending entry to rejected and returns the source
// shopping item to the active list. The entry row is kept.
func (s *Service) Reject(ctx context.Context, entryID, reviewerID int64) (*model.ReviewEntry, error) {
	var entry *model.ReviewEntry
	err := database.Transact(ctx, s.db, func(tx *sql.Tx) error {
		pending, _, err := s.resolveEntry(tx, entryID, reviewerID)
		if err != nil {
			return err
		}

		reviews := s.reviews.WithTx(tx)
		ok, err := reviews.MarkReviewed(entryID, model.ReviewStatusRejected, reviewerID)
		if err != nil {
			return err
		}
		if !ok {
			return errs.StateConflict("review entry", entryID, "resolved")
		}
		if pending.SourceItemID != nil {
			if _, err := s.lists.WithTx(tx).SetItemStatus(*pending.SourceItemID, model.ItemStatusActive, nil); err != nil {
				return fmt.Errorf("return source item to list: %w", err)
			}
		}

		entry, err = reviews.GetEntryByID(entryID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review entry rejected", "entry_id", entryID, "reviewer_id", reviewerID)
	if s.notifier != nil {
		s.notifier.ReviewResolved(entry)
	}
	return entry, nil
}

// Vote records an approve or reject vote, one per voter per entry.
// When distinct approve votes reach the family's approval threshold
// the entry is approved in the same transaction with the tipping voter
// as reviewer. Entries with no family context never auto-approve.
func (s *Service) Vote(ctx context.Context, entryID, voterID int64, vote model.Vote) (*VoteResult, error) {
	if vote != model.VoteApprove && vote != model.VoteReject {
		return nil, errs.Validation("vote must be approve or reject")
	}

	var result VoteResult
	err := database.Transact(ctx, s.db, func(tx *sql.Tx) error {
		entry, list, err := s.resolveEntry(tx, entryID, voterID)
		if err != nil {
			return err
		}

		reviews := s.reviews.WithTx(tx)
		v, err := reviews.UpsertVote(entryID, voterID, vote)
		if err != nil {
			return err
		}
		result.Vote = v
		result.Entry = entry

		if vote != model.VoteApprove {
			return nil
		}
		threshold, err := s.approvalThreshold(tx, list)
		if err != nil {
			return err
		}
		if threshold == 0 {
			return nil
		}
		approvals, err := reviews.CountVotes(entryID, model.VoteApprove)
		if err != nil {
			return err
		}
		if approvals < threshold {
			return nil
		}

		res, err := s.applyApprove(tx, entry, voterID)
		if err != nil {
			return err
		}
		result.Entry = res.Entry
		result.InventoryItem = res.InventoryItem
		result.AutoApproved = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.AutoApproved {
		s.logger.Info("review entry approved by vote threshold",
			"entry_id", entryID,
			"voter_id", voterID)
		if s.notifier != nil {
			s.notifier.ReviewResolved(result.Entry)
		}
	}
	return &result, nil
}

// EntryDetail is a review entry with its recorded votes.
type EntryDetail struct {
	Entry *model.ReviewEntry `json:"entry"`
	Votes []model.ReviewVote `json:"votes"`
}

// Entry returns an entry with its votes, terminal entries included.
// Visibility matches review authorization: target owner, proposer, and
// members of the source list's family. Anyone else learns nothing, not
// even that the entry exists.
func (s *Service) Entry(entryID, callerID int64) (*EntryDetail, error) {
	entry, err := s.reviews.GetEntryByID(entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errs.NotFound("review entry", entryID)
	}

	if callerID != entry.OwnerID && callerID != entry.ProposerID {
		visible := false
		if entry.SourceItemID != nil {
			item, err := s.lists.GetItemByID(*entry.SourceItemID)
			if err != nil {
				return nil, err
			}
			if item != nil {
				list, err := s.lists.GetListByID(item.ListID)
				if err != nil {
					return nil, err
				}
				if list != nil && list.FamilyID != nil {
					m, err := s.families.GetMember(*list.FamilyID, callerID)
					if err != nil {
						return nil, err
					}
					visible = m != nil
				}
			}
		}
		if !visible {
			return nil, errs.NotFound("review entry", entryID)
		}
	}

	votes, err := s.reviews.ListVotes(entryID)
	if err != nil {
		return nil, err
	}
	return &EntryDetail{Entry: entry, Votes: votes}, nil
}

// resolveEntry loads a pending entry and verifies the caller may
// review it, inside the caller's transaction. The returned list is the
// source item's list, nil when the entry has no surviving source
// context.
func (s *Service) resolveEntry(tx *sql.Tx, entryID, callerID int64) (*model.ReviewEntry, *model.ShoppingList, error) {
	entry, err := s.reviews.WithTx(tx).GetEntryByID(entryID)
	if err != nil {
		return nil, nil, err
	}
	if entry == nil {
		return nil, nil, errs.NotFound("review entry", entryID)
	}
	if entry.Status != model.ReviewStatusPending {
		return nil, nil, errs.StateConflict("review entry", entryID, string(entry.Status))
	}

	list, err := s.entryList(tx, entry)
	if err != nil {
		return nil, nil, err
	}
	if list == nil {
		// No list context; only the target owner reviews.
		if callerID != entry.OwnerID {
			return nil, nil, errs.Forbidden("user %d cannot review entry %d", callerID, entryID)
		}
		return entry, nil, nil
	}

	decision, err := s.resolver.ResolveList(s.families.WithTx(tx), list, callerID)
	if err != nil {
		return nil, nil, err
	}
	if decision != access.Authorized {
		return nil, nil, errs.Forbidden("user %d cannot review entry %d", callerID, entryID)
	}
	return entry, list, nil
}

// entryList resolves the shopping list behind an entry's source item.
func (s *Service) entryList(tx *sql.Tx, entry *model.ReviewEntry) (*model.ShoppingList, error) {
	if entry.SourceItemID == nil {
		return nil, nil
	}
	lists := s.lists.WithTx(tx)
	item, err := lists.GetItemByID(*entry.SourceItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	return lists.GetListByID(item.ListID)
}

// approvalThreshold returns the approval threshold of the list's
// family, 0 when there is no family context.
func (s *Service) approvalThreshold(tx *sql.Tx, list *model.ShoppingList) (int, error) {
	if list == nil || list.FamilyID == nil {
		return 0, nil
	}
	family, err := s.families.WithTx(tx).GetByID(*list.FamilyID)
	if err != nil {
		return 0, err
	}
	if family == nil {
		return 0, nil
	}
	return family.ApprovalThreshold, nil
}

// applyApprove performs the approve side effects inside tx: entry to
// approved with reviewer stamped, inventory insert for the target
// owner, source item to bought.
func (s *Service) applyApprove(tx *sql.Tx, entry *model.ReviewEntry, reviewerID int64) (*ApproveResult, error) {
	reviews := s.reviews.WithTx(tx)

	ok, err := reviews.MarkReviewed(entry.ID, model.ReviewStatusApproved, reviewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.StateConflict("review entry", entry.ID, "resolved")
	}

	item, err := s.inventory.WithTx(tx).Create(entry.OwnerID, entry.Name, entry.CanonicalName, entry.Category, entry.Quantity, entry.Unit, nil, entry.SourceItemID)
	if err != nil {
		return nil, fmt.Errorf("add inventory item: %w", err)
	}

	if entry.SourceItemID != nil {
		// The proposer is the one who took the item off the list.
		if _, err := s.lists.WithTx(tx).SetItemStatus(*entry.SourceItemID, model.ItemStatusBought, &entry.ProposerID); err != nil {
			return nil, fmt.Errorf("mark source item bought: %w", err)
		}
	}

	updated, err := reviews.GetEntryByID(entry.ID)
	if err != nil {
		return nil, err
	}
	return &ApproveResult{Entry: updated, InventoryItem: item}, nil
}
