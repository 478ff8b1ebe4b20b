// Package access decides who may see or act on a shared resource.
// Authorization is tri-state: a caller who may not know a resource
// exists gets NotFound, a caller who may know but not touch gets
// Forbidden.
package access

import (
	"fmt"

	"github.com/devitsbeka/foodvault/internal/model"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	NotFound Decision = iota
	Forbidden
	Authorized
)

func (d Decision) String() string {
	switch d {
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Authorized:
		return "authorized"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// MembershipReader is the single membership query the resolver needs.
// *store.FamilyStore satisfies it, as does its WithTx variant, so a
// resolution can run inside the caller's transaction.
type MembershipReader interface {
	GetMember(familyID, userID int64) (*model.FamilyMember, error)
}

type Resolver struct{}

// ResolveList decides whether caller may act on list. The owner is
// always authorized; members of the list's family share the owner's
// access; everyone else is forbidden. A nil list is NotFound so
// callers cannot probe for list IDs.
func (Resolver) ResolveList(members MembershipReader, list *model.ShoppingList, callerID int64) (Decision, error) {
	if list == nil {
		return NotFound, nil
	}
	if list.OwnerID == callerID {
		return Authorized, nil
	}
	if list.FamilyID != nil {
		m, err := members.GetMember(*list.FamilyID, callerID)
		if err != nil {
			return Forbidden, fmt.Errorf("check family membership: %w", err)
		}
		if m != nil {
			return Authorized, nil
		}
	}
	return Forbidden, nil
}

// ResolveOwned decides access to a single-owner resource with no
// family overlay.
func (Resolver) ResolveOwned(ownerID, callerID int64) Decision {
	if ownerID == callerID {
		return Authorized
	}
	return Forbidden
}
