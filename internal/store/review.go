package store

import (
	"database/sql"
	"fmt"

	"github.com/devitsbeka/foodvault/internal/database"
	"github.com/devitsbeka/foodvault/internal/model"
)

type ReviewStore struct {
	db database.DBTX
}

func NewReviewStore(db *sql.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// WithTx returns a store bound to tx so resolution runs inside the
// caller's transaction.
func (s *ReviewStore) WithTx(tx *sql.Tx) *ReviewStore {
	return &ReviewStore{db: tx}
}

// --- Entry methods ---

func scanReviewEntry(scanner interface{ Scan(...any) error }) (*model.ReviewEntry, error) {
	var e model.ReviewEntry
	var sourceItemID, reviewedBy sql.NullInt64
	var reviewedAt sql.NullTime

	err := scanner.Scan(
		&e.ID, &e.ProposerID, &e.OwnerID, &e.Name, &e.CanonicalName,
		&e.Category, &e.Quantity, &e.Unit, &e.ImageURL, &e.Status,
		&sourceItemID, &reviewedBy, &reviewedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if sourceItemID.Valid {
		e.SourceItemID = &sourceItemID.Int64
	}
	if reviewedBy.Valid {
		e.ReviewedBy = &reviewedBy.Int64
	}
	if reviewedAt.Valid {
		e.ReviewedAt = &reviewedAt.Time
	}
	return &e, nil
}

const reviewEntryCols = `id, proposer_id, owner_id, name, canonical_name, category, quantity, unit, image_url, status, source_item_id, reviewed_by, reviewed_at, created_at, updated_at`

func (s *ReviewStore) CreateEntry(proposerID, ownerID int64, name, canonicalName string, category model.Category, quantity, unit, imageURL string, sourceItemID *int64) (*model.ReviewEntry, error) {
	var src sql.NullInt64
	if sourceItemID != nil {
		src = sql.NullInt64{Int64: *sourceItemID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO review_entries (proposer_id, owner_id, name, canonical_name, category, quantity, unit, image_url, source_item_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		proposerID, ownerID, name, canonicalName, category, quantity, unit, imageURL, src,
	)
	if err != nil {
		return nil, fmt.Errorf("insert review entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetEntryByID(id)
}

func (s *ReviewStore) GetEntryByID(id int64) (*model.ReviewEntry, error) {
	row := s.db.QueryRow(`SELECT `+reviewEntryCols+` FROM review_entries WHERE id = ?`, id)
	e, err := scanReviewEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get review entry: %w", err)
	}
	return e, nil
}

func (s *ReviewStore) ListEntriesByOwner(ownerID int64, status model.ReviewStatus) ([]model.ReviewEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+reviewEntryCols+` FROM review_entries WHERE owner_id = ? AND status = ? ORDER BY created_at ASC`,
		ownerID, status,
	)
	if err != nil {
		return nil, fmt.Errorf("list review entries: %w", err)
	}
	defer rows.Close()
	return collectReviewEntries(rows)
}

func (s *ReviewStore) ListEntriesByProposer(proposerID int64) ([]model.ReviewEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+reviewEntryCols+` FROM review_entries WHERE proposer_id = ? ORDER BY created_at DESC`,
		proposerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list review entries by proposer: %w", err)
	}
	defer rows.Close()
	return collectReviewEntries(rows)
}

// ListPendingForUser returns the pending entries a user may act on:
// entries targeting their inventory, their own proposals, and entries
// whose source item sits on a list of a family they belong to.
func (s *ReviewStore) ListPendingForUser(userID int64) ([]model.ReviewEntry, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT e.id, e.proposer_id, e.owner_id, e.name, e.canonical_name,
		        e.category, e.quantity, e.unit, e.image_url, e.status,
		        e.source_item_id, e.reviewed_by, e.reviewed_at, e.created_at, e.updated_at
		 FROM review_entries e
		 LEFT JOIN shopping_items si ON si.id = e.source_item_id
		 LEFT JOIN shopping_lists sl ON sl.id = si.list_id
		 LEFT JOIN family_members fm ON fm.family_id = sl.family_id AND fm.user_id = ?
		 WHERE e.status = ? AND (e.owner_id = ? OR e.proposer_id = ? OR fm.id IS NOT NULL)
		 ORDER BY e.created_at ASC`,
		userID, model.ReviewStatusPending, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending review entries: %w", err)
	}
	defer rows.Close()
	return collectReviewEntries(rows)
}

func collectReviewEntries(rows *sql.Rows) ([]model.ReviewEntry, error) {
	var entries []model.ReviewEntry
	for rows.Next() {
		e, err := scanReviewEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// MarkReviewed moves a pending entry to a terminal status, stamping
// the reviewer. The WHERE clause only matches pending rows, so a
// concurrent resolution loses the race and gets reported false.
func (s *ReviewStore) MarkReviewed(id int64, status model.ReviewStatus, reviewedBy int64) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE review_entries
		 SET status = ?, reviewed_by = ?, reviewed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		status, reviewedBy, id, model.ReviewStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("mark reviewed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

// --- Vote methods ---

func scanReviewVote(scanner interface{ Scan(...any) error }) (*model.ReviewVote, error) {
	var v model.ReviewVote
	err := scanner.Scan(&v.ID, &v.EntryID, &v.VoterID, &v.Vote, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

const reviewVoteCols = `id, entry_id, voter_id, vote, created_at, updated_at`

// UpsertVote records a voter's position on an entry, replacing any
// earlier vote by the same voter.
func (s *ReviewStore) UpsertVote(entryID, voterID int64, vote model.Vote) (*model.ReviewVote, error) {
	_, err := s.db.Exec(
		`INSERT INTO review_votes (entry_id, voter_id, vote) VALUES (?, ?, ?)
		 ON CONFLICT(entry_id, voter_id) DO UPDATE SET vote = excluded.vote, updated_at = CURRENT_TIMESTAMP`,
		entryID, voterID, vote,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert vote: %w", err)
	}
	return s.GetVote(entryID, voterID)
}

func (s *ReviewStore) GetVote(entryID, voterID int64) (*model.ReviewVote, error) {
	row := s.db.QueryRow(
		`SELECT `+reviewVoteCols+` FROM review_votes WHERE entry_id = ? AND voter_id = ?`,
		entryID, voterID,
	)
	v, err := scanReviewVote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get vote: %w", err)
	}
	return v, nil
}

func (s *ReviewStore) ListVotes(entryID int64) ([]model.ReviewVote, error) {
	rows, err := s.db.Query(
		`SELECT `+reviewVoteCols+` FROM review_votes WHERE entry_id = ? ORDER BY created_at ASC`,
		entryID,
	)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	var votes []model.ReviewVote
	for rows.Next() {
		v, err := scanReviewVote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		votes = append(votes, *v)
	}
	return votes, rows.Err()
}

func (s *ReviewStore) CountVotes(entryID int64, vote model.Vote) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM review_votes WHERE entry_id = ? AND vote = ?`,
		entryID, vote,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return count, nil
}
