package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/Yishiba/animeko/internal/core"
)

var _ core.IdentityStore = (*SQLIdentityStore)(nil)

// identityLinkRow is the database representation of core.IdentityLink.
type identityLinkRow struct {
	bun.BaseModel `bun:"table:identity_links,alias:il"`

	UserID      string    `bun:"user_id,pk"`
	Provider    string    `bun:"provider,notnull,unique:identity_links_provider_subject"`
	Subject     string    `bun:"subject,notnull,unique:identity_links_provider_subject"`
	DisplayName string    `bun:"display_name"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

func (r *identityLinkRow) toCore() core.IdentityLink {
	return core.IdentityLink{
		Provider:    r.Provider,
		Subject:     r.Subject,
		UserID:      core.UserID(r.UserID),
		DisplayName: r.DisplayName,
		CreatedAt:   r.CreatedAt,
	}
}

// SQLIdentityStore implements core.IdentityStore using Bun over SQLite or PostgreSQL.
type SQLIdentityStore struct {
	db *bun.DB
}

func NewSQLIdentityStore(db *bun.DB) *SQLIdentityStore {
	return &SQLIdentityStore{db: db}
}

// Migrate creates the identity_links table if it does not exist.
func (s *SQLIdentityStore) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*identityLinkRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create identity_links table: %w", err)
	}
	return nil
}

// GetOrCreate relies on the unique (provider, subject) constraint:
// the insert is a no-op if another writer got there first, the select returns the winner.
func (s *SQLIdentityStore) GetOrCreate(ctx context.Context, link core.IdentityLink) (core.IdentityLink, bool, error) {
	if err := validateLink(link); err != nil {
		return core.IdentityLink{}, false, err
	}

	row := &identityLinkRow{
		UserID:      link.UserID.String(),
		Provider:    link.Provider,
		Subject:     link.Subject,
		DisplayName: link.DisplayName,
		CreatedAt:   link.CreatedAt.UTC(),
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (provider, subject) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return core.IdentityLink{}, false, fmt.Errorf("insert identity link: %w", err)
	}

	existing, err := s.Lookup(ctx, link.Provider, link.Subject)
	if err != nil {
		return core.IdentityLink{}, false, err
	}
	return existing, existing.UserID == link.UserID, nil
}

func (s *SQLIdentityStore) Lookup(ctx context.Context, provider, subject string) (core.IdentityLink, error) {
	row := new(identityLinkRow)
	err := s.db.NewSelect().
		Model(row).
		Where("provider = ?", provider).
		Where("subject = ?", subject).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.IdentityLink{}, core.ErrLinkNotFound
		}
		return core.IdentityLink{}, fmt.Errorf("get identity link: %w", err)
	}
	return row.toCore(), nil
}

func (s *SQLIdentityStore) Count(ctx context.Context) (int, error) {
	n, err := s.db.NewSelect().Model((*identityLinkRow)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count identity links: %w", err)
	}
	return n, nil
}
