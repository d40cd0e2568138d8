package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/evansachie/lifeguard/internal/model"
)

// ErrContactNotFound is returned when a contact does not exist for the user.
var ErrContactNotFound = errors.New("contact not found")

const contactColumns = `id, user_id, name, phone, email, relationship, priority, role,
	is_verified, COALESCE(verification_token_hash, ''), verified_at, created_at, updated_at`

// ListContacts returns the user's contacts by priority, newest first within a priority.
func (r *Repository) ListContacts(ctx context.Context, userID string) ([]*model.EmergencyContact, error) {
	query := `SELECT ` + contactColumns + `
		FROM emergency_contacts
		WHERE user_id = $1
		ORDER BY priority ASC, created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]*model.EmergencyContact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}

	return contacts, nil
}

// GetContact returns one of the user's contacts.
func (r *Repository) GetContact(ctx context.Context, userID, id string) (*model.EmergencyContact, error) {
	query := `SELECT ` + contactColumns + ` FROM emergency_contacts WHERE id = $1 AND user_id = $2`
	return r.getContact(ctx, query, id, userID)
}

// GetContactByID returns a contact regardless of owner. Used by the public
// verification and acknowledgement links.
func (r *Repository) GetContactByID(ctx context.Context, id string) (*model.EmergencyContact, error) {
	query := `SELECT ` + contactColumns + ` FROM emergency_contacts WHERE id = $1`
	return r.getContact(ctx, query, id)
}

func (r *Repository) getContact(ctx context.Context, query string, args ...any) (*model.EmergencyContact, error) {
	c, err := scanContact(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// CreateContact inserts a contact.
func (r *Repository) CreateContact(ctx context.Context, c *model.EmergencyContact) error {
	query := `
		INSERT INTO emergency_contacts (id, user_id, name, phone, email, relationship, priority, role, verification_token_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))
		RETURNING is_verified, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		c.ID,
		c.UserID,
		c.Name,
		c.Phone,
		c.Email,
		c.Relationship,
		c.Priority,
		c.Role,
		c.VerificationTokenHash,
	).Scan(&c.IsVerified, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// UpdateContact writes the editable fields. When resetVerification is set
// the contact becomes unverified and carries the new token hash.
func (r *Repository) UpdateContact(ctx context.Context, c *model.EmergencyContact, resetVerification bool) (*model.EmergencyContact, error) {
	query := `
		UPDATE emergency_contacts
		SET name = $3, phone = $4, email = $5, relationship = $6, priority = $7, role = $8,
		    is_verified = CASE WHEN $9 THEN FALSE ELSE is_verified END,
		    verified_at = CASE WHEN $9 THEN NULL ELSE verified_at END,
		    verification_token_hash = CASE WHEN $9 THEN NULLIF($10, '') ELSE verification_token_hash END,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + contactColumns

	updated, err := scanContact(r.db.QueryRow(ctx, query,
		c.ID,
		c.UserID,
		c.Name,
		c.Phone,
		c.Email,
		c.Relationship,
		c.Priority,
		c.Role,
		resetVerification,
		c.VerificationTokenHash,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return updated, nil
}

// MarkContactVerified flags the contact as verified and clears its token.
func (r *Repository) MarkContactVerified(ctx context.Context, id string) error {
	query := `
		UPDATE emergency_contacts
		SET is_verified = TRUE, verified_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to verify contact: %w", err)
	}
	return rowAffected(tag, ErrContactNotFound)
}

// DeleteContact removes a contact.
func (r *Repository) DeleteContact(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM emergency_contacts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return rowAffected(tag, ErrContactNotFound)
}

func scanContact(row pgx.Row) (*model.EmergencyContact, error) {
	var c model.EmergencyContact
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Phone,
		&c.Email,
		&c.Relationship,
		&c.Priority,
		&c.Role,
		&c.IsVerified,
		&c.VerificationTokenHash,
		&c.VerifiedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return &c, err
}
