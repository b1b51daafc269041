// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects issued access tokens. The tax-refund API uses a single
// opaque bearer credential with no refresh flow.
type Tokens struct {
	AccessToken string
	TokenType   string    // always "Bearer"
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User represents an account stored on the server.
type User struct {
	ID        uuid.UUID // PK
	Username  string    // unique
	PwdHash   []byte    // Argon2id(password, SaltAuth)
	SaltAuth  []byte    // per-user auth salt
	Email     string
	Enabled   bool
	Roles     []string // role names, e.g. ROLE_ADMIN
	CreatedAt time.Time
}

// Role groups function permissions under a name like ROLE_OP.
type Role struct {
	ID          uuid.UUID
	Name        string // unique
	Description string
	Functions   []string // function codes granted by this role
}

// Function is a single permission code checked by route metadata,
// e.g. USER_VIEW or TAX_REFUND_EDIT.
type Function struct {
	ID          uuid.UUID
	Code        string // unique
	Name        string
	Description string
}

// Profile is the whoami payload: resolved identity plus the authority set.
// Roles carries both role names and function codes; route permission tags
// are matched against it directly.
type Profile struct {
	Name   string   `json:"name"`
	Avatar string   `json:"avatar"`
	Roles  []string `json:"roles"`
}

// UserSummary is the user row exposed over the API; it never carries
// password material.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Enabled  bool      `json:"enabled"`
	Roles    []string  `json:"roles"`
}

// TaxRefund is one refund ledger row derived from matched import/export
// declarations against the approved BOM standard.
type TaxRefund struct {
	ID           uuid.UUID `json:"id"`
	RefundNo     string    `json:"refundNo"`
	ProductNo    string    `json:"productNo"`
	Quantity     int64     `json:"quantity"`
	RefundAmount string    `json:"refundAmount"` // decimal as string, DB numeric
	Status       string    `json:"status"`       // DRAFT, SUBMITTED, APPROVED
	CreatedAt    time.Time `json:"createdAt"`
}

// NewTaxRefund is a creation intent; the server assigns ID and timestamps.
type NewTaxRefund struct {
	RefundNo     string `json:"refundNo"`
	ProductNo    string `json:"productNo"`
	Quantity     int64  `json:"quantity"`
	RefundAmount string `json:"refundAmount"`
}
