// Package submission persists quotes a customer has sent in, together with
// their contact details and the flattened estimate they saw.
package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Simplici0/printquote/internal/pricing"
)

var (
	ErrNotFound       = errors.New("submission not found")
	ErrInvalidContact = errors.New("invalid contact")
	// ErrDuplicate is returned when the session already has a submission.
	ErrDuplicate = errors.New("session already submitted")
)

// Contact is how the customer wants to be reached.
type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	Note  string `json:"note"`
}

// Normalize trims the fields and validates the email address.
func (c Contact) Normalize() (Contact, error) {
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Note = strings.TrimSpace(c.Note)

	if c.Email == "" {
		return c, fmt.Errorf("%w: email es requerido", ErrInvalidContact)
	}
	addr, err := mail.ParseAddress(c.Email)
	if err != nil || addr.Address != c.Email {
		return c, fmt.Errorf("%w: email no es válido", ErrInvalidContact)
	}
	return c, nil
}

// Submission is one stored quote request.
type Submission struct {
	ID        int64             `json:"id"`
	CreatedAt string            `json:"created_at"`
	SessionID string            `json:"session_id"`
	Contact   Contact           `json:"contact"`
	Price     int64             `json:"price"`
	Payload   map[string]string `json:"payload"`
}

// ListItem is the summary row shown in submission listings.
type ListItem struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at"`
	Email     string `json:"email"`
	Material  string `json:"material"`
	Price     int64  `json:"price"`
}

// Store is the SQLite-backed submission collaborator.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create stores sub and returns its id. The contact is validated first.
func (s *Store) Create(ctx context.Context, sub Submission) (int64, error) {
	contact, err := sub.Contact.Normalize()
	if err != nil {
		return 0, err
	}

	payloadJSON, err := json.Marshal(sub.Payload)
	if err != nil {
		return 0, fmt.Errorf("encode submission payload: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (session_id, email, phone, note, price, payload_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sub.SessionID, contact.Email, contact.Phone, contact.Note, sub.Price, string(payloadJSON))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicate, sub.SessionID)
		}
		return 0, fmt.Errorf("insert submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read submission id: %w", err)
	}
	return id, nil
}

// Get loads one submission.
func (s *Store) Get(ctx context.Context, id int64) (Submission, error) {
	var (
		sub         Submission
		payloadJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, session_id, email, COALESCE(phone, ''), COALESCE(note, ''), price, payload_json
		FROM submissions
		WHERE id = ?
	`, id).Scan(
		&sub.ID,
		&sub.CreatedAt,
		&sub.SessionID,
		&sub.Contact.Email,
		&sub.Contact.Phone,
		&sub.Contact.Note,
		&sub.Price,
		&payloadJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrNotFound
		}
		return Submission{}, fmt.Errorf("query submission: %w", err)
	}

	if err := json.Unmarshal([]byte(payloadJSON), &sub.Payload); err != nil {
		return Submission{}, fmt.Errorf("decode submission payload: %w", err)
	}
	return sub, nil
}

// List returns submissions newest first. A non-empty query filters on email,
// note and the payload text.
func (s *Store) List(ctx context.Context, query string) ([]ListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, email, price, payload_json
		FROM submissions
		WHERE (? = '' OR email LIKE ? OR COALESCE(note, '') LIKE ? OR payload_json LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	items := make([]ListItem, 0)
	for rows.Next() {
		var item ListItem
		var payloadJSON string
		if err := rows.Scan(&item.ID, &item.CreatedAt, &item.Email, &item.Price, &payloadJSON); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		item.Material = extractPayloadField(payloadJSON, pricing.KeyMaterial)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}

	return items, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func extractPayloadField(payloadJSON, key string) string {
	var values map[string]string
	if err := json.Unmarshal([]byte(payloadJSON), &values); err != nil {
		return ""
	}
	return values[key]
}

// textFields orders the payload in the plain-text rendering.
var textFields = []struct {
	key   string
	label string
}{
	{pricing.KeyMaterial, "Material"},
	{pricing.KeyQuality, "Calidad"},
	{pricing.KeyInfill, "Relleno"},
	{pricing.KeyDimensions, "Dimensiones"},
	{pricing.KeyUnit, "Unidad"},
	{pricing.KeyScale, "Escala"},
	{pricing.KeyRotation, "Rotación"},
	{pricing.KeyWeight, "Peso estimado"},
	{pricing.KeyTime, "Tiempo estimado"},
	{pricing.KeySnapshot, "Modelo"},
}

// RenderText formats a submission as a plain-text summary.
func RenderText(sub Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cotización #%d (%s)\n", sub.ID, sub.CreatedAt)
	fmt.Fprintf(&b, "Precio estimado: %s\n\n", sub.Payload[pricing.KeyPrice])

	b.WriteString("Contacto:\n")
	fmt.Fprintf(&b, "- Email: %s\n", sub.Contact.Email)
	if sub.Contact.Phone != "" {
		fmt.Fprintf(&b, "- Teléfono: %s\n", sub.Contact.Phone)
	}
	if sub.Contact.Note != "" {
		fmt.Fprintf(&b, "- Nota: %s\n", sub.Contact.Note)
	}

	b.WriteString("\nConfiguración:\n")
	known := make(map[string]bool, len(textFields)+1)
	known[pricing.KeyPrice] = true
	for _, f := range textFields {
		known[f.key] = true
		if v, ok := sub.Payload[f.key]; ok {
			fmt.Fprintf(&b, "- %s: %s\n", f.label, v)
		}
	}

	extra := make([]string, 0)
	for k := range sub.Payload {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		fmt.Fprintf(&b, "- %s: %s\n", k, sub.Payload[k])
	}

	return b.String()
}
