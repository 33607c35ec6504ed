package payments

import (
	"time"

	"github.com/google/uuid"
)

// Payment is one attempt to pay for a hold. A hold can accumulate several
// failed or cancelled payments but at most one active and at most one
// settled payment.
type Payment struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	HoldID     uuid.UUID `json:"hold_id" gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID `json:"customer_id" gorm:"type:uuid;index;not null"`
	Method     Method    `json:"method" gorm:"type:varchar(20);not null"`
	Status     Status    `json:"status" gorm:"type:varchar(25);default:'CREATED'"`
	Amount     float64   `json:"amount" gorm:"not null;check:amount >= 0"`
	Currency   string    `json:"currency" gorm:"type:varchar(3);not null"`

	// ExternalReference identifies the settlement in the outside world:
	// the gateway intent id, or the receipt number an operator records
	// for cash and bank transfers.
	ExternalReference *string `json:"external_reference,omitempty" gorm:"size:255"`

	FailureReason *string    `json:"failure_reason,omitempty" gorm:"size:500"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	SettledAt     *time.Time `json:"settled_at,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// Compensation records money captured for a hold that could not be
// confirmed. Rows stay PENDING until an operator reverses the charge.
type Compensation struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	PaymentID  uuid.UUID  `json:"payment_id" gorm:"type:uuid;index;not null"`
	HoldID     uuid.UUID  `json:"hold_id" gorm:"type:uuid;index;not null"`
	Amount     float64    `json:"amount" gorm:"not null"`
	Currency   string     `json:"currency" gorm:"type:varchar(3);not null"`
	Reason     string     `json:"reason" gorm:"size:500;not null"`
	Status     string     `json:"status" gorm:"type:varchar(20);default:'PENDING'"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy *uuid.UUID `json:"resolved_by,omitempty" gorm:"type:uuid"`
}

const (
	CompensationPending  = "PENDING"
	CompensationResolved = "RESOLVED"
)

func (Compensation) TableName() string {
	return "compensations"
}

type CreatePaymentRequest struct {
	Method Method `json:"method" binding:"required,oneof=GATEWAY CASH BANK_TRANSFER"`
}

type ConfirmPaymentRequest struct {
	// Required for manual methods; for gateway payments it defaults to
	// the reference recorded at intent creation.
	ExternalReference string `json:"external_reference" binding:"omitempty,max=255"`
}

type PaymentResponse struct {
	ID                string     `json:"id"`
	HoldID            string     `json:"hold_id"`
	Method            Method     `json:"method"`
	Status            Status     `json:"status"`
	Amount            float64    `json:"amount"`
	Currency          string     `json:"currency"`
	ExternalReference *string    `json:"external_reference,omitempty"`
	ClientSecret      string     `json:"client_secret,omitempty"`
	FailureReason     *string    `json:"failure_reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	SettledAt         *time.Time `json:"settled_at,omitempty"`
}

func (p *Payment) ToResponse() PaymentResponse {
	return PaymentResponse{
		ID:                p.ID.String(),
		HoldID:            p.HoldID.String(),
		Method:            p.Method,
		Status:            p.Status,
		Amount:            p.Amount,
		Currency:          p.Currency,
		ExternalReference: p.ExternalReference,
		FailureReason:     p.FailureReason,
		CreatedAt:         p.CreatedAt,
		SettledAt:         p.SettledAt,
	}
}
