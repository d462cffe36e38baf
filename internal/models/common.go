// internal/models/common.go
package models

import (
	"time"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Enums
type UserType string

const (
	UserTypeMerchant UserType = "merchant"
	UserTypeCustomer UserType = "customer"
)

// SagaStep marks how far a purchase reconciliation has progressed. Steps only
// move forward; a retry with the same txHash resumes after the recorded step.
type SagaStep string

const (
	SagaStepPending          SagaStep = "pending"
	SagaStepInventoryApplied SagaStep = "inventory_applied"
	SagaStepLogged           SagaStep = "logged"
	SagaStepCompleted        SagaStep = "completed"
)
