package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MilestoneStatus string

const (
	MilestoneStatusPending   MilestoneStatus = "pending"
	MilestoneStatusCompleted MilestoneStatus = "completed"
)

func ParseMilestoneStatus(s string) (MilestoneStatus, error) {
	switch MilestoneStatus(s) {
	case MilestoneStatusPending, MilestoneStatusCompleted:
		return MilestoneStatus(s), nil
	default:
		return "", fmt.Errorf("invalid milestone status %q", s)
	}
}

// Well-known milestone titles seeded on every new order.
const (
	MilestoneOrderConfirmed = "Pedido Confirmado"
	MilestoneWorkStarted    = "Desarrollo Iniciado"
	MilestoneFirstReview    = "Primera Revisión"
	MilestoneFinalDelivery  = "Entrega Final"
)

// Milestone is a dated deliverable checkpoint within an order's fulfillment.
type Milestone struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	DueDate      time.Time       `json:"dueDate"`
	Status       MilestoneStatus `json:"status"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
	Deliverables []string        `json:"deliverables,omitempty"`
}

// DefaultMilestones seeds the four fixed checkpoints for a new order. The
// confirmation milestone starts completed; the rest are pending. The first
// review is due a week in, the final delivery at the estimated delivery date.
func DefaultMilestones(now, estimatedDelivery time.Time) []Milestone {
	completedAt := now

	return []Milestone{
		{
			ID:          uuid.New(),
			Title:       MilestoneOrderConfirmed,
			DueDate:     now,
			Status:      MilestoneStatusCompleted,
			CompletedAt: &completedAt,
		},
		{
			ID:      uuid.New(),
			Title:   MilestoneWorkStarted,
			DueDate: now.AddDate(0, 0, 1),
			Status:  MilestoneStatusPending,
		},
		{
			ID:      uuid.New(),
			Title:   MilestoneFirstReview,
			DueDate: now.AddDate(0, 0, 7),
			Status:  MilestoneStatusPending,
		},
		{
			ID:      uuid.New(),
			Title:   MilestoneFinalDelivery,
			DueDate: estimatedDelivery,
			Status:  MilestoneStatusPending,
		},
	}
}

// CompleteMilestone marks the milestone with the given title completed.
// Returns false if no pending milestone with that title exists.
func (o *Order) CompleteMilestone(title string, at time.Time) bool {
	for i := range o.Milestones {
		if o.Milestones[i].Title == title && o.Milestones[i].Status == MilestoneStatusPending {
			o.Milestones[i].Status = MilestoneStatusCompleted
			o.Milestones[i].CompletedAt = &at

			return true
		}
	}

	return false
}

// CompleteAllMilestones marks every remaining pending milestone completed.
func (o *Order) CompleteAllMilestones(at time.Time) {
	for i := range o.Milestones {
		if o.Milestones[i].Status == MilestoneStatusPending {
			o.Milestones[i].Status = MilestoneStatusCompleted
			o.Milestones[i].CompletedAt = &at
		}
	}
}
