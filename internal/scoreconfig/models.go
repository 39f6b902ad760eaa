// Package scoreconfig is the registry of weight sets applied by the
// grade calculator. Exactly one configuration is active at a time;
// superseded rows are kept for audit and for explaining old grades.
package scoreconfig

import "github.com/gradewise/gradewise-backend/internal/grading"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Config is one stored weight set.
type Config struct {
	ID             string `json:"id"`
	grading.Config        // the four weights, integer hundredths
	Status         string `json:"status"`
	CreatedAt      int64  `json:"created_at"`
}
