// Package invalidation defines directory-change events consumed to expire
// cached search responses.
package invalidation

import (
	"fmt"
	"time"
)

// Event is a versioned change notification for one company record. Seq is a
// per-company monotonic version used to drop replayed or out-of-order
// deliveries.
type Event struct {
	Version   int       `json:"version"`
	Op        string    `json:"op"`
	CompanyID int64     `json:"company_id"`
	Seq       uint64    `json:"seq"`
	TS        time.Time `json:"ts"`
	Source    string    `json:"source,omitempty"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("version must be 1")
	}
	switch e.Op {
	case "insert", "update", "delete":
	default:
		return fmt.Errorf("op must be insert|update|delete")
	}
	if e.CompanyID <= 0 {
		return fmt.Errorf("company_id is required")
	}
	if e.Seq == 0 {
		return fmt.Errorf("seq is required")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}
