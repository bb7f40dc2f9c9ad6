package types

import "time"

// SiteProvisioningMessage is the SQS payload emitted after a draft is
// created. The site provisioner consumes it to materialize the site.
type SiteProvisioningMessage struct {
	MessageID string    `json:"message_id"`
	DraftID   string    `json:"draft_id"`
	Subdomain string    `json:"subdomain"`
	Plan      PlanID    `json:"plan"`
	TraceID   string    `json:"trace_id"` // request id of the finalize call
	CreatedAt time.Time `json:"created_at"`
}
