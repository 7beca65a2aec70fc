package mailer

import (
	"fmt"
	"time"
)

// ClaimJob is the JSON payload queued when an announcement is claimed.
// cmd/notify_worker consumes it and emails the donor.
type ClaimJob struct {
	To             string    `json:"to"` // donor contact email
	DonorName      string    `json:"donor_name"`
	DoneeName      string    `json:"donee_name"`
	ProductName    string    `json:"product_name"`
	AnnouncementID string    `json:"announcement_id"`
	ClaimedAt      time.Time `json:"claimed_at"`
}

// RenderClaimEmail builds the subject and text body for a claim notification.
func RenderClaimEmail(job ClaimJob) (subject, text string) {
	subject = fmt.Sprintf("Your donation %q was claimed", job.ProductName)
	text = fmt.Sprintf(
		"Hi %s,\n\n%s claimed your announcement %q (%s) on %s.\n\nPlease get in touch to arrange the handover.\n",
		job.DonorName,
		job.DoneeName,
		job.ProductName,
		job.AnnouncementID,
		job.ClaimedAt.UTC().Format("02 January 2006, 15:04 MST"),
	)
	return subject, text
}
