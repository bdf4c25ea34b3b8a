package models

import "time"

// ReportStatus represents the moderation lifecycle of a report.
type ReportStatus string

const (
	// ReportStatusOpen indicates a report awaiting moderator review.
	ReportStatusOpen ReportStatus = "open"
	// ReportStatusResolved indicates a report acted on by a moderator.
	ReportStatusResolved ReportStatus = "resolved"
	// ReportStatusDismissed indicates a report reviewed and discarded.
	ReportStatusDismissed ReportStatus = "dismissed"
)

// Report reasons accepted from clients.
const (
	ReportReasonSpam          = "spam"
	ReportReasonHarassment    = "harassment"
	ReportReasonImpersonation = "impersonation"
	ReportReasonOther         = "other"
)

// Report represents a user-submitted moderation report against a user or a
// specific post.
type Report struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// Reference is an opaque public identifier shared with the reporter.
	Reference      string       `gorm:"uniqueIndex;not null" json:"reference"`
	ReporterID     uint         `gorm:"not null;index" json:"reporter_id"`
	ReportedUserID uint         `gorm:"not null;index" json:"reported_user_id"`
	PostID         *uint        `gorm:"index" json:"post_id,omitempty"`
	Reason         string       `gorm:"type:varchar(40);not null" json:"reason"`
	Description    string       `gorm:"type:text;default:''" json:"description"`
	Status         ReportStatus `gorm:"type:varchar(20);default:'open';index" json:"status"`
	// ModeratorNote records the resolution rationale; set when the report
	// leaves the open state.
	ModeratorNote string `gorm:"type:text;default:''" json:"moderator_note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Reporter     User  `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	ReportedUser User  `gorm:"foreignKey:ReportedUserID" json:"reported_user,omitempty"`
	Post         *Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}

// ValidReportReason reports whether the given reason is one the API accepts.
func ValidReportReason(reason string) bool {
	switch reason {
	case ReportReasonSpam, ReportReasonHarassment, ReportReasonImpersonation, ReportReasonOther:
		return true
	}
	return false
}
