package constants

import "time"

// Context keys
const (
	ContextKeyUserID = "user_id"
	ContextKeyActor  = "actor"
)

// Session
const (
	SessionCookieName = "report_session"
	SessionMaxAge     = 86400 * 7
)

// Auth
const (
	MinPasswordLength = 8
	DefaultTokenTTL   = 7 * 24 * time.Hour
	TokenIssuer       = "report-tracker-api"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
	MaxPage         = 100000
)

// Dashboard
const (
	DashboardMonths      = 12
	LeaderboardLimit     = 10
	RecentHistoryLimit   = 20
	StaffRosterLimit     = 20
	UnknownUserName      = "Pengguna"
	MaxAISuggestedIssues = 10
)

// Uploads
const (
	MaxUploadSize = 20 << 20

	// MaxMultipartMemory is how much of a multipart body is held in memory
	// before spilling to temp files.
	MaxMultipartMemory = 8 << 20
)
