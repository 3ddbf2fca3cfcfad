package shared

const (
	UserID = "user_id"

	// Access verifier reason codes. Surfaced to the caller verbatim,
	// never retried automatically.
	AccessReasonNotFound       = "NOT_FOUND"
	AccessReasonNotEnrolled    = "NOT_ENROLLED"
	AccessReasonNotInHierarchy = "NOT_IN_HIERARCHY"
	AccessReasonLocked         = "LOCKED"

	PerformancePerfect   = "Perfect"
	PerformanceExcellent = "Excellent"

	LeaderboardWeekly  = "weekly"
	LeaderboardMonthly = "monthly"
	LeaderboardAllTime = "all_time"
)
