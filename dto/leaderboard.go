package dto

type LeaderboardUserResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Level    int    `json:"level"`
	XP       int    `json:"xp"`
	Rank     int    `json:"rank"`
}

type LeaderboardResponse struct {
	Period      string                    `json:"period"` // weekly, monthly, all_time
	CurrentUser LeaderboardUserResponse   `json:"current_user"`
	TopUsers    []LeaderboardUserResponse `json:"top_users"`
}
