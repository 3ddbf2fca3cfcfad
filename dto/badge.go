package dto

import "time"

type BadgeResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Scope       string     `json:"scope"`
	Tier        string     `json:"tier"`
	XPBonus     int        `json:"xp_bonus"`
	EarnedAt    *time.Time `json:"earned_at,omitempty"`
}

type BadgeCatalogResponse struct {
	Badges []BadgeResponse `json:"badges"`
	Total  int             `json:"total"`
	Earned int             `json:"earned"`
}

// BadgeAwardResult is the outcome of one scope evaluation (or a whole
// cascade): the badges newly awarded in this cycle and their combined
// XP bonus.
type BadgeAwardResult struct {
	NewBadges      []BadgeResponse `json:"new_badges"`
	TotalXPAwarded int             `json:"total_xp_awarded"`
}
