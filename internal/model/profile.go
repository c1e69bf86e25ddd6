package model

// Profile is a community member as stored in the main site database.
// Authentication itself is delegated to the external identity provider;
// this is display and reputation data only.
type Profile struct {
	ID                string  `json:"id"`
	Username          string  `json:"username"`
	Email             string  `json:"email,omitempty"`
	AvatarURL         string  `json:"avatar_url,omitempty"`
	Location          string  `json:"location,omitempty"`
	Rating            float64 `json:"rating"`
	TransactionsCount int     `json:"transactions_count"`
}

// DisplayInfo strips private fields for exposure to other users.
func (p *Profile) DisplayInfo() *Profile {
	return &Profile{
		ID:                p.ID,
		Username:          p.Username,
		AvatarURL:         p.AvatarURL,
		Location:          p.Location,
		Rating:            p.Rating,
		TransactionsCount: p.TransactionsCount,
	}
}
