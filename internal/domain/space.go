package domain

type SpaceID string

// Space is the catalog record for one room: identity plus the logical
// grid bounds used for spawning and movement.
type Space struct {
	ID     SpaceID `json:"id"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}
