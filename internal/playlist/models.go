package playlist

import (
	"time"
)

// Playlist holds the bare row; View is the hydrated aggregate handed to the
// route layer.
type Playlist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Profile struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

type Member struct {
	ID   string  `json:"id"`
	User Profile `json:"user"`
}

// Entry is a movie attached to a playlist. Title and PosterPath are snapshots
// captured at add-time and never refreshed.
type Entry struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlistId"`
	MovieID    int       `json:"movieId"`
	Title      *string   `json:"title"`
	PosterPath *string   `json:"posterPath"`
	AddedByID  string    `json:"addedById"`
	AddedAt    time.Time `json:"addedAt"`
}

type View struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	Owner     Profile   `json:"owner"`
	Members   []Member  `json:"members"`
	Movies    []Entry   `json:"movies"`
}
