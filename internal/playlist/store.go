package playlist

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"dramatracker-api/internal/store"
)

// ErrNotFound covers both a missing playlist and one the caller may not see.
// The two are deliberately indistinguishable so unauthorized callers cannot
// probe which playlist ids exist.
var (
	ErrNotFound = errors.New("playlist not found")
	ErrConflict = errors.New("already exists")
)

// Store gates every playlist mutation on an ownership-or-membership check and
// assembles the hydrated view.
type Store struct {
	db store.DB
}

func NewStore(db store.DB) *Store {
	return &Store{db: db}
}

// CanAccess reports whether userID owns the playlist or holds a membership
// row for it. The owner is never stored as a member; the two predicates are
// OR-ed here and nowhere cached.
func (s *Store) CanAccess(ctx context.Context, userID, playlistID string) (bool, error) {
	var yes bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM playlists WHERE id = $1 AND owner_id = $2
			UNION
			SELECT 1 FROM playlist_members WHERE playlist_id = $1 AND user_id = $2
		)
	`, playlistID, userID).Scan(&yes)
	if err != nil {
		return false, err
	}
	return yes, nil
}

// GetView assembles the playlist aggregate: the row itself, the owner's
// profile, all members with their profiles, and all movie entries. Owner,
// members and movies are fetched concurrently; member profiles are resolved
// with one batched lookup rather than per-member queries.
func (s *Store) GetView(ctx context.Context, playlistID string) (View, error) {
	var pl Playlist
	err := s.db.QueryRow(ctx, `
		SELECT id, name, owner_id, created_at
		FROM playlists
		WHERE id = $1
	`, playlistID).Scan(&pl.ID, &pl.Name, &pl.OwnerID, &pl.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return View{}, ErrNotFound
	}
	if err != nil {
		return View{}, err
	}

	var (
		owner      Profile
		memberRows []memberRow
		movies     []Entry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.db.QueryRow(gctx, `
			SELECT id, email, name FROM users WHERE id = $1
		`, pl.OwnerID).Scan(&owner.ID, &owner.Email, &owner.Name)
		if errors.Is(err, pgx.ErrNoRows) {
			// Owner row racing a delete; leave the profile empty.
			return nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		memberRows, err = s.listMemberRows(gctx, playlistID)
		return err
	})
	g.Go(func() error {
		var err error
		movies, err = s.listEntries(gctx, playlistID)
		return err
	})
	if err := g.Wait(); err != nil {
		return View{}, err
	}

	members, err := s.hydrateMembers(ctx, memberRows)
	if err != nil {
		return View{}, err
	}

	return View{
		ID:        pl.ID,
		Name:      pl.Name,
		OwnerID:   pl.OwnerID,
		CreatedAt: pl.CreatedAt,
		Owner:     owner,
		Members:   members,
		Movies:    movies,
	}, nil
}

type memberRow struct {
	id     string
	userID string
}

func (s *Store) listMemberRows(ctx context.Context, playlistID string) ([]memberRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id
		FROM playlist_members
		WHERE playlist_id = $1
		ORDER BY created_at ASC
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []memberRow
	for rows.Next() {
		var m memberRow
		if err := rows.Scan(&m.id, &m.userID); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) listEntries(ctx context.Context, playlistID string) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, playlist_id, movie_id, title, poster_path, added_by_id, added_at
		FROM playlist_movies
		WHERE playlist_id = $1
		ORDER BY added_at ASC
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.PlaylistID, &e.MovieID, &e.Title, &e.PosterPath, &e.AddedByID, &e.AddedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// hydrateMembers resolves member user ids to profiles with a single ANY()
// query, avoiding the per-member N+1 pattern.
func (s *Store) hydrateMembers(ctx context.Context, memberRows []memberRow) ([]Member, error) {
	members := []Member{}
	if len(memberRows) == 0 {
		return members, nil
	}

	ids := make([]string, 0, len(memberRows))
	seen := map[string]bool{}
	for _, m := range memberRows {
		if !seen[m.userID] {
			seen[m.userID] = true
			ids = append(ids, m.userID)
		}
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, email, name
		FROM users
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := map[string]Profile{}
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.Name); err != nil {
			return nil, err
		}
		profiles[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, m := range memberRows {
		p, ok := profiles[m.userID]
		if !ok {
			// Profile deleted between fetches; drop the member from the view.
			continue
		}
		members = append(members, Member{ID: m.id, User: p})
	}
	return members, nil
}

// ListForUser returns the playlists the user owns or is a member of, each
// fully hydrated, newest first. The union is deduplicated even if a user is
// somehow both owner and member.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]View, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id FROM playlists WHERE owner_id = $1
		UNION
		SELECT playlist_id FROM playlist_members WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	views := []View{}
	for _, id := range ids {
		v, err := s.GetView(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// Deleted between the id listing and hydration.
			continue
		}
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views, nil
}

// Create inserts the playlist with the caller as owner. Ownership alone
// grants access; no membership row is written for the owner.
func (s *Store) Create(ctx context.Context, ownerID, name string) (View, error) {
	var id string
	err := s.db.QueryRow(ctx, `
		INSERT INTO playlists (name, owner_id)
		VALUES ($1, $2)
		RETURNING id
	`, name, ownerID).Scan(&id)
	if err != nil {
		return View{}, err
	}
	return s.GetView(ctx, id)
}

// AddMember grants targetUserID access. Only the owner may invite; everyone
// else gets the same not-found answer as for a playlist that does not exist.
func (s *Store) AddMember(ctx context.Context, playlistID, byUserID, targetUserID string) (View, error) {
	var ownerID string
	err := s.db.QueryRow(ctx, `
		SELECT owner_id FROM playlists WHERE id = $1
	`, playlistID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return View{}, ErrNotFound
	}
	if err != nil {
		return View{}, err
	}
	if ownerID != byUserID {
		return View{}, ErrNotFound
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO playlist_members (playlist_id, user_id)
		VALUES ($1, $2)
	`, playlistID, targetUserID)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return View{}, ErrConflict
		}
		return View{}, err
	}

	return s.GetView(ctx, playlistID)
}

// AddEntry attaches a movie with its title/poster snapshot. The unique index
// on (playlist_id, movie_id) is the arbiter under concurrent adds; a losing
// insert surfaces as ErrConflict.
func (s *Store) AddEntry(ctx context.Context, playlistID, byUserID string, movieID int, title, posterPath *string) (Entry, error) {
	ok, err := s.CanAccess(ctx, byUserID, playlistID)
	if err != nil {
		return Entry{}, err
	}
	if !ok {
		return Entry{}, ErrNotFound
	}

	var e Entry
	err = s.db.QueryRow(ctx, `
		INSERT INTO playlist_movies (playlist_id, movie_id, title, poster_path, added_by_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, playlist_id, movie_id, title, poster_path, added_by_id, added_at
	`, playlistID, movieID, title, posterPath, byUserID).Scan(
		&e.ID, &e.PlaylistID, &e.MovieID, &e.Title, &e.PosterPath, &e.AddedByID, &e.AddedAt,
	)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return Entry{}, ErrConflict
		}
		return Entry{}, err
	}
	return e, nil
}

// RemoveEntry deletes the movie from the playlist. Removing an entry that is
// not there is a success, so retries are harmless.
func (s *Store) RemoveEntry(ctx context.Context, playlistID, byUserID string, movieID int) error {
	ok, err := s.CanAccess(ctx, byUserID, playlistID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	_, err = s.db.Exec(ctx, `
		DELETE FROM playlist_movies
		WHERE playlist_id = $1 AND movie_id = $2
	`, playlistID, movieID)
	return err
}
