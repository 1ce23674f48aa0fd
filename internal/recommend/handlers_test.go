package recommend

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dramatracker-api/internal/auth"
)

const (
	meID     = "11111111-1111-4111-8111-111111111111"
	friendID = "22222222-2222-4222-8222-222222222222"
	recID    = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
)

var recCreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func setupMockServer(t *testing.T) (http.Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	router := NewServer(mock).Router(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.WithUser(r.Context(), auth.User{ID: meID, Email: "me@example.com"})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	return router, mock
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, target, bytes.NewReader(raw))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func recommendationRows(readAt any) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "from_user_id", "to_user_id", "movie_id",
		"title", "poster_path", "message", "read_at", "created_at",
	}).AddRow(recID, friendID, meID, 603, ptr("The Matrix"), ptr("/matrix.jpg"), ptr("watch it!"), readAt, recCreatedAt)
}

func TestHandleCreate(t *testing.T) {
	h, mock := setupMockServer(t)

	t.Run("Missing MovieID", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/", map[string]any{"toUserId": friendID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Self Recommendation", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/", map[string]any{"toUserId": meID, "movieId": 603})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Garbage Target ID", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/", map[string]any{"toUserId": "nope", "movieId": 603})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Unknown Target", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, name FROM users").
			WithArgs(friendID).
			WillReturnError(pgx.ErrNoRows)

		w := doJSON(t, h, http.MethodPost, "/", map[string]any{"toUserId": friendID, "movieId": 603})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, name FROM users").
			WithArgs(friendID).
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name"}).
				AddRow(friendID, "friend@example.com", "Finn"))
		mock.ExpectQuery("INSERT INTO recommendations").
			WithArgs(meID, friendID, 603, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "from_user_id", "to_user_id", "movie_id",
				"title", "poster_path", "message", "read_at", "created_at",
			}).AddRow(recID, meID, friendID, 603, "The Matrix", nil, "watch it!", nil, recCreatedAt))

		w := doJSON(t, h, http.MethodPost, "/", map[string]any{
			"toUserId": friendID, "movieId": 603, "title": "The Matrix", "message": "watch it!",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var rec Recommendation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
		assert.Equal(t, recID, rec.ID)
		assert.Nil(t, rec.ReadAt)
		require.NotNil(t, rec.ToUser)
		assert.Equal(t, "friend@example.com", rec.ToUser.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHandleReceived(t *testing.T) {
	h, mock := setupMockServer(t)

	mock.ExpectQuery("SELECT id, from_user_id, to_user_id").
		WithArgs(meID).
		WillReturnRows(recommendationRows(nil))
	mock.ExpectQuery("SELECT id, email, name FROM users").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name"}).
			AddRow(friendID, "friend@example.com", ptr("Finn")))

	w := doJSON(t, h, http.MethodGet, "/received", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Recommendations []*Recommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Recommendations, 1)
	rec := resp.Recommendations[0]
	assert.Equal(t, friendID, rec.FromUserID)
	require.NotNil(t, rec.FromUser, "sender profile should be hydrated")
	assert.Equal(t, "Finn", *rec.FromUser.Name)
	assert.Nil(t, rec.ToUser)
}

func TestHandleMarkRead(t *testing.T) {
	h, mock := setupMockServer(t)

	t.Run("Invalid ID", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPatch, "/nope/read", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Not Mine Or Missing", func(t *testing.T) {
		mock.ExpectExec("UPDATE recommendations").
			WithArgs(recID, meID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		w := doJSON(t, h, http.MethodPatch, "/"+recID+"/read", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Repeat Calls Succeed", func(t *testing.T) {
		// COALESCE keeps the first timestamp, the update still matches the row.
		for i := 0; i < 2; i++ {
			mock.ExpectExec("UPDATE recommendations").
				WithArgs(recID, meID).
				WillReturnResult(pgxmock.NewResult("UPDATE", 1))

			w := doJSON(t, h, http.MethodPatch, "/"+recID+"/read", nil)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}
