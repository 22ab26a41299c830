package murmursdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPostQueryValues(t *testing.T) {
	t.Parallel()

	t.Run("defaults to page only", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "page=0", PostQuery{}.values().Encode())
	})

	t.Run("full filter set", func(t *testing.T) {
		t.Parallel()

		lat, lon := 52.52, 13.405
		v := PostQuery{
			Page:      2,
			Size:      10,
			Search:    "coffee",
			Radius:    5,
			Latitude:  &lat,
			Longitude: &lon,
			Tags:      []string{"food", "berlin"},
		}.values()

		require.Equal(t, "2", v.Get("page"))
		require.Equal(t, "10", v.Get("size"))
		require.Equal(t, "coffee", v.Get("search"))
		require.Equal(t, "5", v.Get("radius"))
		require.Equal(t, "52.52", v.Get("latitude"))
		require.Equal(t, "13.405", v.Get("longitude"))
		require.Equal(t, "food,berlin", v.Get("tags"))
	})

	t.Run("radius without coordinates is dropped", func(t *testing.T) {
		t.Parallel()

		lat := 52.52
		v := PostQuery{Radius: 5, Latitude: &lat}.values()
		require.Empty(t, v.Get("radius"))
		require.Empty(t, v.Get("latitude"))
	})
}

func TestGetPost(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/posts/p1", r.URL.Path)
			_ = json.NewEncoder(w).Encode(Post{ID: "p1", Text: "hello"})
		}))
		defer server.Close()

		client, _ := newTestClient(t, server)
		post, err := client.GetPost(context.Background(), "p1")
		require.NoError(t, err)
		require.Equal(t, "hello", post.Text)
	})

	t.Run("missing and expired both yield ErrNotFound", func(t *testing.T) {
		t.Parallel()

		status := http.StatusNotFound
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		defer server.Close()

		client, _ := newTestClient(t, server)

		_, err := client.GetPost(context.Background(), "gone")
		require.ErrorIs(t, err, ErrNotFound)

		status = http.StatusGone
		_, err = client.GetPost(context.Background(), "expired")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCreatePost(t *testing.T) {
	t.Parallel()

	t.Run("sends a json part and image parts", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))

			jsonPart := r.MultipartForm.File["post"]
			require.Len(t, jsonPart, 1)
			require.Equal(t, "application/json", jsonPart[0].Header.Get("Content-Type"))

			f, err := jsonPart[0].Open()
			require.NoError(t, err)
			defer f.Close()

			var req PostCreateRequest
			require.NoError(t, json.NewDecoder(f).Decode(&req))
			require.Equal(t, "first post", req.Text)
			require.Equal(t, []string{"intro"}, req.Tags)

			images := r.MultipartForm.File["images"]
			require.Len(t, images, 2)
			require.Equal(t, "one.jpg", images[0].Filename)
			require.Equal(t, "two.jpg", images[1].Filename)

			_ = json.NewEncoder(w).Encode(Post{ID: "p1", Text: req.Text})
		}))
		defer server.Close()

		client, _ := newTestClient(t, server)

		post, err := client.CreatePost(context.Background(), PostCreateRequest{
			UserID: "u1",
			Text:   "first post",
			Tags:   []string{"intro"},
		}, []ImageUpload{
			{Name: "one.jpg", Content: strings.NewReader("jpeg-one")},
			{Name: "two.jpg", Content: strings.NewReader("jpeg-two")},
		})
		require.NoError(t, err)
		require.Equal(t, "p1", post.ID)
	})

	t.Run("empty text is rejected client-side", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("request must not reach the server")
		}))
		defer server.Close()

		client, _ := newTestClient(t, server)

		_, err := client.CreatePost(context.Background(), PostCreateRequest{UserID: "u1"}, nil)
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
	})
}

func TestDeletePost(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath, gotUser string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotUser = r.URL.Query().Get("userId")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server)
	require.NoError(t, client.DeletePost(context.Background(), "p1", "u1"))
	require.Equal(t, http.MethodDelete, gotMethod)
	require.Equal(t, "/posts/p1", gotPath)
	require.Equal(t, "u1", gotUser)
}
