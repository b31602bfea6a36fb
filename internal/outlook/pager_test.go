package outlook

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedHandler serves numbered message pages from the skip offset and
// an empty page past the end.
func pagedHandler(t *testing.T, pages [][]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := 0
		if skip := r.URL.Query().Get("$skip"); skip != "" {
			var offset int
			if _, err := fmt.Sscanf(skip, "%d", &offset); err != nil {
				t.Errorf("unparseable $skip %q", skip)
			}
			page = offset / pageSize
		}

		if page >= len(pages) {
			respondJSON(t, w, http.StatusOK, `{"value":[]}`)
			return
		}

		body := `{"value":[`
		for i, id := range pages[page] {
			if i > 0 {
				body += ","
			}
			body += fmt.Sprintf(`{"id": %q, "subject": "Message %s"}`, id, id)
		}
		body += `]}`
		respondJSON(t, w, http.StatusOK, body)
	}
}

func TestMessagePager(t *testing.T) {
	account, server := newTestAccount(t, pagedHandler(t, [][]string{
		{"m1", "m2", "m3"},
		{"m4", "m5"},
	}))

	pager := account.Messages().List(nil)

	var ids []string
	ctx := context.Background()
	for pager.Next(ctx) {
		ids = append(ids, pager.Message().ID)
	}

	require.NoError(t, pager.Err())
	assert.Equal(t, []string{"m1", "m2", "m3", "m4", "m5"}, ids)

	// Pages were fetched lazily, one request each plus the empty page
	assert.Len(t, server.requests, 3)

	// The cursor stays exhausted
	assert.False(t, pager.Next(ctx))
	assert.NoError(t, pager.Err())
	assert.Len(t, server.requests, 3)
}

func TestMessagePager_EmptyMailbox(t *testing.T) {
	account, _ := newTestAccount(t, pagedHandler(t, nil))

	pager := account.Messages().List(nil)
	assert.False(t, pager.Next(context.Background()))
	assert.NoError(t, pager.Err())
}

func TestMessagePager_Folder(t *testing.T) {
	account, server := newTestAccount(t, pagedHandler(t, [][]string{{"m1"}}))

	pager := account.Messages().List(Inbox)

	require.True(t, pager.Next(context.Background()))
	assert.Equal(t, "m1", pager.Message().ID)
	assert.Equal(t, "/me/mailFolders/inbox/messages", server.lastRequest(t).Path)
}

func TestMessagePager_FetchError(t *testing.T) {
	account, _ := newTestAccount(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	pager := account.Messages().List(nil)
	ctx := context.Background()

	assert.False(t, pager.Next(ctx))
	assert.ErrorIs(t, pager.Err(), ErrServer)

	// A failed cursor stays failed
	assert.False(t, pager.Next(ctx))
	assert.ErrorIs(t, pager.Err(), ErrServer)
}

func TestMessagePager_LazyFetch(t *testing.T) {
	account, server := newTestAccount(t, pagedHandler(t, [][]string{
		{"m1", "m2"},
		{"m3"},
	}))

	pager := account.Messages().List(nil)
	assert.Empty(t, server.requests, "construction must not fetch")

	ctx := context.Background()
	require.True(t, pager.Next(ctx))
	require.True(t, pager.Next(ctx))
	assert.Len(t, server.requests, 1, "second page must not be fetched while the first still serves")

	require.True(t, pager.Next(ctx))
	assert.Len(t, server.requests, 2)
}
