package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"coursechat/app/client/backend"
	"coursechat/app/config"
	"coursechat/app/service/identity"

	"github.com/samber/do"
	"github.com/stretchr/testify/require"
)

func authedMux(t *testing.T) *http.ServeMux {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/me", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"u1","name":"Ada","picture":""}`))
	})

	return mux
}

func newTestStack(t *testing.T, handler http.Handler, dataDir string) (*Service, *identity.Service) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return newTestStackForURL(t, srv.URL, dataDir)
}

func newTestStackForURL(t *testing.T, baseURL string, dataDir string) (*Service, *identity.Service) {
	t.Helper()

	di := do.New()
	t.Cleanup(func() { _ = di.Shutdown() })

	do.ProvideValue(di, &config.Config{
		Backend: config.Backend{BaseURL: baseURL, SessionCookie: "session", TimeoutSeconds: 5},
		DataDir: dataDir,
	})
	do.Provide(di, backend.NewClient)
	do.Provide(di, identity.New)
	do.Provide(di, New)

	return do.MustInvoke[*Service](di), do.MustInvoke[*identity.Service](di)
}

func TestRefreshWithoutIdentitySkipsBackend(t *testing.T) {
	var listCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("GET /conversations", func(w http.ResponseWriter, r *http.Request) {
		listCalls.Add(1)
		_, _ = w.Write([]byte(`[{"id":"c1","title":"t"}]`))
	})

	svc, identitySvc := newTestStack(t, mux, t.TempDir())
	require.NoError(t, identitySvc.Probe(context.Background()))

	require.NoError(t, svc.Refresh(context.Background()))
	require.Empty(t, svc.Conversations())
	require.EqualValues(t, 0, listCalls.Load())
}

func TestRefreshAppliesBackendOrder(t *testing.T) {
	mux := authedMux(t)
	mux.HandleFunc("GET /conversations", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"c3","title":"three"},{"id":"c1","title":"one"}]`))
	})

	svc, identitySvc := newTestStack(t, mux, t.TempDir())
	require.NoError(t, identitySvc.Probe(context.Background()))

	require.NoError(t, svc.Refresh(context.Background()))
	require.Equal(t, []backend.ConversationSummary{
		{ID: "c3", Title: "three"},
		{ID: "c1", Title: "one"},
	}, svc.Conversations())
	require.True(t, svc.Contains("c1"))
	require.False(t, svc.Contains("c2"))
}

func TestRefreshLastIssuedWins(t *testing.T) {
	svc, _ := newTestStack(t, authedMux(t), t.TempDir())

	first := svc.beginRefresh()
	second := svc.beginRefresh()

	applied := svc.finishRefresh(first, []backend.ConversationSummary{{ID: "stale", Title: "stale"}})
	require.False(t, applied)

	applied = svc.finishRefresh(second, []backend.ConversationSummary{{ID: "fresh", Title: "fresh"}})
	require.True(t, applied)

	list := svc.Conversations()
	require.Len(t, list, 1)
	require.Equal(t, backend.ConversationID("fresh"), list[0].ID)
}

func TestRefreshFailureKeepsLastKnownList(t *testing.T) {
	var fail atomic.Bool

	mux := authedMux(t)
	mux.HandleFunc("GET /conversations", func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"c1","title":"one"}]`))
	})

	svc, identitySvc := newTestStack(t, mux, t.TempDir())
	require.NoError(t, identitySvc.Probe(context.Background()))
	require.NoError(t, svc.Refresh(context.Background()))

	fail.Store(true)
	require.Error(t, svc.Refresh(context.Background()))
	require.True(t, svc.Contains("c1"))
}

func TestDeleteFailureLeavesListUnchanged(t *testing.T) {
	mux := authedMux(t)
	mux.HandleFunc("GET /conversations", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"c1","title":"one"}]`))
	})
	mux.HandleFunc("DELETE /conversations/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	svc, identitySvc := newTestStack(t, mux, t.TempDir())
	require.NoError(t, identitySvc.Probe(context.Background()))
	require.NoError(t, svc.Refresh(context.Background()))

	require.Error(t, svc.Delete(context.Background(), "c1"))
	require.True(t, svc.Contains("c1"))
}

func TestDeleteDropsRowLocally(t *testing.T) {
	mux := authedMux(t)
	mux.HandleFunc("GET /conversations", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"c1","title":"one"},{"id":"c2","title":"two"}]`))
	})
	mux.HandleFunc("DELETE /conversations/{id}", func(w http.ResponseWriter, r *http.Request) {})

	svc, identitySvc := newTestStack(t, mux, t.TempDir())
	require.NoError(t, identitySvc.Probe(context.Background()))
	require.NoError(t, svc.Refresh(context.Background()))

	require.NoError(t, svc.Delete(context.Background(), "c1"))
	require.False(t, svc.Contains("c1"))
	require.True(t, svc.Contains("c2"))
}

func TestUnreachableBackendKeepsLastKnownList(t *testing.T) {
	dataDir := t.TempDir()

	mux := authedMux(t)
	mux.HandleFunc("GET /conversations", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"c1","title":"one"}]`))
	})

	svc, identitySvc := newTestStack(t, mux, dataDir)
	require.NoError(t, identitySvc.Probe(context.Background()))
	require.NoError(t, svc.Refresh(context.Background()))

	deadSrv := httptest.NewServer(http.NotFoundHandler())
	deadSrv.Close()

	// cold start with the backend down: probe fails on transport, the refresh
	// must keep the cached list rather than mistake the failure for anonymity
	restarted, restartedIdentity := newTestStackForURL(t, deadSrv.URL, dataDir)
	require.Error(t, restartedIdentity.Probe(context.Background()))
	require.NoError(t, restarted.Refresh(context.Background()))
	require.True(t, restarted.Contains("c1"))

	// and the cache file was not truncated along the way
	again, _ := newTestStackForURL(t, deadSrv.URL, dataDir)
	require.True(t, again.Contains("c1"))
}

func TestConfirmedAnonymousRefreshEmptiesList(t *testing.T) {
	dataDir := t.TempDir()

	mux := authedMux(t)
	mux.HandleFunc("GET /conversations", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"c1","title":"one"}]`))
	})

	svc, identitySvc := newTestStack(t, mux, dataDir)
	require.NoError(t, identitySvc.Probe(context.Background()))
	require.NoError(t, svc.Refresh(context.Background()))

	anonMux := http.NewServeMux()
	anonMux.HandleFunc("GET /api/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	// the backend is reachable and says "not logged in": now the list empties
	restarted, restartedIdentity := newTestStack(t, anonMux, dataDir)
	require.NoError(t, restartedIdentity.Probe(context.Background()))
	require.NoError(t, restarted.Refresh(context.Background()))
	require.Empty(t, restarted.Conversations())
}

func TestLastKnownListSurvivesRestart(t *testing.T) {
	dataDir := t.TempDir()

	mux := authedMux(t)
	mux.HandleFunc("GET /conversations", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"c1","title":"one"}]`))
	})

	svc, identitySvc := newTestStack(t, mux, dataDir)
	require.NoError(t, identitySvc.Probe(context.Background()))
	require.NoError(t, svc.Refresh(context.Background()))

	// a fresh service over the same data dir, backend never consulted
	restarted, _ := newTestStack(t, http.NotFoundHandler(), dataDir)
	require.True(t, restarted.Contains("c1"))
}
