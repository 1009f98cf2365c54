package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/nikbrunner/bmr/internal/api"
	"github.com/nikbrunner/bmr/internal/fakeapi"
	"github.com/nikbrunner/bmr/internal/storage"
	"gotest.tools/v3/assert"
)

type fixture struct {
	server *fakeapi.Server
	creds  *storage.FileCredentialStore
	auth   *api.AuthState
	client *api.Client
}

// newFixture starts a fake service accepting serverKey and stores clientKey
// locally when non-empty.
func newFixture(t *testing.T, serverKey, clientKey string) *fixture {
	t.Helper()

	server := fakeapi.New(serverKey)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	creds := storage.NewFileCredentialStore(filepath.Join(t.TempDir(), "credential.json"))
	if clientKey != "" {
		assert.NilError(t, creds.Save(clientKey))
	}

	auth := api.NewAuthState()
	client := api.New(api.Params{
		BaseURL:       ts.URL,
		Credentials:   creds,
		OnAuthFailure: auth.Require,
		HTTPClient:    ts.Client(),
	})

	return &fixture{server: server, creds: creds, auth: auth, client: client}
}

func (f *fixture) storedKey(t *testing.T) (string, bool) {
	t.Helper()
	token, ok, err := f.creds.Load()
	assert.NilError(t, err)
	return token, ok
}

func TestClient_NoCredentialOmitsHeader(t *testing.T) {
	f := newFixture(t, "", "")

	_, err := f.client.ListFolders(context.Background(), "")
	assert.NilError(t, err)

	requests := f.server.Requests()
	assert.Equal(t, len(requests), 1)
	assert.Assert(t, !requests[0].HasAuthHeader, "no Authorization header expected")
}

func TestClient_AttachesCredential(t *testing.T) {
	f := newFixture(t, "secret", "secret")

	_, err := f.client.ListFolders(context.Background(), "")
	assert.NilError(t, err)

	assert.Equal(t, f.server.Requests()[0].Authorization, "secret")
	token, ok := f.storedKey(t)
	assert.Assert(t, ok)
	assert.Equal(t, token, "secret")
	assert.Equal(t, f.auth.Reason(), "")
}

func TestClient_UnauthorizedClearsCredential(t *testing.T) {
	f := newFixture(t, "secret", "secret")
	f.server.FailWith(http.StatusUnauthorized)

	_, err := f.client.ListFolders(context.Background(), "")

	var httpErr *api.HTTPError
	assert.Assert(t, errors.As(err, &httpErr))
	assert.Equal(t, httpErr.StatusCode, http.StatusUnauthorized)
	assert.Error(t, err, "Unauthorized")
	assert.Assert(t, api.IsAuthError(err))

	_, ok := f.storedKey(t)
	assert.Assert(t, !ok, "credential should be cleared")
	assert.Equal(t, f.auth.Reason(), api.ReasonKeyRequired)
}

func TestClient_ForbiddenClearsCredentialBeforeNextRequest(t *testing.T) {
	f := newFixture(t, "secret", "wrong")
	ctx := context.Background()

	_, err := f.client.ListFolders(ctx, "")
	assert.Error(t, err, "Forbidden")
	assert.Assert(t, api.IsAuthError(err))

	_, ok := f.storedKey(t)
	assert.Assert(t, !ok)
	assert.Equal(t, f.auth.Reason(), api.ReasonKeyInvalid)
	assert.Assert(t, f.auth.Required())

	// The rejected key is never sent again.
	_, err = f.client.ListFolders(ctx, "")
	assert.Assert(t, api.IsAuthError(err))
	requests := f.server.Requests()
	assert.Equal(t, len(requests), 2)
	assert.Assert(t, !requests[1].HasAuthHeader)
	assert.Equal(t, f.auth.Reason(), api.ReasonKeyInvalid, "the rejection stays the reported reason")
}

func TestClient_GenericErrorKeepsCredential(t *testing.T) {
	f := newFixture(t, "secret", "secret")
	f.server.FailWith(http.StatusInternalServerError)

	_, err := f.client.ListFolders(context.Background(), "")

	assert.Error(t, err, "Internal Server Error")
	assert.Assert(t, !api.IsAuthError(err))
	assert.Assert(t, api.IsStatus(err, http.StatusInternalServerError))
	assert.Assert(t, !api.IsStatus(errors.New("plain"), http.StatusInternalServerError))
	_, ok := f.storedKey(t)
	assert.Assert(t, ok)
	assert.Assert(t, !f.auth.Required())
}

func TestClient_ResumesAfterNewCredential(t *testing.T) {
	f := newFixture(t, "secret", "wrong")
	ctx := context.Background()

	_, err := f.client.ListFolders(ctx, "")
	assert.Assert(t, api.IsAuthError(err))

	assert.NilError(t, f.creds.Save("secret"))
	f.auth.Resolve()

	_, err = f.client.ListFolders(ctx, "")
	assert.NilError(t, err)
	assert.Assert(t, !f.auth.Required())
}

func TestClient_SetsRequestHeaders(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	client := api.New(api.Params{BaseURL: ts.URL + "/", HTTPClient: ts.Client()})
	assert.NilError(t, client.CreateFolder(context.Background(), "/dev"))

	assert.Assert(t, got.Get(api.RequestIDHeader) != "")
	assert.Equal(t, got.Get("Content-Type"), "application/json")
	_, hasAuth := got["Authorization"]
	assert.Assert(t, !hasAuth)
}

func TestClient_DoReturnsRawResponse(t *testing.T) {
	f := newFixture(t, "", "")

	resp, err := f.client.Do(context.Background(), http.MethodGet, api.FoldersPath, nil)
	assert.NilError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusOK)
}

func TestAuthState(t *testing.T) {
	auth := api.NewAuthState()
	changes, stop := auth.Subscribe()
	defer stop()

	assert.Assert(t, !auth.Required())

	auth.Require(api.ReasonKeyInvalid)
	auth.Require(api.ReasonKeyInvalid)
	assert.Equal(t, auth.Reason(), api.ReasonKeyInvalid)

	select {
	case <-changes:
	default:
		t.Fatal("expected a change notification")
	}
	select {
	case <-changes:
		t.Fatal("repeating the same reason should not notify again")
	default:
	}

	auth.Resolve()
	assert.Assert(t, !auth.Required())
	select {
	case <-changes:
	default:
		t.Fatal("expected a notification on resolve")
	}
}

func TestAuthState_KeepsPendingReason(t *testing.T) {
	auth := api.NewAuthState()

	auth.Require(api.ReasonKeyInvalid)
	auth.Require(api.ReasonKeyRequired)
	assert.Equal(t, auth.Reason(), api.ReasonKeyInvalid)

	auth.Resolve()
	auth.Require(api.ReasonKeyRequired)
	assert.Equal(t, auth.Reason(), api.ReasonKeyRequired)
}

func TestAuthState_Unsubscribe(t *testing.T) {
	auth := api.NewAuthState()
	changes, stop := auth.Subscribe()
	kept, stopKept := auth.Subscribe()
	defer stopKept()
	stop()

	auth.Require(api.ReasonKeyRequired)
	select {
	case <-changes:
		t.Fatal("no notification after unsubscribing")
	default:
	}
	select {
	case <-kept:
	default:
		t.Fatal("other subscribers are still notified")
	}
}
