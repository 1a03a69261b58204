package syncclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"identity-api/internal/model"
)

type recordedRequest struct {
	method string
	path   string
	bearer string
	body   map[string]any
}

func newRecordingServer(t *testing.T, status int) (*httptest.Server, *recordedRequest) {
	t.Helper()

	recorded := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorded.method = r.Method
		recorded.path = r.URL.Path
		recorded.bearer = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&recorded.body)
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	return server, recorded
}

func sampleUser() model.User {
	return model.User{
		ID:         "u1",
		ExternalID: "ext-1",
		Name:       "Jane",
		Surname:    "Doe",
		Email:      "jane@example.com",
		Role:       model.RoleUser,
		Gender:     model.GenderWoman,
		BirthDate:  time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
	}
}

func TestEndpointsAndPayload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("add client carries the company id", func(t *testing.T) {
		t.Parallel()
		server, recorded := newRecordingServer(t, http.StatusOK)
		client := New(server.URL, time.Second, nil)

		payload := ExternalUserCompany{ExternalUser: NewExternalUser(sampleUser()), CompanyID: "company-7"}
		require.NoError(t, client.AddClient(ctx, payload))

		require.Equal(t, http.MethodPost, recorded.method)
		require.Equal(t, "/client/create/client", recorded.path)
		require.Equal(t, "company-7", recorded.body["company_id"])
		require.Equal(t, "jane@example.com", recorded.body["email"])
		require.Equal(t, "1990-05-17", recorded.body["birth_date"])
	})

	t.Run("remaining endpoints route correctly", func(t *testing.T) {
		t.Parallel()

		calls := []struct {
			invoke func(*Client) error
			method string
			path   string
		}{
			{func(c *Client) error { return c.AddClientAdmin(ctx, NewExternalUser(sampleUser())) }, http.MethodPost, "/client/create/client-admin"},
			{func(c *Client) error { return c.AddStaff(ctx, NewExternalUser(sampleUser())) }, http.MethodPost, "/staff/create"},
			{func(c *Client) error { return c.AddAdmin(ctx, NewExternalUser(sampleUser())) }, http.MethodPost, "/admin/create"},
			{func(c *Client) error { return c.UpdateClientData(ctx, NewExternalUser(sampleUser())) }, http.MethodPut, "/client/update"},
			{func(c *Client) error { return c.UpdateStaffData(ctx, NewExternalUser(sampleUser())) }, http.MethodPut, "/staff/update"},
		}

		for _, call := range calls {
			server, recorded := newRecordingServer(t, http.StatusOK)
			client := New(server.URL, time.Second, nil)

			require.NoError(t, call.invoke(client))
			require.Equal(t, call.method, recorded.method)
			require.Equal(t, call.path, recorded.path)
		}
	})
}

func TestBearerForwarding(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	server, recorded := newRecordingServer(t, http.StatusOK)
	client := New(server.URL, time.Second, func(context.Context) string { return "caller-token" })

	require.NoError(t, client.AddStaff(ctx, NewExternalUser(sampleUser())))
	require.Equal(t, "Bearer caller-token", recorded.bearer)

	// Without a token source no header is sent.
	server2, recorded2 := newRecordingServer(t, http.StatusOK)
	client2 := New(server2.URL, time.Second, nil)
	require.NoError(t, client2.AddStaff(ctx, NewExternalUser(sampleUser())))
	require.Empty(t, recorded2.bearer)
}

func TestNon2xxIsAnError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	t.Cleanup(server.Close)

	client := New(server.URL, time.Second, nil)
	err := client.AddStaff(context.Background(), NewExternalUser(sampleUser()))
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 502")
	require.Contains(t, err.Error(), "upstream exploded")
}

func TestUnreachableServer(t *testing.T) {
	t.Parallel()

	client := New("http://127.0.0.1:1", 200*time.Millisecond, nil)
	require.Error(t, client.AddStaff(context.Background(), NewExternalUser(sampleUser())))
}
