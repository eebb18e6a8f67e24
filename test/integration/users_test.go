package integration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/rhuss/portier/pkg/api"
)

func TestListUsers(t *testing.T) {
	resp := getWith(t, testEnv.BaseURL()+"/api/v1/users", withBasic(bobEmail, bobPassword))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var list api.UserList
	decodeJSON(t, resp, &list)
	if len(list.Data) != 2 {
		t.Fatalf("len(data) = %d, want 2", len(list.Data))
	}
	if list.Data[0].ID != bobID || list.Data[1].ID != aliceID {
		t.Errorf("order = %s, %s; want %s, %s", list.Data[0].ID, list.Data[1].ID, bobID, aliceID)
	}
}

func TestListUsersHidesSecrets(t *testing.T) {
	resp := getWith(t, testEnv.BaseURL()+"/api/v1/users", withBasic(bobEmail, bobPassword))
	body := readBody(t, resp)

	for _, secret := range []string{bobSession, "hashed_password", "$2a$"} {
		if strings.Contains(body, secret) {
			t.Errorf("response leaks %q", secret)
		}
	}
}

func TestGetUser(t *testing.T) {
	resp := getWith(t, testEnv.BaseURL()+"/api/v1/users/"+aliceID, withBasic(bobEmail, bobPassword))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var u api.User
	decodeJSON(t, resp, &u)
	if u.Email != aliceEmail {
		t.Errorf("email = %q, want %q", u.Email, aliceEmail)
	}

	resp = getWith(t, testEnv.BaseURL()+"/api/v1/users/u-missing", withBasic(bobEmail, bobPassword))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing user: status = %d, want 404", resp.StatusCode)
	}
}

func TestStats(t *testing.T) {
	resp := getWith(t, testEnv.BaseURL()+"/api/v1/stats", withSession(bobSession))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var stats api.Stats
	decodeJSON(t, resp, &stats)
	if stats.Users != 2 {
		t.Errorf("users = %d, want 2", stats.Users)
	}
}
