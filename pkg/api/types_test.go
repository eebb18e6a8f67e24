package api

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rhuss/portier/pkg/users"
)

func TestNewUser_OmitsCredentials(t *testing.T) {
	session := "sess-secret"
	reset := "reset-secret"
	u := &users.User{
		ID:             "u1",
		Email:          "bob@x.com",
		HashedPassword: "$2a$10$hashhashhash",
		SessionToken:   &session,
		ResetToken:     &reset,
		CreatedAt:      time.Unix(1000, 0).UTC(),
		UpdatedAt:      time.Unix(2000, 0).UTC(),
	}

	data, err := json.Marshal(NewUser(u))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	body := string(data)
	for _, secret := range []string{u.HashedPassword, session, reset} {
		if strings.Contains(body, secret) {
			t.Errorf("public view leaks %q: %s", secret, body)
		}
	}
	if !strings.Contains(body, `"email":"bob@x.com"`) {
		t.Errorf("public view missing email: %s", body)
	}
}

func TestNewUser_Nil(t *testing.T) {
	if NewUser(nil) != nil {
		t.Error("NewUser(nil) should be nil")
	}
}

func TestNewUserList_EmptyIsArray(t *testing.T) {
	data, err := json.Marshal(NewUserList(nil))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"object":"list","data":[]}` {
		t.Errorf("JSON = %s", data)
	}
}
