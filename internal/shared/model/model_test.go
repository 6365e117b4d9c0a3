package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestQuestionJSON_TagsAsNames(t *testing.T) {
	q := &Question{
		ID:          "q-1",
		Owner:       "usr-1",
		Title:       "title",
		Description: "description",
		Tags:        []string{"go", "sql"},
	}

	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	tags, ok := raw["tags"].([]interface{})
	if !ok {
		t.Fatalf("tags = %T, want list", raw["tags"])
	}
	if len(tags) != 2 || tags[0] != "go" || tags[1] != "sql" {
		t.Errorf("tags = %v, want [go sql]", tags)
	}
	if raw["owner"] != "usr-1" {
		t.Errorf("owner = %v, want usr-1", raw["owner"])
	}
}

func TestUserJSON_HidesPassword(t *testing.T) {
	u := &User{ID: "usr-1", Username: "alice", PasswordHash: "secret-hash"}
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var raw map[string]interface{}
	json.Unmarshal(data, &raw)
	if _, ok := raw["password_hash"]; ok {
		t.Error("password_hash must not be serialized")
	}
	if raw["username"] != "alice" {
		t.Errorf("username = %v, want alice", raw["username"])
	}
}

func TestOwnerID(t *testing.T) {
	if got := (&Question{Owner: "a"}).OwnerID(); got != "a" {
		t.Errorf("Question.OwnerID() = %q", got)
	}
	if got := (&Answer{Owner: "b"}).OwnerID(); got != "b" {
		t.Errorf("Answer.OwnerID() = %q", got)
	}
	if got := (&User{ID: "c"}).OwnerID(); got != "c" {
		t.Errorf("User.OwnerID() = %q", got)
	}
}

func TestAuthTokenExpired(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{"未设置过期时间", time.Time{}, false},
		{"未过期", now.Add(time.Hour), false},
		{"已过期", now.Add(-time.Second), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := &AuthToken{ExpiresAt: tt.expires}
			if got := tok.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}
