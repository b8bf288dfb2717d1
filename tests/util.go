package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lilypad-dao/lilypad/core"
	"github.com/lilypad-dao/lilypad/core/content"
	"github.com/lilypad-dao/lilypad/core/user"
	inmemdb "github.com/lilypad-dao/lilypad/storage/database/inmem"
)

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// NewConfig returns the configuration used by tests (no env lookups).
func NewConfig() *core.Config {
	return &core.Config{
		AppName:   "The Lily Pad",
		Build:     "test",
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: time.Hour,
		},
		Redis: core.RedisConfig{TTL: time.Minute},
		Content: core.ContentConfig{
			RelatedLimit:    9,
			HomepageFilters: 8,
			MaxTake:         100,
			XPPerCourse:     100,
		},
		Treasury: core.TreasuryConfig{Decimals: 18},
	}
}

func CreateUser(t *testing.T, repo user.Repository, address, uname string, createdAt ...time.Time) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	addr, err := user.ChecksumAddress(address)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), user.User{
		Address:   addr,
		Username:  uname,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// CreateItem stores an item; slugs prefixed with "tech:" are technologies, the others are tags.
func CreateItem(t *testing.T, db *inmemdb.DB, typ content.Type, title string, slugs ...string) content.Item {
	it := content.Item{
		Type:         typ,
		Title:        title,
		Slug:         strings.ReplaceAll(strings.ToLower(title), " ", "-"),
		Tags:         []content.Tag{},
		Technologies: []content.Technology{},
	}
	for _, s := range slugs {
		if strings.HasPrefix(s, "tech:") {
			s = strings.TrimPrefix(s, "tech:")
			it.Technologies = append(it.Technologies, content.Technology{Name: s, Slug: s})
		} else {
			it.Tags = append(it.Tags, content.Tag{Name: s, Slug: s})
		}
	}
	it, err := db.InsertItem(it)
	if err != nil {
		t.Fatalf("createItem() failed: %v", err)
	}
	return it
}
