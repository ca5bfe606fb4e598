package store

import (
	"testing"
	"time"

	"github.com/jjenkins/trialfinder/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreLifecycle(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	s := NewSessionStore(10 * time.Minute)
	s.now = func() time.Time { return now }

	sess := s.Create()
	require.NotEmpty(t, sess.ID)

	got, ok := s.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)

	now = now.Add(9 * time.Minute)
	_, ok = s.Get(sess.ID)
	assert.True(t, ok, "access refreshes the idle timer")

	now = now.Add(11 * time.Minute)
	_, ok = s.Get(sess.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestSessionStoreGetOrCreate(t *testing.T) {
	s := NewSessionStore(time.Minute)

	sess, created := s.GetOrCreate("")
	assert.True(t, created)

	again, created := s.GetOrCreate(sess.ID)
	assert.False(t, created)
	assert.Same(t, sess, again)

	other, created := s.GetOrCreate("unknown-id")
	assert.True(t, created)
	assert.NotEqual(t, sess.ID, other.ID)
}

func TestSessionStoreSweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	s := NewSessionStore(time.Minute)
	s.now = func() time.Time { return now }

	s.Create()
	s.Create()
	now = now.Add(30 * time.Second)
	fresh := s.Create()

	now = now.Add(45 * time.Second)
	assert.Equal(t, 2, s.Sweep())
	_, ok := s.Get(fresh.ID)
	assert.True(t, ok)
}

func TestSessionResultResetsRowTranslations(t *testing.T) {
	s := NewSessionStore(time.Minute)
	sess := s.Create()
	assert.Nil(t, sess.Result())

	rows := sess.SetResult(&model.SearchResult{CTGov: []model.CTGovTrial{{NCTID: "NCT1"}}})
	rows.Set(model.SourceCTGov, 0, model.RowTranslation{Title: "研究"})

	got, ok := sess.Rows().Get(model.SourceCTGov, 0)
	require.True(t, ok)
	assert.Equal(t, "研究", got.Title)
	_, ok = sess.Rows().Get(model.SourceJRCT, 0)
	assert.False(t, ok)

	sess.SetResult(&model.SearchResult{})
	assert.Equal(t, 0, sess.Rows().Len())
}

func TestSessionSnapshotPairsResultWithRows(t *testing.T) {
	s := NewSessionStore(time.Minute)
	sess := s.Create()

	first := &model.SearchResult{CTGov: []model.CTGovTrial{{NCTID: "NCT1"}}}
	sess.SetResult(first)
	result, oldRows := sess.Snapshot()
	require.Same(t, first, result)

	second := &model.SearchResult{CTGov: []model.CTGovTrial{{NCTID: "NCT2"}}}
	newRows := sess.SetResult(second)

	// A late write for the first result lands in its own rows only
	oldRows.Set(model.SourceCTGov, 0, model.RowTranslation{Title: "古い結果"})

	result, rows := sess.Snapshot()
	assert.Same(t, second, result)
	assert.Same(t, newRows, rows)
	_, ok := rows.Get(model.SourceCTGov, 0)
	assert.False(t, ok)
}
