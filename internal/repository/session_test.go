package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/chatgames-backend/internal/apperror"
	"github.com/rocketscienceinc/chatgames-backend/internal/entity"
	"github.com/rocketscienceinc/chatgames-backend/testing/suite"
)

func TestSessionRepository_Save(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage, time.Hour)

	// Given: a session with a snapshot
	session := &entity.Session{
		GroupID: "g1",
		Kind:    "tt",
		State:   json.RawMessage(`{"state":"awaiting_marker"}`),
	}

	// When: Save is called
	err := sessionRepo.Save(ctx, session)

	// Then: the session is stored with a ttl
	require.NoError(t, err)

	ttl, err := st.Storage.TTL(ctx, "session:g1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestSessionRepository_Get(t *testing.T) {
	t.Run("Get_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		// Given: a saved session
		session := &entity.Session{
			GroupID: "g1",
			Kind:    "cf",
			State:   json.RawMessage(`{"state":"awaiting_difficulty"}`),
		}
		require.NoError(t, sessionRepo.Save(ctx, session))

		// When: Get is called with its group
		retrieved, err := sessionRepo.Get(ctx, "g1")

		// Then: the retrieved session matches the saved one
		require.NoError(t, err)
		assert.Equal(t, session.GroupID, retrieved.GroupID)
		assert.Equal(t, session.Kind, retrieved.Kind)
		assert.JSONEq(t, string(session.State), string(retrieved.State))
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		// When: Get is called for a group without a session
		retrieved, err := sessionRepo.Get(ctx, "missing")

		// Then: ErrSessionNotFound is returned
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		assert.Nil(t, retrieved)
	})
}

func TestSessionRepository_Delete(t *testing.T) {
	t.Run("Delete_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		// Given: a saved session
		require.NoError(t, sessionRepo.Save(ctx, &entity.Session{GroupID: "g1", Kind: "hm", State: json.RawMessage(`{}`)}))

		// When: Delete is called
		err := sessionRepo.Delete(ctx, "g1")

		// Then: the session is gone
		require.NoError(t, err)

		_, err = sessionRepo.Get(ctx, "g1")
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Delete_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		// When: Delete is called for a group without a session
		err := sessionRepo.Delete(ctx, "missing")

		// Then: ErrSessionNotFound is returned
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}
