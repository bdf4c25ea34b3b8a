package server

import (
	"fmt"
	"testing"

	"parasocial/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowFlow(t *testing.T) {
	_, app, _ := newTestServer(t)

	aliceToken, aliceID := signupUser(t, app, "alice", "alice@example.com")
	_, bobID := signupUser(t, app, "bob", "bob@example.com")

	followURL := fmt.Sprintf("/api/users/%d/follow", bobID)

	resp := doRequest(t, app, "POST", followURL, aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, "GET", followURL, aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var status map[string]interface{}
	decodeBody(t, resp, &status)
	assert.Equal(t, true, status["following"])

	// Repeated follow is idempotent.
	resp = doRequest(t, app, "POST", followURL, aliceToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, "GET", fmt.Sprintf("/api/users/%d/followers", bobID), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var followers []models.User
	decodeBody(t, resp, &followers)
	require.Len(t, followers, 1)
	assert.Equal(t, aliceID, followers[0].ID)

	resp = doRequest(t, app, "DELETE", followURL, aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, "GET", followURL, aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &status)
	assert.Equal(t, false, status["following"])
}

func TestFollow_SelfRejected(t *testing.T) {
	_, app, _ := newTestServer(t)
	token, id := signupUser(t, app, "narcissus", "narcissus@example.com")

	resp := doRequest(t, app, "POST", fmt.Sprintf("/api/users/%d/follow", id), token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestBlock_SeversFollowsAndPreventsNew(t *testing.T) {
	_, app, _ := newTestServer(t)

	aliceToken, aliceID := signupUser(t, app, "blocker", "blocker@example.com")
	bobToken, bobID := signupUser(t, app, "blocked", "blocked@example.com")

	// Mutual follows before the block.
	resp := doRequest(t, app, "POST", fmt.Sprintf("/api/users/%d/follow", bobID), aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = doRequest(t, app, "POST", fmt.Sprintf("/api/users/%d/follow", aliceID), bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, "POST", fmt.Sprintf("/api/users/%d/block", bobID), aliceToken,
		map[string]string{"reason": "spam"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Both directions of the follow edge are gone.
	resp = doRequest(t, app, "GET", fmt.Sprintf("/api/users/%d/follow", bobID), aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var status map[string]interface{}
	decodeBody(t, resp, &status)
	assert.Equal(t, false, status["following"])

	resp = doRequest(t, app, "GET", fmt.Sprintf("/api/users/%d/follow", aliceID), bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &status)
	assert.Equal(t, false, status["following"])

	// The blocked user cannot re-follow while the block stands.
	resp = doRequest(t, app, "POST", fmt.Sprintf("/api/users/%d/follow", aliceID), bobToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// The block shows up in the blocker's list.
	resp = doRequest(t, app, "GET", "/api/me/blocks", aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var blocks []models.Block
	decodeBody(t, resp, &blocks)
	require.Len(t, blocks, 1)
	assert.Equal(t, bobID, blocks[0].BlockedID)

	// Unblock allows following again.
	resp = doRequest(t, app, "DELETE", fmt.Sprintf("/api/users/%d/block", bobID), aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, "POST", fmt.Sprintf("/api/users/%d/follow", aliceID), bobToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
