package server

import (
	"fmt"
	"strings"
	"testing"

	"parasocial/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReport(t *testing.T) {
	_, app, _ := newTestServer(t)

	reporterToken, _ := signupUser(t, app, "reporter", "reporter@example.com")
	_, offenderID := signupUser(t, app, "offender", "offender@example.com")

	resp := doRequest(t, app, "POST", "/api/reports", reporterToken, map[string]interface{}{
		"reported_user_id": offenderID,
		"reason":           models.ReportReasonSpam,
		"description":      "posting the same link repeatedly",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var report models.Report
	decodeBody(t, resp, &report)
	assert.True(t, strings.HasPrefix(report.Reference, "rpt_"))
	assert.Equal(t, models.ReportStatusOpen, report.Status)
	assert.Equal(t, offenderID, report.ReportedUserID)

	// The reporter sees it under their own reports.
	resp = doRequest(t, app, "GET", "/api/reports/me", reporterToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var mine []models.Report
	decodeBody(t, resp, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, report.ID, mine[0].ID)
}

func TestCreateReport_Validation(t *testing.T) {
	_, app, _ := newTestServer(t)

	token, selfID := signupUser(t, app, "selfreport", "selfreport@example.com")
	_, otherID := signupUser(t, app, "otheruser", "otheruser@example.com")

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{
			name: "Self report",
			body: map[string]interface{}{
				"reported_user_id": selfID,
				"reason":           models.ReportReasonSpam,
			},
		},
		{
			name: "Invalid reason",
			body: map[string]interface{}{
				"reported_user_id": otherID,
				"reason":           "because",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, "POST", "/api/reports", token, tt.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestResolveReport(t *testing.T) {
	_, app, db := newTestServer(t)

	reporterToken, _ := signupUser(t, app, "tipster", "tipster@example.com")
	_, offenderID := signupUser(t, app, "troll", "troll@example.com")
	adminToken, adminID := signupUser(t, app, "modqueue", "modqueue@example.com")
	makeAdmin(t, db, adminID)

	resp := doRequest(t, app, "POST", "/api/reports", reporterToken, map[string]interface{}{
		"reported_user_id": offenderID,
		"reason":           models.ReportReasonHarassment,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var report models.Report
	decodeBody(t, resp, &report)

	// Visible in the moderation queue.
	resp = doRequest(t, app, "GET", "/api/admin/reports", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var queue []models.Report
	decodeBody(t, resp, &queue)
	require.Len(t, queue, 1)

	resolveURL := fmt.Sprintf("/api/admin/reports/%d/resolve", report.ID)

	resp = doRequest(t, app, "POST", resolveURL, adminToken, map[string]string{
		"status":         string(models.ReportStatusResolved),
		"moderator_note": "warned the account",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var resolved models.Report
	decodeBody(t, resp, &resolved)
	assert.Equal(t, models.ReportStatusResolved, resolved.Status)
	assert.Equal(t, "warned the account", resolved.ModeratorNote)

	// Resolving twice conflicts: review is one-shot.
	resp = doRequest(t, app, "POST", resolveURL, adminToken, map[string]string{
		"status": string(models.ReportStatusDismissed),
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// The queue is empty once reviewed.
	resp = doRequest(t, app, "GET", "/api/admin/reports", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &queue)
	assert.Empty(t, queue)
}

func TestResolveReport_RequiresAdmin(t *testing.T) {
	_, app, _ := newTestServer(t)
	token, _ := signupUser(t, app, "nonmod", "nonmod@example.com")

	resp := doRequest(t, app, "GET", "/api/admin/reports", token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
