package validators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"auto-validator/core/lock"
	"auto-validator/core/reconcile"
	"auto-validator/feature/validators/models"
	"auto-validator/feature/validators/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T, src *fakeSource) (*fiber.App, *Service) {
	svc, _ := setupService(t, src)
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)
	return app, svc
}

func decode(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}

func TestHandleSyncAndList(t *testing.T) {
	app, _ := setupTestApp(t, newFakeSource(validatorsYAML()))

	resp, err := app.Test(httptest.NewRequest("POST", "/validators/sync?schema=validator_manager", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, "validator_manager", body["schema"])
	result := body["result"].(map[string]any)
	assert.EqualValues(t, 2, result["validators"])

	resp, err = app.Test(httptest.NewRequest("GET", "/validators?schema=validator_manager", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	var list []store.ValidatorView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 2)
}

func TestHandleDiff(t *testing.T) {
	app, _ := setupTestApp(t, newFakeSource(validatorsYAML()))

	resp, err := app.Test(httptest.NewRequest("GET", "/validators/diff", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var plan reconcile.Plan
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&plan))
	assert.Equal(t, 2, plan.Summary.New)
	assert.Contains(t, plan.Diff, "--- db_data")
}

func TestHandleSync_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		query  string
		status int
	}{
		{"missing field", "RT21:\n  last_stake: 5\n", "", fiber.StatusUnprocessableEntity},
		{"malformed document", "- just\n- a list\n", "", fiber.StatusBadGateway},
		{"unknown schema", validatorsYAML(), "?schema=legacy", fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := setupTestApp(t, newFakeSource(tt.doc))
			resp, err := app.Test(httptest.NewRequest("POST", "/validators/sync"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, decode(t, resp.Body)["error"])
		})
	}
}

func TestHandleAutoSyncToggle(t *testing.T) {
	app, _ := setupTestApp(t, newFakeSource(validatorsYAML()))

	resp, err := app.Test(httptest.NewRequest("GET", "/validators/auto-sync", nil))
	require.NoError(t, err)
	assert.Equal(t, false, decode(t, resp.Body)["enabled"])

	resp, err = app.Test(httptest.NewRequest("POST", "/validators/auto-sync/toggle", nil))
	require.NoError(t, err)
	assert.Equal(t, true, decode(t, resp.Body)["enabled"])

	resp, err = app.Test(httptest.NewRequest("GET", "/validators/auto-sync", nil))
	require.NoError(t, err)
	assert.Equal(t, true, decode(t, resp.Body)["enabled"])
}

func TestHandleDelegateStake(t *testing.T) {
	app, svc := setupTestApp(t, newFakeSource(validatorsYAML()))
	_, err := svc.Sync(context.Background(), "core", false)
	require.NoError(t, err)

	var hotkey models.ExternalHotkey
	require.NoError(t, svc.db.Where("hotkey = ?", hk("rt_def", 0)).First(&hotkey).Error)

	put := func(path, body string) int {
		req := httptest.NewRequest("PUT", path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, 200, put(fmt.Sprintf("/hotkeys/%d/delegate-stake", hotkey.ID), `{"percentage": 18}`))
	assert.Equal(t, 400, put(fmt.Sprintf("/hotkeys/%d/delegate-stake", hotkey.ID), `{"percentage": 180}`))
	assert.Equal(t, 400, put(fmt.Sprintf("/hotkeys/%d/delegate-stake", hotkey.ID), `{}`))
	assert.Equal(t, 400, put("/hotkeys/abc/delegate-stake", `{"percentage": 1}`))
	assert.Equal(t, 404, put("/hotkeys/9999/delegate-stake", `{"percentage": 1}`))
	assert.Equal(t, 200, put("/hotkeys/delegate-stake", fmt.Sprintf(`{"stakes": {"%d": 7.5}}`, hotkey.ID)))

	require.NoError(t, svc.db.First(&hotkey, hotkey.ID).Error)
	assert.InDelta(t, 7.5, hotkey.DelegateStakePercentage, 0.0001)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{&reconcile.MissingFieldError{Record: "RT21", Field: "long_name"}, 422},
		{fmt.Errorf("%w: boom", reconcile.ErrLoad), 502},
		{lock.ErrLocked, 409},
		{fmt.Errorf("tx: %w", reconcile.ErrConstraintViolation), 409},
		{reconcile.ErrUnknownMode, 400},
		{ErrInvalidPercentage, 400},
		{store.ErrNotFound, 404},
		{errors.New("disk full"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusFor(tt.err), tt.err.Error())
	}
}
