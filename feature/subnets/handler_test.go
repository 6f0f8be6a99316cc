package subnets

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T, src *fakeSource) *fiber.App {
	svc, _ := setupService(t, src)
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)
	return app
}

func TestHandleSyncThenList(t *testing.T) {
	app := setupTestApp(t, &fakeSource{doc: subnetsYAML})

	resp, err := app.Test(httptest.NewRequest("POST", "/subnets/sync", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	var report SyncReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 2, report.Created)

	resp, err = app.Test(httptest.NewRequest("GET", "/subnets", nil))
	require.NoError(t, err)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, "omron", list[0]["codename"])
	assert.Contains(t, list[0], "delegated_stake_percentage")
}

func TestHandleDiff(t *testing.T) {
	app := setupTestApp(t, &fakeSource{doc: subnetsYAML})

	resp, err := app.Test(httptest.NewRequest("GET", "/subnets/diff", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	var plan Plan
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&plan))
	assert.Equal(t, 2, plan.External)
	assert.Zero(t, plan.Stored)
}

func TestHandleDumperCommands(t *testing.T) {
	app := setupTestApp(t, &fakeSource{doc: subnetsYAML})

	resp, err := app.Test(httptest.NewRequest("GET", "/subnets/SN2/dumper-commands", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []any{"dump --netuid 2"}, body["dumper_commands"])

	resp, err = app.Test(httptest.NewRequest("GET", "/subnets/unknown/dumper-commands", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleSync_SourceDown(t *testing.T) {
	app := setupTestApp(t, &fakeSource{err: errors.New("timeout")})

	resp, err := app.Test(httptest.NewRequest("POST", "/subnets/sync", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}
