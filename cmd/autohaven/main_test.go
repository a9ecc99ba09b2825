package main

import (
	"bytes"
	"testing"

	"autohaven/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, ts *testutil.TestServer, dir string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--api", ts.Server.URL, "--profile-dir", dir}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCLI_SessionSurvivesBetweenInvocations(t *testing.T) {
	ts := testutil.NewTestServer(t)
	dir := t.TempDir()

	out, err := run(t, ts, dir, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")

	out, err = run(t, ts, dir, "register", "--name", "Ann", "--email", "ann@x.com", "--password", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered as Ann <ann@x.com>")

	out, err = run(t, ts, dir, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "ann@x.com")

	out, err = run(t, ts, dir, "whoami", "--remote")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Ann"`)

	_, err = run(t, ts, dir, "logout")
	require.NoError(t, err)
	out, err = run(t, ts, dir, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")
}

func TestCLI_CarsAsAdmin(t *testing.T) {
	ts := testutil.NewTestServer(t)
	dir := t.TempDir()
	admin := testutil.NewUserBuilder().Admin()
	user, _ := admin.Build(t, ts)
	testutil.SeedListing(t, ts, testutil.ListingRequest("Honda", "Civic", 2019, 18500))

	_, err := run(t, ts, dir, "login", "--email", user.Email, "--password", admin.Password())
	require.NoError(t, err)

	out, err := run(t, ts, dir, "cars", "create",
		"--make", "Toyota", "--model", "Camry", "--year", "2022", "--price", "25999", "--mileage", "15000",
		"--fuel-type", "Gasoline", "--transmission", "Automatic", "--image-url", "http://x/y.jpg",
		"--description", "clean", "--feature", "Bluetooth")
	require.NoError(t, err)
	assert.Contains(t, out, `"slug": "2022-toyota-camry"`)

	out, err = run(t, ts, dir, "cars", "list", "--make", "toyo", "--price-max", "26000")
	require.NoError(t, err)
	assert.Contains(t, out, "Camry")
	assert.NotContains(t, out, "Civic")
	assert.Contains(t, out, "1 matching")

	_, err = run(t, ts, dir, "cars", "create", "--make", "Toyota")
	assert.Error(t, err)
}

func TestCLI_ContactSend(t *testing.T) {
	ts := testutil.NewTestServer(t)
	out, err := run(t, ts, t.TempDir(), "contact", "send",
		"--name", "Ada", "--email", "ada@example.com", "--message", "Still available?")
	require.NoError(t, err)
	assert.Contains(t, out, "sent")

	messages, total, err := ts.Repos.Contacts.List(t.Context(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Still available?", messages[0].Message)
}
