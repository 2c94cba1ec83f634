package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/shopfront/internal/apitest"
)

// setupEnv points every subsequent invocation at a fake backend and a
// throwaway state dir, so commands behave like separate processes
// sharing one on-disk session.
func setupEnv(t *testing.T) *apitest.Server {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	t.Setenv("SHOPFRONT_API_URL", srv.URL)
	t.Setenv("SHOPFRONT_STATE_DIR", filepath.Join(t.TempDir(), "state"))
	return srv
}

// extractFirstID pulls the id of the first product out of a JSON
// product listing.
func extractFirstID(t *testing.T, out string) string {
	t.Helper()
	var products []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &products))
	require.NotEmpty(t, products)
	return products[0].ID
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "--format", "xml", "whoami")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestWhoami_LoggedOut(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}

func TestLogin_RejectedSurfacesServerMessage(t *testing.T) {
	srv := setupEnv(t)
	srv.SeedUser("Ada", "ada@example.com", "pw")

	out, err := run(t, "login", "--email", "ada@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, ExitRejected, GetExitCode(err))
	assert.Contains(t, err.Error(), "Invalid email or password")
	assert.Empty(t, out)
}

func TestCheckout_RequiresLogin(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "cart", "checkout")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestOrdersList_RequiresLogin(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "orders", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGuestCart_PersistsAcrossInvocations(t *testing.T) {
	srv := setupEnv(t)
	id := srv.SeedProduct("Lamp", 100, "")

	out, err := run(t, "cart", "add", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Lamp")

	// a fresh invocation hydrates the same local cart
	out, err = run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Lamp")
	assert.Contains(t, out, "1 items, total 100.00")

	out, err = run(t, "cart", "add", id)
	require.NoError(t, err)
	assert.Contains(t, out, "2 items, total 200.00")

	out, err = run(t, "cart", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cart is empty.")
}

func TestCartAdd_UnknownProduct(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "cart", "add", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitRejected, GetExitCode(err))
}

func TestFullFlow_RegisterToOrder(t *testing.T) {
	srv := setupEnv(t)
	id := srv.SeedProduct("Lamp", 100, "")

	out, err := run(t, "register",
		"--name", "Ada", "--email", "ada@example.com", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "OTP")

	// wrong code first, then the mailed one
	_, err = run(t, "verify-otp", "--email", "ada@example.com", "--otp", "000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid or expired OTP")

	out, err = run(t, "verify-otp", "--email", "ada@example.com", "--otp", apitest.OTP)
	require.NoError(t, err)
	assert.Contains(t, out, "verified")

	out, err = run(t, "login", "--email", "ada@example.com", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Ada <ada@example.com>")

	out, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada <ada@example.com>")

	out, err = run(t, "products", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Lamp")

	out, err = run(t, "cart", "add", id)
	require.NoError(t, err)
	assert.Contains(t, out, "1 items, total 100.00")

	out, err = run(t, "cart", "checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "Order")
	assert.Contains(t, out, "status pending")

	out, err = run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Cart is empty.")

	out, err = run(t, "orders", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "100.00")

	out, err = run(t, "orders", "list", "--purchases")
	require.NoError(t, err)
	assert.Contains(t, out, "pending")

	out, err = run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")

	out, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}

func TestSellerFlow_ListUpdateRemove(t *testing.T) {
	srv := setupEnv(t)
	srv.SeedUser("Ada", "ada@example.com", "pw")

	_, err := run(t, "login", "--email", "ada@example.com", "--password", "pw")
	require.NoError(t, err)

	out, err := run(t, "products", "add", "--name", "Lamp", "--price", "100")
	require.NoError(t, err)
	assert.Contains(t, out, `Listed "Lamp"`)

	out, err = run(t, "products", "mine")
	require.NoError(t, err)
	assert.Contains(t, out, "Lamp")

	// the listing id comes from the backend
	mine, err := run(t, "--format", "json", "products", "mine")
	require.NoError(t, err)
	id := extractFirstID(t, mine)

	out, err = run(t, "products", "update", id, "--name", "Desk Lamp", "--price", "120")
	require.NoError(t, err)
	assert.Contains(t, out, `Updated "Desk Lamp"`)

	out, err = run(t, "products", "rm", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted "+id)
}

func TestStaleToken_InvalidatedOnFirstRejectedCall(t *testing.T) {
	srv := setupEnv(t)
	srv.SeedUser("Ada", "ada@example.com", "pw")
	_, err := run(t, "login", "--email", "ada@example.com", "--password", "pw")
	require.NoError(t, err)

	// simulate the server dropping the token: a fresh backend with the
	// same URL knows nothing about it
	replacement := apitest.NewServer()
	t.Cleanup(replacement.Close)
	t.Setenv("SHOPFRONT_API_URL", replacement.URL)

	_, err = run(t, "orders", "list")
	require.Error(t, err)
	assert.Equal(t, ExitRejected, GetExitCode(err))

	// the rejected token destroyed the session
	out, err := run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}
