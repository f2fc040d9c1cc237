package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLedger(t *testing.T, e *env, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := e.ledger.TrackView(ctxBG(), id, "Recipe "+id)
		require.NoError(t, err)
	}
}

func TestClear_WithoutAllFlag_Errors(t *testing.T) {
	err := RunWithArgs("test", []string{"clear"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear requires --all flag for safety")
}

func TestClear_WithAllAndForce_Succeeds(t *testing.T) {
	e := newTestEnv(t)
	seedLedger(t, e, "a", "b", "c")

	cmd := &ClearCommand{All: true, Force: true, globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.confirm())
		require.NoError(t, cmd.executeWithEnv(e))
	})

	assert.Contains(t, output, "Cleared 3 recipes")
	assert.Equal(t, 0, e.ledger.Len())
}

func TestClear_JSONOutput(t *testing.T) {
	e := newTestEnv(t)
	seedLedger(t, e, "a")

	cmd := &ClearCommand{All: true, Force: true, globals: &GlobalFlags{JSON: true}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e))
	})

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &result), "output should be valid JSON: %s", output)
	assert.Equal(t, true, result["cleared"])
	assert.Equal(t, float64(1), result["removed"])
	assert.Equal(t, "all recipe history deleted", result["message"])
}

func TestClear_StoreIsEmptyAfterClear(t *testing.T) {
	e := newTestEnv(t)
	seedLedger(t, e, "a", "b")

	_, ok, err := e.store.Get(ctxBG(), e.cfg.Storage.NamespaceKey)
	require.NoError(t, err)
	require.True(t, ok)

	cmd := &ClearCommand{All: true, Force: true, globals: &GlobalFlags{}}
	captureOutput(t, func() { require.NoError(t, cmd.executeWithEnv(e)) })

	_, ok, err = e.store.Get(ctxBG(), e.cfg.Storage.NamespaceKey)
	require.NoError(t, err)
	assert.False(t, ok, "ledger key should be deleted")

	again := reopen(t, e)
	assert.Equal(t, 0, again.ledger.Len())
	assert.Empty(t, again.ledger.History())
}

func TestClear_TypedConfirmation(t *testing.T) {
	cmd := &ClearCommand{All: true, globals: &GlobalFlags{}, in: strings.NewReader("CLEAR\n")}

	var err error
	output := captureOutput(t, func() { err = cmd.confirm() })

	require.NoError(t, err)
	assert.Contains(t, output, `Type "CLEAR" to confirm`)
}

func TestClear_WrongConfirmationAborts(t *testing.T) {
	cmd := &ClearCommand{All: true, globals: &GlobalFlags{}, in: strings.NewReader("clear\n")}

	var err error
	captureOutput(t, func() { err = cmd.confirm() })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "confirmation text did not match")
}

func TestClear_NoInputAborts(t *testing.T) {
	cmd := &ClearCommand{All: true, globals: &GlobalFlags{}, in: strings.NewReader("")}

	var err error
	captureOutput(t, func() { err = cmd.confirm() })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input received")
}
