package cli

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cinebox/internal/journal"
	"github.com/roach88/cinebox/internal/vending"
)

var journalStart = time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)

func runReplayCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestReplayMissingJournalFlag(t *testing.T) {
	_, err := runReplayCommand(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestReplayNonExistentJournal(t *testing.T) {
	_, err := runReplayCommand(t, "text", "--journal", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "journal not found")
}

func TestReplayEmptyJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cinebox.db")
	st, err := journal.Open(dbPath)
	require.NoError(t, err)
	st.Close()

	out, err := runReplayCommand(t, "text", "--journal", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs found")
}

func TestReplayDeterministicRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cinebox.db")
	recordJournal(t, dbPath, "run-1", journalStart, buyOneTicket...)
	recordJournal(t, dbPath, "run-2", journalStart.Add(time.Hour), vending.Coin5, vending.Return)

	out, err := runReplayCommand(t, "text", "--journal", dbPath)
	require.NoError(t, err)

	assert.Contains(t, out, "2 run(s)")
	assert.Contains(t, out, "✓ run-1: 5 ticks, 1 tickets, final browse credit=1")
	assert.Contains(t, out, "✓ run-2: 3 ticks, 0 tickets, final insert_coin credit=0")
	assert.Contains(t, out, "All runs deterministic")
}

func TestReplaySingleRunJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cinebox.db")
	recordJournal(t, dbPath, "run-1", journalStart, buyOneTicket...)
	recordJournal(t, dbPath, "run-2", journalStart.Add(time.Hour), vending.Coin1)

	out, err := runReplayCommand(t, "json", "--journal", dbPath, "--run", "run-2")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.AllDeterministic)
	require.Len(t, resp.Data.Runs, 1)
	assert.Equal(t, "run-2", resp.Data.Runs[0].RunID)
	assert.Equal(t, vending.EngineVersion, resp.Data.Runs[0].EngineVersion)
	assert.Equal(t, 2, resp.Data.Runs[0].Ticks)
	assert.Equal(t, 1, resp.Data.Runs[0].FinalCredit)
}

func TestReplayUnknownRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cinebox.db")
	recordJournal(t, dbPath, "run-1", journalStart, vending.Coin1)

	_, err := runReplayCommand(t, "text", "--journal", dbPath, "--run", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, journal.ErrRunNotFound)
}

func TestReplayDetectsTampering(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cinebox.db")
	recordJournal(t, dbPath, "run-1", journalStart, buyOneTicket...)

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE ticks SET consumed = 1 - consumed WHERE run_id = 'run-1' AND seq = 2")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := runReplayCommand(t, "text", "--journal", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ run-1")
	assert.Contains(t, out, "consumed")
	assert.Contains(t, out, "Determinism verification FAILED")
}

func TestReplayDetectsTamperingJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cinebox.db")
	recordJournal(t, dbPath, "run-1", journalStart, buyOneTicket...)

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE runs SET catalog_hash = 'bogus'")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := runReplayCommand(t, "json", "--journal", dbPath)
	require.Error(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
		Error  *CLIError    `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_DETERMINISM", resp.Error.Code)
	require.Len(t, resp.Data.Runs, 1)
	assert.False(t, resp.Data.Runs[0].Deterministic)
	require.NotEmpty(t, resp.Data.Runs[0].Mismatches)
	assert.Contains(t, resp.Data.Runs[0].Mismatches[0], "catalog_hash")
}
