package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/flows-rt-monitor/config"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/flowsrt"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/monitor"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.RunContext(context.Background(), append([]string{"flows-rt-monitor"}, args...))
	return out.String(), err
}

func writePayload(t *testing.T) string {
	t.Helper()
	var probes uint32 = 7
	data, err := flowsrt.Encode(&flowsrt.RealtimeTraffic{
		SnapshotTime:    time.Date(2024, 5, 14, 9, 30, 0, 0, time.UTC),
		HasSnapshotTime: true,
		Timezone:        "UTC",
		StreetTraffic: []flowsrt.StreetTraffic{
			{ID: 11, HasID: true, FromNodeID: 5, OlrCode: "CwRbWyNG", SpeedKMH: 42, ProbeCount: probes, HasProbeCount: true},
			{ID: 12, HasID: true, FromNodeID: 6, SpeedKMH: 17.5},
		},
	})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "sample.pb")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(&config.ConfigError{Type: config.ErrTypeMissingCredentials}))
	assert.Equal(t, 2, exitCode(errors.Join(errors.New("setup"), &config.ConfigError{Type: config.ErrTypeValidation})))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}

func TestDecodeCommand_Table(t *testing.T) {
	out, err := runApp(t, "decode", writePayload(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Records:       2")
	assert.Contains(t, out, "CwRbWyNG")
	assert.Contains(t, out, "17.5")
	lines := strings.Split(out, "\n")
	var rows []string
	for _, l := range lines {
		if strings.HasPrefix(l, "11 ") || strings.HasPrefix(l, "12 ") {
			rows = append(rows, l)
		}
	}
	require.Len(t, rows, 2)
	assert.True(t, strings.HasPrefix(rows[0], "11 "), "olr-keyed record sorts before id-keyed one")
}

func TestDecodeCommand_JSONWithLimit(t *testing.T) {
	out, err := runApp(t, "decode", "--format", "json", "--limit", "1", writePayload(t))
	require.NoError(t, err)
	assert.Contains(t, out, `"street_id": 11`)
	assert.Contains(t, out, `"probe_count": 7`)
	assert.NotContains(t, out, `"street_id": 12`)
}

func TestDecodeCommand_URLNeedsAPIKey(t *testing.T) {
	t.Setenv(config.EnvPrefix+"_API_KEY", "")
	_, err := runApp(t, "decode", "https://feed.test/traffic")
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 2, exitCode(err))
}

func TestDecodeCommand_RequiresArgument(t *testing.T) {
	_, err := runApp(t, "decode")
	assert.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
}

func TestSummaryCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor_log.csv")
	log, err := monitor.CreateLog(path)
	require.NoError(t, err)
	base := time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, log.Append(monitor.LogRow{Timestamp: base, TotalRecords: 10, ChangesDetected: true, NewRecords: 10, DataHash: "a", Iteration: 1}))
	require.NoError(t, log.Append(monitor.LogRow{Timestamp: base.Add(time.Minute), Iteration: 2, Status: monitor.OutcomeFetchError}))
	require.NoError(t, log.Close())

	out, err := runApp(t, "summary", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Total API calls:         2")
	assert.Contains(t, out, "Failed calls:            1")
	assert.Contains(t, out, "Calls with changes:      1")
}

func TestMonitorCommand_MissingAPIKey(t *testing.T) {
	t.Setenv(config.EnvPrefix+"_API_KEY", "")
	_, err := runApp(t, "monitor", "--output-dir", t.TempDir(), "--max-iterations", "1")
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrTypeMissingCredentials, cfgErr.Type)
}

func TestMonitorCommand_UnknownEndpointName(t *testing.T) {
	_, err := runApp(t, "--api-key", "secret", "monitor", "--name", "nope")
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "nope")
}

func TestFetchCommand_FiltersAndExports(t *testing.T) {
	data, err := os.ReadFile(writePayload(t))
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(flowsrt.APIKeyHeader) != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	dir := t.TempDir()
	out, err := runApp(t, "--api-key", "secret", "fetch",
		"--endpoint", srv.URL+"/traffic",
		"--output-dir", dir,
		"--min-speed", "20",
		"--format", "csv",
		"--debug",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "CSV written:")

	csvFiles, err := filepath.Glob(filepath.Join(dir, "traffic_*.csv"))
	require.NoError(t, err)
	require.Len(t, csvFiles, 1)
	content, err := os.ReadFile(csvFiles[0])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2, "only the 42 km/h segment passes the filter")
	assert.True(t, strings.HasPrefix(lines[1], "11,5,42,CwRbWyNG,"))

	jsonFiles, err := filepath.Glob(filepath.Join(dir, "traffic_*.json"))
	require.NoError(t, err)
	assert.Empty(t, jsonFiles)

	raw, err := filepath.Glob(filepath.Join(dir, "raw_*.pb"))
	require.NoError(t, err)
	assert.Len(t, raw, 1)
}

func TestFetchCommand_UnknownFormat(t *testing.T) {
	_, err := runApp(t, "--api-key", "secret", "fetch", "--format", "xml")
	assert.Equal(t, 2, exitCode(err))
}
