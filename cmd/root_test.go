package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/royal-pomodoro/internal/domain"
)

// testEnv points every command at a private database and config file.
type testEnv struct {
	t      *testing.T
	db     string
	config string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	return &testEnv{
		t:      t,
		db:     filepath.Join(dir, "royal.db"),
		config: filepath.Join(dir, "config.toml"),
	}
}

// run executes the root command with args and returns stdout.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	resetFlags(rootCmd)

	bufOut := new(bytes.Buffer)
	bufErr := new(bytes.Buffer)
	rootCmd.SetOut(bufOut)
	rootCmd.SetErr(bufErr)
	rootCmd.SetArgs(append([]string{"--db", e.db, "--config", e.config}, args...))

	err := rootCmd.Execute()
	_ = cleanupServices()
	return bufOut.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "royal %s", strings.Join(args, " "))
	return out
}

func (e *testEnv) addTask(title string, extra ...string) *domain.Task {
	e.t.Helper()
	out := e.mustRun(append([]string{"--json", "task", "add", title}, extra...)...)
	var task domain.Task
	require.NoError(e.t, json.Unmarshal([]byte(out), &task))
	return &task
}

// resetFlags restores every flag to its default between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestRootCmd_Structure(t *testing.T) {
	assert.Equal(t, "royal", rootCmd.Use)

	for _, name := range []string{"db", "json", "config", "log-level", "log-format"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "--%s flag", name)
	}

	want := []string{"start", "task", "stats", "chart", "settings", "export", "import", "clear", "mcp"}
	var got []string
	for _, c := range rootCmd.Commands() {
		got = append(got, c.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name)
	}
}

func TestRootCmd_Help(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("--help")
	assert.Contains(t, out, "Royal Pomodoro")
}

func TestConfigureLogging(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, configureLogging("", "json", &buf))
	require.NoError(t, configureLogging("debug", "console", &buf))
	assert.Error(t, configureLogging("loud", "json", &buf))
	assert.Error(t, configureLogging("info", "xml", &buf))
}

func TestTaskCommands(t *testing.T) {
	env := newTestEnv(t)

	report := env.addTask("Write report", "--priority", "high", "--estimate", "2")
	assert.Equal(t, domain.PriorityHigh, report.Priority)
	assert.Equal(t, 2, report.EstimatedPomodoros)
	env.addTask("Review PR", "-p", "low")

	out := env.mustRun("task", "list")
	assert.Contains(t, out, "Tasks (2)")
	assert.Contains(t, out, "Write report")

	out = env.mustRun("task", "list", "--priority", "low")
	assert.Contains(t, out, "Review PR")
	assert.NotContains(t, out, "Write report")

	out = env.mustRun("task", "pomodoro", "report")
	assert.Contains(t, out, "1/2")
	out = env.mustRun("task", "pomodoro", report.ID)
	assert.Contains(t, out, "2/2")

	out = env.mustRun("task", "list", "--hide-done")
	assert.NotContains(t, out, "Write report")

	out = env.mustRun("task", "toggle", report.ID[:8])
	assert.Contains(t, out, "reopened")
	assert.Contains(t, out, "0/2")

	out = env.mustRun("task", "edit", "Review", "--title", "Review PR #42", "--estimate", "3")
	assert.Contains(t, out, "Review PR #42 (0/3)")

	out = env.mustRun("task", "done", "Review")
	assert.Contains(t, out, "3/3")

	out = env.mustRun("--json", "task", "stats")
	assert.Contains(t, out, `"completed": 1`)

	env.mustRun("task", "delete", report.ID)
	out = env.mustRun("task", "list")
	assert.Contains(t, out, "Tasks (1)")

	_, err := env.run("task", "done", "nothing-like-this-zzz")
	assert.Error(t, err)
}

func TestTaskAdd_RequiresTitleWithoutTerminal(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("task", "add")
	assert.Error(t, err)
}

func TestTaskAdd_RejectsBadPriority(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("task", "add", "Write report", "--priority", "urgent")
	assert.ErrorIs(t, err, domain.ErrInvalidPriority)
}

func TestSettingsCommands(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("settings")
	assert.Contains(t, out, "Work:           25m")

	out = env.mustRun("settings", "set", "work", "50", "sound", "off", "theme", "gold")
	assert.Contains(t, out, "Work:           50m")
	assert.Contains(t, out, "Sound:          off")
	assert.Contains(t, out, "Theme:          gold")

	out = env.mustRun("settings", "theme")
	assert.Contains(t, out, "Theme: dark")

	_, err := env.run("settings", "set", "work", "0")
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
	_, err = env.run("settings", "set", "work")
	assert.Error(t, err)

	out = env.mustRun("settings", "reset")
	assert.Contains(t, out, "Work:           25m")
}

func TestApplySetting(t *testing.T) {
	tests := []struct {
		key, value string
		wantErr    bool
		check      func(t *testing.T, p domain.SettingsPatch)
	}{
		{"work", "30", false, func(t *testing.T, p domain.SettingsPatch) { assert.Equal(t, 30, *p.WorkDuration) }},
		{"long-break", "20", false, func(t *testing.T, p domain.SettingsPatch) { assert.Equal(t, 20, *p.LongBreakDuration) }},
		{"auto-breaks", "no", false, func(t *testing.T, p domain.SettingsPatch) { assert.False(t, *p.AutoStartBreaks) }},
		{"notifications", "true", false, func(t *testing.T, p domain.SettingsPatch) { assert.True(t, *p.NotificationsEnabled) }},
		{"theme", "Royal", false, func(t *testing.T, p domain.SettingsPatch) { assert.Equal(t, domain.ThemeRoyal, *p.Theme) }},
		{"theme", "neon", true, nil},
		{"sessions", "four", true, nil},
		{"sound", "maybe", true, nil},
		{"volume", "3", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			var patch domain.SettingsPatch
			err := applySetting(&patch, tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, patch)
		})
	}
}

func TestStatsAndChartCommands(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("stats")
	assert.Contains(t, out, "Score")

	out = env.mustRun("stats", "score")
	assert.Contains(t, out, "Productivity score: 0/100")

	out = env.mustRun("stats", "recompute")
	assert.Contains(t, out, "Rebuilt from 0 sessions")

	out = env.mustRun("--json", "chart", "--period", "week")
	var data domain.ChartData
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	assert.Len(t, data.Labels, 7)

	out = env.mustRun("chart", "--period", "year", "--table")
	assert.Contains(t, out, "Focus this year")

	_, err := env.run("chart", "--period", "decade")
	assert.Error(t, err)
}

func TestExportImportClear(t *testing.T) {
	env := newTestEnv(t)
	env.addTask("Write report")
	env.mustRun("settings", "set", "break", "10")

	backup := filepath.Join(t.TempDir(), "backup.yaml")
	env.mustRun("export", "--out", backup)
	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Write report")
	assert.Contains(t, string(data), "breakDuration: 10")

	env.mustRun("clear", "--yes")
	out := env.mustRun("task", "list")
	assert.Contains(t, out, "No tasks found.")

	env.mustRun("import", backup)
	out = env.mustRun("task", "list")
	assert.Contains(t, out, "Write report")
	out = env.mustRun("settings", "show")
	assert.Contains(t, out, "Break:          10m")

	out = env.mustRun("export")
	assert.Contains(t, out, `"exportDate"`)
}

func TestClear_RefusesWithoutConfirmation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("clear")
	assert.Error(t, err)
}
