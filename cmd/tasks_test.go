package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/auth"
	"atelier/config"
	"atelier/db"
)

// TestMain sets up a temporary database shared by the command tests.
func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)

	tempDir, err := os.MkdirTemp("", "atelier-cmd-test-")
	if err != nil {
		panic(err)
	}

	db.Path = filepath.Join(tempDir, "atelier.db")
	if err := db.InitDB(); err != nil {
		panic(err)
	}

	code := m.Run()

	_ = db.CloseDB()
	_ = os.RemoveAll(tempDir)
	os.Exit(code)
}

// cleanDBTables removes all rows from the test database tables.
func cleanDBTables(t *testing.T) {
	t.Helper()
	require.NoError(t, db.GetDB().Exec("DELETE FROM tasks").Error)
	require.NoError(t, db.GetDB().Exec("DELETE FROM sessions").Error)
}

// captureCombinedOutput runs the command and returns everything it printed.
func captureCombinedOutput(cmd *cobra.Command, args ...string) (string, error) {
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// newTestDeps builds command dependencies talking to the given server URL.
func newTestDeps(t *testing.T, serverURL string) *appDeps {
	t.Helper()
	cfg := config.Default()
	cfg.ServerURL = serverURL
	cfg.DownloadDir = t.TempDir()
	return newAppDeps(cfg, auth.NewBroadcaster())
}

// seedSession stores a logged-in session for commands that require one.
func seedSession(t *testing.T) {
	t.Helper()
	repo := db.NewSessionRepository(db.GetDB())
	require.NoError(t, repo.Upsert(context.Background(), &db.Session{
		AccessToken:   "tok-test",
		RefreshCookie: "refresh-test",
		UserID:        "u-1",
		UserName:      "Maya Chen",
		UserEmail:     "maya@example.com",
		UserRole:      "designer",
		SavedAt:       time.Now().UTC().Format(time.RFC3339),
	}))
}

func TestTasksListCmd_RendersServerTasks(t *testing.T) {
	cleanDBTables(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "t-1", "title": "Spring Gala Poster", "status": "open", "priority": "high",
			 "assignee": {"id": "u-2", "name": "Ivo Petrov"}, "updatedAt": "2026-08-20T10:00:00Z"},
			{"id": "t-2", "title": "Menu Redesign", "status": "in_review", "priority": "normal",
			 "updatedAt": "2026-08-21T09:30:00Z"}
		]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rootCmd := createRootCmd(newTestDeps(t, srv.URL))
	output, err := captureCombinedOutput(rootCmd, "tasks", "list")

	require.NoError(t, err)
	assert.Contains(t, output, "Spring Gala Poster")
	assert.Contains(t, output, "Menu Redesign")
	assert.Contains(t, output, "Ivo Petrov")
	assert.Contains(t, output, "in_review")
}

func TestTasksListCmd_RejectsInvalidStatus(t *testing.T) {
	cleanDBTables(t)

	rootCmd := createRootCmd(newTestDeps(t, "http://127.0.0.1:0"))
	output, err := captureCombinedOutput(rootCmd, "tasks", "list", "--status", "finished")

	require.NoError(t, err)
	assert.Contains(t, output, "invalid status")
}

func TestTasksListCmd_CachedReadsLocalRows(t *testing.T) {
	cleanDBTables(t)

	repo := db.NewTaskRepository(db.GetDB())
	require.NoError(t, repo.Put(context.Background(), db.Task{
		ID:        "t-9",
		Title:     "Letterpress Business Cards",
		Status:    "done",
		Priority:  "low",
		Assignee:  "Maya Chen",
		UpdatedAt: "2026-08-01T12:00:00Z",
		Data:      "{}",
	}))

	rootCmd := createRootCmd(newTestDeps(t, "http://127.0.0.1:0"))
	output, err := captureCombinedOutput(rootCmd, "tasks", "list", "--cached")

	require.NoError(t, err)
	assert.Contains(t, output, "Letterpress Business Cards")
	assert.Contains(t, output, "Maya Chen")
}

func TestTasksListCmd_CachedSearchFiltersByTitle(t *testing.T) {
	cleanDBTables(t)

	repo := db.NewTaskRepository(db.GetDB())
	require.NoError(t, repo.Put(context.Background(), db.Task{
		ID: "t-1", Title: "Spring Gala Poster", Status: "open", Data: "{}",
	}))
	require.NoError(t, repo.Put(context.Background(), db.Task{
		ID: "t-2", Title: "Menu Redesign", Status: "open", Data: "{}",
	}))

	rootCmd := createRootCmd(newTestDeps(t, "http://127.0.0.1:0"))
	output, err := captureCombinedOutput(rootCmd, "tasks", "list", "--cached", "--search", "Gala")

	require.NoError(t, err)
	assert.Contains(t, output, "Spring Gala Poster")
	assert.NotContains(t, output, "Menu Redesign")

	output, err = captureCombinedOutput(createRootCmd(newTestDeps(t, "http://127.0.0.1:0")),
		"tasks", "list", "--cached", "--search", "letterhead")
	require.NoError(t, err)
	assert.Contains(t, output, "No cached tasks match the search term.")
}

func TestTasksListCmd_EmptyCacheSuggestsSync(t *testing.T) {
	cleanDBTables(t)

	rootCmd := createRootCmd(newTestDeps(t, "http://127.0.0.1:0"))
	output, err := captureCombinedOutput(rootCmd, "tasks", "list", "--cached")

	require.NoError(t, err)
	assert.Contains(t, output, "atelier sync")
}

func TestTasksShowCmd_PrintsTaskDetails(t *testing.T) {
	cleanDBTables(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/t-1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "t-1", "title": "Spring Gala Poster",
			"description": "A2 poster for the spring fundraiser gala.",
			"status": "in_progress", "priority": "high",
			"requester": {"id": "u-3", "name": "Sam Oduya", "email": "sam@example.com"},
			"assignee": {"id": "u-2", "name": "Ivo Petrov", "email": "ivo@example.com"},
			"tags": ["print", "rush"],
			"createdAt": "2026-08-10T08:00:00Z", "updatedAt": "2026-08-20T10:00:00Z"
		}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rootCmd := createRootCmd(newTestDeps(t, srv.URL))
	output, err := captureCombinedOutput(rootCmd, "tasks", "show", "--id", "t-1")

	require.NoError(t, err)
	assert.Contains(t, output, "Task Information:")
	assert.Contains(t, output, "Spring Gala Poster")
	assert.Contains(t, output, "Sam Oduya")
	assert.Contains(t, output, "Ivo Petrov")
	assert.Contains(t, output, "print, rush")
	assert.Contains(t, output, "A2 poster for the spring fundraiser gala.")
}

func TestTasksShowCmd_NotFound(t *testing.T) {
	cleanDBTables(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	rootCmd := createRootCmd(newTestDeps(t, srv.URL))
	output, err := captureCombinedOutput(rootCmd, "tasks", "show", "--id", "t-404")

	require.NoError(t, err)
	assert.Contains(t, output, "No task found with the specified ID.")
}

func TestTasksSubmitCmd_CreatesTask(t *testing.T) {
	cleanDBTables(t)

	var payload struct {
		Title    string   `json:"title"`
		Priority string   `json:"priority"`
		Tags     []string `json:"tags"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &payload))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "t-7", "title": "Window Display Mockup", "status": "open"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rootCmd := createRootCmd(newTestDeps(t, srv.URL))
	output, err := captureCombinedOutput(rootCmd,
		"tasks", "submit",
		"--title", "Window Display Mockup",
		"--priority", "high",
		"--tags", "retail,seasonal",
	)

	require.NoError(t, err)
	assert.Contains(t, output, "Task t-7 submitted.")
	assert.Equal(t, "Window Display Mockup", payload.Title)
	assert.Equal(t, "high", payload.Priority)
	assert.Equal(t, []string{"retail", "seasonal"}, payload.Tags)
}

func TestTasksSubmitCmd_RejectsInvalidPriority(t *testing.T) {
	cleanDBTables(t)

	rootCmd := createRootCmd(newTestDeps(t, "http://127.0.0.1:0"))
	output, err := captureCombinedOutput(rootCmd, "tasks", "submit", "--title", "Quick fix", "--priority", "asap")

	require.NoError(t, err)
	assert.Contains(t, output, "invalid priority")
}

func TestTasksStatusCmd_UpdatesStatus(t *testing.T) {
	cleanDBTables(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/t-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "t-1", "title": "Spring Gala Poster", "status": "done"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rootCmd := createRootCmd(newTestDeps(t, srv.URL))
	output, err := captureCombinedOutput(rootCmd, "tasks", "status", "--id", "t-1", "--set", "done")

	require.NoError(t, err)
	assert.Contains(t, output, "Task t-1 is now done.")
}

func TestTasksAssignCmd_AssignsUser(t *testing.T) {
	cleanDBTables(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/t-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "t-1", "status": "open", "assignee": {"id": "u-2", "name": "Ivo Petrov"}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rootCmd := createRootCmd(newTestDeps(t, srv.URL))
	output, err := captureCombinedOutput(rootCmd, "tasks", "assign", "--id", "t-1", "--user", "u-2")

	require.NoError(t, err)
	assert.Contains(t, output, "Task t-1 assigned to Ivo Petrov.")
}

func TestTasksExportCmd_WritesJSONFile(t *testing.T) {
	cleanDBTables(t)

	repo := db.NewTaskRepository(db.GetDB())
	require.NoError(t, repo.Put(context.Background(), db.Task{
		ID: "t-1", Title: "Spring Gala Poster", Status: "open", Priority: "high", Data: "{}",
	}))
	require.NoError(t, repo.Put(context.Background(), db.Task{
		ID: "t-2", Title: "Menu Redesign", Status: "done", Priority: "normal", Data: "{}",
	}))

	exportDir := t.TempDir()
	rootCmd := createRootCmd(newTestDeps(t, "http://127.0.0.1:0"))
	output, err := captureCombinedOutput(rootCmd, "tasks", "export", "--dir", exportDir, "--format", "json")

	require.NoError(t, err)
	assert.Contains(t, output, "Exported 2 tasks to")
	assert.Contains(t, output, exportDir)

	entries, err := os.ReadDir(exportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "atelier_tasks_"))
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".json"))

	data, err := os.ReadFile(filepath.Join(exportDir, entries[0].Name()))
	require.NoError(t, err)

	var exported []db.Task
	require.NoError(t, json.Unmarshal(data, &exported))
	assert.Len(t, exported, 2)
}

func TestTasksExportCmd_WritesCSVFile(t *testing.T) {
	cleanDBTables(t)

	repo := db.NewTaskRepository(db.GetDB())
	require.NoError(t, repo.Put(context.Background(), db.Task{
		ID: "t-1", Title: "Gala \"Save the Date\" card, A6", Status: "open", Priority: "low", Data: "{}",
	}))

	exportDir := t.TempDir()
	rootCmd := createRootCmd(newTestDeps(t, "http://127.0.0.1:0"))
	output, err := captureCombinedOutput(rootCmd, "tasks", "export", "--dir", exportDir, "--format", "csv")

	require.NoError(t, err)
	assert.Contains(t, output, "Exported 1 tasks to")

	entries, err := os.ReadDir(exportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(exportDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "id,title,status,priority,assignee,updated_at")
	assert.Contains(t, string(data), "t-1")
}

func TestTasksExportCmd_RejectsUnknownFormat(t *testing.T) {
	cleanDBTables(t)

	rootCmd := createRootCmd(newTestDeps(t, "http://127.0.0.1:0"))
	output, err := captureCombinedOutput(rootCmd, "tasks", "export", "--dir", t.TempDir(), "--format", "xml")

	require.NoError(t, err)
	assert.Contains(t, output, "Invalid export format")
}
