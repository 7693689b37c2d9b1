package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
)

// execute runs the root command with args against the given API base URL.
func execute(t *testing.T, apiURL string, args ...string) (string, error) {
	t.Helper()

	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)

	full := append([]string{"--url", apiURL, "--token-file", filepath.Join(t.TempDir(), "token")}, args...)
	root.SetArgs(full)

	err := root.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1}))

	expected := "{\n  \"a\": 1\n}\n"
	if buf.String() != expected {
		t.Fatalf("unexpected json output:\n%s", buf.String())
	}
}

func TestHashPasswordCmd(t *testing.T) {
	orig := bcryptGenerate
	bcryptGenerate = func(p []byte, cost int) ([]byte, error) {
		return []byte("hashed-value"), nil
	}
	defer func() { bcryptGenerate = orig }()

	cmd := hashPasswordCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"secret"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("command failed: %v", err)
	}

	if strings.TrimSpace(out.String()) != "hashed-value" {
		t.Fatalf("expected hashed-value, got %q", out.String())
	}
}

func TestLoginSavesTokenAndListUsesIt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			var req dto.CredentialsRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.Password != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "login failed", Message: "invalid credentials"})
				return
			}
			json.NewEncoder(w).Encode(dto.LoginResponse{Token: "tok-123", User: &dto.UserResponse{ID: "u1", Username: req.Username}})
		case "/api/v1/transactions":
			if r.Header.Get("Authorization") != "Bearer tok-123" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(dto.LedgerResponse{Version: 1, Transactions: []dto.TransactionResponse{{
				ID: "t1", Description: "Rent", Amount: decimal.NewFromInt(400), Type: "expense", Date: "2024-02-01", Category: "Housing",
			}}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tokenPath := filepath.Join(t.TempDir(), "nested", "token")

	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--url", srv.URL, "--token-file", tokenPath, "login", "alice", "-p", "wrong"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")

	root = rootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--url", srv.URL, "--token-file", tokenPath, "login", "alice", "-p", "secret"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Logged in as alice")

	saved, err := os.ReadFile(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", strings.TrimSpace(string(saved)))

	out.Reset()
	root = rootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--url", srv.URL, "--token-file", tokenPath, "list"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Rent")
	assert.Contains(t, out.String(), "-400.00")
}

func TestAuthenticatedCommandsNeedLogin(t *testing.T) {
	t.Setenv("POCKETLEDGER_TOKEN", "")
	token = ""

	_, err := execute(t, "http://127.0.0.1:1", "summary")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestAddSendsTransaction(t *testing.T) {
	var got dto.TransactionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/transactions", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(dto.TransactionResponse{
			ID: "t9", Description: got.Description, Amount: *got.Amount, Type: got.Type, Date: got.Date, Category: got.Category,
		})
	}))
	defer srv.Close()

	out, err := execute(t, srv.URL, "--token", "tok", "add", "-d", "Coffee", "-a", "3.5", "-c", "Food", "--date", "2024-03-09")
	require.NoError(t, err)

	assert.Equal(t, "Coffee", got.Description)
	require.NotNil(t, got.Amount)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("3.5")))
	assert.Equal(t, "expense", got.Type)
	assert.Equal(t, "2024-03-09", got.Date)
	assert.Contains(t, out, "Added expense 3.50 Coffee")
}

func TestAddRejectsBadAmountLocally(t *testing.T) {
	_, err := execute(t, "http://127.0.0.1:1", "--token", "tok", "add", "-d", "Coffee", "-a", "abc")
	assert.Error(t, err)
}

func TestPrintCalendar(t *testing.T) {
	cal := &dto.CalendarResponse{Month: "2024-02"}
	for d := 1; d <= 29; d++ {
		day := dto.CalendarDayResponse{Date: time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), Indicator: "none"}
		if d == 1 {
			day.Indicator = "expense-only"
		}
		if d == 15 {
			day.Indicator = "income-only"
		}
		cal.Days = append(cal.Days, day)
	}

	var buf bytes.Buffer
	require.NoError(t, printCalendar(&buf, cal))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "February 2024", lines[0])
	// 1 February 2024 was a Thursday.
	assert.True(t, strings.HasPrefix(lines[2], strings.Repeat(" ", 15)+"  1-"), "got %q", lines[2])
	assert.Contains(t, buf.String(), "15+")
}

func TestImportCmdUsesConfiguredStorage(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "import.db"))
	t.Setenv("BCRYPT_COST", "4")

	export := `{
		"users": [{"username": "alice", "password": "pw"}],
		"budgets": [
			{"userId": "alice", "transactions": [
				{"id": "1", "description": "Salary", "amount": 1000, "type": "income", "date": "2024-01-31T10:00:00.000Z", "category": "Salary", "userId": "alice"}
			]},
			{"userId": "ghost", "transactions": []}
		]
	}`
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o600))

	out, err := execute(t, "http://unused", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 users and 1 transactions")
	assert.Contains(t, out, "Skipped budget of unknown user ghost")

	out, err = execute(t, "http://unused", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped existing user alice")
}

func TestMigrateRegistersSubcommands(t *testing.T) {
	cmd := migrateCmd()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down"}, names)
}
