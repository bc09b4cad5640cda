package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/quocvuong92/pve-cli/internal/alias"
	"github.com/quocvuong92/pve-cli/internal/auth"
	"github.com/quocvuong92/pve-cli/internal/config"
	"github.com/quocvuong92/pve-cli/internal/constants"
	"github.com/quocvuong92/pve-cli/internal/display"
)

const (
	testToken  = "root@pam!cli=4d9a0e5c-3f0a-4b7e-9d55-2f3c9e0f6a11"
	schemaFile = "../internal/schema/testdata/apidoc.json"
)

func TestMain(m *testing.M) {
	display.DisableColors()
	display.Quiet = true
	os.Exit(m.Run())
}

// pveServer is a minimal Proxmox VE endpoint recording what it receives
type pveServer struct {
	*httptest.Server

	mu       sync.Mutex
	auth     []string
	requests []string
}

func newPVEServer(t *testing.T) *pveServer {
	t.Helper()
	s := &pveServer{}
	s.Server = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.auth = append(s.auth, r.Header.Get("Authorization"))
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.Method + " " + r.URL.Path {
		case "GET /api2/json/nodes":
			fmt.Fprint(w, `{"data":[{"node":"pve2","status":"online"},{"node":"pve1","status":"online"}]}`)
		case "GET /api2/json/version":
			fmt.Fprint(w, `{"data":{"release":"8.2","version":"8.2.4"}}`)
		default:
			w.WriteHeader(http.StatusNotImplemented)
			fmt.Fprint(w, `{"data":null}`)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *pveServer) host() string {
	return strings.TrimPrefix(s.URL, "https://")
}

func (s *pveServer) authHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.auth...)
}

// isolate keeps the user's environment and config files out of the test
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, env := range []string{config.EnvHost, config.EnvPort, config.EnvAPIToken, config.EnvInsecure, config.EnvDataDir, config.EnvSchemaFile} {
		t.Setenv(env, "")
	}
	return t.TempDir()
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewApp().newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func connArgs(srv *pveServer, dataDir string, args ...string) []string {
	return append([]string{
		"--host", srv.host(),
		"--insecure",
		"--api-token", testToken,
		"--data-dir", dataDir,
		"--schema-file", schemaFile,
	}, args...)
}

func TestOneShot_List(t *testing.T) {
	dataDir := isolate(t)
	srv := newPVEServer(t)

	out, _, err := runCLI(t, connArgs(srv, dataDir, "ls", "/nodes")...)
	if err != nil {
		t.Fatalf("ls error = %v", err)
	}
	if want := "Dr---        pve1\nDr---        pve2\n"; out != want {
		t.Errorf("ls /nodes = %q, want %q", out, want)
	}

	for _, h := range srv.authHeaders() {
		if h != "PVEAPIToken="+testToken {
			t.Errorf("Authorization = %q", h)
		}
	}
}

func TestOneShot_GetJSON(t *testing.T) {
	dataDir := isolate(t)
	srv := newPVEServer(t)

	out, _, err := runCLI(t, connArgs(srv, dataDir, "get", "/version", "-o", "json")...)
	if err != nil {
		t.Fatalf("get error = %v", err)
	}
	if want := `{"release":"8.2","version":"8.2.4"}` + "\n"; out != want {
		t.Errorf("get /version = %q, want %q", out, want)
	}
}

func TestOneShot_Usage(t *testing.T) {
	dataDir := isolate(t)
	srv := newPVEServer(t)

	out, _, err := runCLI(t, connArgs(srv, dataDir, "usage", "/nodes/pve1/qemu", "-c", "create")...)
	if err != nil {
		t.Fatalf("usage error = %v", err)
	}
	if want := "USAGE: create /nodes/pve1/qemu vmid:<integer> [OPTIONS]\n"; out != want {
		t.Errorf("usage = %q, want %q", out, want)
	}
}

func TestOneShot_Errors(t *testing.T) {
	dataDir := isolate(t)
	srv := newPVEServer(t)

	_, _, err := runCLI(t, "--data-dir", dataDir, "ls", "/")
	if !errors.Is(err, config.ErrHostNotFound) {
		t.Errorf("missing host error = %v, want ErrHostNotFound", err)
	}

	_, _, err = runCLI(t, connArgs(srv, dataDir, "get", "/bogus")...)
	if err == nil || !strings.Contains(err.Error(), "no such resource '/bogus'") {
		t.Errorf("get /bogus error = %v", err)
	}

	_, _, err = runCLI(t, "--host", srv.host(), "--insecure", "--data-dir", dataDir, "--schema-file", schemaFile, "ls", "/")
	if !errors.Is(err, auth.ErrNotLoggedIn) {
		t.Errorf("missing token error = %v, want ErrNotLoggedIn", err)
	}
}

func TestShell_Script(t *testing.T) {
	dataDir := isolate(t)
	srv := newPVEServer(t)

	script := filepath.Join(t.TempDir(), "script.txt")
	content := strings.Join([]string{
		"# nodes first",
		"ls /nodes",
		"get /version -o json",
		"quit",
		"ls /",
	}, "\n")
	if err := os.WriteFile(script, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, connArgs(srv, dataDir, "sh", "--script", script, "--only-result")...)
	if err != nil {
		t.Fatalf("sh error = %v", err)
	}
	want := "Dr---        pve1\nDr---        pve2\n" + `{"release":"8.2","version":"8.2.4"}` + "\n"
	if out != want {
		t.Errorf("script output = %q, want %q", out, want)
	}

	// a new alias file gets the system aliases
	store := alias.NewStore(filepath.Join(dataDir, constants.AliasFileName))
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	if !store.Exists("nodes") {
		t.Error("system aliases should be saved on first run")
	}
	if _, err := os.Stat(filepath.Join(dataDir, constants.HistoryFileName)); err != nil {
		t.Errorf("history file should exist: %v", err)
	}
}

func TestShell_Banner(t *testing.T) {
	dataDir := isolate(t)
	srv := newPVEServer(t)

	script := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(script, nil, 0600); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, connArgs(srv, dataDir, "sh", "-s", script)...)
	if err != nil {
		t.Fatalf("sh error = %v", err)
	}
	for _, want := range []string{
		"pve-cli for Proxmox VE",
		"Type '<TAB>' for completion word",
		"Type 'help', 'quit' to close the application.",
		"Initialization metadata from file (apidoc.json)...",
		"ms\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("banner missing %q:\n%s", want, out)
		}
	}
}

func TestShell_RemovedSystemAliasStaysRemoved(t *testing.T) {
	dataDir := isolate(t)
	srv := newPVEServer(t)

	script := filepath.Join(t.TempDir(), "remove.txt")
	if err := os.WriteFile(script, []byte("alias --remove --name nodes\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, connArgs(srv, dataDir, "sh", "-r", "-s", script)...); err != nil {
		t.Fatal(err)
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(empty, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, connArgs(srv, dataDir, "sh", "-r", "-s", empty)...); err != nil {
		t.Fatal(err)
	}

	store := alias.NewStore(filepath.Join(dataDir, constants.AliasFileName))
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	if store.Exists("nodes") {
		t.Error("a removed system alias should not come back")
	}
	if !store.Exists("version") {
		t.Error("other system aliases should be kept")
	}
}

func TestLoginLogoutStatus(t *testing.T) {
	dataDir := isolate(t)

	if _, _, err := runCLI(t, "--data-dir", dataDir, "login", testToken); err != nil {
		t.Fatalf("login error = %v", err)
	}
	token, err := auth.LoadToken(dataDir)
	if err != nil {
		t.Fatalf("LoadToken() error = %v", err)
	}
	if token.String() != testToken {
		t.Errorf("stored token = %q", token.String())
	}

	out, _, err := runCLI(t, "--data-dir", dataDir, "status")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Token: root@pam!cli") || strings.Contains(out, "4d9a0e5c") {
		t.Errorf("status should show the token id only:\n%s", out)
	}

	out, _, err = runCLI(t, "--data-dir", dataDir, "logout")
	if err != nil || !strings.Contains(out, "Successfully logged out.") {
		t.Errorf("logout = %q, %v", out, err)
	}
	if auth.IsLoggedIn(dataDir) {
		t.Error("token should be deleted")
	}

	if _, _, err := runCLI(t, "--data-dir", dataDir, "login", "root@pam=nope"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("invalid token error = %v", err)
	}
}

func TestLogin_ChecksTokenWithHost(t *testing.T) {
	dataDir := isolate(t)
	srv := newPVEServer(t)

	out, _, err := runCLI(t, "--host", srv.host(), "--insecure", "--data-dir", dataDir, "login", testToken)
	if err != nil {
		t.Fatalf("login error = %v", err)
	}
	if !strings.Contains(out, "Connected to Proxmox VE 8.2.4") {
		t.Errorf("login output = %q", out)
	}
	if got := srv.authHeaders(); len(got) != 1 || got[0] != "PVEAPIToken="+testToken {
		t.Errorf("Authorization headers = %v", got)
	}
}

func TestConfigInit(t *testing.T) {
	isolate(t)
	want := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), constants.AppName, config.ConfigFileName)

	out, _, err := runCLI(t, "config", "init")
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if strings.TrimSpace(out) != want {
		t.Errorf("config init = %q, want %q", out, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, _, err := runCLI(t, "config", "init"); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second config init error = %v", err)
	}
}
