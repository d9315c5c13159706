//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/agrunetcore/farmhub/config"
	"github.com/agrunetcore/farmhub/internal/server"
)

const (
	serverPort = 18080
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dataDir, err := os.MkdirTemp("", "farmhub-e2e-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create data dir: %v\n", err)
		os.Exit(1)
	}

	os.Setenv("JWT_SECRET", "e2e-secret")
	os.Setenv("DATA_DIR", dataDir)
	os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))

	srv, err := startServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = os.RemoveAll(dataDir)
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown()
		_ = os.RemoveAll(dataDir)
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown()
	_ = os.RemoveAll(dataDir)
	os.Exit(code)
}

func startServer() (*server.Server, error) {
	cfg := config.LoadConfig()
	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server stopped: %v\n", err)
		}
	}()
	return srv, nil
}

func waitForHealth(ctx context.Context, url string) error {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			resp, err := http.Get(url)
			if err != nil {
				continue
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
	}
}

func TestRegistrationLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	email := fmt.Sprintf("user_%d@example.com", time.Now().UnixNano())

	token, err := signUp(t, baseURL, "E2E Tester", email, "testpass123")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if err := registerFarmer(t, baseURL, token, "Maryan Ali"); err != nil {
		t.Fatalf("register farmer: %v", err)
	}

	farmers, err := listFarmers(t, baseURL, token)
	if err != nil {
		t.Fatalf("list farmers: %v", err)
	}
	found := false
	for _, f := range farmers {
		if f.Name == "Maryan Ali" {
			found = true
		}
	}
	if !found {
		t.Fatalf("registered farmer missing from collection: %v", farmers)
	}

	csv, err := exportFarmers(t, baseURL, token)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(csv, `"Maryan Ali"`) {
		t.Fatalf("expected registered farmer in export, got %q", csv)
	}
}

type authResponse struct {
	Token string `json:"token"`
}

type farmerRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func signUp(t *testing.T, baseURL, name, email, password string) (string, error) {
	t.Helper()

	payload := map[string]string{"name": name, "email": email, "password": password}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	resp, err := http.Post(baseURL+"/auth/signup", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("signup status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed authResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.Token == "" {
		return "", fmt.Errorf("missing token in signup response")
	}
	return parsed.Token, nil
}

func registerFarmer(t *testing.T, baseURL, token, name string) error {
	t.Helper()

	payload := map[string]string{
		"name":     name,
		"email":    "maryan@example.com",
		"phone":    "0911-000000",
		"subcity":  "Yeka",
		"farmName": "Sunrise Farm",
		"farmType": "Livestock",
		"farmSize": "4.5",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/farmers", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("register status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func listFarmers(t *testing.T, baseURL, token string) ([]farmerRecord, error) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/farmers", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list status %d", resp.StatusCode)
	}

	var farmers []farmerRecord
	if err := json.NewDecoder(resp.Body).Decode(&farmers); err != nil {
		return nil, err
	}
	return farmers, nil
}

func exportFarmers(t *testing.T, baseURL, token string) (string, error) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/farmers/export", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("export status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		return "", fmt.Errorf("unexpected content type %q", ct)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
