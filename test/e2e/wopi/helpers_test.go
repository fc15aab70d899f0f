package wopi_test

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/immor75/MeetingsDecisions/pkg/wopisdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for the WOPI host end-to-end tests.
 * The image is built once in TestMain; each test gets a fresh container.
 */

const (
	testImageName = "meetingsdecisions-wopihost-test:latest"

	adminAPIKey = "e2e-admin-key"
	tokenSecret = "e2e-token-secret-0123456789abcdef"
)

var sampleDocument = []byte("PK\x03\x04 e2e decision document")

// TestMain builds the Docker image once before all tests and removes it
// afterwards. The suite is skipped under -short or without docker.
func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Short() {
		fmt.Fprintln(os.Stdout, "skipping e2e tests in short mode")
		os.Exit(0)
	}
	if _, err := exec.LookPath("docker"); err != nil {
		fmt.Fprintln(os.Stdout, "skipping e2e tests: docker not found")
		os.Exit(0)
	}

	fmt.Fprintf(os.Stdout, "Building WOPI host Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up WOPI host Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/wopihost/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// setupContainer starts the host and returns a client for it. WopiSrc in
// session responses points at the mapped port so the SDK can follow it.
func setupContainer(t *testing.T, extraEnv map[string]string) *wopisdk.Client {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"ENV":               "test",
		"LOG_LEVEL":         "info",
		"ADMIN_API_KEY":     adminAPIKey,
		"WOPI_TOKEN_SECRET": tokenSecret,
		"ARTIFACT_SOURCE":   "sqlite",
		// Discovery is unreachable inside the container; the fallback URL is used.
		"COLLABORA_URL": "http://127.0.0.1:1",
		// Tests issue many rapid requests from one address.
		"RATELIMIT_WOPI_REQUESTS":        "10000",
		"RATELIMIT_WOPI_BURST":           "10000",
		"RATELIMIT_WOPI_CLIENT_REQUESTS": "100000",
		"RATELIMIT_WOPI_CLIENT_BURST":    "100000",
		"RATELIMIT_ADMIN_REQUESTS":       "10000",
		"RATELIMIT_ADMIN_BURST":          "10000",
	}
	for k, v := range extraEnv {
		env[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return wopisdk.NewClient(fmt.Sprintf("http://%s:%s", host, mappedPort.Port()), adminAPIKey)
}

// openSession uploads sampleDocument and opens an editor session on it.
func openSession(t *testing.T, client *wopisdk.Client, role string) (*wopisdk.SessionResponse, *wopisdk.File) {
	t.Helper()

	_, err := client.PutArtifact(t.Context(), "e2e-doc", "Decision.docx", "secretary-1", sampleDocument)
	require.NoError(t, err)

	sess, err := client.CreateSession(t.Context(), wopisdk.CreateSessionRequest{
		ArtifactID:  "e2e-doc",
		UserID:      "secretary-1",
		DisplayName: "Secretary",
		Role:        role,
	})
	require.NoError(t, err)

	// The container does not know its mapped port; address it directly.
	return sess, client.FileAt(sess.FileID, sess.AccessToken)
}
