//go:build !windows && !plan9

package cmdtest

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var startedRe = regexp.MustCompile(`^Server started at http://localhost:(\d+)$`)

// TestServeInterrupt starts devserve, fetches some files then stops
// it with SIGINT as Ctrl-C would.
func TestServeInterrupt(t *testing.T) {
	dir := createTestData(t)
	command := devserveCommand("", "--host", "127.0.0.1", "--port", "0", "--dir", dir)
	stdout, err := command.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, command.Start())
	defer func() {
		_ = command.Process.Kill()
	}()

	// Read the port from the first line
	lines := bufio.NewReader(stdout)
	line, err := lines.ReadString('\n')
	require.NoError(t, err)
	match := startedRe.FindStringSubmatch(strings.TrimSuffix(line, "\n"))
	require.NotNil(t, match, "unexpected first line %q", line)
	base := fmt.Sprintf("http://127.0.0.1:%s", match[1])

	for _, test := range []struct {
		path        string
		status      int
		contentType string
		size        int
	}{
		{"/index.html", http.StatusOK, "text/html", 200},
		{"/app.js", http.StatusOK, "application/javascript", 50},
		{"/missing.txt", http.StatusNotFound, "", -1},
	} {
		resp, err := http.Get(base + test.path)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, test.status, resp.StatusCode, test.path)
		if test.size >= 0 {
			assert.Equal(t, test.contentType, resp.Header.Get("Content-Type"), test.path)
			assert.Len(t, body, test.size, test.path)
		}
	}

	require.NoError(t, command.Process.Signal(os.Interrupt))

	rest, err := io.ReadAll(lines)
	require.NoError(t, err)
	assert.Equal(t, "\nShutting down server...\n", string(rest))

	done := make(chan error, 1)
	go func() {
		done <- command.Wait()
	}()
	select {
	case err := <-done:
		assert.NoError(t, err, "expecting exit status 0")
	case <-time.After(30 * time.Second):
		t.Fatal("devserve didn't exit after SIGINT")
	}
}
