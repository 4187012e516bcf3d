package serve

import (
	"bytes"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/localdev/devserve/fs"
	libhttp "github.com/localdev/devserve/lib/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	indexHTML    = bytes.Repeat([]byte("<p>hello</p>"), 17)[:200]
	appJS        = bytes.Repeat([]byte("x"), 50)
	expectedTime = time.Date(2000, 1, 2, 3, 4, 5, 0, time.UTC)
)

// writeFile writes a file under dir making directories as needed
func writeFile(t *testing.T, dir, name string, data []byte) {
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0777))
	require.NoError(t, os.WriteFile(p, data, 0666))
	require.NoError(t, os.Chtimes(p, expectedTime, expectedTime))
}

// newTestFiles makes a tree like this
//
//	secret.txt
//	root/index.html
//	root/app.js
//	root/data.unknownext
//	root/three/a.txt
//	root/three/B.txt
//	root/three/sub/
//	root/withindex/index.htm
func newTestFiles(t *testing.T) *Files {
	dir := t.TempDir()
	writeFile(t, dir, "secret.txt", []byte("secret"))
	root := filepath.Join(dir, "root")
	writeFile(t, root, "index.html", indexHTML)
	writeFile(t, root, "app.js", appJS)
	writeFile(t, root, "data.unknownext", []byte("data"))
	writeFile(t, root, "three/a.txt", []byte("a"))
	writeFile(t, root, "three/B.txt", []byte("B"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "three", "sub"), 0777))
	writeFile(t, root, "withindex/index.htm", []byte("index.htm"))

	mimes, err := fs.NewMimeTable(nil)
	require.NoError(t, err)
	f, err := NewFiles(root, mimes, testTemplate(t))
	require.NoError(t, err)
	return f
}

func testTemplate(t *testing.T) *template.Template {
	tpl, err := libhttp.GetTemplate()
	require.NoError(t, err)
	return tpl
}

func doRequest(f *Files, method, target string) (*http.Response, string) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(method, target, nil)
	f.ServeHTTP(w, r)
	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestNewFilesErrors(t *testing.T) {
	mimes, err := fs.NewMimeTable(nil)
	require.NoError(t, err)

	_, err = NewFiles(filepath.Join(t.TempDir(), "notfound"), mimes, testTemplate(t))
	assert.True(t, os.IsNotExist(err))

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0666))
	_, err = NewFiles(file, mimes, testTemplate(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestServeFiles(t *testing.T) {
	f := newTestFiles(t)
	for _, test := range []struct {
		URL         string
		Method      string
		Status      int
		ContentType string
		Body        string
	}{
		{
			URL:         "/index.html",
			Status:      http.StatusOK,
			ContentType: "text/html",
			Body:        string(indexHTML),
		},
		{
			URL:         "/app.js",
			Status:      http.StatusOK,
			ContentType: "application/javascript",
			Body:        string(appJS),
		},
		{
			URL:         "/app.js",
			Method:      "HEAD",
			Status:      http.StatusOK,
			ContentType: "application/javascript",
			Body:        "",
		},
		{
			URL:         "/data.unknownext",
			Status:      http.StatusOK,
			ContentType: "application/octet-stream",
			Body:        "data",
		},
		{
			URL:         "/three/a.txt",
			Status:      http.StatusOK,
			ContentType: "text/plain",
			Body:        "a",
		},
		{
			URL:    "/missing.txt",
			Status: http.StatusNotFound,
			Body:   "File not found\n",
		},
		{
			URL:    "/three/missing/",
			Status: http.StatusNotFound,
			Body:   "File not found\n",
		},
		{
			URL:    "/app.js/",
			Status: http.StatusNotFound,
			Body:   "File not found\n",
		},
		{
			URL:    "/../secret.txt",
			Status: http.StatusNotFound,
			Body:   "File not found\n",
		},
		{
			URL:    "/three/../../secret.txt",
			Status: http.StatusNotFound,
			Body:   "File not found\n",
		},
		{
			URL:    "/%2e%2e/secret.txt",
			Status: http.StatusNotFound,
			Body:   "File not found\n",
		},
		{
			URL:    "/app.js",
			Method: "POST",
			Status: http.StatusMethodNotAllowed,
			Body:   "Method Not Allowed\n",
		},
	} {
		method := test.Method
		if method == "" {
			method = "GET"
		}
		what := method + " " + test.URL
		resp, body := doRequest(f, method, "http://localhost:8000"+test.URL)
		assert.Equal(t, test.Status, resp.StatusCode, what)
		assert.Equal(t, test.Body, body, what)
		if test.ContentType != "" {
			assert.Equal(t, test.ContentType, resp.Header.Get("Content-Type"), what)
		}
	}
}

func TestServeFileHeaders(t *testing.T) {
	f := newTestFiles(t)
	resp, body := doRequest(f, "GET", "http://localhost:8000/index.html")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body, 200)
	assert.Equal(t, "200", resp.Header.Get("Content-Length"))
	assert.Equal(t, "bytes", resp.Header.Get("Accept-Ranges"))
	assert.Equal(t, "Sun, 02 Jan 2000 03:04:05 GMT", resp.Header.Get("Last-Modified"))

	resp, body = doRequest(f, "HEAD", "http://localhost:8000/app.js")
	assert.Equal(t, "50", resp.Header.Get("Content-Length"))
	assert.Equal(t, "", body)
}

func TestServeFileRange(t *testing.T) {
	f := newTestFiles(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "http://localhost:8000/three/a.txt", nil)
	r.Header.Add("Range", "bytes=0-0")
	f.ServeHTTP(w, r)
	resp := w.Result()
	assert.Equal(t, http.StatusPartialContent, resp.StatusCode)
	assert.Equal(t, "bytes 0-0/1", resp.Header.Get("Content-Range"))
}

func TestServeNotModified(t *testing.T) {
	f := newTestFiles(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "http://localhost:8000/app.js", nil)
	r.Header.Add("If-Modified-Since", "Sun, 02 Jan 2000 03:04:05 GMT")
	f.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotModified, w.Result().StatusCode)
}

func TestServeDirIndex(t *testing.T) {
	f := newTestFiles(t)

	resp, body := doRequest(f, "GET", "http://localhost:8000/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html", resp.Header.Get("Content-Type"))
	assert.Equal(t, string(indexHTML), body)

	resp, body = doRequest(f, "GET", "http://localhost:8000/withindex/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "index.htm", body)
}

func TestServeDirRedirect(t *testing.T) {
	f := newTestFiles(t)

	resp, _ := doRequest(f, "GET", "http://localhost:8000/three")
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "three/", resp.Header.Get("Location"))

	resp, _ = doRequest(f, "GET", "http://localhost:8000/three/sub?x=1")
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "sub/?x=1", resp.Header.Get("Location"))
}

func TestServeDirRedirectEscaped(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory names not allowed on windows")
	}
	root := t.TempDir()
	mimes, err := fs.NewMimeTable(nil)
	require.NoError(t, err)
	f, err := NewFiles(root, mimes, testTemplate(t))
	require.NoError(t, err)

	for _, test := range []struct {
		name     string
		target   string
		location string
	}{
		{"q?x", "/q%3Fx", "q%3Fx/"},
		{"h#x", "/h%23x", "h%23x/"},
		{"p%x", "/p%25x", "p%25x/"},
		{"a b", "/a%20b?y=2", "a%20b/?y=2"},
		{"c:d", "/c:d", "./c:d/"},
	} {
		require.NoError(t, os.Mkdir(filepath.Join(root, test.name), 0777))
		resp, _ := doRequest(f, "GET", "http://localhost:8000"+test.target)
		assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode, test.name)
		location := resp.Header.Get("Location")
		assert.Equal(t, test.location, location, test.name)

		// Following the redirect lands back on the directory
		base, err := url.Parse("http://localhost:8000" + test.target)
		require.NoError(t, err)
		ref, err := url.Parse(location)
		require.NoError(t, err, test.name)
		next := base.ResolveReference(ref)
		assert.Equal(t, "/"+test.name+"/", next.Path, test.name)

		resp, _ = doRequest(f, "GET", next.String())
		assert.Equal(t, http.StatusOK, resp.StatusCode, test.name)
	}
}

func TestServeDirListing(t *testing.T) {
	f := newTestFiles(t)

	resp, body := doRequest(f, "GET", "http://localhost:8000/three/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "Directory listing of /three")
	assert.Contains(t, body, `<li><a href="a.txt">a.txt</a></li>
<li><a href="B.txt">B.txt</a></li>
<li><a href="sub/">sub/</a></li>`)

	resp, body = doRequest(f, "HEAD", "http://localhost:8000/three/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "", body)
}

func TestServeJavaScriptOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.js", appJS)
	mimes, err := fs.NewMimeTable(map[string]string{".js": "text/javascript"})
	require.NoError(t, err)
	f, err := NewFiles(dir, mimes, testTemplate(t))
	require.NoError(t, err)
	assert.Equal(t, dir, f.Root())

	resp, _ := doRequest(f, "GET", "http://localhost:8000/app.js")
	assert.Equal(t, "application/javascript", resp.Header.Get("Content-Type"))
}

func TestServeDirCustomTemplate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sub/a.txt", []byte("12345"))
	tpl, err := template.New("index").Parse(`{{ .Name }}|{{ range .Entries }}{{ .Leaf }} {{ .Size }} {{ .ModTime.Year }}|{{ end }}`)
	require.NoError(t, err)
	mimes, err := fs.NewMimeTable(nil)
	require.NoError(t, err)
	f, err := NewFiles(dir, mimes, tpl)
	require.NoError(t, err)

	resp, body := doRequest(f, "GET", "http://localhost:8000/sub/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/sub|a.txt 5 2000|", body)
}
