// Package serve serves a directory tree of files over HTTP
package serve

import (
	"html/template"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/localdev/devserve/fs"
	"github.com/pkg/errors"
)

// indexNames are served in place of a directory listing, first found wins
var indexNames = []string{"index.html", "index.htm"}

// Files serves the files under a root directory
type Files struct {
	root         string
	fsys         http.FileSystem
	mimes        fs.MimeTable
	htmlTemplate *template.Template
}

// NewFiles makes a handler serving the files under root with content
// types from mimes. Directory listings are rendered with htmlTemplate.
func NewFiles(root string, mimes fs.MimeTable, htmlTemplate *template.Template) (*Files, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve directory")
	}
	fi, err := os.Stat(absRoot)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, errors.Errorf("%s is not a directory", absRoot)
	}
	return &Files{
		root:         absRoot,
		fsys:         http.Dir(absRoot),
		mimes:        mimes,
		htmlTemplate: htmlTemplate,
	}, nil
}

// Root returns the absolute path of the directory being served
func (f *Files) Root() string {
	return f.root
}

// notFound writes the 404 page
func notFound(w http.ResponseWriter) {
	http.Error(w, "File not found", http.StatusNotFound)
}

// localRedirect gives a Moved Permanently response relative to the
// current path keeping any query string.
func localRedirect(w http.ResponseWriter, r *http.Request, newPath string) {
	if q := r.URL.RawQuery; q != "" {
		newPath += "?" + q
	}
	w.Header().Set("Location", newPath)
	w.WriteHeader(http.StatusMovedPermanently)
}

// ServeHTTP serves the file or directory named by the request path
func (f *Files) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" && r.Method != "HEAD" {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	urlPath := r.URL.Path
	if !strings.HasPrefix(urlPath, "/") {
		urlPath = "/" + urlPath
	}
	// Cleaning a rooted path removes any ".." so it can't escape root
	remote := path.Clean(urlPath)

	file, err := f.fsys.Open(remote)
	if err != nil {
		fs.Debugf(remote, "%s: Failed to open: %v", r.RemoteAddr, err)
		notFound(w)
		return
	}
	defer func() {
		err := file.Close()
		if err != nil {
			fs.Errorf(remote, "Failed to close file: %v", err)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		Error(remote, w, "Failed to stat file", err)
		return
	}

	if info.IsDir() {
		if !strings.HasSuffix(urlPath, "/") {
			// The name goes into Location so must be escaped
			u := url.URL{Path: path.Base(urlPath) + "/"}
			localRedirect(w, r, u.String())
			return
		}
		f.serveDir(w, r, remote, file)
		return
	}

	// A trailing / means the client thought it was a directory
	if strings.HasSuffix(urlPath, "/") {
		notFound(w)
		return
	}

	f.serveFile(w, r, remote, file, info)
}

// serveDir serves the index file of dir if there is one, or a listing
func (f *Files) serveDir(w http.ResponseWriter, r *http.Request, dirRemote string, dir http.File) {
	for _, indexName := range indexNames {
		indexRemote := path.Join(dirRemote, indexName)
		index, err := f.fsys.Open(indexRemote)
		if err != nil {
			continue
		}
		info, err := index.Stat()
		if err != nil || info.IsDir() {
			_ = index.Close()
			continue
		}
		f.serveFile(w, r, indexRemote, index, info)
		_ = index.Close()
		return
	}

	entries, err := dir.Readdir(-1)
	if err != nil {
		fs.Debugf(dirRemote, "%s: Failed to list directory: %v", r.RemoteAddr, err)
		http.Error(w, "No permission to list directory", http.StatusNotFound)
		return
	}

	d := NewDirectory(dirRemote, f.htmlTemplate)
	for _, entry := range entries {
		d.AddHTMLEntry(path.Join(dirRemote, entry.Name()), entry.IsDir(), entry.Size(), entry.ModTime())
	}
	d.Sort()
	d.Serve(w, r)
}

// serveFile serves the contents of file with a content type from its name
func (f *Files) serveFile(w http.ResponseWriter, r *http.Request, remote string, file http.File, info os.FileInfo) {
	w.Header().Set("Content-Type", f.mimes.TypeFromName(remote))

	// ServeContent deals with HEAD, Range and If-Modified-Since
	http.ServeContent(w, r, remote, info.ModTime(), file)
}
