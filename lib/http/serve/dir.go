package serve

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/localdev/devserve/fs"
)

// DirEntry is a directory entry
type DirEntry struct {
	remote  string
	URL     string
	Leaf    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Directory represents a directory
type Directory struct {
	DirRemote    string
	Name         string
	Title        string
	Entries      []DirEntry
	HTMLTemplate *template.Template
}

// NewDirectory makes an empty Directory rendered with htmlTemplate
func NewDirectory(dirRemote string, htmlTemplate *template.Template) *Directory {
	dirRemote = strings.Trim(dirRemote, "/")
	d := &Directory{
		DirRemote:    dirRemote,
		Name:         "/" + dirRemote,
		Title:        fmt.Sprintf("Directory listing of /%s", dirRemote),
		HTMLTemplate: htmlTemplate,
	}
	return d
}

// AddHTMLEntry adds an entry to that directory
func (d *Directory) AddHTMLEntry(remote string, isDir bool, size int64, modTime time.Time) {
	leaf := path.Base(remote)
	if leaf == "." || leaf == "/" {
		leaf = ""
	}
	urlRemote := leaf
	if isDir {
		leaf += "/"
		urlRemote += "/"
	}
	// url.URL adds a "./" if the first segment has a colon so it
	// isn't taken for a scheme
	u := url.URL{Path: urlRemote}
	d.Entries = append(d.Entries, DirEntry{
		remote:  remote,
		URL:     u.String(),
		Leaf:    leaf,
		IsDir:   isDir,
		Size:    size,
		ModTime: modTime,
	})
}

// Sort the entries case insensitively by name
func (d *Directory) Sort() {
	sort.SliceStable(d.Entries, func(i, j int) bool {
		return strings.ToLower(d.Entries[i].Leaf) < strings.ToLower(d.Entries[j].Leaf)
	})
}

// Error returns an http.StatusInternalServerError and logs the error
func Error(what interface{}, w http.ResponseWriter, text string, err error) {
	fs.Errorf(what, "%s: %v", text, err)
	http.Error(w, text+".", http.StatusInternalServerError)
}

// Serve serves a directory
func (d *Directory) Serve(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := d.HTMLTemplate.Execute(&buf, d)
	if err != nil {
		Error(d.DirRemote, w, "Failed to render template", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if r.Method == "HEAD" {
		return
	}
	_, _ = buf.WriteTo(w)
}
