package api

import (
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type tabInfo struct {
	Path        string `json:"path"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}

var (
	tabTitleRe = regexp.MustCompile(`<meta\s+name="tab-title"\s+content="([^"]*)"`)
	tabDescRe  = regexp.MustCompile(`<meta\s+name="tab-description"\s+content="([^"]*)"`)
	tabOrderRe = regexp.MustCompile(`<meta\s+name="tab-order"\s+content="(\d+)"`)
)

// TabsHandler lists the tool pages of the web UI. A page becomes a tab by
// declaring a tab-title meta tag near the top of the file; the shell page
// (index.html) has none and is excluded. The FS is rescanned per request.
func TabsHandler(webFS fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := fs.ReadDir(webFS, ".")
		if err != nil {
			WriteErrorWithCode(w, http.StatusInternalServerError, ErrInternal, "failed to read web directory")
			return
		}

		tabs := []tabInfo{}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".html") {
				continue
			}
			if t, ok := readTab(webFS, name); ok {
				tabs = append(tabs, t)
			}
		}

		sort.SliceStable(tabs, func(i, j int) bool {
			if tabs[i].Order != tabs[j].Order {
				return tabs[i].Order < tabs[j].Order
			}
			return tabs[i].Path < tabs[j].Path
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tabs)
	}
}

// readTab extracts tab metadata from the first 2KB of a page.
func readTab(webFS fs.FS, name string) (tabInfo, bool) {
	f, err := webFS.Open(name)
	if err != nil {
		return tabInfo{}, false
	}
	defer f.Close()

	buf := make([]byte, 2048)
	n, _ := io.ReadFull(f, buf)
	head := string(buf[:n])

	m := tabTitleRe.FindStringSubmatch(head)
	if m == nil {
		return tabInfo{}, false
	}
	t := tabInfo{Path: "/" + name, Title: m[1]}
	if m := tabDescRe.FindStringSubmatch(head); m != nil {
		t.Description = m[1]
	}
	if m := tabOrderRe.FindStringSubmatch(head); m != nil {
		t.Order, _ = strconv.Atoi(m[1])
	}
	return t, true
}
