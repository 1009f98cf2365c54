// Package fakeapi serves the bookmark REST API from memory for tests.
package fakeapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/nikbrunner/bmr/internal/model"
)

const defaultLimit = 10

// Request is a request the server received.
type Request struct {
	Method        string
	URI           string
	Authorization string
	HasAuthHeader bool
	Body          string
}

type storedBookmark struct {
	model.Bookmark
	folder string
}

// Server is an in-memory bookmark service. Lists are ordered by descending
// id, so "before" cursors chain without gaps.
type Server struct {
	mu     sync.Mutex
	apiKey string
	status int
	// ids are counted per kind, like separate tables
	nextBookmarkID int64
	nextFolderID   int64
	nextTagID      int64
	bookmarks      map[int64]*storedBookmark
	folders        map[int64]model.Folder
	tags           map[string]int64
	requests       []Request
}

// New creates a server. A non-empty apiKey must be sent as the Authorization
// header: a missing header yields 401, a different key 403.
func New(apiKey string) *Server {
	return &Server{
		apiKey:    apiKey,
		bookmarks: make(map[int64]*storedBookmark),
		folders:   make(map[int64]model.Folder),
		tags:      make(map[string]int64),
	}
}

// Handler returns the router serving the API.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record, s.auth)

	r.HandleFunc("/api/bookmarks", s.listBookmarks).Methods(http.MethodGet)
	r.HandleFunc("/api/bookmarks/{id:[0-9]+}", s.updateBookmark).Methods(http.MethodPatch)
	r.HandleFunc("/api/bookmarks/{id:[0-9]+}", s.deleteBookmark).Methods(http.MethodDelete)
	r.HandleFunc("/api/tags", s.listTags).Methods(http.MethodGet)
	r.HandleFunc("/api/folders", s.listFolders).Methods(http.MethodGet)
	r.HandleFunc("/api/folders", s.createFolder).Methods(http.MethodPost)
	r.HandleFunc("/api/folders/move_in/{bookmark:[0-9]+}/{folder:[0-9]+}", s.moveIn).Methods(http.MethodPut)
	r.HandleFunc("/api/folders/move_out/{bookmark:[0-9]+}", s.moveOut).Methods(http.MethodPut)

	return r
}

// SetAPIKey changes the accepted key.
func (s *Server) SetAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
}

// FailWith makes every authorized request fail with status until reset with 0.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// AddBookmark stores a bookmark in folder ("" for none) and returns it.
func (s *Server) AddBookmark(folder, title, url string, tags ...string) model.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextBookmarkID++
	b := &storedBookmark{
		Bookmark: model.Bookmark{ID: s.nextBookmarkID, Title: title, URL: url, Tags: append([]string{}, tags...)},
		folder:   folder,
	}
	s.bookmarks[b.ID] = b
	s.registerTags(tags)
	return b.Bookmark
}

// AddFolder stores a folder and returns it.
func (s *Server) AddFolder(path string) model.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addFolder(path)
}

// Bookmark returns the stored bookmark with id.
func (s *Server) Bookmark(id int64) (model.Bookmark, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookmarks[id]
	if !ok {
		return model.Bookmark{}, false
	}
	return b.Bookmark, true
}

// FolderOf returns the folder path of a bookmark, "" when it has none.
func (s *Server) FolderOf(id int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.bookmarks[id]; ok {
		return b.folder
	}
	return ""
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// ResetRequests forgets recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{Method: r.Method, URI: r.URL.RequestURI()}
		if values, ok := r.Header["Authorization"]; ok {
			req.HasAuthHeader = true
			req.Authorization = strings.Join(values, ",")
		}
		if r.Body != nil {
			body, _ := io.ReadAll(r.Body)
			req.Body = string(body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		apiKey, status := s.apiKey, s.status
		s.mu.Unlock()

		if apiKey != "" {
			got := r.Header.Get("Authorization")
			if got == "" {
				http.Error(w, "missing api key", http.StatusUnauthorized)
				return
			}
			if got != apiKey {
				http.Error(w, "invalid api key", http.StatusForbidden)
				return
			}
		}
		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listBookmarks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, before, ok := pageParams(w, query.Get("limit"), query.Get("before"))
	if !ok {
		return
	}
	q := strings.ToLower(query.Get("q"))
	cwd := query.Get("cwd")

	s.mu.Lock()
	matched := []model.Bookmark{}
	for _, b := range s.bookmarks {
		if before > 0 && b.ID >= before {
			continue
		}
		if !inCWD(b.folder, cwd) || !matchesQuery(b.Bookmark, q) {
			continue
		}
		matched = append(matched, b.Bookmark)
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	if len(matched) > limit {
		matched = matched[:limit]
	}
	writeJSON(w, matched)
}

func (s *Server) updateBookmark(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	var patch model.BookmarkPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookmarks[id]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	b.Bookmark = patch.Apply(b.Bookmark)
	if patch.Tags != nil {
		s.registerTags(*patch.Tags)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteBookmark(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookmarks[id]; !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	delete(s.bookmarks, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, before, ok := pageParams(w, query.Get("limit"), query.Get("before"))
	if !ok {
		return
	}
	q := strings.ToLower(query.Get("q"))

	s.mu.Lock()
	matched := []model.Tag{}
	for name, id := range s.tags {
		if before > 0 && id >= before {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(name), q) {
			continue
		}
		matched = append(matched, model.Tag{ID: id, Name: name})
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	if len(matched) > limit {
		matched = matched[:limit]
	}
	writeJSON(w, matched)
}

func (s *Server) listFolders(w http.ResponseWriter, r *http.Request) {
	cwd := r.URL.Query().Get("cwd")
	if cwd == model.RootPath {
		cwd = ""
	}

	s.mu.Lock()
	folders := []model.Folder{}
	for _, f := range s.folders {
		if model.ParentPath(f.Path) == cwd {
			folders = append(folders, f)
		}
	}
	s.mu.Unlock()

	sort.Slice(folders, func(i, j int) bool { return folders[i].Path < folders[j].Path })
	writeJSON(w, folders)
}

func (s *Server) createFolder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !strings.HasPrefix(body.Path, "/") || len(body.Path) < 2 {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.folders {
		if f.Path == body.Path {
			http.Error(w, "folder exists", http.StatusConflict)
			return
		}
	}
	s.addFolder(body.Path)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) moveIn(w http.ResponseWriter, r *http.Request) {
	bookmarkID, _ := strconv.ParseInt(mux.Vars(r)["bookmark"], 10, 64)
	folderID, _ := strconv.ParseInt(mux.Vars(r)["folder"], 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookmarks[bookmarkID]
	f, found := s.folders[folderID]
	if !ok || !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	b.folder = f.Path
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) moveOut(w http.ResponseWriter, r *http.Request) {
	bookmarkID, _ := strconv.ParseInt(mux.Vars(r)["bookmark"], 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookmarks[bookmarkID]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	b.folder = ""
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addFolder(path string) model.Folder {
	s.nextFolderID++
	f := model.Folder{ID: s.nextFolderID, Path: path}
	s.folders[f.ID] = f
	return f
}

func (s *Server) registerTags(tags []string) {
	for _, name := range tags {
		if _, ok := s.tags[name]; !ok && name != "" {
			s.nextTagID++
			s.tags[name] = s.nextTagID
		}
	}
}

// inCWD reports whether a bookmark in folder is listed under cwd.
// A cwd ending in "//" selects bookmarks without a folder.
func inCWD(folder, cwd string) bool {
	switch {
	case cwd == "" || cwd == model.RootPath:
		return true
	case model.IsNotInFolderPath(cwd):
		return folder == ""
	default:
		return folder == cwd || strings.HasPrefix(folder, cwd+"/")
	}
}

func matchesQuery(b model.Bookmark, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.URL), q) {
		return true
	}
	for _, tag := range b.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func pageParams(w http.ResponseWriter, rawLimit, rawBefore string) (int, int64, bool) {
	limit := defaultLimit
	if rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return 0, 0, false
		}
		limit = n
	}

	var before int64
	if rawBefore != "" {
		n, err := strconv.ParseInt(rawBefore, 10, 64)
		if err != nil {
			http.Error(w, "invalid before", http.StatusBadRequest)
			return 0, 0, false
		}
		before = n
	}
	return limit, before, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
