package gallery

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gogpu/oekaki"
)

// Object layout and request limits of Server.
const (
	objectPrefix = "drawings/"
	objectExt    = ".png"

	maxSaveBody = 16 << 20
)

// Server is the HTTP backend of a shared gallery. It stores PNGs in a
// Blobs backend under "drawings/<id>.png" and can serve them itself.
//
// Every response carries permissive CORS headers, and preflight requests
// are answered with 204. Errors are JSON objects {"error": "..."}.
type Server struct {
	blobs   Blobs
	feed    *Feed
	baseURL string
	limit   int
	log     *slog.Logger
	now     func() time.Time

	mux *http.ServeMux
}

// NewServer returns a server storing objects in blobs.
func NewServer(blobs Blobs, opts ...Option) *Server {
	o := newOptions(opts)
	s := &Server{
		blobs:   blobs,
		feed:    o.feed,
		baseURL: strings.TrimSuffix(o.baseURL, "/"),
		limit:   o.limit,
		log:     o.log(),
		now:     o.now,
		mux:     http.NewServeMux(),
	}
	if s.feed == nil {
		s.feed = NewFeed(opts...)
	}

	s.mux.HandleFunc("POST /save", s.handleSave)
	s.mux.HandleFunc("GET /gallery", s.handleGallery)
	s.mux.Handle("GET /gallery/live", s.feed)
	s.mux.HandleFunc("GET /drawings", s.handleFetch)
	s.mux.HandleFunc("GET /drawings/{file}", s.handleObject)
	s.mux.HandleFunc("DELETE /drawings/{id}", s.handleDelete)
	s.mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	return s
}

// Feed returns the feed new drawings are published to.
func (s *Server) Feed() *Feed { return s.feed }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mux.ServeHTTP(w, r)
}

type saveRequest struct {
	Image string `json:"image"`
	ID    string `json:"id,omitempty"`
}

type drawingsResponse struct {
	Drawings []Drawing `json:"drawings"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSaveBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Image == "" {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}
	id := req.ID
	if id == "" {
		id = NewID()
	}
	if !ValidID(id) {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	data, err := oekaki.DecodeDataURL(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image is not a base64 data URL")
		return
	}

	if err := s.blobs.Put(r.Context(), objectKey(id), data); err != nil {
		s.internalError(w, "save", err)
		return
	}
	d := Drawing{ID: id, URL: s.objectURL(r, id), CreatedAt: s.now().UTC()}
	s.log.Info("gallery: drawing saved", "id", id, "bytes", len(data))
	s.feed.Publish(d)
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	infos, err := s.blobs.List(r.Context(), objectPrefix)
	if err != nil {
		s.internalError(w, "list", err)
		return
	}
	ds := make([]Drawing, 0, len(infos))
	for _, info := range infos {
		id, ok := idFromKey(info.Key)
		if !ok {
			continue
		}
		ds = append(ds, Drawing{ID: id, URL: s.objectURL(r, id), CreatedAt: info.Created.UTC()})
	}
	sortNewest(ds)
	if len(ds) > s.limit {
		ds = ds[:s.limit]
	}
	writeJSON(w, http.StatusOK, drawingsResponse{Drawings: ds})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	ds := []Drawing{}
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if !ValidID(id) {
			continue
		}
		created, err := s.blobs.Stat(r.Context(), objectKey(id))
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				s.log.Warn("gallery: stat failed", "id", id, "err", err)
			}
			continue
		}
		ds = append(ds, Drawing{ID: id, URL: s.objectURL(r, id), CreatedAt: created.UTC()})
	}
	writeJSON(w, http.StatusOK, drawingsResponse{Drawings: ds})
}

func (s *Server) handleObject(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutSuffix(r.PathValue("file"), objectExt)
	if !ok || !ValidID(id) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	data, created, err := s.blobs.Get(r.Context(), objectKey(id))
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Drawing not found")
		return
	}
	if err != nil {
		s.internalError(w, "get", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	http.ServeContent(w, r, id+objectExt, created, bytes.NewReader(data))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if !ValidID(id) {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	err := s.blobs.Delete(r.Context(), objectKey(id))
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Drawing not found")
		return
	}
	if err != nil {
		s.internalError(w, "delete", err)
		return
	}
	s.log.Info("gallery: drawing deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error("gallery: "+op+" failed", "err", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// objectURL returns the public URL of the object for id. Without a
// configured base URL it points back at this server.
func (s *Server) objectURL(r *http.Request, id string) string {
	base := s.baseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return base + "/" + objectKey(id)
}

func objectKey(id string) string {
	return objectPrefix + id + objectExt
}

func idFromKey(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, objectPrefix)
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, objectExt)
	if !ok || !ValidID(id) {
		return "", false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
