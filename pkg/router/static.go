package router

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gato/pkg/http"
)

// errOutsideRoot is returned by ValidatePath for paths escaping the root.
var errOutsideRoot = errors.New("path outside root directory")

// StaticFileHandler serves files below a directory with caching headers,
// conditional requests and single byte ranges.
type StaticFileHandler struct {
	dir          string
	cacheControl string
	indexFiles   []string
	useETag      bool
}

// NewStaticFileHandler creates a new static file handler.
func NewStaticFileHandler(dir string) *StaticFileHandler {
	return &StaticFileHandler{
		dir:          dir,
		cacheControl: "public, max-age=3600",
		indexFiles:   []string{"index.html", "index.htm"},
		useETag:      true,
	}
}

// SetCacheControl sets the Cache-Control header value.
func (h *StaticFileHandler) SetCacheControl(value string) {
	h.cacheControl = value
}

// SetIndexFiles sets the files to try when serving a directory.
func (h *StaticFileHandler) SetIndexFiles(files []string) {
	h.indexFiles = files
}

// EnableETag enables or disables ETag generation.
func (h *StaticFileHandler) EnableETag(enabled bool) {
	h.useETag = enabled
}

// Handle implements http.Handler. Under a wildcard route the file path is
// the wildcard parameter, otherwise the request path.
func (h *StaticFileHandler) Handle(r *http.Request) *http.Response {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		resp := http.Error(http.StatusMethodNotAllowed)
		resp.Header.Set(http.HeaderAllow, "GET, HEAD")
		return resp
	}

	rel, ok := r.Params[WildcardParam]
	if !ok {
		rel = r.Path()
	}
	path, err := ValidatePath(h.dir, rel)
	if err != nil {
		return http.Error(http.StatusForbidden)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return statError(err)
	}

	if fi.IsDir() {
		for _, indexFile := range h.indexFiles {
			indexPath := filepath.Join(path, indexFile)
			if fi, err := os.Stat(indexPath); err == nil && !fi.IsDir() {
				return h.serveFile(r, indexPath)
			}
		}
		return http.Error(http.StatusNotFound)
	}

	return h.serveFile(r, path)
}

func statError(err error) *http.Response {
	if errors.Is(err, os.ErrNotExist) {
		return http.Error(http.StatusNotFound)
	}
	if errors.Is(err, os.ErrPermission) {
		return http.Error(http.StatusForbidden)
	}
	return http.Error(http.StatusInternalServerError)
}

// serveFile serves a single file with proper headers and caching.
func (h *StaticFileHandler) serveFile(r *http.Request, path string) *http.Response {
	data, err := os.ReadFile(path)
	if err != nil {
		return statError(err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return statError(err)
	}

	resp := http.NewResponse(http.StatusOK, nil)
	modTime := fi.ModTime().UTC().Truncate(time.Second)
	resp.Header.Set(http.HeaderLastModified, modTime.Format(http.TimeFormat))
	if h.cacheControl != "" {
		resp.Header.Set(http.HeaderCacheControl, h.cacheControl)
	}

	if h.useETag {
		etag := fmt.Sprintf(`"%s"`, contentHash(data))
		resp.Header.Set(http.HeaderETag, etag)
		if match := r.Header.GetFold(http.HeaderIfNoneMatch); match != "" {
			if match == "*" || strings.Contains(match, etag) {
				resp.StatusCode = http.StatusNotModified
				return resp
			}
		}
	}

	if since := r.Header.GetFold(http.HeaderIfModifiedSince); since != "" {
		t, err := time.Parse(http.TimeFormat, since)
		if err == nil && !modTime.After(t) {
			resp.StatusCode = http.StatusNotModified
			return resp
		}
	}

	contentType := ContentType(path)
	resp.Header.Set(http.HeaderContentType, contentType)

	if ranges := r.Header.GetFold(http.HeaderRange); ranges != "" {
		start, end, status := parseRange(ranges, int64(len(data)))
		if status != http.StatusPartialContent {
			errResp := http.Error(status)
			if status == http.StatusRequestedRangeNotSatisfiable {
				errResp.Header.Set(http.HeaderContentRange, fmt.Sprintf("bytes */%d", len(data)))
			}
			return errResp
		}
		resp.StatusCode = http.StatusPartialContent
		resp.Header.Set(http.HeaderContentRange, fmt.Sprintf("bytes %d-%d/%d", start, end, len(data)))
		data = data[start : end+1]
	}

	resp.Header.Set(http.HeaderContentLength, strconv.Itoa(len(data)))
	if r.Method != http.MethodHead {
		resp.Body = data
	}
	return resp
}

// parseRange parses a single "bytes=start-end" range against a body of
// size bytes. It returns StatusPartialContent when the range is usable.
func parseRange(header string, size int64) (int64, int64, int) {
	unit, set, ok := strings.Cut(header, "=")
	if !ok || strings.TrimSpace(unit) != "bytes" {
		return 0, 0, http.StatusBadRequest
	}
	if strings.Contains(set, ",") {
		return 0, 0, http.StatusRequestedRangeNotSatisfiable
	}
	first, last, ok := strings.Cut(strings.TrimSpace(set), "-")
	if !ok || (first == "" && last == "") {
		return 0, 0, http.StatusBadRequest
	}

	var start, end int64
	switch {
	case first == "":
		// suffix range: the final n bytes
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, http.StatusRequestedRangeNotSatisfiable
		}
		if n > size {
			n = size
		}
		start, end = size-n, size-1
	default:
		var err error
		start, err = strconv.ParseInt(first, 10, 64)
		if err != nil {
			return 0, 0, http.StatusBadRequest
		}
		end = size - 1
		if last != "" {
			end, err = strconv.ParseInt(last, 10, 64)
			if err != nil {
				return 0, 0, http.StatusBadRequest
			}
			if end >= size {
				end = size - 1
			}
		}
	}

	if start < 0 || start > end || start >= size {
		return 0, 0, http.StatusRequestedRangeNotSatisfiable
	}
	return start, end, http.StatusPartialContent
}

// contentHash returns a short hash of data for the ETag.
func contentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

// MimeTypes maps file extensions to MIME types.
var MimeTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".htm":   "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "application/javascript; charset=utf-8",
	".json":  "application/json",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".pdf":   "application/pdf",
	".txt":   "text/plain; charset=utf-8",
	".xml":   "application/xml",
	".md":    "text/markdown",
	".csv":   "text/csv",
}

// ContentType returns the MIME type for path, falling back to the system
// table and then to application/octet-stream.
func ContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := MimeTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Static returns a handler serving dir, for use under a wildcard route.
func Static(dir string) http.Handler {
	return NewStaticFileHandler(dir)
}

// ValidatePath joins requestedPath onto root and checks that the result
// stays within root.
func ValidatePath(root, requestedPath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	// Cleaning against "/" collapses every ".." before the join.
	cleanPath := filepath.Clean("/" + requestedPath)
	absPath := filepath.Join(absRoot, cleanPath)

	if absPath != absRoot && !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return "", errOutsideRoot
	}
	return absPath, nil
}
