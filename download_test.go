package bbbc005

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
)

// buildZip returns a zip archive holding entries. Names ending in "/" become
// directory entries.
func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip Create(%q) error = %v", name, err)
		}
		if strings.HasSuffix(name, "/") {
			continue
		}
		if _, err := f.Write([]byte(entries[name])); err != nil {
			t.Fatalf("zip Write(%q) error = %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip Close() error = %v", err)
	}
	return buf.Bytes()
}

// archiveServer serves archives under the BBBC005 URL path and counts requests.
type archiveServer struct {
	*httptest.Server
	archives map[string][]byte
	requests atomic.Int32
}

func newArchiveServer(t *testing.T, archives map[string][]byte) *archiveServer {
	t.Helper()
	s := &archiveServer{archives: archives}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		data, ok := s.archives[strings.TrimPrefix(r.URL.Path, "/bbbc/BBBC005/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(s.Close)
	return s
}

// client returns an HTTPClient that sends every request to the test server.
func (s *archiveServer) client() HTTPClient {
	return &rerouteClient{server: s.Server}
}

type rerouteClient struct {
	server *httptest.Server
}

func (c *rerouteClient) Do(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = "http"
	req.URL.Host = strings.TrimPrefix(c.server.URL, "http://")
	req.Host = ""
	return c.server.Client().Do(req)
}

func TestArchiveURL(t *testing.T) {
	tests := map[string]string{
		ImagesArchive:      "https://data.broadinstitute.org/bbbc/BBBC005/BBBC005_v1_images.zip",
		GroundTruthArchive: "https://data.broadinstitute.org/bbbc/BBBC005/BBBC005_v1_ground_truth.zip",
	}
	for archive, want := range tests {
		if got := archiveURL(archive); got != want {
			t.Errorf("archiveURL(%q) = %q, want %q", archive, got, want)
		}
	}
}

func TestArchiveDownload(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789"), 10000)
	srv := newArchiveServer(t, map[string][]byte{"a.zip": payload})
	d := newArchiveDownloader(srv.client(), &recordingLogger{})

	t.Run("success", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "a.zip")
		var last int64
		n, err := d.download(context.Background(), BaseURL+"/a.zip", dest, func(completed, total int64) {
			if completed < last {
				t.Errorf("progress went backwards: %d < %d", completed, last)
			}
			last = completed
		})
		if err != nil {
			t.Fatalf("download() error = %v", err)
		}
		if n != int64(len(payload)) {
			t.Errorf("download() = %d bytes, want %d", n, len(payload))
		}
		if last != int64(len(payload)) {
			t.Errorf("final progress = %d, want %d", last, len(payload))
		}
		got, err := os.ReadFile(dest)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Error("downloaded content differs")
		}
	})

	t.Run("not found", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "missing.zip")
		_, err := d.download(context.Background(), BaseURL+"/missing.zip", dest, nil)
		if !errors.Is(err, ErrNetworkError) {
			t.Errorf("download() error = %v, want ErrNetworkError", err)
		}
		if !strings.Contains(err.Error(), "status 404") {
			t.Errorf("error %q does not mention status", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()
		d := newArchiveDownloader(&rerouteClient{server: dead}, nil)
		_, err := d.download(context.Background(), BaseURL+"/a.zip", filepath.Join(t.TempDir(), "a.zip"), nil)
		if !errors.Is(err, ErrNetworkError) {
			t.Errorf("download() error = %v, want ErrNetworkError", err)
		}
	})

	t.Run("unwritable destination", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "no", "such", "dir", "a.zip")
		_, err := d.download(context.Background(), BaseURL+"/a.zip", dest, nil)
		if !errors.Is(err, ErrStorageError) {
			t.Errorf("download() error = %v, want ErrStorageError", err)
		}
	})
}

func TestProgressReader(t *testing.T) {
	var total int64
	r := &progressReader{
		reader:     strings.NewReader("hello world"),
		onProgress: func(delta int64) { total += delta },
	}
	buf := make([]byte, 4)
	for {
		_, err := r.Read(buf)
		if err != nil {
			break
		}
	}
	if total != 11 {
		t.Errorf("reported %d bytes, want 11", total)
	}
}
