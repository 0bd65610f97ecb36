package constme

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"
)

// LibraryZipURL is the release archive containing the prebuilt Whisper.dll.
const LibraryZipURL = "https://github.com/Const-me/Whisper/releases/download/1.12.0/Library.zip"

// ModelBaseURL is the upstream location for official GGML whisper models.
const ModelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

// DLLName is the library file name inside the data directory.
const DLLName = "Whisper.dll"

// DefaultModelFile is used when no model path is configured.
const DefaultModelFile = "ggml-medium.bin"

// ModelInfo describes a downloadable GGML model.
type ModelInfo struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
	Size     string `json:"size_description"`
}

// AvailableModels lists the model sizes offered for auto-download.
var AvailableModels = []ModelInfo{
	{Name: "Small", Filename: "ggml-small.bin", Size: "~466 MB - faster, lower accuracy"},
	{Name: "Medium", Filename: "ggml-medium.bin", Size: "~1.5 GB - recommended balance"},
	{Name: "Large v3", Filename: "ggml-large-v3.bin", Size: "~3 GB - highest accuracy"},
}

// Progress reports download advancement to observers. Total is zero when the
// server did not announce a length.
type Progress struct {
	Item       string `json:"item"`
	Downloaded int64  `json:"downloaded_bytes"`
	Total      int64  `json:"total_bytes"`
	Done       bool   `json:"done"`
}

// DataDir returns (and creates) the directory holding the library and model
// files.
func DataDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		base = "."
	}
	dir := filepath.Join(base, "whisper", "constme")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// DLLPath returns the expected library location.
func DLLPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DLLName), nil
}

// ModelPath returns the expected location of a model file.
func ModelPath(filename string) (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filename), nil
}

// Downloader retrieves the native library and GGML models into the data
// directory.
type Downloader struct {
	client     *http.Client
	OnProgress func(Progress)
}

// NewDownloader initialises a Downloader with a generous timeout suitable
// for multi-gigabyte model files.
func NewDownloader() *Downloader {
	return &Downloader{client: &http.Client{Timeout: 30 * time.Minute}}
}

// EnsureDLL guarantees Whisper.dll is present locally, downloading and
// extracting the release archive when needed, and returns its location.
func (d *Downloader) EnsureDLL(ctx context.Context) (string, error) {
	dest, err := DLLPath()
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(dest); statErr == nil && info.Size() > 0 {
		return dest, nil
	}

	dir := filepath.Dir(dest)
	zipPath := filepath.Join(dir, "Library.zip")
	if err := d.download(ctx, LibraryZipURL, zipPath, DLLName); err != nil {
		return "", err
	}
	defer os.Remove(zipPath)

	if err := extractDLL(zipPath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// EnsureModel guarantees the named model exists locally and returns its
// location.
func (d *Downloader) EnsureModel(ctx context.Context, filename string) (string, error) {
	var info *ModelInfo
	for i := range AvailableModels {
		if AvailableModels[i].Filename == filename {
			info = &AvailableModels[i]
			break
		}
	}
	if info == nil {
		return "", fmt.Errorf("unknown model: %s", filename)
	}

	dest, err := ModelPath(filename)
	if err != nil {
		return "", err
	}
	if stat, statErr := os.Stat(dest); statErr == nil && stat.Size() > 0 {
		return dest, nil
	}

	tmpPath := dest + ".downloading"
	if err := d.download(ctx, ModelBaseURL+filename, tmpPath, filename); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (d *Downloader) download(ctx context.Context, url, destPath, item string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: %s", item, resp.Status)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer file.Close()

	written, err := io.Copy(file, d.progressReader(resp.Body, item, resp.ContentLength))
	if err != nil {
		os.Remove(destPath)
		return err
	}
	d.report(Progress{Item: item, Downloaded: written, Total: resp.ContentLength, Done: true})

	log.Info().Str("url", url).Str("path", destPath).Int64("bytes", written).Msg("downloaded")
	return nil
}

func (d *Downloader) progressReader(r io.Reader, item string, total int64) io.Reader {
	if d.OnProgress == nil {
		return r
	}
	return &progressReader{r: r, d: d, item: item, total: total}
}

func (d *Downloader) report(p Progress) {
	if d.OnProgress != nil {
		d.OnProgress(p)
	}
}

type progressReader struct {
	r        io.Reader
	d        *Downloader
	item     string
	total    int64
	read     int64
	lastTick time.Time
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += int64(n)
	if now := time.Now(); now.Sub(p.lastTick) >= 500*time.Millisecond {
		p.lastTick = now
		p.d.report(Progress{Item: p.item, Downloaded: p.read, Total: p.total})
	}
	return n, err
}

func extractDLL(zipPath, dest string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open library archive: %w", err)
	}
	defer reader.Close()

	for _, f := range reader.File {
		if !strings.EqualFold(filepath.Base(f.Name), DLLName) {
			continue
		}
		src, err := f.Open()
		if err != nil {
			return err
		}
		defer src.Close()

		out, err := os.Create(dest)
		if err != nil {
			return err
		}
		defer out.Close()

		if _, err := io.Copy(out, src); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("%s not found in library archive", DLLName)
}
