package sitemap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	derrors "github.com/napi-rs/docsite/internal/foundation/errors"
)

// Report summarizes a verified sitemap.
type Report struct {
	URLCount    int
	SampleURLs  []string // At most five, in document order
	SitemapSize int64
	RobotsSize  int64
	Age         time.Duration
}

const sampleSize = 5

// Verify checks that exportDir holds a well-formed sitemap for baseURL and a
// robots.txt that points at it.
func Verify(exportDir, baseURL string) (*Report, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if st, err := os.Stat(exportDir); err != nil || !st.IsDir() {
		return nil, derrors.NotFoundError("export directory not found").
			WithContext("export_dir", exportDir).Build()
	}

	sitemapPath := filepath.Join(exportDir, SitemapFile)
	robotsPath := filepath.Join(exportDir, RobotsFile)
	sitemap, err := readRequired(sitemapPath, "sitemap not found")
	if err != nil {
		return nil, err
	}
	robots, err := readRequired(robotsPath, "robots.txt not found")
	if err != nil {
		return nil, err
	}

	if !bytes.HasPrefix(sitemap, []byte(strings.TrimSpace(xml.Header))) {
		return nil, invalidSitemap("invalid XML header in sitemap", sitemapPath)
	}
	if !bytes.Contains(sitemap, []byte(`<urlset xmlns="`+Namespace+`">`)) {
		return nil, invalidSitemap("invalid urlset in sitemap", sitemapPath)
	}

	var set urlset
	if err := xml.Unmarshal(sitemap, &set); err != nil {
		return nil, derrors.WrapError(err, derrors.CategorySitemap, "sitemap is not valid XML").
			WithContext("path", sitemapPath).Build()
	}
	if len(set.URLs) == 0 {
		return nil, invalidSitemap("no URLs found in sitemap", sitemapPath)
	}

	report := &Report{URLCount: len(set.URLs)}
	onBase := false
	for i, u := range set.URLs {
		if strings.HasPrefix(u.Loc, baseURL+"/") {
			onBase = true
		}
		if i < sampleSize {
			report.SampleURLs = append(report.SampleURLs, u.Loc)
		}
	}
	if !onBase {
		return nil, invalidSitemap("incorrect base URL in sitemap", sitemapPath).WithContext("base_url", baseURL)
	}
	if !bytes.Contains(robots, []byte("Sitemap: "+baseURL+"/"+SitemapFile)) {
		return nil, invalidSitemap("incorrect sitemap reference in robots.txt", robotsPath)
	}

	report.SitemapSize = int64(len(sitemap))
	report.RobotsSize = int64(len(robots))
	report.Age, _ = Age(exportDir)
	return report, nil
}

func readRequired(path, missing string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, derrors.NotFoundError(missing).WithContext("path", path).Build()
	}
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "failed to read file").
			WithContext("path", path).Build()
	}
	return data, nil
}

func invalidSitemap(msg, path string) *derrors.ClassifiedError {
	return derrors.SitemapError(msg).WithContext("path", path).Build()
}
