package sitemap

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// hasNoindex reports whether the page at path asks robots not to index it.
func hasNoindex(path string) (bool, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return false, err
	}
	defer func() {
		_ = f.Close() // Ignore close errors on read-only operation
	}()
	return hasNoindexReader(f)
}

// hasNoindexReader scans the document head for <meta name="robots"> with a
// noindex directive. Scanning stops at <body>.
func hasNoindexReader(r io.Reader) (bool, error) {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return false, nil
			}
			return false, z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "body":
				return false, nil
			case "meta":
				if isNoindexMeta(tok) {
					return true, nil
				}
			}
		}
	}
}

func isNoindexMeta(tok html.Token) bool {
	var name, content string
	for _, a := range tok.Attr {
		switch strings.ToLower(a.Key) {
		case "name":
			name = strings.ToLower(strings.TrimSpace(a.Val))
		case "content":
			content = strings.ToLower(a.Val)
		}
	}
	if name != "robots" && name != "googlebot" {
		return false
	}
	for _, directive := range strings.Split(content, ",") {
		switch strings.TrimSpace(directive) {
		case "noindex", "none":
			return true
		}
	}
	return false
}
