// Command download-wordlists fetches every tabular wordlist linked
// from a dataset index page into a local directory, ready for the
// kognate readers.
package main

import (
	"flag"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"golang.org/x/net/html"
)

func main() {
	var (
		index  = flag.String("index", "", "URL of the dataset index page (required)")
		outDir = flag.String("out", "testdata/wordlists", "Output directory")
	)
	flag.Parse()

	if *index == "" {
		log.Fatal("--index required")
	}

	base, err := url.Parse(*index)
	if err != nil {
		log.Fatalf("parse index URL: %v", err)
	}

	links, err := wordlistLinks(*index)
	if err != nil {
		log.Fatalf("fetch index: %v", err)
	}
	if len(links) == 0 {
		log.Fatal("no wordlist links found on index page")
	}
	log.Printf("Found %d wordlist files", len(links))

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}

	downloaded := 0
	for _, link := range links {
		ref, err := url.Parse(link)
		if err != nil {
			log.Printf("Skipping malformed link %q: %v", link, err)
			continue
		}
		target := base.ResolveReference(ref)

		name := path.Base(target.Path)
		dest := path.Join(*outDir, name)
		if err := download(target.String(), dest); err != nil {
			log.Printf("Failed to download %s: %v", target, err)
			continue
		}
		downloaded++

		// Be nice to the server
		time.Sleep(100 * time.Millisecond)
	}

	log.Printf("Downloaded %d/%d files to %s", downloaded, len(links), *outDir)
}

// wordlistLinks extracts hrefs of tabular files from the index page.
func wordlistLinks(indexURL string) ([]string, error) {
	resp, err := http.Get(indexURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	var links []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && isWordlist(attr.Val) {
					links = append(links, attr.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func isWordlist(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasSuffix(lower, ".tsv") ||
		strings.HasSuffix(lower, ".csv") ||
		strings.HasSuffix(lower, ".txt")
}

func download(src, dest string) error {
	resp, err := http.Get(src)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &httpError{status: resp.Status}
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, resp.Body)
	return err
}

type httpError struct {
	status string
}

func (e *httpError) Error() string {
	return "HTTP " + e.status
}
