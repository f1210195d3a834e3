package parser

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// Page holds the pieces of an HTML document the crawler cares about.
// Hrefs keeps every anchor href in document order, trimmed but otherwise raw;
// duplicates are preserved.
type Page struct {
	Title string
	Hrefs []string
}

// ParseHTML parses an HTML body and extracts the page title and all anchor
// hrefs. The title is the text of the first title element, whitespace-cleaned
// and HTML-decoded; it is empty when the document has none.
func ParseHTML(body []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Page{}, err
	}

	return Page{
		Title: parseTitle(doc),
		Hrefs: parseHrefs(doc),
	}, nil
}

func parseTitle(doc *goquery.Document) string {
	title := doc.Find("title").First()
	if title.Length() == 0 {
		return ""
	}

	return cleanText(title.Text())
}

func parseHrefs(doc *goquery.Document) []string {
	hrefs := []string{}
	doc.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		href, ok := selection.Attr("href")
		if !ok {
			return
		}

		hrefs = append(hrefs, href)
	})

	return hrefs
}
