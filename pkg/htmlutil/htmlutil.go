package htmlutil

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText strips non-printable characters, trims the string and collapses inner whitespace
// (including &nbsp;) into a single space.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = removeNonPrintable(s)
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}

// Text is CleanText applied to the combined text of a selection.
func Text(sel *goquery.Selection) string {
	return CleanText(sel.Text())
}

type Anchor struct {
	Name string
	Url  *url.URL
}

// GetAnchors resolves the href of every node in the selection against base, anchors
// with unparsable hrefs are skipped.
func GetAnchors(base *url.URL, sel *goquery.Selection) []Anchor {
	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			continue
		}

		link, err := url.Parse(href)
		if err != nil {
			continue
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		anchors = append(anchors, Anchor{
			Name: CleanText(GetText(n)),
			Url:  link,
		})
	}
	return anchors
}

// BrLines splits the contents of the first node in the selection on <br> elements,
// every line is cleaned and empty lines are dropped.
func BrLines(sel *goquery.Selection) []string {
	if len(sel.Nodes) == 0 {
		return nil
	}

	var lines []string
	var current strings.Builder
	flush := func() {
		line := CleanText(current.String())
		if line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			switch {
			case child.Type == html.TextNode:
				current.WriteString(child.Data)
			case child.Type == html.ElementNode && child.Data == "br":
				flush()
			case child.Type == html.ElementNode:
				walk(child)
			}
		}
	}
	walk(sel.Nodes[0])
	flush()

	return lines
}

// ClassContains checks if the class attribute of the selection contains any of the given
// substrings, matching is case-insensitive.
func ClassContains(sel *goquery.Selection, needles ...string) bool {
	class := strings.ToLower(sel.AttrOr("class", ""))
	style := strings.ToLower(sel.AttrOr("style", ""))
	for _, n := range needles {
		if strings.Contains(class, n) || strings.Contains(style, n) {
			return true
		}
	}
	return false
}
