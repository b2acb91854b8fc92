package retrieval

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// PageSummary is the structured digest of one scraped page: the pieces the
// planner needs to ground selectors (forms and inputs) plus enough text to
// rank the page against a query.
type PageSummary struct {
	URL      string
	Title    string
	Forms    []FormInfo
	Inputs   []InputInfo
	Links    []string
	Headings []string
}

type FormInfo struct {
	Action string
	Method string
	Fields []string
}

type InputInfo struct {
	Name        string
	ID          string
	Type        string
	Placeholder string
}

// ParsePage walks the HTML tree and extracts title, forms, inputs, links
// and headings. Parse errors fall back to an empty summary rather than
// failing the crawl.
func ParsePage(rawHTML, pageURL string) PageSummary {
	summary := PageSummary{URL: pageURL}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return summary
	}

	var walk func(n *html.Node, form *FormInfo)
	walk = func(n *html.Node, form *FormInfo) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					summary.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "form":
				f := FormInfo{
					Action: attr(n, "action"),
					Method: attr(n, "method"),
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c, &f)
				}
				summary.Forms = append(summary.Forms, f)
				return
			case "input", "textarea", "select":
				in := InputInfo{
					Name:        attr(n, "name"),
					ID:          attr(n, "id"),
					Type:        attr(n, "type"),
					Placeholder: attr(n, "placeholder"),
				}
				if in.Name != "" || in.ID != "" {
					summary.Inputs = append(summary.Inputs, in)
					if form != nil {
						form.Fields = append(form.Fields, in.describe())
					}
				}
			case "a":
				if href := attr(n, "href"); href != "" && !strings.HasPrefix(href, "#") {
					summary.Links = append(summary.Links, href)
				}
			case "h1", "h2", "h3":
				if text := nodeText(n); text != "" {
					summary.Headings = append(summary.Headings, text)
				}
			case "script", "style", "noscript", "svg":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, form)
		}
	}
	walk(doc, nil)

	return summary
}

// Text renders the summary into the flat block that gets chunked and
// indexed, mirroring what the planner prompt expects to see.
func (p PageSummary) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "URL: %s\n", p.URL)
	fmt.Fprintf(&sb, "TITLE: %s\n", p.Title)

	sb.WriteString("FORMS:")
	for _, f := range p.Forms {
		fmt.Fprintf(&sb, " [action=%s method=%s fields=%s]", f.Action, f.Method, strings.Join(f.Fields, ","))
	}
	sb.WriteString("\nINPUTS:")
	for _, in := range p.Inputs {
		sb.WriteString(" " + in.describe())
	}

	sb.WriteString("\nLINKS:")
	for i, l := range p.Links {
		if i >= 5 {
			break
		}
		sb.WriteString(" " + l)
	}
	sb.WriteString("\nHEADINGS:")
	for i, h := range p.Headings {
		if i >= 3 {
			break
		}
		sb.WriteString(" " + h)
	}
	sb.WriteString("\n")

	return sb.String()
}

func (in InputInfo) describe() string {
	parts := make([]string, 0, 4)
	if in.Name != "" {
		parts = append(parts, "name='"+in.Name+"'")
	}
	if in.ID != "" {
		parts = append(parts, "id='"+in.ID+"'")
	}
	if in.Type != "" {
		parts = append(parts, "type='"+in.Type+"'")
	}
	if in.Placeholder != "" {
		parts = append(parts, "placeholder='"+in.Placeholder+"'")
	}
	return "input[" + strings.Join(parts, " ") + "]"
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
