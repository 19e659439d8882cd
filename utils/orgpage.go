/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package utils

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/niklasfasching/go-org/org"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// OrgPage is an org-mode document rendered to HTML.
type OrgPage struct {
	Title string
	HTML  string
}

// RenderOrgPage converts org-mode content to HTML. Links leaving the site
// open in a new tab without an opener reference.
func RenderOrgPage(content string) (OrgPage, error) {
	config := org.New()

	doc := config.Parse(strings.NewReader(content), "")
	if doc.Error != nil {
		return OrgPage{}, fmt.Errorf("failed to parse org-mode content: %w", doc.Error)
	}

	writer := org.NewHTMLWriter()
	writer.HighlightCodeBlock = func(source, lang string, inline bool, params map[string]string) string {
		if inline {
			return `<code class="inline-code">` + html.EscapeString(source) + `</code>`
		}

		return `<pre><code class="code-block">` + html.EscapeString(source) + `</code></pre>`
	}

	rendered, err := doc.Write(writer)
	if err != nil {
		return OrgPage{}, fmt.Errorf("failed to render HTML: %w", err)
	}

	annotated, err := markExternalLinks(rendered)
	if err != nil {
		return OrgPage{}, fmt.Errorf("failed to annotate external links: %w", err)
	}

	title := strings.TrimSpace(doc.Get("TITLE"))
	if title == "" {
		title = "Untitled"
	}

	return OrgPage{Title: title, HTML: annotated}, nil
}

func markExternalLinks(body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return body, nil
	}

	container := &nethtml.Node{Type: nethtml.ElementNode, Data: "div", DataAtom: atom.Div}

	nodes, err := nethtml.ParseFragment(strings.NewReader(body), container)
	if err != nil {
		return "", err
	}

	for _, node := range nodes {
		container.AppendChild(node)
	}

	walkLinks(container)

	var buffer bytes.Buffer
	for child := container.FirstChild; child != nil; child = child.NextSibling {
		if err := nethtml.Render(&buffer, child); err != nil {
			return "", err
		}
	}

	return buffer.String(), nil
}

func walkLinks(node *nethtml.Node) {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == nethtml.ElementNode && child.DataAtom == atom.A && isExternalLink(attr(child, "href")) {
			setAttr(child, "rel", "noopener noreferrer")
			setAttr(child, "target", "_blank")
		}

		walkLinks(child)
	}
}

func isExternalLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))

	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") || strings.HasPrefix(href, "//")
}

func attr(node *nethtml.Node, key string) string {
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}

func setAttr(node *nethtml.Node, key, value string) {
	for i := range node.Attr {
		if node.Attr[i].Key == key {
			node.Attr[i].Val = value
			return
		}
	}

	node.Attr = append(node.Attr, nethtml.Attribute{Key: key, Val: value})
}
