package modules

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
)

// Remote renders HTML fetched from a URL, optionally narrowed to the
// elements matching a CSS selector or an XPath expression.
type Remote struct {
	Settings
	client   *Client
	url      string
	selector cascadia.Selector
	xpath    *xpath.Expr
	headers  map[string]string
}

// NewRemote builds a Remote from args: position and url are required;
// select or xpath, and headers are optional.
func NewRemote(client *Client, args map[string]any, defaults Defaults) (*Remote, error) {
	settings, err := parseSettings(args, defaults)
	if err != nil {
		return nil, err
	}
	url, err := getString(args, "url", true)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("url must be http or https: %s", url)
	}
	selector, err := getString(args, "select", false)
	if err != nil {
		return nil, err
	}
	expr, err := getString(args, "xpath", false)
	if err != nil {
		return nil, err
	}
	if selector != "" && expr != "" {
		return nil, fmt.Errorf("select and xpath are mutually exclusive")
	}
	var sel cascadia.Selector
	if selector != "" {
		if sel, err = cascadia.Compile(selector); err != nil {
			return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
		}
	}
	var compiled *xpath.Expr
	if expr != "" {
		if compiled, err = xpath.Compile(expr); err != nil {
			return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
		}
	}
	headers, err := getStringMap(args, "headers")
	if err != nil {
		return nil, err
	}

	return &Remote{
		Settings: settings,
		client:   client,
		url:      url,
		selector: sel,
		xpath:    compiled,
		headers:  headers,
	}, nil
}

func (r *Remote) Render(ctx context.Context, args any) (string, error) {
	body, err := r.client.Fetch(ctx, r.url, r.headers)
	if err != nil {
		return "", err
	}
	switch {
	case r.selector != nil:
		return selectHTML(body, r.selector)
	case r.xpath != nil:
		return queryHTML(body, r.xpath)
	default:
		return body, nil
	}
}

// selectHTML returns the outer HTML of every element matching selector.
func selectHTML(body string, selector cascadia.Selector) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse remote html: %w", err)
	}

	var sb strings.Builder
	var outErr error
	doc.FindMatcher(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		html, err := goquery.OuterHtml(s)
		if err != nil {
			outErr = err
			return false
		}
		sb.WriteString(html)
		return true
	})
	if outErr != nil {
		return "", fmt.Errorf("render selection: %w", outErr)
	}
	return sb.String(), nil
}

// queryHTML returns the outer HTML of every node matching expr.
func queryHTML(body string, expr *xpath.Expr) (string, error) {
	doc, err := htmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse remote html: %w", err)
	}

	var sb strings.Builder
	for _, node := range htmlquery.QuerySelectorAll(doc, expr) {
		sb.WriteString(htmlquery.OutputHTML(node, true))
	}
	return sb.String(), nil
}
