package translate

import (
	"fmt"
	"net/url"
	"strings"
)

// Provider describes a web translator page: how to reach a language pair and
// where its input and output widgets are.
type Provider struct {
	Name        string
	Domain      string
	InputCSS    string
	InputIndex  int
	OutputCSS   string
	OutputIndex int

	pageURL func(source, target string) string
	onPage  func(u *url.URL, source, target string) bool
}

// URL returns the page for a language pair.
func (p Provider) URL(source, target string) string { return p.pageURL(source, target) }

// OnPage reports whether current is already the page for the language pair.
func (p Provider) OnPage(current, source, target string) bool {
	u, err := url.Parse(current)
	if err != nil || !sameHost(u.Hostname(), p.Domain) {
		return false
	}
	return p.onPage(u, source, target)
}

func sameHost(host, domain string) bool {
	return host == domain || strings.TrimPrefix(host, "www.") == domain
}

var Google = Provider{
	Name:      "google",
	Domain:    "translate.google.com",
	InputCSS:  "textarea",
	OutputCSS: "[jsname='r5xl4']",
	pageURL: func(source, target string) string {
		return fmt.Sprintf("https://translate.google.com/?sl=%s&tl=%s&op=translate", url.QueryEscape(source), url.QueryEscape(target))
	},
	onPage: func(u *url.URL, source, target string) bool {
		q := u.Query()
		return q.Get("sl") == source && q.Get("tl") == target
	},
}

var DeepL = Provider{
	Name:        "deepl",
	Domain:      "deepl.com",
	InputCSS:    "d-textarea",
	OutputCSS:   "d-textarea",
	OutputIndex: 1,
	pageURL: func(source, target string) string {
		return fmt.Sprintf("https://www.deepl.com/en/translator#%s/%s/", source, target)
	},
	onPage: func(u *url.URL, source, target string) bool {
		return strings.HasPrefix(u.Fragment, source+"/"+target+"/")
	},
}

// ProviderByName resolves "google" or "deepl" (case-insensitive).
func ProviderByName(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "google":
		return Google, nil
	case "deepl":
		return DeepL, nil
	}
	return Provider{}, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

// ProviderNames lists the supported providers.
func ProviderNames() []string { return []string{Google.Name, DeepL.Name} }
