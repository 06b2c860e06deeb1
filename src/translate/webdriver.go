package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
)

// NewWebDriverDialer connects to a running chromedriver/geckodriver at
// remoteURL (for example http://localhost:9515).
func NewWebDriverDialer(remoteURL, browserName string, headless bool) Dialer {
	return func(ctx context.Context) (Browser, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := strings.ToLower(strings.TrimSpace(browserName))
		if name == "" {
			name = "chrome"
		}
		caps := selenium.Capabilities{"browserName": name}
		switch name {
		case "chrome":
			var args []string
			if headless {
				args = append(args, "--headless=new", "--disable-gpu")
			}
			caps.AddChrome(chrome.Capabilities{Args: args})
		case "firefox":
			var args []string
			if headless {
				args = append(args, "-headless")
			}
			caps.AddFirefox(firefox.Capabilities{Args: args})
		}
		wd, err := selenium.NewRemote(caps, remoteURL)
		if err != nil {
			return nil, fmt.Errorf("connect to webdriver at %s: %w", remoteURL, err)
		}
		return &webdriverBrowser{wd: wd}, nil
	}
}

type webdriverBrowser struct {
	wd selenium.WebDriver
}

func (b *webdriverBrowser) Get(url string) error { return b.wd.Get(url) }

func (b *webdriverBrowser) CurrentURL() (string, error) { return b.wd.CurrentURL() }

func (b *webdriverBrowser) FindElements(css string) ([]Element, error) {
	found, err := b.wd.FindElements(selenium.ByCSSSelector, css)
	if err != nil {
		return nil, err
	}
	out := make([]Element, len(found))
	for i, el := range found {
		out[i] = webdriverElement{el: el}
	}
	return out, nil
}

func (b *webdriverBrowser) ExecuteScript(script string) (any, error) {
	return b.wd.ExecuteScript(script, nil)
}

func (b *webdriverBrowser) Quit() error { return b.wd.Quit() }

type webdriverElement struct {
	el selenium.WebElement
}

func (e webdriverElement) SendKeys(keys string) error { return e.el.SendKeys(keys) }

func (e webdriverElement) Clear() error {
	return e.el.SendKeys(selenium.ControlKey + "a" + selenium.NullKey + selenium.BackspaceKey)
}

func (e webdriverElement) Text() (string, error) { return e.el.Text() }

func (e webdriverElement) IsDisplayed() (bool, error) { return e.el.IsDisplayed() }

func (e webdriverElement) IsEnabled() (bool, error) { return e.el.IsEnabled() }
