package droidrun

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/devicelab-dev/droidreplay/pkg/core"
)

// Tap taps at (x, y).
func (c *Client) Tap(ctx context.Context, x, y int) error {
	return c.post(ctx, "/action/tap", map[string]int{"x": x, "y": y})
}

// Swipe drags from start to end. Equal endpoints produce a long press.
func (c *Client) Swipe(ctx context.Context, startX, startY, endX, endY, durationMs int) error {
	return c.post(ctx, "/action/swipe", map[string]int{
		"startX":   startX,
		"startY":   startY,
		"endX":     endX,
		"endY":     endY,
		"duration": durationMs,
	})
}

// GlobalAction issues a system action such as core.GlobalActionHome.
func (c *Client) GlobalAction(ctx context.Context, action int) error {
	return c.post(ctx, "/action/global", map[string]int{"action": action})
}

// InputText types text. The service expects UTF-8 bytes in standard base64.
func (c *Client) InputText(ctx context.Context, text string) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	return c.post(ctx, "/keyboard/input", map[string]string{"base64_text": encoded})
}

// ClearText clears the focused field.
func (c *Client) ClearText(ctx context.Context) error {
	return c.post(ctx, "/keyboard/clear", map[string]string{})
}

// PressKey sends an Android key code.
func (c *Client) PressKey(ctx context.Context, keyCode int) error {
	return c.post(ctx, "/keyboard/key", map[string]int{"key_code": keyCode})
}

// AccessibilityTree returns the raw /a11y_tree body.
func (c *Client) AccessibilityTree(ctx context.Context) ([]byte, error) {
	resp, err := c.get(ctx, "/a11y_tree", c.cfg.FetchTimeout)
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

// FullState returns the raw /state_full body.
func (c *Client) FullState(ctx context.Context) ([]byte, error) {
	resp, err := c.get(ctx, "/state_full", c.cfg.FetchTimeout)
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

// DeviceState reads /phone_state. Fields may sit at the top level or inside
// "result", which some service versions send as a JSON-encoded string.
func (c *Client) DeviceState(ctx context.Context) (*core.DeviceState, error) {
	resp, err := c.get(ctx, "/phone_state", c.cfg.StateTimeout)
	if err != nil {
		return nil, err
	}
	return parsePhoneState(resp.body)
}

func parsePhoneState(body []byte) (*core.DeviceState, error) {
	if !gjson.ValidBytes(body) {
		return nil, core.ErrDecode.WithMessage("phone state is not JSON")
	}
	top := gjson.ParseBytes(body)
	inner := unwrapResult(top)

	field := func(name string) gjson.Result {
		if v := inner.Get(name); v.Exists() {
			return v
		}
		return top.Get(name)
	}

	state := &core.DeviceState{
		DisplayWidth:  1080,
		DisplayHeight: 2400,
		CurrentApp:    "Unknown",
	}
	if v := field("displayWidth"); v.Exists() && v.Int() > 0 {
		state.DisplayWidth = int(v.Int())
	}
	if v := field("displayHeight"); v.Exists() && v.Int() > 0 {
		state.DisplayHeight = int(v.Int())
	}
	if v := field("currentApp"); v.Exists() && v.String() != "" {
		state.CurrentApp = v.String()
	}
	state.PackageName = field("packageName").String()
	state.KeyboardShown = field("keyboardVisible").Bool()
	return state, nil
}

// unwrapResult returns the "result" member, decoding it when it is a string
// holding JSON. Without a usable result it returns an empty value.
func unwrapResult(top gjson.Result) gjson.Result {
	r := top.Get("result")
	if r.Type == gjson.String && gjson.Valid(r.String()) {
		return gjson.Parse(r.String())
	}
	if r.IsObject() || r.IsArray() {
		return r
	}
	return gjson.Result{}
}

// Ping succeeds when /ping answers with a 2xx status.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/ping", c.cfg.PingTimeout)
	return err
}

// Packages lists launchable apps from /packages.
func (c *Client) Packages(ctx context.Context) ([]core.Package, error) {
	resp, err := c.get(ctx, "/packages", c.cfg.FetchTimeout)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(resp.body) {
		return nil, core.ErrDecode.WithMessage("package list is not JSON")
	}

	top := gjson.ParseBytes(resp.body)
	list := unwrapResult(top)
	if !list.IsArray() {
		if top.IsArray() {
			list = top
		} else {
			return nil, core.ErrDecode.WithMessage("package list has no result array")
		}
	}

	var pkgs []core.Package
	list.ForEach(func(_, v gjson.Result) bool {
		pkgs = append(pkgs, core.Package{
			Label:       v.Get("label").String(),
			PackageName: v.Get("packageName").String(),
		})
		return true
	})
	return pkgs, nil
}

// Screenshot returns PNG bytes. The service either streams image/png or
// answers with base64 text, optionally wrapped in {"result": ...}.
func (c *Client) Screenshot(ctx context.Context) ([]byte, error) {
	resp, err := c.get(ctx, "/screenshot", c.cfg.FetchTimeout)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(resp.contentType, "image/png") {
		return resp.body, nil
	}

	text := strings.TrimSpace(string(resp.body))
	if strings.HasPrefix(text, "{") {
		text = gjson.Get(text, "result").String()
	}
	text = strings.Trim(text, `"`)
	png, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, core.ErrDecode.WithCause(fmt.Errorf("screenshot: %w", err))
	}
	return png, nil
}
