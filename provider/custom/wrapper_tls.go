package custom

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vidlink-cli/vidlink/network"
	lua "github.com/yuin/gopher-lua"
)

// tlsDoer backs the http_tls module. Requests carry a Chrome TLS fingerprint.
var tlsDoer = func() network.Doer { return network.Browser() }

// preloadTLS registers the "http_tls" module:
//
//	http_tls.get(url [, headers])                       -> body
//	http_tls.request({method, url, headers, body})      -> {status, body, headers}
//
// Requests are bound to the context of the current provider call.
func preloadTLS(L *lua.LState) {
	L.PreloadModule("http_tls", func(L *lua.LState) int {
		mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
			"get":     tlsGet,
			"request": tlsRequest,
		})
		L.Push(mod)
		return 1
	})
}

func tlsGet(L *lua.LState) int {
	url := L.CheckString(1)
	headers := L.OptTable(2, nil)

	status, body, _, err := doTLS(L.Context(), http.MethodGet, url, tableHeaders(headers), "")
	if err != nil {
		L.RaiseError("http_tls.get: %s", err.Error())
		return 0
	}
	if status >= http.StatusBadRequest {
		L.RaiseError("http_tls.get: unexpected status %d", status)
		return 0
	}

	L.Push(lua.LString(body))
	return 1
}

func tlsRequest(L *lua.LState) int {
	opts := L.CheckTable(1)

	method := getString(opts, "method")
	if method == "" {
		method = http.MethodGet
	}
	url := getString(opts, "url")
	if url == "" {
		L.RaiseError("http_tls.request: url is required")
		return 0
	}

	var headers map[string]string
	if tbl, ok := opts.RawGetString("headers").(*lua.LTable); ok {
		headers = tableHeaders(tbl)
	}

	status, body, respHeaders, err := doTLS(L.Context(), strings.ToUpper(method), url, headers, getString(opts, "body"))
	if err != nil {
		L.RaiseError("http_tls.request: %s", err.Error())
		return 0
	}

	hdrs := L.NewTable()
	for k := range respHeaders {
		hdrs.RawSetString(strings.ToLower(k), lua.LString(respHeaders.Get(k)))
	}

	result := L.NewTable()
	result.RawSetString("status", lua.LNumber(status))
	result.RawSetString("body", lua.LString(body))
	result.RawSetString("headers", hdrs)
	L.Push(result)
	return 1
}

func tableHeaders(tbl *lua.LTable) map[string]string {
	headers := make(map[string]string)
	if tbl == nil {
		return headers
	}
	tbl.ForEach(func(k, v lua.LValue) {
		headers[k.String()] = v.String()
	})
	return headers
}

func doTLS(ctx context.Context, method, url string, headers map[string]string, body string) (int, string, http.Header, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, "", nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", network.UserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tlsDoer().Do(req)
	if err != nil {
		return 0, "", nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", resp.Header, fmt.Errorf("read body: %w", err)
	}

	return resp.StatusCode, string(data), resp.Header, nil
}
