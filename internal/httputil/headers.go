package httputil

import "net/http"

// PageHeaders returns browser-like headers for HTML page requests.
func PageHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "uk-UA,uk;q=0.9,en;q=0.8")
	h.Set("Accept-Encoding", "gzip, br")
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}

// ImageHeaders returns headers for product image downloads.
func ImageHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "image/avif,image/webp,image/png,image/jpeg,*/*;q=0.8")
	h.Set("Accept-Encoding", "gzip, br")
	return h
}

// Apply copies h into req without overriding headers already set.
func Apply(req *http.Request, h http.Header) {
	for k, v := range h {
		if req.Header.Get(k) == "" {
			req.Header[k] = v
		}
	}
}
