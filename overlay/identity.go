package overlay

import "net/url"

// IdentityOf returns the token identifying the video shown at location:
// the value of the query parameter param when present, otherwise the raw
// location string.
func IdentityOf(location, param string) string {
	if id := VideoIDOf(location, param); id != "" {
		return id
	}
	return location
}

// VideoIDOf returns the structured video id carried by location, or "".
func VideoIDOf(location, param string) string {
	u, err := url.Parse(location)
	if err != nil {
		return ""
	}
	return u.Query().Get(param)
}

// CanonicalURL returns the normalized watch URL for location. Without a
// structured id the raw location is returned.
func CanonicalURL(location, param, base string) string {
	id := VideoIDOf(location, param)
	if id == "" {
		return location
	}
	return base + "?" + url.Values{param: {id}}.Encode()
}
