package transloader

import "time"

const (
	// timeFormat renders datetime-valued request fields (fromdate, todate).
	timeFormat = "2006-01-02 15:04:05"

	// expiresFormat renders the auth block's expires field. The API accepts
	// slash-separated dates here and the signature covers the exact bytes,
	// so the format must stay stable.
	expiresFormat = "2006/01/02 15:04:05"

	// authTTL is how far in the future a request signature expires.
	authTTL = 24 * time.Hour
)

// params is the request parameter document that gets JSON-serialized and
// signed. Values are whatever encoding/json can serialize.
type params map[string]any

// newParams builds a params document seeded with the auth block.
func (c *Client) newParams() params {
	return params{
		"auth": map[string]string{
			"key":     c.key,
			"expires": c.now().UTC().Add(authTTL).Format(expiresFormat),
		},
	}
}

// set adds a field, dropping unset values entirely: nil, empty strings,
// zero times, and nil maps never appear in the serialized document.
func (p params) set(key string, value any) {
	switch v := value.(type) {
	case nil:
		return
	case string:
		if v == "" {
			return
		}
	case time.Time:
		if v.IsZero() {
			return
		}
		p[key] = v.Format(timeFormat)
		return
	case map[string]any:
		if v == nil {
			return
		}
	}
	p[key] = value
}

// truthy reports whether a decoded JSON value signals an error per the
// API's convention (non-empty string, true, or non-zero number).
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}
