package payos

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// WebhookEvent is a verified payment notification.
type WebhookEvent struct {
	OrderCode string
	Code      string
	Raw       json.RawMessage
}

// Sign returns the hex HMAC-SHA256 of data under key.
func Sign(data, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook checks the signature over body.data and extracts the order code.
func (c *Client) VerifyWebhook(body []byte) (*WebhookEvent, error) {
	if c.checksumKey == "" {
		return nil, ErrNotConfigured
	}
	var payload struct {
		Code      string          `json:"code"`
		Data      json.RawMessage `json:"data"`
		Signature string          `json:"signature"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("payos webhook decode: %w", err)
	}
	if payload.Signature == "" || len(payload.Data) == 0 {
		return nil, ErrInvalidSignature
	}

	dec := json.NewDecoder(bytes.NewReader(payload.Data))
	dec.UseNumber()
	var data map[string]interface{}
	if err := dec.Decode(&data); err != nil || data == nil {
		return nil, ErrInvalidSignature
	}

	expected := Sign(DataString(data), c.checksumKey)
	if !hmac.Equal([]byte(expected), []byte(payload.Signature)) {
		return nil, ErrInvalidSignature
	}

	return &WebhookEvent{
		OrderCode: stringify(data["orderCode"]),
		Code:      stringify(data["code"]),
		Raw:       json.RawMessage(body),
	}, nil
}

// DataString joins the fields as key=value pairs sorted by key. Values are
// component-encoded; null becomes empty and nested values are JSON.
func DataString(data map[string]interface{}) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+encodeComponent(stringify(data[k])))
	}
	return strings.Join(parts, "&")
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

var componentUnescape = strings.NewReplacer("+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")

// encodeComponent matches the URI component encoding PayOS signs with.
func encodeComponent(s string) string {
	return componentUnescape.Replace(url.QueryEscape(s))
}
