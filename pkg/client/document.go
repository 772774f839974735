package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/xkong/wechatbackends/internal/query"
	"github.com/xkong/wechatbackends/pkg/contenttype"
	"github.com/xkong/wechatbackends/pkg/jsoncompact"
)

// Document is a decoded JSON response. The console returns loosely shaped
// objects, so fields are read through path accessors instead of structs.
type Document map[string]any

// BaseResp is the status block most endpoints embed.
type BaseResp struct {
	Ret    int    `json:"ret"`
	ErrMsg string `json:"err_msg"`
}

// Get walks path through nested objects and arrays. Array elements are
// addressed by their decimal index.
func (d Document) Get(path ...string) (any, bool) {
	var cur any = map[string]any(d)
	for _, key := range path {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[key]
			if !ok {
				return nil, false
			}
			cur = v
		case Document:
			v, ok := node[key]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// String returns the value at path as a string. Numbers are formatted
// without exponent so ids survive. Missing values yield "".
func (d Document) String(path ...string) string {
	v, ok := d.Get(path...)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case nil:
		return ""
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Int returns the value at path as an int. Numeric strings such as "0" are
// accepted because some endpoints quote their ret codes.
func (d Document) Int(path ...string) (int, bool) {
	v, ok := d.Get(path...)
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return int(val), true
	case int:
		return val, true
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i), true
		}
		f, err := val.Float64()
		return int(f), err == nil
	case string:
		i, err := strconv.Atoi(val)
		return i, err == nil
	default:
		return 0, false
	}
}

// Items returns the array at path, or nil.
func (d Document) Items(path ...string) []any {
	v, ok := d.Get(path...)
	if !ok {
		return nil
	}
	items, _ := v.([]any)
	return items
}

// Object returns the object at path as a Document, or nil.
func (d Document) Object(path ...string) Document {
	v, ok := d.Get(path...)
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case map[string]any:
		return Document(val)
	case Document:
		return val
	}
	return nil
}

// Query runs a jq expression against the document.
func (d Document) Query(expression string) ([]any, error) {
	return query.Run(map[string]any(d), expression)
}

// BaseResp returns the base_resp block. ok is false when there is none.
func (d Document) BaseResp() (br BaseResp, ok bool) {
	if _, ok := d.Get("base_resp"); !ok {
		return BaseResp{}, false
	}
	br.Ret, _ = d.Int("base_resp", "ret")
	br.ErrMsg = d.String("base_resp", "err_msg")
	return br, true
}

// Err returns a *ServerError when the body reports a failure, either in
// base_resp.ret or in a top level ret field.
func (d Document) Err() error {
	if br, ok := d.BaseResp(); ok {
		if br.Ret != RetOK {
			return &ServerError{Ret: br.Ret, Msg: br.ErrMsg}
		}
		return nil
	}
	if ret, ok := d.Int("ret"); ok && ret != RetOK {
		return &ServerError{Ret: ret, Msg: d.String("msg")}
	}
	return nil
}

// errNotObject is reported for a body that is valid JSON but not an object.
var errNotObject = errors.New("response is not a JSON object")

func decodeDocument(body []byte, contentType string) (Document, error) {
	doc, err := unmarshalDocument(body)
	if err != nil {
		return nil, &DecodeError{
			Category: contenttype.Detect(contentType, body),
			Snippet:  jsoncompact.Preview(body, previewBytes),
			Err:      err,
		}
	}
	return doc, nil
}

// unmarshalDocument decodes a JSON object keeping numbers as json.Number,
// so 64-bit ids are not rounded through float64.
func unmarshalDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errNotObject
	}
	return doc, nil
}
