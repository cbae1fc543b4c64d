package meetbot

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// rawHolder is implemented by records that keep the exact body they were decoded from
type rawHolder interface {
	setRaw(json.RawMessage)
}

func (b *Bot) setRaw(raw json.RawMessage) { b.Raw = raw }
func (u *User) setRaw(raw json.RawMessage) { u.Raw = raw }
func (k *CreatedAPIKey) setRaw(raw json.RawMessage) { k.Raw = raw }
func (k *APIKey) setRaw(raw json.RawMessage) { k.Raw = raw }
func (a *Acknowledgement) setRaw(raw json.RawMessage) { a.Raw = raw }
func (t *Transcript) setRaw(raw json.RawMessage) { t.Raw = raw }

var errMalformedBody = errors.New("response body is not valid JSON")

// decodeBody fills out from a 2xx body. Fields whose JSON type does not match
// the record are converted where possible and left zero otherwise; only a body
// that is not JSON at all is an error.
func decodeBody(body []byte, out any) error {
	if !json.Valid(body) {
		return errMalformedBody
	}
	if h, ok := out.(rawHolder); ok {
		defer h.setRaw(json.RawMessage(body))
	}

	if err := json.Unmarshal(body, out); err == nil {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return err
	}

	md, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(lenientTimeHook),
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	// Per-field conversion failures leave those fields zero
	_ = md.Decode(generic)
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

// lenientTimeHook accepts RFC 3339 strings and epoch timestamps in seconds or milliseconds
func lenientTimeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t, nil
		}
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return epochTime(n), nil
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return epochTime(n), nil
		}
		if f, err := v.Float64(); err == nil {
			return epochTime(int64(f)), nil
		}
	}
	return time.Time{}, nil
}

// epochTime treats values past the year 5138 in seconds as milliseconds
func epochTime(n int64) time.Time {
	if n > 1e11 || n < -1e11 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
