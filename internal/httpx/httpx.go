package httpx

import (
	"encoding/json"
	"errors"
	"io"
)

func DecodeJSON(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}
