package tokenizer

import (
	"fmt"

	"github.com/buger/jsonparser"
)

// Adapter drives jsonparser's callback-based parse over a fully-read
// input document and forwards equivalent push-SAX events to a Handler.
// It owns no state of its own beyond the in-flight abort flag — it is a
// pure translation layer between jsonparser's recursive callbacks and
// the flat event stream the ingestion core expects.
type Adapter struct {
	handler Handler
	aborted bool
}

// NewAdapter returns an Adapter forwarding events to handler.
func NewAdapter(handler Handler) *Adapter {
	return &Adapter{handler: handler}
}

// Parse walks data — a single complete JSON document — driving Handler.
// A non-nil error always indicates malformed input (spec's ParseError
// kind); the core itself never requests Abort, so Parse only stops early
// when a handler explicitly does.
func (a *Adapter) Parse(data []byte) error {
	root, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return a.walk(root, dataType)
}

func (a *Adapter) walk(data []byte, dataType jsonparser.ValueType) error {
	if a.aborted {
		return nil
	}
	switch dataType {
	case jsonparser.Object:
		return a.walkObject(data)
	case jsonparser.Array:
		return a.walkArray(data)
	case jsonparser.String:
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return fmt.Errorf("parse string: %w", err)
		}
		a.dispatch(a.handler.String(s))
		return nil
	case jsonparser.Number:
		return a.walkNumber(data)
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(data)
		if err != nil {
			return fmt.Errorf("parse bool: %w", err)
		}
		a.dispatch(a.handler.Bool(b))
		return nil
	case jsonparser.Null:
		a.dispatch(a.handler.Null())
		return nil
	default:
		return fmt.Errorf("unexpected json token type %v", dataType)
	}
}

func (a *Adapter) walkObject(data []byte) error {
	a.dispatch(a.handler.StartMap())
	var walkErr error
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		if a.aborted || walkErr != nil {
			return nil
		}
		a.dispatch(a.handler.MapKey(string(key)))
		if werr := a.walk(value, dataType); werr != nil {
			walkErr = werr
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk object: %w", err)
	}
	if walkErr != nil {
		return walkErr
	}
	a.dispatch(a.handler.EndMap())
	return nil
}

func (a *Adapter) walkArray(data []byte) error {
	a.dispatch(a.handler.StartArray())
	var walkErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, entryErr error) {
		if a.aborted || walkErr != nil {
			return
		}
		if entryErr != nil {
			walkErr = fmt.Errorf("walk array entry: %w", entryErr)
			return
		}
		if werr := a.walk(value, dataType); werr != nil {
			walkErr = werr
		}
	})
	if err != nil {
		return fmt.Errorf("walk array: %w", err)
	}
	if walkErr != nil {
		return walkErr
	}
	a.dispatch(a.handler.EndArray())
	return nil
}

// walkNumber picks Int vs Double the way encoding/json's Rust sibling
// (serde_json) picks i64 vs f64: a literal that parses cleanly as an
// integer is Int, anything else (decimal point, exponent, overflow) is
// Double.
func (a *Adapter) walkNumber(data []byte) error {
	if i, err := jsonparser.ParseInt(data); err == nil {
		a.dispatch(a.handler.Int(i))
		return nil
	}
	f, err := jsonparser.ParseFloat(data)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", data, err)
	}
	a.dispatch(a.handler.Double(f))
	return nil
}

func (a *Adapter) dispatch(status Status) {
	if status == Abort {
		a.aborted = true
	}
}
