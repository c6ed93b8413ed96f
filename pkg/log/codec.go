package log

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// ErrUnknownKind is returned when an event carries a kind outside the
// discovery event set.
var ErrUnknownKind = errors.New("unknown event kind")

var (
	encMode = mustEncMode()
	decMode = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	mode, err := cbor.EncOptions{
		Sort:        cbor.SortCoreDeterministic,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("journal: cbor encoder mode: %v", err))
	}
	return mode
}

func mustDecMode() cbor.DecMode {
	mode, err := cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("journal: cbor decoder mode: %v", err))
	}
	return mode
}

// validate rejects events that could not have come from the reconciler.
func (e Event) validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownKind, uint8(e.Kind))
	}
	return nil
}

// EncodeEvent returns the CBOR record for event. Map keys are sorted so the
// same event always encodes to the same bytes.
func EncodeEvent(event Event) ([]byte, error) {
	if err := event.validate(); err != nil {
		return nil, err
	}
	return encMode.Marshal(event)
}

// DecodeEvent parses a single CBOR record.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := decMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	if err := event.validate(); err != nil {
		return Event{}, err
	}
	return event, nil
}

// decodeNext reads the next record from a concatenated stream.
func decodeNext(dec *cbor.Decoder) (Event, error) {
	var event Event
	if err := dec.Decode(&event); err != nil {
		return Event{}, err
	}
	if err := event.validate(); err != nil {
		return Event{}, err
	}
	return event, nil
}

func newDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}
