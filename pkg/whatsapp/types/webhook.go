package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// FlexString decodes a JSON string or number into its textual form. Any other
// JSON kind (null, bool, object, array) decodes to the empty string without
// error, so one mistyped field does not discard the whole envelope.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*f = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*f = FlexString(data)
	default:
		*f = ""
	}
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// Bounds of the instants an RFC 3339 timestamp can represent.
var (
	minEpochSeconds = float64(time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC).Unix())
	maxEpochSeconds = float64(time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC).Unix())
)

// EpochSeconds parses the value as Unix seconds. ok is false for empty,
// non-numeric or non-finite values and for instants outside years 0 to 9999.
func (f FlexString) EpochSeconds() (t time.Time, ok bool) {
	if f == "" {
		return time.Time{}, false
	}
	secs, err := strconv.ParseFloat(string(f), 64)
	if err != nil || math.IsNaN(secs) || secs < minEpochSeconds || secs > maxEpochSeconds {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(secs * 1000)).UTC(), true
}

// Envelope is the WhatsApp Cloud API webhook body. Every level is optional;
// decoding a partial envelope never fails because of a missing field.
type Envelope struct {
	Object FlexString `json:"object,omitempty"`
	Entry  []Entry    `json:"entry,omitempty"`
}

type Entry struct {
	ID      FlexString `json:"id,omitempty"`
	Changes []Change   `json:"changes,omitempty"`
}

type Change struct {
	Field FlexString   `json:"field,omitempty"`
	Value *ChangeValue `json:"value,omitempty"`
}

type ChangeValue struct {
	MessagingProduct FlexString       `json:"messaging_product,omitempty"`
	Metadata         *Metadata        `json:"metadata,omitempty"`
	Contacts         []Contact        `json:"contacts,omitempty"`
	Messages         []InboundMessage `json:"messages,omitempty"`
	Statuses         []StatusUpdate   `json:"statuses,omitempty"`
}

type Metadata struct {
	DisplayPhoneNumber FlexString `json:"display_phone_number,omitempty"`
	PhoneNumberID      FlexString `json:"phone_number_id,omitempty"`
}

type Contact struct {
	WaID    FlexString `json:"wa_id,omitempty"`
	Profile *struct {
		Name FlexString `json:"name,omitempty"`
	} `json:"profile,omitempty"`
}

// InboundMessage is a single entry of value.messages
type InboundMessage struct {
	ID          FlexString   `json:"id,omitempty"`
	From        FlexString   `json:"from,omitempty"`
	Timestamp   FlexString   `json:"timestamp,omitempty"`
	Type        FlexString   `json:"type,omitempty"`
	Text        *TextBody    `json:"text,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
}

type TextBody struct {
	Body FlexString `json:"body,omitempty"`
}

type Interactive struct {
	Type        FlexString `json:"type,omitempty"`
	ButtonReply *Reply     `json:"button_reply,omitempty"`
	ListReply   *Reply     `json:"list_reply,omitempty"`
}

type Reply struct {
	ID    FlexString `json:"id,omitempty"`
	Title FlexString `json:"title,omitempty"`
}

// StatusUpdate is a single entry of value.statuses
type StatusUpdate struct {
	ID          FlexString `json:"id,omitempty"`
	Status      FlexString `json:"status,omitempty"`
	Timestamp   FlexString `json:"timestamp,omitempty"`
	RecipientID FlexString `json:"recipient_id,omitempty"`
}

// FirstValue returns entry[0].changes[0].value, or nil when any level is
// missing.
func (e *Envelope) FirstValue() *ChangeValue {
	if e == nil || len(e.Entry) == 0 || len(e.Entry[0].Changes) == 0 {
		return nil
	}
	return e.Entry[0].Changes[0].Value
}

// FirstMessage returns messages[0] or nil
func (v *ChangeValue) FirstMessage() *InboundMessage {
	if v == nil || len(v.Messages) == 0 {
		return nil
	}
	return &v.Messages[0]
}

// FirstStatus returns statuses[0] or nil
func (v *ChangeValue) FirstStatus() *StatusUpdate {
	if v == nil || len(v.Statuses) == 0 {
		return nil
	}
	return &v.Statuses[0]
}
