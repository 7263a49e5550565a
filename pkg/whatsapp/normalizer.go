package whatsapp

import (
	"fmt"
	"strings"
	"time"

	"unifiedinbox/internal/constants"
	"unifiedinbox/internal/models"
	"unifiedinbox/pkg/whatsapp/types"

	"github.com/google/uuid"
)

// Normalizer turns WhatsApp webhook envelopes into inbox records. It has no
// side effects: the clock and id source are injected so results are
// deterministic in tests.
type Normalizer struct {
	now   func() time.Time
	newID func(time.Time) string
}

func NewNormalizerWithClock(now func() time.Time, newID func(time.Time) string) *Normalizer {
	return &Normalizer{now: now, newID: newID}
}

// NewRecordID returns wa_<unix-millis>_<random hex>
func NewRecordID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:constants.RecordIDRandomSuffixLen]
	return fmt.Sprintf("%s%d_%s", constants.WhatsAppRecordIDPrefix, now.UnixMilli(), suffix)
}

// Normalize inspects entry[0].changes[0].value and returns zero, one or two
// records: the inbound message record first, then the status record. A
// missing level at any depth yields no records.
func (n *Normalizer) Normalize(env *types.Envelope) []models.Message {
	return n.NormalizeValue(env.FirstValue())
}

func (n *Normalizer) NormalizeValue(value *types.ChangeValue) []models.Message {
	var records []models.Message

	if msg := value.FirstMessage(); msg != nil {
		records = append(records, n.inbound(msg))
	}
	if status := value.FirstStatus(); status != nil {
		records = append(records, n.status(status))
	}

	return records
}

func (n *Normalizer) inbound(msg *types.InboundMessage) models.Message {
	now := n.now()
	return models.Message{
		ID:         n.newID(now),
		Channel:    models.ChannelWhatsApp,
		Direction:  models.DirectionInbound,
		From:       msg.From.String(),
		Text:       MessageText(msg),
		ReceivedAt: n.timestamp(msg.Timestamp, now),
		Status:     models.StatusUnread,
	}
}

func (n *Normalizer) status(status *types.StatusUpdate) models.Message {
	now := n.now()
	token := status.Status.String()
	return models.Message{
		ID:         n.newID(now),
		Channel:    models.ChannelWhatsApp,
		Direction:  models.DirectionOutboundStatus,
		To:         status.RecipientID.String(),
		Text:       constants.StatusTextPrefix + token,
		ReceivedAt: n.timestamp(status.Timestamp, now),
		Status:     token,
	}
}

// timestamp prefers the provider's epoch seconds and falls back to the
// processing time
func (n *Normalizer) timestamp(ts types.FlexString, now time.Time) time.Time {
	if t, ok := ts.EpochSeconds(); ok {
		return t
	}
	return now.UTC()
}

// MessageText picks the displayable body of an inbound message: the text
// body, then an interactive button reply title, then a fixed placeholder.
func MessageText(msg *types.InboundMessage) string {
	if msg.Text != nil && msg.Text.Body != "" {
		return msg.Text.Body.String()
	}
	if msg.Interactive != nil && msg.Interactive.ButtonReply != nil && msg.Interactive.ButtonReply.Title != "" {
		return msg.Interactive.ButtonReply.Title.String()
	}
	return constants.NonTextPlaceholder
}
