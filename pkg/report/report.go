// Package report encodes delivery status reports: an ordered list of
// (message ID, status) pairs sent as application/mimi-message-status.
package report

import (
	"fmt"

	"github.com/ZentaChain/zentalk-content/pkg/content"
	"github.com/ZentaChain/zentalk-content/pkg/enum"
	"github.com/ZentaChain/zentalk-content/pkg/wire"
)

// MediaType identifies an encoded MessageStatusReport
const MediaType = content.StatusMediaType

// BaseStatus is the set of named delivery states
type BaseStatus uint8

const (
	StatusUnread    BaseStatus = 0
	StatusDelivered BaseStatus = 1
	StatusRead      BaseStatus = 2
	StatusExpired   BaseStatus = 3
	StatusDeleted   BaseStatus = 4
	StatusHidden    BaseStatus = 5
	StatusError     BaseStatus = 6
)

var statusNames = [...]string{
	StatusUnread:    "unread",
	StatusDelivered: "delivered",
	StatusRead:      "read",
	StatusExpired:   "expired",
	StatusDeleted:   "deleted",
	StatusHidden:    "hidden",
	StatusError:     "error",
}

// Known reports whether s is a named status
func (s BaseStatus) Known() bool {
	return int(s) < len(statusNames)
}

func (s BaseStatus) String() string {
	if s.Known() {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Code wraps s as a MessageStatus
func (s BaseStatus) Code() MessageStatus {
	return enum.Of(s)
}

// MessageStatus is a delivery state. Codes without a name are kept as is.
type MessageStatus = enum.Code[BaseStatus]

// ParseStatus looks a status up by name
func ParseStatus(name string) (MessageStatus, bool) {
	for i, n := range statusNames {
		if n == name {
			return BaseStatus(i).Code(), true
		}
	}
	return MessageStatus{}, false
}

// PerMessageStatus is the state of one message
type PerMessageStatus struct {
	MessageID content.MessageID
	Status    MessageStatus
}

// View returns a borrowed view of s
func (s *PerMessageStatus) View() PerMessageStatusRef {
	return PerMessageStatusRef{MessageID: s.MessageID.View(), Status: &s.Status}
}

// MarshalCBOR encodes s as a [message-id, status] pair
func (s PerMessageStatus) MarshalCBOR() ([]byte, error) {
	return s.View().MarshalCBOR()
}

// UnmarshalCBOR decodes a [message-id, status] pair
func (s *PerMessageStatus) UnmarshalCBOR(data []byte) error {
	if wire.IsNull(data) {
		return wire.ErrUnexpectedNull
	}

	r, err := wire.NewSeqReader(nil, data)
	if err != nil {
		return err
	}

	var out PerMessageStatus
	if err := r.Next(&out.MessageID); err != nil {
		return fmt.Errorf("message ID: %w", err)
	}
	if err := r.Next(&out.Status); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if err := r.End(); err != nil {
		return err
	}

	*s = out
	return nil
}

// PerMessageStatusRef is a borrowed view of a PerMessageStatus
type PerMessageStatusRef struct {
	MessageID content.MessageIDRef
	Status    *MessageStatus
}

// MarshalCBOR encodes the viewed pair
func (r PerMessageStatusRef) MarshalCBOR() ([]byte, error) {
	w := wire.NewSeqWriter(2)
	w.Elem(r.MessageID)
	if r.Status == nil {
		w.Elem(StatusUnread.Code())
	} else {
		w.Elem(*r.Status)
	}
	return w.End()
}

// MessageStatusReport lists message states in the order they were added.
// The same message may appear more than once.
type MessageStatusReport struct {
	Statuses []PerMessageStatus
}

// Add appends the state of one message
func (m *MessageStatusReport) Add(id content.MessageID, status MessageStatus) {
	m.Statuses = append(m.Statuses, PerMessageStatus{MessageID: id, Status: status})
}

// Get returns the last state reported for id
func (m *MessageStatusReport) Get(id content.MessageID) (MessageStatus, bool) {
	for i := len(m.Statuses) - 1; i >= 0; i-- {
		if m.Statuses[i].MessageID == id {
			return m.Statuses[i].Status, true
		}
	}
	return MessageStatus{}, false
}

// Len returns the number of entries
func (m *MessageStatusReport) Len() int {
	return len(m.Statuses)
}

// View returns a borrowed view of m
func (m *MessageStatusReport) View() ReportRef {
	return ReportRef{p: &m.Statuses}
}

// MarshalCBOR encodes m as an array of pairs
func (m MessageStatusReport) MarshalCBOR() ([]byte, error) {
	return m.View().MarshalCBOR()
}

// UnmarshalCBOR decodes an array of pairs; null is rejected
func (m *MessageStatusReport) UnmarshalCBOR(data []byte) error {
	if wire.IsNull(data) {
		return wire.ErrUnexpectedNull
	}

	r, err := wire.NewSeqReader(nil, data)
	if err != nil {
		return err
	}

	var statuses []PerMessageStatus
	for i := 0; r.Remaining() > 0; i++ {
		var s PerMessageStatus
		if err := r.Next(&s); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		statuses = append(statuses, s)
	}
	if err := r.End(); err != nil {
		return err
	}

	m.Statuses = statuses
	return nil
}

// ReportRef is a borrowed view of a MessageStatusReport
type ReportRef struct {
	p *[]PerMessageStatus
}

// Len returns the number of viewed entries
func (r ReportRef) Len() int {
	if r.p == nil {
		return 0
	}
	return len(*r.p)
}

// At returns a view of entry i
func (r ReportRef) At(i int) PerMessageStatusRef {
	return (*r.p)[i].View()
}

// MarshalCBOR encodes the viewed entries
func (r ReportRef) MarshalCBOR() ([]byte, error) {
	n := r.Len()
	w := wire.NewSeqWriter(n)
	for i := 0; i < n; i++ {
		w.Elem(r.At(i))
	}
	return w.End()
}

// Encode serializes m
func Encode(m *MessageStatusReport) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: %w", content.ErrEncode, content.ErrNilContent)
	}

	data, err := m.View().MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrEncode, err)
	}
	return data, nil
}

// Decode parses an encoded report
func Decode(data []byte) (*MessageStatusReport, error) {
	var m MessageStatusReport
	if err := m.UnmarshalCBOR(data); err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrDecode, err)
	}
	return &m, nil
}
