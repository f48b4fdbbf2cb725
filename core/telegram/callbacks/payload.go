// Package callbacks encodes and decodes inline button payloads.
//
// Three families share the 64-byte callback data budget:
//
//	proj:<action>:<item>:<index>:<category>   project navigation and moderation
//	cat:<category>                             category selection
//	menu:<name>                                static menu entries
package callbacks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxDataLen is the Telegram limit for callback data.
const MaxDataLen = 64

// PendingCategory is the category field value of buttons inside the moderation queue.
const PendingCategory int64 = -1

// Family distinguishes payload kinds by prefix.
type Family string

const (
	FamilyProject  Family = "proj"
	FamilyCategory Family = "cat"
	FamilyMenu     Family = "menu"
)

// Action is the verb of a project payload.
type Action string

const (
	ActionNext    Action = "next"
	ActionPrev    Action = "prev"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionGetDoc  Action = "get_doc"
)

var knownActions = map[Action]bool{
	ActionNext:    true,
	ActionPrev:    true,
	ActionDelete:  true,
	ActionApprove: true,
	ActionReject:  true,
	ActionGetDoc:  true,
}

var (
	// ErrUnknownPayload is returned for data without a known family prefix.
	ErrUnknownPayload = errors.New("callbacks: unknown payload family")
	// ErrMalformedPayload is returned when a known family has bad fields.
	ErrMalformedPayload = errors.New("callbacks: malformed payload")
)

// Payload is the decoded form of button data. Only the fields of its family are meaningful.
type Payload struct {
	Family     Family
	Action     Action
	ItemID     int64
	Index      int
	CategoryID int64
	Menu       string
}

// Project builds a navigation or moderation payload.
func Project(action Action, itemID int64, index int, categoryID int64) Payload {
	return Payload{Family: FamilyProject, Action: action, ItemID: itemID, Index: index, CategoryID: categoryID}
}

// Category builds a category selection payload.
func Category(id int64) Payload {
	return Payload{Family: FamilyCategory, CategoryID: id}
}

// Menu builds a static menu payload.
func Menu(name string) Payload {
	return Payload{Family: FamilyMenu, Menu: name}
}

// Pending reports whether a project payload was issued from the moderation queue.
func (p Payload) Pending() bool {
	return p.CategoryID == PendingCategory
}

// Encode renders the payload as callback data.
func (p Payload) Encode() string {
	switch p.Family {
	case FamilyProject:
		return strings.Join([]string{
			string(FamilyProject),
			string(p.Action),
			strconv.FormatInt(p.ItemID, 10),
			strconv.Itoa(p.Index),
			strconv.FormatInt(p.CategoryID, 10),
		}, ":")
	case FamilyCategory:
		return string(FamilyCategory) + ":" + strconv.FormatInt(p.CategoryID, 10)
	case FamilyMenu:
		return string(FamilyMenu) + ":" + p.Menu
	}
	return ""
}

// String implements fmt.Stringer.
func (p Payload) String() string { return p.Encode() }

// Decode parses callback data produced by Encode.
func Decode(data string) (Payload, error) {
	head, rest, ok := strings.Cut(data, ":")
	if !ok {
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownPayload, data)
	}
	switch Family(head) {
	case FamilyProject:
		return decodeProject(rest)
	case FamilyCategory:
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: category %q", ErrMalformedPayload, rest)
		}
		return Category(id), nil
	case FamilyMenu:
		if rest == "" || strings.Contains(rest, ":") {
			return Payload{}, fmt.Errorf("%w: menu %q", ErrMalformedPayload, rest)
		}
		return Menu(rest), nil
	}
	return Payload{}, fmt.Errorf("%w: %q", ErrUnknownPayload, head)
}

func decodeProject(rest string) (Payload, error) {
	parts := strings.Split(rest, ":")
	if len(parts) != 4 {
		return Payload{}, fmt.Errorf("%w: want 4 project fields, got %d", ErrMalformedPayload, len(parts))
	}
	action := Action(parts[0])
	if !knownActions[action] {
		return Payload{}, fmt.Errorf("%w: action %q", ErrMalformedPayload, parts[0])
	}
	item, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: item %q", ErrMalformedPayload, parts[1])
	}
	index, err := strconv.Atoi(parts[2])
	if err != nil {
		return Payload{}, fmt.Errorf("%w: index %q", ErrMalformedPayload, parts[2])
	}
	cat, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: category %q", ErrMalformedPayload, parts[3])
	}
	return Project(action, item, index, cat), nil
}
