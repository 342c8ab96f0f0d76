package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure. Codes are part of the API contract; keep them stable.
type Kind int

const (
	Internal Kind = iota

	TokenMalformed
	TokenExpired
	TokenUnsupported
	TokenSignatureInvalid
	TokenInvalid
	TokenBlacklisted
	Unauthenticated

	UserNotFound
	WorkspaceNotFound
	MemberNotFound
	RequestNotFound
	ProfileNotFound

	NotAuthorized
	NotAMember
	UserNotActive

	AlreadyMember
	JoinRequestPending
	RequestNotPending
	Conflict

	InvalidArgument
	CannotRemoveOwner
	SelfRemoval
	OwnerRoleChange
	MemberNotInWorkspace
	RequestNotInWorkspace
	UserAlreadyDeleted

	RateLimited
)

type kindInfo struct {
	code   string
	status int
}

var kinds = map[Kind]kindInfo{
	Internal: {"INTERNAL", http.StatusInternalServerError},

	TokenMalformed:        {"TOKEN_MALFORMED", http.StatusUnauthorized},
	TokenExpired:          {"TOKEN_EXPIRED", http.StatusUnauthorized},
	TokenUnsupported:      {"TOKEN_UNSUPPORTED", http.StatusUnauthorized},
	TokenSignatureInvalid: {"TOKEN_SIGNATURE_INVALID", http.StatusUnauthorized},
	TokenInvalid:          {"TOKEN_INVALID", http.StatusUnauthorized},
	TokenBlacklisted:      {"TOKEN_BLACKLISTED", http.StatusUnauthorized},
	Unauthenticated:       {"UNAUTHENTICATED", http.StatusUnauthorized},

	UserNotFound:      {"USER_NOT_FOUND", http.StatusNotFound},
	WorkspaceNotFound: {"WORKSPACE_NOT_FOUND", http.StatusNotFound},
	MemberNotFound:    {"MEMBER_NOT_FOUND", http.StatusNotFound},
	RequestNotFound:   {"REQUEST_NOT_FOUND", http.StatusNotFound},
	ProfileNotFound:   {"PROFILE_NOT_FOUND", http.StatusNotFound},

	NotAuthorized: {"NOT_AUTHORIZED", http.StatusForbidden},
	NotAMember:    {"NOT_A_MEMBER", http.StatusForbidden},
	UserNotActive: {"USER_NOT_ACTIVE", http.StatusForbidden},

	AlreadyMember:      {"ALREADY_MEMBER", http.StatusConflict},
	JoinRequestPending: {"JOIN_REQUEST_PENDING", http.StatusConflict},
	RequestNotPending:  {"REQUEST_NOT_PENDING", http.StatusConflict},
	Conflict:           {"CONFLICT", http.StatusConflict},

	InvalidArgument:       {"INVALID_ARGUMENT", http.StatusBadRequest},
	CannotRemoveOwner:     {"CANNOT_REMOVE_OWNER", http.StatusBadRequest},
	SelfRemoval:           {"SELF_REMOVAL", http.StatusBadRequest},
	OwnerRoleChange:       {"OWNER_ROLE_CHANGE", http.StatusBadRequest},
	MemberNotInWorkspace:  {"MEMBER_NOT_IN_WORKSPACE", http.StatusBadRequest},
	RequestNotInWorkspace: {"REQUEST_NOT_IN_WORKSPACE", http.StatusBadRequest},
	UserAlreadyDeleted:    {"USER_ALREADY_DELETED", http.StatusBadRequest},

	RateLimited: {"RATE_LIMITED", http.StatusTooManyRequests},
}

// Code is the stable machine-readable code for k.
func (k Kind) Code() string {
	if info, ok := kinds[k]; ok {
		return info.code
	}
	return kinds[Internal].code
}

// Status is the HTTP status class for k.
func (k Kind) Status() int {
	if info, ok := kinds[k]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func (k Kind) String() string { return k.Code() }

// Error carries a Kind alongside a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap attaches kind and message to a lower-level cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the message of the first *Error in err's chain.
// Internal errors never leak their cause.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "internal error"
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Response is the JSON error body served by the HTTP layer.
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToResponse maps err to its HTTP status and body.
func ToResponse(err error) (int, Response) {
	kind := KindOf(err)
	return kind.Status(), Response{Code: kind.Code(), Message: MessageOf(err)}
}
