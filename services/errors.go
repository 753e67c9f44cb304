package services

import (
	"errors"
	"fmt"
)

// ErrorKind groups errors by how the desk reacts to them.
type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"
	KindAuth       ErrorKind = "auth"
	KindValidation ErrorKind = "validation"
	KindMalformed  ErrorKind = "malformed_order"
	KindPrint      ErrorKind = "print"
	KindBackend    ErrorKind = "backend"
	KindNotFound   ErrorKind = "not_found"
)

// KindOf -> kind of the first classified error in the chain, "" when unclassified
func KindOf(err error) ErrorKind {
	var k interface{ Kind() ErrorKind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}

// NetworkError: the request never got a usable answer (refused, timed out, cancelled).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string   { return fmt.Sprintf("%s: network: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error   { return e.Err }
func (e *NetworkError) Kind() ErrorKind { return KindNetwork }
func (e *NetworkError) UserMessage() string {
	return "Server bilan bog'lanib bo'lmadi. Internet aloqasini tekshiring."
}

// AuthError forces a new login; the cached session is dropped by whoever sees it first.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return "unauthorized: " + e.Message
}
func (e *AuthError) Kind() ErrorKind     { return KindAuth }
func (e *AuthError) UserMessage() string { return "Sessiya tugagan. Iltimos, qaytadan kiring." }

// BackendError is a business rejection reported by the backend, e.g. "order already paid".
// Message is the backend's own text and is shown as is.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}
func (e *BackendError) Kind() ErrorKind { return KindBackend }
func (e *BackendError) UserMessage() string {
	if e.Message == "" {
		return "Xatolik yuz berdi"
	}
	return e.Message
}

// MalformedOrderError: the backend payload cannot be turned into an order.
type MalformedOrderError struct {
	Reason string
}

func (e *MalformedOrderError) Error() string   { return "malformed order: " + e.Reason }
func (e *MalformedOrderError) Kind() ErrorKind { return KindMalformed }
func (e *MalformedOrderError) UserMessage() string {
	return "Buyurtma ma'lumotlari noto'g'ri keldi. Sahifani yangilang."
}

// UnreadableResponseError: the backend answered 2xx, so the request took effect, but the
// body could not be read. Callers must treat the operation as done.
type UnreadableResponseError struct {
	Op  string
	Err error
}

func (e *UnreadableResponseError) Error() string {
	return fmt.Sprintf("%s: accepted, unreadable response: %v", e.Op, e.Err)
}
func (e *UnreadableResponseError) Unwrap() error   { return e.Err }
func (e *UnreadableResponseError) Kind() ErrorKind { return KindMalformed }
func (e *UnreadableResponseError) UserMessage() string {
	return "Server so'rovni qabul qildi, lekin javobini o'qib bo'lmadi. Ro'yxat yangilanmoqda."
}

// PrintError never rolls back the operation that triggered the print.
type PrintError struct {
	Message string
	Err     error
}

func (e *PrintError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("print: %s: %v", e.Message, e.Err)
	}
	return "print: " + e.Message
}
func (e *PrintError) Unwrap() error   { return e.Err }
func (e *PrintError) Kind() ErrorKind { return KindPrint }
func (e *PrintError) UserMessage() string {
	if e.Message == "" {
		return "Chek chiqarishda xatolik"
	}
	return e.Message
}

// ValidationError is a client-side precondition failure; the request is never issued.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string       { return e.Message }
func (e *ValidationError) Kind() ErrorKind     { return KindValidation }
func (e *ValidationError) UserMessage() string { return e.Message }

// EmptySelectionError: a partial payment with nothing payable selected.
type EmptySelectionError struct {
	ValidationError
}

func NewEmptySelectionError() *EmptySelectionError {
	return &EmptySelectionError{ValidationError{Message: "To'lov uchun taom tanlanmagan"}}
}

// InsufficientSelectionError: a merge needs at least two orders.
type InsufficientSelectionError struct {
	ValidationError
	Selected int
}

func NewInsufficientSelectionError(selected int) *InsufficientSelectionError {
	return &InsufficientSelectionError{
		ValidationError: ValidationError{Message: "Birlashtirish uchun kamida 2 ta buyurtma tanlang"},
		Selected:        selected,
	}
}

// UnbalancedSplitError: tenders do not add up to the amount due, or one of them is negative.
type UnbalancedSplitError struct {
	ValidationError
	AmountDue int64
	Sum       int64
}

func NewUnbalancedSplitError(due, sum int64, msg string) *UnbalancedSplitError {
	return &UnbalancedSplitError{
		ValidationError: ValidationError{Message: msg},
		AmountDue:       due,
		Sum:             sum,
	}
}

type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string       { return e.What + " not found" }
func (e *NotFoundError) Kind() ErrorKind     { return KindNotFound }
func (e *NotFoundError) UserMessage() string { return "Buyurtma topilmadi" }

var (
	ErrOrderAlreadyPaid  = &ValidationError{Message: "Buyurtma allaqachon to'langan"}
	ErrOrderNotMergeable = &ValidationError{Message: "To'langan buyurtmani birlashtirib bo'lmaydi"}
	ErrOrderNotOpen      = &ValidationError{Message: "Yopilgan buyurtmaga taom qo'shib bo'lmaydi"}
	ErrInvalidPayment    = &ValidationError{Message: "To'lov turi noto'g'ri"}
	ErrInvalidMode       = &ValidationError{Message: "To'lov rejimi noto'g'ri"}
	ErrInvalidQuantity   = &ValidationError{Message: "Miqdor kamida 1 bo'lishi kerak"}
	ErrNoItems           = &ValidationError{Message: "Taomlar tanlanmagan"}
	ErrNotLoggedIn       = &AuthError{Message: "not logged in"}
	ErrOrderNotFound     = &NotFoundError{What: "order"}
)
