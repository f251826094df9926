package game

import (
	"errors"
	"fmt"
)

// Kind 机器可判定的错误类别
type Kind string

const (
	KindGameNotStarted     Kind = "GameNotStarted"
	KindGameAlreadyStarted Kind = "GameAlreadyStarted"
	KindUnknownPlayer      Kind = "UnknownPlayer"
	KindNotYourTurn        Kind = "NotYourTurn"
	KindMovesExhausted     Kind = "MovesExhausted"
	KindBaseRequiredFirst  Kind = "BaseRequiredFirst"
	KindBaseAlreadyPlaced  Kind = "BaseAlreadyPlaced"
	KindTileNotFound       Kind = "TileNotFound"
	KindTileOccupied       Kind = "TileOccupied"
	KindNotOwner           Kind = "NotOwner"

	KindUnknownEntityType Kind = "UnknownEntityType"
	KindInvalidRotation   Kind = "InvalidRotation"
	KindInvalidHealth     Kind = "InvalidHealth"
	KindTileEmpty         Kind = "TileEmpty"
	KindDuplicatePlayer   Kind = "DuplicatePlayer"
	KindSessionFull       Kind = "SessionFull"

	// KindInternal 非本包产生的错误
	KindInternal Kind = "Internal"
)

// Error 所有会话操作失败时返回的值：类别 + 可读原因
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is 按类别匹配，使 errors.Is(err, ErrNotYourTurn) 可用
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// 各类别的哨兵值，仅用于 errors.Is 比较
var (
	ErrGameNotStarted     = &Error{Kind: KindGameNotStarted}
	ErrGameAlreadyStarted = &Error{Kind: KindGameAlreadyStarted}
	ErrUnknownPlayer      = &Error{Kind: KindUnknownPlayer}
	ErrNotYourTurn        = &Error{Kind: KindNotYourTurn}
	ErrMovesExhausted     = &Error{Kind: KindMovesExhausted}
	ErrBaseRequiredFirst  = &Error{Kind: KindBaseRequiredFirst}
	ErrBaseAlreadyPlaced  = &Error{Kind: KindBaseAlreadyPlaced}
	ErrTileNotFound       = &Error{Kind: KindTileNotFound}
	ErrTileOccupied       = &Error{Kind: KindTileOccupied}
	ErrNotOwner           = &Error{Kind: KindNotOwner}
	ErrUnknownEntityType  = &Error{Kind: KindUnknownEntityType}
	ErrInvalidRotation    = &Error{Kind: KindInvalidRotation}
	ErrInvalidHealth      = &Error{Kind: KindInvalidHealth}
	ErrTileEmpty          = &Error{Kind: KindTileEmpty}
	ErrDuplicatePlayer    = &Error{Kind: KindDuplicatePlayer}
	ErrSessionFull        = &Error{Kind: KindSessionFull}
)

func failf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// KindOf 提取错误类别；nil 返回空串，外部错误归为 Internal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
