package domain

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"convosplit/errors"
)

// DefaultTimeoutMinutes applies when a split request carries no timeout.
const DefaultTimeoutMinutes = 5

// MaxExplicitMembers caps how many members a split command may list.
const MaxExplicitMembers = 5

var validate = validator.New()

// Command is a structured input handed over by the external
// command-dispatch layer.
type Command interface {
	Channel() ChannelID
}

// SplitRequest asks the coordinator to split the current conversation
// into a new temporary channel.
type SplitRequest struct {
	ParentChannelID ChannelID `validate:"required"`
	OwnerID         UserID    `validate:"required"`
	// Explicit members the discussion is limited to. Empty means
	// anyone who can read the parent may also write.
	Members []UserID `validate:"max=5,dive,required"`
	// Minutes of inactivity before the channel is torn down.
	// Zero means "use the default"; negative values are rejected.
	TimeoutMinutes int
	// Where the transcript should be sent; empty defaults to the parent.
	DestChannelID ChannelID
}

func (r SplitRequest) Channel() ChannelID { return r.ParentChannelID }

// Validate rejects malformed requests before any side effect happens.
func (r SplitRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		if len(r.Members) > MaxExplicitMembers {
			return fmt.Errorf("%w: got %d", errors.ErrTooManyMembers, len(r.Members))
		}
		return err
	}
	if r.TimeoutMinutes < 0 {
		return fmt.Errorf("%w: got %d", errors.ErrInvalidTimeout, r.TimeoutMinutes)
	}
	if lo.Contains(r.Members, "") {
		return errors.ErrUnknownMember
	}
	return nil
}

// Normalize returns a copy with defaults applied and the member list
// deduplicated. The owner is always part of a non-empty member list so
// the invoker can never lock themself out of their own conversation.
func (r SplitRequest) Normalize() SplitRequest {
	out := r
	if out.TimeoutMinutes == 0 {
		out.TimeoutMinutes = DefaultTimeoutMinutes
	}
	if out.DestChannelID == "" {
		out.DestChannelID = out.ParentChannelID
	}
	if len(out.Members) > 0 {
		out.Members = lo.Uniq(append([]UserID{out.OwnerID}, out.Members...))
	}
	return out
}

// Timeout converts the normalized timeout into a duration.
func (r SplitRequest) Timeout() time.Duration {
	return time.Duration(r.TimeoutMinutes) * time.Minute
}

// IsValidation reports whether err belongs to the validation family
// (bad input rejected before any channel was created).
func IsValidation(err error) bool {
	var vErrs validator.ValidationErrors
	if stderrors.As(err, &vErrs) {
		return true
	}
	return stderrors.Is(err, errors.ErrInvalidTimeout) ||
		stderrors.Is(err, errors.ErrTooManyMembers) ||
		stderrors.Is(err, errors.ErrUnknownMember)
}

// ExitRequest ends the session of the channel it was issued in.
// It is only honored when issued inside a temporary channel.
type ExitRequest struct {
	ChannelID ChannelID
	IssuerID  UserID
}

func (r ExitRequest) Channel() ChannelID { return r.ChannelID }

// InviteRequest asks for a bot authorization link. It is stateless and
// never touches the session registry.
type InviteRequest struct {
	ChannelID ChannelID
	IssuerID  UserID
}

func (r InviteRequest) Channel() ChannelID { return r.ChannelID }
