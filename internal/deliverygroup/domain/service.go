package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Group merges two or more same-day deliverable items of the caller
	// into one delivery group carrying the slot of the first member.
	Group(ctx context.Context, refs []MemberRef) (GroupResult, error)
	// Ungroup detaches all members, preserving the slot each member holds
	// at that moment, and deletes the group record.
	Ungroup(ctx context.Context, groupID snowflake.ID) error
	// Get returns a group with its members.
	Get(ctx context.Context, groupID snowflake.ID) (GroupResult, error)
}
