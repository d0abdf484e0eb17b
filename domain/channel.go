// Package domain contains core concepts of the conversation splitter.
// This file defines channel, user and role identities.
// No runtime, network, or UI logic should be added here.
package domain

type ChannelID string

type UserID string

type RoleID string

// Activity is one inbound signal from the platform gateway: either a
// message posted in a channel or an exit command issued there.
type Activity struct {
	ChannelID ChannelID
	AuthorID  UserID
	Exit      bool
}
