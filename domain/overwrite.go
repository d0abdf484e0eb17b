package domain

// Permission is a capability bit set applied by an overwrite.
type Permission uint32

const (
	PermView Permission = 1 << iota
	PermSend
	PermReadHistory
	PermManageOverwrites
	PermEmbedLinks
	PermAttachFiles
)

// BotPermissions is the overwrite the bot grants itself on every
// channel it creates, so that it can always archive and clean up.
const BotPermissions = PermView | PermSend | PermReadHistory |
	PermManageOverwrites | PermEmbedLinks | PermAttachFiles

// TargetKind tells whether an overwrite applies to a role or a member.
type TargetKind int

const (
	TargetRole TargetKind = iota
	TargetMember
)

// Overwrite grants or denies capabilities to a role or member on a channel.
// A bit present in Allow wins over the role defaults; a bit present in
// Deny removes the capability. Allow and Deny are disjoint.
type Overwrite struct {
	Kind     TargetKind
	TargetID string
	Allow    Permission
	Deny     Permission
}

// Has reports whether the overwrite explicitly allows the permission.
func (o Overwrite) Has(p Permission) bool {
	return o.Allow&p == p
}

// Denies reports whether the overwrite explicitly denies the permission.
func (o Overwrite) Denies(p Permission) bool {
	return o.Deny&p == p
}

// MirrorOverwrites builds the overwrite list for a freshly split channel
// from the parent channel's overwrites.
//
// All parent overwrites are copied verbatim so anyone who could see the
// parent can see the split. The bot forces its own full-access entry and
// the everyone role defaults to view+send when the parent carried no
// entry for it. When allowed is non-empty the send capability is denied
// to every copied target (the bot excepted) and explicitly re-allowed
// for each listed member: everyone keeps reading, only listed members
// may write. View and history bits are never cleared.
func MirrorOverwrites(source []Overwrite, everyone RoleID, bot UserID, allowed []UserID) []Overwrite {
	index := make(map[string]int, len(source)+len(allowed)+2)
	result := make([]Overwrite, 0, len(source)+len(allowed)+2)

	put := func(o Overwrite) {
		if i, ok := index[o.TargetID]; ok {
			result[i] = o
			return
		}
		index[o.TargetID] = len(result)
		result = append(result, o)
	}

	for _, o := range source {
		put(o)
	}

	put(Overwrite{Kind: TargetMember, TargetID: string(bot), Allow: BotPermissions})

	if _, ok := index[string(everyone)]; !ok {
		put(Overwrite{Kind: TargetRole, TargetID: string(everyone), Allow: PermView | PermSend})
	}

	if len(allowed) == 0 {
		return result
	}

	for i := range result {
		if result[i].TargetID == string(bot) {
			continue
		}
		result[i].Allow &^= PermSend
		result[i].Deny |= PermSend
	}

	for _, member := range allowed {
		put(Overwrite{
			Kind:     TargetMember,
			TargetID: string(member),
			Allow:    PermView | PermSend,
		})
	}
	return result
}

// LockedOverwrites is applied to a split channel while its transcript
// is being saved: nobody but the bot can read or write anymore.
func LockedOverwrites(everyone RoleID, bot UserID) []Overwrite {
	return []Overwrite{
		{Kind: TargetRole, TargetID: string(everyone), Deny: PermView | PermSend},
		{Kind: TargetMember, TargetID: string(bot), Allow: BotPermissions},
	}
}
