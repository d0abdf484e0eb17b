package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	everyone = RoleID("everyone")
	bot      = UserID("bot")
)

func findOverwrite(t *testing.T, overwrites []Overwrite, targetID string) Overwrite {
	t.Helper()
	for _, o := range overwrites {
		if o.TargetID == targetID {
			return o
		}
	}
	t.Fatalf("no overwrite for target %s", targetID)
	return Overwrite{}
}

func TestMirrorOverwrites_Unrestricted_Copies_Verbatim(t *testing.T) {
	req := require.New(t)
	source := []Overwrite{
		{Kind: TargetRole, TargetID: string(everyone), Allow: PermView | PermSend},
		{Kind: TargetMember, TargetID: "u1", Allow: PermView, Deny: PermSend},
	}

	// When mirroring without a restriction list
	result := MirrorOverwrites(source, everyone, bot, nil)

	// Then every source overwrite is carried over unchanged
	req.Equal(source[0], findOverwrite(t, result, string(everyone)))
	req.Equal(source[1], findOverwrite(t, result, "u1"))

	// And the bot granted itself full access
	botOverwrite := findOverwrite(t, result, string(bot))
	req.True(botOverwrite.Has(BotPermissions))
}

func TestMirrorOverwrites_Defaults_Everyone_When_Absent(t *testing.T) {
	req := require.New(t)

	result := MirrorOverwrites(nil, everyone, bot, nil)

	o := findOverwrite(t, result, string(everyone))
	req.True(o.Has(PermView))
	req.True(o.Has(PermSend))
}

func TestMirrorOverwrites_Restriction_Denies_Send_To_Everyone(t *testing.T) {
	req := require.New(t)
	source := []Overwrite{
		{Kind: TargetRole, TargetID: string(everyone), Allow: PermView | PermSend},
		{Kind: TargetMember, TargetID: "outsider", Allow: PermView | PermSend},
	}

	// When mirroring with owner and one member allowed
	result := MirrorOverwrites(source, everyone, bot, []UserID{"owner", "u1"})

	// Then send is denied for everyone and pre-existing targets
	req.True(findOverwrite(t, result, string(everyone)).Denies(PermSend))
	req.True(findOverwrite(t, result, "outsider").Denies(PermSend))

	// And the listed members got explicit send access
	for _, member := range []string{"owner", "u1"} {
		o := findOverwrite(t, result, member)
		req.True(o.Has(PermView))
		req.True(o.Has(PermSend))
	}

	// And the bot never denies itself
	req.False(findOverwrite(t, result, string(bot)).Denies(PermSend))
}

func TestMirrorOverwrites_Restriction_Never_Removes_Read_Access(t *testing.T) {
	req := require.New(t)
	source := []Overwrite{
		{Kind: TargetRole, TargetID: string(everyone), Allow: PermView | PermSend},
		{Kind: TargetMember, TargetID: "reader", Allow: PermView | PermReadHistory | PermSend},
	}

	result := MirrorOverwrites(source, everyone, bot, []UserID{"owner"})

	// Everyone who could see the original channel can still read.
	req.True(findOverwrite(t, result, string(everyone)).Has(PermView))
	reader := findOverwrite(t, result, "reader")
	req.True(reader.Has(PermView))
	req.True(reader.Has(PermReadHistory))
	req.False(reader.Has(PermSend))
}

func TestLockedOverwrites_Shuts_Out_Everyone_But_The_Bot(t *testing.T) {
	req := require.New(t)

	result := LockedOverwrites(everyone, bot)

	req.True(findOverwrite(t, result, string(everyone)).Denies(PermView | PermSend))
	req.True(findOverwrite(t, result, string(bot)).Has(BotPermissions))
}
