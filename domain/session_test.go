package domain

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSession_BeginClosing_Succeeds_Exactly_Once(t *testing.T) {
	req := require.New(t)
	session := NewSession("temp", "general", "owner", nil, 5*time.Minute, "general", time.Now())

	// When many triggers race the Active -> Closing transition
	const triggers = 16
	wins := make(chan bool, triggers)
	var wg sync.WaitGroup
	for i := 0; i < triggers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- session.BeginClosing()
		}()
	}
	wg.Wait()
	close(wins)

	// Then exactly one wins and the session is Closing
	won := 0
	for w := range wins {
		if w {
			won++
		}
	}
	req.Equal(1, won)
	req.Equal(StateClosing, session.State())
}

func TestSession_MarkClosed_Is_Terminal(t *testing.T) {
	req := require.New(t)
	session := NewSession("temp", "general", "owner", nil, time.Minute, "general", time.Now())

	req.True(session.BeginClosing())
	session.MarkClosed()

	req.Equal(StateClosed, session.State())
	req.False(session.BeginClosing())
}

func TestSession_Key_Is_The_Name_Suffix(t *testing.T) {
	req := require.New(t)
	session := &Session{Name: "convo-a1b2c3d4"}

	req.Equal("a1b2c3d4", session.Key())
}

func TestSession_Restricted(t *testing.T) {
	req := require.New(t)

	open := NewSession("t", "p", "o", nil, time.Minute, "p", time.Now())
	restricted := NewSession("t", "p", "o", []UserID{"o", "u1"}, time.Minute, "p", time.Now())

	req.False(open.Restricted())
	req.True(restricted.Restricted())
}
