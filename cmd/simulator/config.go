package main

import "time"

type Config struct {
	LogLevel         string        `env:"LOG_LEVEL,default=INFO"`
	ArchiveFilepath  string        `env:"ARCHIVE_FILEPATH,default=./data/archive"`
	DebugPort        int           `env:"DEBUG_PORT,default=8099"`
	HeartbeatEvery   time.Duration `env:"HEARTBEAT_INTERVAL,default=5s"`
	TeardownTimeout  time.Duration `env:"TEARDOWN_TIMEOUT,default=30s"`
	TimeoutUnit      time.Duration `env:"TIMEOUT_UNIT,default=5s"`
	SignalBufferSize int           `env:"SIGNAL_BUFFER_SIZE,default=256"`
	RedactedWords    string        `env:"REDACTED_WORDS"`
	MaskCharacter    string        `env:"MASK_CHARACTER,default=*"`

	InviteBaseURL   string        `env:"INVITE_BASE_URL,default=https://example.invalid/oauth2/authorize"`
	InviteClientID  string        `env:"INVITE_CLIENT_ID,default=convosplit-local"`
	InviteSecret    string        `env:"INVITE_STATE_SECRET,default=local-dev-secret"`
	InviteStateTTL  time.Duration `env:"INVITE_STATE_TTL,default=15m"`
	BotUserID       string        `env:"BOT_USER_ID,default=convosplit-bot"`
	EveryoneRoleID  string        `env:"EVERYONE_ROLE_ID,default=everyone"`
	ScenarioTimeout int           `env:"SCENARIO_TIMEOUT_MINUTES,default=1"`
}
