// Package transcript turns a channel's full message history into a
// single file-like artifact, oldest message first.
package transcript

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"

	"convosplit/contract"
	"convosplit/domain"
	"convosplit/errors"
)

// Separator starts every message block in the rendered artifact, so the
// flat text file stays machine-splittable.
const Separator = "--New Message Starts After Two Line Feeds After This Line"

const filenameFmt = "%s---%s---%s.txt"

const timestampLayout = "2006-01-02 15-04-05"

// Artifact is the rendered transcript, ready to be sent as one file.
type Artifact struct {
	Filename     string
	Content      []byte
	MessageCount int
	Language     string
}

// Exporter fetches a channel's complete ordered history through the
// platform client and renders it. An optional sanitizer is applied to
// every message body before it leaves the process.
type Exporter struct {
	log       *slog.Logger
	client    contract.ChannelClient
	sanitizer contract.Sanitizer
}

func NewExporter(log *slog.Logger, client contract.ChannelClient, sanitizer contract.Sanitizer) *Exporter {
	return &Exporter{log: log, client: client, sanitizer: sanitizer}
}

// Export pages through the session's channel history and renders it.
// A failure on any page discards everything already fetched and returns
// ErrFetchFailed: a partial transcript is never delivered. A channel
// with zero messages renders to a valid, empty-body artifact.
func (e *Exporter) Export(ctx context.Context, session *domain.Session) (Artifact, error) {
	var messages []domain.Message
	var cursor *string
	for {
		page, next, err := e.client.History(ctx, session.TempChannelID, cursor)
		if err != nil {
			return Artifact{}, fmt.Errorf("%w: %v", errors.ErrFetchFailed, err)
		}
		messages = append(messages, page...)
		if next == nil {
			break
		}
		cursor = next
	}

	end := time.Now().UTC()
	artifact := Artifact{
		Filename: fmt.Sprintf(filenameFmt,
			session.Name,
			session.StartedAt.Format(timestampLayout),
			end.Format(timestampLayout)),
		MessageCount: len(messages),
		Language:     dominantLanguage(messages),
	}

	var b strings.Builder
	writeHeader(&b, session, artifact.Language, len(messages), end)
	for _, msg := range messages {
		b.WriteString(Separator)
		b.WriteByte('\n')
		e.writeMessage(&b, msg)
		b.WriteByte('\n')
	}
	b.WriteString(Separator)
	b.WriteString("--\n")

	artifact.Content = []byte(b.String())
	e.log.Debug("Transcript rendered",
		"channel", session.TempChannelID, "messages", len(messages), "bytes", len(artifact.Content))
	return artifact, nil
}

func writeHeader(b *strings.Builder, session *domain.Session, lang string, count int, end time.Time) {
	fmt.Fprintf(b, "Channel: %s\n", session.Name)
	fmt.Fprintf(b, "Parent: %s\n", session.ParentID)
	fmt.Fprintf(b, "Span: %s / %s\n",
		session.StartedAt.Format(time.RFC3339), end.Format(time.RFC3339))
	fmt.Fprintf(b, "Messages: %d\n", count)
	if lang != "" {
		fmt.Fprintf(b, "Language: %s\n", lang)
	}
	b.WriteByte('\n')
}

// writeMessage renders one message in a multipart-like format: header
// lines, a blank line, then the body.
func (e *Exporter) writeMessage(b *strings.Builder, msg domain.Message) {
	fmt.Fprintf(b, "Message-Id: %s\n", msg.ID)
	fmt.Fprintf(b, "Author: %s (%s)\n", msg.AuthorName, msg.AuthorID)
	fmt.Fprintf(b, "Sent: %s\n", msg.CreatedAt.Format(time.RFC3339))
	if msg.EditedAt != nil {
		fmt.Fprintf(b, "Edited: %s\n", msg.EditedAt.Format(time.RFC3339))
	}
	if msg.ReplyTo != nil {
		fmt.Fprintf(b, "Reply-To: %s\n", msg.ReplyTo)
	}
	for _, a := range msg.Attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "Unspecified"
		}
		fmt.Fprintf(b, "Attachment: name=%s, content_type=%s, url=%s\n",
			a.Name, contentType, a.URL)
	}
	b.WriteByte('\n')

	content := msg.Content
	if e.sanitizer != nil {
		cleaned, matched := e.sanitizer.Sanitize(content)
		if len(matched) > 0 {
			e.log.Debug("Redacted transcript content",
				"message", msg.ID, "words", len(matched))
		}
		content = cleaned
	}
	b.WriteString(content)
	b.WriteByte('\n')
}

// dominantLanguage detects the main language across all message bodies,
// recorded in the artifact header for archive triage.
func dominantLanguage(messages []domain.Message) string {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	if b.Len() == 0 {
		return ""
	}
	info := whatlanggo.Detect(b.String())
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
