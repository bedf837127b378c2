package destination

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/storage"
)

const maxFilenameLength = 255

// File writes message content to a storage.Backend (local disk by
// default, optionally S3) under a filename built from a pattern. Ported
// from the reference FileWriter: pattern variables are ${timestamp},
// ${id}, ${date}, and ${channel}; the default pattern is
// "message_${id}.txt".
type File struct {
	filenamePattern string
	appendMode      bool
	encoding        string
	channelName     string
	backend         storage.Backend
}

func NewFile(cfg message.DestinationConfig, channelName string, backend storage.Backend) *File {
	pattern := cfg.Filename
	if pattern == "" {
		pattern = "message_${id}.txt"
	}
	appendMode := false
	if cfg.Append != nil {
		appendMode = *cfg.Append
	}
	return &File{
		filenamePattern: pattern,
		appendMode:      appendMode,
		encoding:        cfg.Encoding,
		channelName:     channelName,
		backend:         backend,
	}
}

func (f *File) Send(ctx context.Context, msg *message.Message) error {
	filename := sanitizeFilename(buildFilename(f.filenamePattern, msg, f.channelName))

	var data []byte
	if strings.EqualFold(f.encoding, "base64") {
		decoded, err := base64.StdEncoding.DecodeString(msg.Content)
		if err != nil {
			return fmt.Errorf("decode base64 content: %w", err)
		}
		data = decoded
	} else {
		data = []byte(msg.Content + "\n")
	}

	return f.backend.Write(ctx, filename, data, f.appendMode)
}

func buildFilename(pattern string, msg *message.Message, channelName string) string {
	replacer := strings.NewReplacer(
		"${timestamp}", strconv.FormatInt(msg.Timestamp.UnixMilli(), 10),
		"${id}", msg.ID.String(),
		"${date}", msg.Timestamp.Format(time.DateOnly),
		"${channel}", channelName,
	)
	return replacer.Replace(pattern)
}

// sanitizeFilename strips path separators, NUL, and other control
// characters, then caps the result at maxFilenameLength. Dots are
// intentionally preserved (matching the reference implementation), so a
// traversal attempt like "../../../etc/passwd" collapses to
// "......etcpasswd" rather than being rejected outright -- the real
// defense against traversal is the backend confining writes under its own
// base directory/prefix.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == 0:
			continue
		case r < 0x20:
			continue
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > maxFilenameLength {
		out = out[:maxFilenameLength]
	}
	if out == "" {
		out = "message.txt"
	}
	return out
}
